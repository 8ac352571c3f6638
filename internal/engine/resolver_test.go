package engine

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcharvet/sav-coverage/internal/model"
)

func activeLine(appendixID, productID uuid.UUID) model.Line {
	return model.Line{
		ID:                uuid.New(),
		AppendixID:        appendixID,
		ProductID:         productID,
		Status:            model.LineStatusActive,
		StartDate:         day(2024, time.January, 1),
		EndDate:           day(2025, time.December, 31),
		WarrantyStartRule: model.WarrantyStartPurchase,
		WarrantyMonths:    12,
	}
}

func TestResolveLineAppendixScope(t *testing.T) {
	snapshot, f := newFixture(t)

	line, ok := resolveLine(snapshot, Scope{AppendixID: &f.gardenID}, f.mowerID)
	require.True(t, ok)
	assert.Equal(t, f.mowerLineID, line.ID)

	// The drill line lives in the tools appendix; appendix scope must not
	// search beyond its own appendix.
	_, ok = resolveLine(snapshot, Scope{AppendixID: &f.gardenID}, f.drillID)
	assert.False(t, ok)
}

func TestResolveLineContractScopeSearchesAppendices(t *testing.T) {
	snapshot, f := newFixture(t)

	line, ok := resolveLine(snapshot, Scope{ContractID: &f.contractID}, f.drillID)
	require.True(t, ok)
	assert.Equal(t, f.drillLineID, line.ID)
}

func TestResolveLineSkipsInactiveAppendices(t *testing.T) {
	contractID := uuid.New()
	productID := uuid.New()
	draftAppendix := uuid.New()
	activeAppendix := uuid.New()

	appendices := []model.Appendix{
		{
			ID:         draftAppendix,
			ContractID: contractID,
			Status:     model.AppendixStatusDraft,
			StartDate:  day(2024, time.January, 1),
			EndDate:    day(2025, time.December, 31),
		},
		{
			ID:         activeAppendix,
			ContractID: contractID,
			Status:     model.AppendixStatusActive,
			StartDate:  day(2024, time.January, 1),
			EndDate:    day(2025, time.December, 31),
		},
	}

	draftLine := activeLine(draftAppendix, productID)
	wantedLine := activeLine(activeAppendix, productID)

	snapshot, err := NewSnapshot(nil, appendices, []model.Line{draftLine, wantedLine}, nil)
	require.NoError(t, err)

	line, ok := resolveLine(snapshot, Scope{ContractID: &contractID}, productID)
	require.True(t, ok)
	assert.Equal(t, wantedLine.ID, line.ID)
}

func TestResolveLineSkipsInactiveLines(t *testing.T) {
	appendixID := uuid.New()
	productID := uuid.New()

	expired := activeLine(appendixID, productID)
	expired.Status = model.LineStatusExpired
	active := activeLine(appendixID, productID)

	snapshot, err := NewSnapshot(nil, nil, []model.Line{expired, active}, nil)
	require.NoError(t, err)

	line, ok := resolveLine(snapshot, Scope{AppendixID: &appendixID}, productID)
	require.True(t, ok)
	assert.Equal(t, active.ID, line.ID)
}

func TestResolveLineFirstMatchWinsOnDuplicates(t *testing.T) {
	// Two active lines for the same product violate the uniqueness
	// invariant; resolution must still be deterministic.
	appendixID := uuid.New()
	productID := uuid.New()

	first := activeLine(appendixID, productID)
	second := activeLine(appendixID, productID)

	snapshot, err := NewSnapshot(nil, nil, []model.Line{first, second}, nil)
	require.NoError(t, err)

	line, ok := resolveLine(snapshot, Scope{AppendixID: &appendixID}, productID)
	require.True(t, ok)
	assert.Equal(t, first.ID, line.ID)
}

func TestResolveLineEmptyScope(t *testing.T) {
	snapshot, f := newFixture(t)

	_, ok := resolveLine(snapshot, Scope{}, f.mowerID)
	assert.False(t, ok)
}
