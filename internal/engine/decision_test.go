package engine

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcharvet/sav-coverage/internal/model"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func boolPtr(v bool) *bool { return &v }

func timePtr(t time.Time) *time.Time { return &t }

// fixture carries the ids of a small hierarchy modeled on the demo dataset:
// one active contract, a garden appendix with a strict mower line and a
// permissive trimmer line, and a tools appendix.
type fixture struct {
	contractID uuid.UUID
	gardenID   uuid.UUID
	toolsID    uuid.UUID
	mowerID    uuid.UUID
	trimmerID  uuid.UUID
	drillID    uuid.UUID

	mowerLineID   uuid.UUID
	trimmerLineID uuid.UUID
	drillLineID   uuid.UUID
}

func newFixture(t *testing.T) (*Snapshot, fixture) {
	t.Helper()

	f := fixture{
		contractID:    uuid.New(),
		gardenID:      uuid.New(),
		toolsID:       uuid.New(),
		mowerID:       uuid.New(),
		trimmerID:     uuid.New(),
		drillID:       uuid.New(),
		mowerLineID:   uuid.New(),
		trimmerLineID: uuid.New(),
		drillLineID:   uuid.New(),
	}

	contracts := []model.Contract{{
		ID:        f.contractID,
		ClientID:  uuid.New(),
		Reference: "SAV-2024",
		Status:    model.ContractStatusActive,
		StartDate: day(2024, time.January, 1),
		EndDate:   day(2026, time.December, 31),
		Currency:  "EUR",
	}}

	appendices := []model.Appendix{
		{
			ID:         f.gardenID,
			ContractID: f.contractID,
			Name:       "Garden range 2024",
			Code:       "GJ-2024",
			Status:     model.AppendixStatusActive,
			StartDate:  day(2024, time.January, 1),
			EndDate:    day(2026, time.December, 31),
		},
		{
			ID:         f.toolsID,
			ContractID: f.contractID,
			Name:       "Tools range 2024",
			Code:       "GB-2024",
			Status:     model.AppendixStatusActive,
			StartDate:  day(2024, time.January, 1),
			EndDate:    day(2026, time.June, 30),
		},
	}

	lines := []model.Line{
		{
			ID:                 f.mowerLineID,
			AppendixID:         f.gardenID,
			ProductID:          f.mowerID,
			Status:             model.LineStatusActive,
			StartDate:          day(2024, time.January, 1),
			EndDate:            day(2026, time.December, 31),
			SerialRequired:     true,
			SerialPattern:      `^SAV-\d{4}-\d{3}$`,
			WarrantyStartRule:  model.WarrantyStartPurchase,
			WarrantyMonths:     24,
			ProofRequired:      true,
			AllowedCountries:   []string{"FR", "BE", "ES"},
			AllowedChannels:    []string{"retail", "online"},
			AllowRepairStation: true,
			AllowPartsShipment: true,
			AllowRefund:        false,
			AllowReplacement:   true,
			AllowPaidRepair:    true,
			AllowPartsSale:     true,
		},
		{
			ID:                 f.trimmerLineID,
			AppendixID:         f.gardenID,
			ProductID:          f.trimmerID,
			Status:             model.LineStatusActive,
			StartDate:          day(2024, time.January, 1),
			EndDate:            day(2026, time.December, 31),
			WarrantyStartRule:  model.WarrantyStartActivation,
			WarrantyMonths:     18,
			AllowRepairStation: true,
			AllowRefund:        true,
			AllowPaidRepair:    true,
		},
		{
			ID:                 f.drillLineID,
			AppendixID:         f.toolsID,
			ProductID:          f.drillID,
			Status:             model.LineStatusActive,
			StartDate:          day(2024, time.January, 1),
			EndDate:            day(2026, time.June, 30),
			SerialRequired:     true,
			SerialPattern:      `^[A-Z]{2}-\d{6}$`,
			WarrantyStartRule:  model.WarrantyStartManufacture,
			WarrantyMonths:     36,
			ProofRequired:      true,
			AllowedCountries:   []string{"FR", "DE"},
			AllowedChannels:    []string{"retail"},
			AllowRepairStation: true,
			AllowPartsShipment: true,
			AllowReplacement:   true,
			AllowPartsSale:     true,
		},
	}

	products := []model.Product{
		{ID: f.mowerID, Name: "Electric mower AX14"},
		{ID: f.trimmerID, Name: "Hedge trimmer ProCut"},
		{ID: f.drillID, Name: "Cordless drill XR20"},
	}

	snapshot, err := NewSnapshot(contracts, appendices, lines, products)
	require.NoError(t, err)
	return snapshot, f
}

func completeMowerInputs() ClaimInputs {
	return ClaimInputs{
		SerialNumber:  "SAV-2024-001",
		ProofProvided: boolPtr(true),
		Country:       "FR",
		Channel:       "retail",
		PurchaseDate:  timePtr(day(2023, time.January, 1)),
	}
}

func TestDecideNoActiveLine(t *testing.T) {
	snapshot, f := newFixture(t)

	decision, err := Decide(snapshot, Request{
		Scope:     Scope{ContractID: &f.contractID},
		ProductID: uuid.New(),
		EventDate: day(2024, time.June, 1),
	})
	require.NoError(t, err)

	assert.False(t, decision.Eligible)
	assert.Nil(t, decision.InWarranty)
	assert.Equal(t, []ReasonCode{ReasonNoActiveLine}, decision.ReasonCodes)
	assert.Empty(t, decision.RequiredInputs)
	assert.Empty(t, decision.AllowedResolutions)
	assert.Nil(t, decision.ResolvedContractID)
	assert.Nil(t, decision.ResolvedLineID)
}

func TestDecideMissingSerial(t *testing.T) {
	snapshot, f := newFixture(t)

	decision, err := Decide(snapshot, Request{
		Scope:     Scope{AppendixID: &f.gardenID},
		ProductID: f.mowerID,
		EventDate: day(2024, time.June, 1),
		Inputs: ClaimInputs{
			ProofProvided: boolPtr(true),
			Country:       "FR",
			Channel:       "retail",
		},
	})
	require.NoError(t, err)

	assert.True(t, decision.Eligible)
	assert.Nil(t, decision.InWarranty)
	assert.Equal(t, []ReasonCode{ReasonMissingSerial}, decision.ReasonCodes)
	assert.Equal(t, []string{InputSerialNumber}, decision.RequiredInputs)
	assert.Empty(t, decision.AllowedResolutions)
	require.NotNil(t, decision.ResolvedLineID)
	assert.Equal(t, f.mowerLineID, *decision.ResolvedLineID)
}

func TestDecideInWarranty(t *testing.T) {
	snapshot, f := newFixture(t)

	decision, err := Decide(snapshot, Request{
		Scope:     Scope{AppendixID: &f.gardenID},
		ProductID: f.mowerID,
		EventDate: day(2024, time.June, 1),
		Inputs:    completeMowerInputs(),
	})
	require.NoError(t, err)

	assert.True(t, decision.Eligible)
	require.NotNil(t, decision.InWarranty)
	assert.True(t, *decision.InWarranty)
	require.NotNil(t, decision.WarrantyEndDate)
	assert.Equal(t, day(2025, time.January, 1), *decision.WarrantyEndDate)
	assert.Equal(t, []Resolution{
		ResolutionRepairStation,
		ResolutionPartsShipment,
		ResolutionReplacement,
	}, decision.AllowedResolutions)
	assert.Empty(t, decision.ReasonCodes)
	assert.Empty(t, decision.RequiredInputs)
}

func TestDecideOutOfWarranty(t *testing.T) {
	snapshot, f := newFixture(t)

	decision, err := Decide(snapshot, Request{
		Scope:     Scope{AppendixID: &f.gardenID},
		ProductID: f.mowerID,
		EventDate: day(2026, time.January, 2),
		Inputs:    completeMowerInputs(),
	})
	require.NoError(t, err)

	assert.True(t, decision.Eligible)
	require.NotNil(t, decision.InWarranty)
	assert.False(t, *decision.InWarranty)
	assert.Equal(t, []Resolution{ResolutionPaidRepair, ResolutionPartsSale}, decision.AllowedResolutions)
}

func TestDecideUnrestrictedCountry(t *testing.T) {
	snapshot, f := newFixture(t)

	// The trimmer line has no country or channel restriction; any supplied
	// value passes.
	decision, err := Decide(snapshot, Request{
		Scope:     Scope{AppendixID: &f.gardenID},
		ProductID: f.trimmerID,
		EventDate: day(2024, time.June, 1),
		Inputs: ClaimInputs{
			Country:        "JP",
			Channel:        "door-to-door",
			ActivationDate: timePtr(day(2024, time.March, 1)),
		},
	})
	require.NoError(t, err)

	assert.True(t, decision.Eligible)
	assert.NotContains(t, decision.ReasonCodes, ReasonCountryNotAllowed)
	assert.NotContains(t, decision.ReasonCodes, ReasonChannelNotAllowed)
	require.NotNil(t, decision.InWarranty)
	assert.True(t, *decision.InWarranty)
}

func TestDecideOutsideValidity(t *testing.T) {
	snapshot, f := newFixture(t)

	decision, err := Decide(snapshot, Request{
		Scope:     Scope{AppendixID: &f.toolsID},
		ProductID: f.drillID,
		EventDate: day(2026, time.July, 1), // tools appendix ends 2026-06-30
		Inputs: ClaimInputs{
			SerialNumber:    "AB-123456",
			ProofProvided:   boolPtr(true),
			Country:         "FR",
			Channel:         "retail",
			ManufactureDate: timePtr(day(2024, time.January, 1)),
		},
	})
	require.NoError(t, err)

	assert.False(t, decision.Eligible)
	assert.Nil(t, decision.InWarranty)
	assert.Equal(t, []ReasonCode{ReasonOutsideValidity}, decision.ReasonCodes)
	require.NotNil(t, decision.ResolvedContractID)
	assert.Equal(t, f.contractID, *decision.ResolvedContractID)
	require.NotNil(t, decision.ResolvedAppendixID)
	assert.Equal(t, f.toolsID, *decision.ResolvedAppendixID)
	require.NotNil(t, decision.ResolvedLineID)
	assert.Equal(t, f.drillLineID, *decision.ResolvedLineID)
}

func TestDecideContractStateShortCircuit(t *testing.T) {
	cases := []struct {
		name   string
		status model.ContractStatus
		reason ReasonCode
	}{
		{"suspended", model.ContractStatusSuspended, ReasonContractSuspended},
		{"expired", model.ContractStatusExpired, ReasonContractExpired},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			snapshot, f := suspendedFixture(t, tc.status)

			// No inputs at all: the contract-state gate must fire before
			// any input gate gets a chance to.
			decision, err := Decide(snapshot, Request{
				Scope:     Scope{AppendixID: &f.gardenID},
				ProductID: f.mowerID,
				EventDate: day(2024, time.June, 1),
			})
			require.NoError(t, err)

			assert.True(t, decision.Eligible)
			assert.Nil(t, decision.InWarranty)
			assert.Equal(t, []ReasonCode{tc.reason}, decision.ReasonCodes)
			assert.Empty(t, decision.RequiredInputs)
			assert.Empty(t, decision.AllowedResolutions)
			assert.Nil(t, decision.WarrantyEndDate)
		})
	}
}

func TestDecideOutsideValidityBeatsContractState(t *testing.T) {
	snapshot, f := suspendedFixture(t, model.ContractStatusSuspended)

	decision, err := Decide(snapshot, Request{
		Scope:     Scope{AppendixID: &f.gardenID},
		ProductID: f.mowerID,
		EventDate: day(2030, time.January, 1),
	})
	require.NoError(t, err)

	assert.False(t, decision.Eligible)
	assert.Equal(t, []ReasonCode{ReasonOutsideValidity}, decision.ReasonCodes)
}

func TestDecideIdempotent(t *testing.T) {
	snapshot, f := newFixture(t)

	req := Request{
		Scope:     Scope{ContractID: &f.contractID},
		ProductID: f.mowerID,
		EventDate: day(2024, time.June, 1),
		Inputs:    completeMowerInputs(),
	}

	first, err := Decide(snapshot, req)
	require.NoError(t, err)
	second, err := Decide(snapshot, req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestDecideBrokenReference(t *testing.T) {
	orphanAppendix := uuid.New()
	productID := uuid.New()
	lines := []model.Line{{
		ID:                uuid.New(),
		AppendixID:        orphanAppendix,
		ProductID:         productID,
		Status:            model.LineStatusActive,
		StartDate:         day(2024, time.January, 1),
		EndDate:           day(2025, time.December, 31),
		WarrantyStartRule: model.WarrantyStartPurchase,
	}}

	snapshot, err := NewSnapshot(nil, nil, lines, nil)
	require.NoError(t, err)

	_, err = Decide(snapshot, Request{
		Scope:     Scope{AppendixID: &orphanAppendix},
		ProductID: productID,
		EventDate: day(2024, time.June, 1),
	})

	var integrity *DataIntegrityError
	require.ErrorAs(t, err, &integrity)
	assert.Equal(t, "appendix", integrity.Entity)
	assert.Equal(t, orphanAppendix, integrity.ID)
}

// suspendedFixture rebuilds the standard hierarchy with the contract in the
// given state.
func suspendedFixture(t *testing.T, status model.ContractStatus) (*Snapshot, fixture) {
	t.Helper()

	snapshot, f := newFixture(t)
	contract, ok := snapshot.Contract(f.contractID)
	require.True(t, ok)
	contract.Status = status

	var appendices []model.Appendix
	for _, id := range []uuid.UUID{f.gardenID, f.toolsID} {
		appendix, ok := snapshot.Appendix(id)
		require.True(t, ok)
		appendices = append(appendices, appendix)
	}

	var lines []model.Line
	for _, id := range []uuid.UUID{f.mowerID, f.trimmerID} {
		if line, ok := snapshot.FindLine(f.gardenID, id); ok {
			lines = append(lines, line)
		}
	}
	if line, ok := snapshot.FindLine(f.toolsID, f.drillID); ok {
		lines = append(lines, line)
	}

	rebuilt, err := NewSnapshot([]model.Contract{contract}, appendices, lines, nil)
	require.NoError(t, err)
	return rebuilt, f
}
