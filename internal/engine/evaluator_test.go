package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcharvet/sav-coverage/internal/model"
)

func TestInputGatesAccumulate(t *testing.T) {
	snapshot, f := newFixture(t)
	line, ok := snapshot.FindLine(f.gardenID, f.mowerID)
	require.True(t, ok)

	// Nothing supplied: serial, proof, country and channel gates all fire
	// in one pass.
	result := applyInputGates(snapshot, line, ClaimInputs{})

	assert.Equal(t, []ReasonCode{ReasonMissingSerial, ReasonMissingProof}, result.reasons)
	assert.Equal(t, []string{
		InputSerialNumber,
		InputProofProvided,
		InputCountry,
		InputChannel,
	}, result.required)
}

func TestInputGatesSerialFormat(t *testing.T) {
	snapshot, f := newFixture(t)
	line, ok := snapshot.FindLine(f.gardenID, f.mowerID)
	require.True(t, ok)

	cases := []struct {
		name    string
		serial  string
		reasons []ReasonCode
	}{
		{"valid serial", "SAV-2024-001", []ReasonCode{}},
		{"wrong shape", "SAV-24-1", []ReasonCode{ReasonInvalidSerialFormat}},
		{"partial match rejected", "xSAV-2024-001x", []ReasonCode{ReasonInvalidSerialFormat}},
		{"absent serial skips format gate", "", []ReasonCode{ReasonMissingSerial}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := applyInputGates(snapshot, line, ClaimInputs{
				SerialNumber:  tc.serial,
				ProofProvided: boolPtr(true),
				Country:       "FR",
				Channel:       "retail",
			})
			assert.Equal(t, tc.reasons, result.reasons)
		})
	}
}

func TestInputGatesProofTriState(t *testing.T) {
	snapshot, f := newFixture(t)
	line, ok := snapshot.FindLine(f.gardenID, f.mowerID)
	require.True(t, ok)

	base := ClaimInputs{
		SerialNumber: "SAV-2024-001",
		Country:      "FR",
		Channel:      "retail",
	}

	// nil and explicit false both count as missing proof.
	for _, proof := range []*bool{nil, boolPtr(false)} {
		inputs := base
		inputs.ProofProvided = proof
		result := applyInputGates(snapshot, line, inputs)
		assert.Contains(t, result.reasons, ReasonMissingProof)
		assert.Contains(t, result.required, InputProofProvided)
	}

	inputs := base
	inputs.ProofProvided = boolPtr(true)
	result := applyInputGates(snapshot, line, inputs)
	assert.NotContains(t, result.reasons, ReasonMissingProof)
}

func TestInputGatesGeographyAndChannel(t *testing.T) {
	snapshot, f := newFixture(t)
	line, ok := snapshot.FindLine(f.gardenID, f.mowerID)
	require.True(t, ok)

	result := applyInputGates(snapshot, line, ClaimInputs{
		SerialNumber:  "SAV-2024-001",
		ProofProvided: boolPtr(true),
		Country:       "DE",
		Channel:       "wholesale",
	})

	assert.Equal(t, []ReasonCode{ReasonCountryNotAllowed, ReasonChannelNotAllowed}, result.reasons)
	assert.Empty(t, result.required)
}

func TestInputGatesUnrestrictedLists(t *testing.T) {
	snapshot, f := newFixture(t)
	line, ok := snapshot.FindLine(f.gardenID, f.trimmerID)
	require.True(t, ok)

	result := applyInputGates(snapshot, line, ClaimInputs{Country: "ZZ", Channel: "fax"})

	assert.Empty(t, result.reasons)
	assert.Empty(t, result.required)
}

func TestWarrantyStartRuleSelection(t *testing.T) {
	purchase := day(2023, time.January, 1)
	activation := day(2023, time.February, 1)
	manufacture := day(2022, time.December, 1)

	inputs := ClaimInputs{
		PurchaseDate:    &purchase,
		ActivationDate:  &activation,
		ManufactureDate: &manufacture,
	}

	cases := []struct {
		rule model.WarrantyStartRule
		want time.Time
	}{
		{model.WarrantyStartPurchase, purchase},
		{model.WarrantyStartActivation, activation},
		{model.WarrantyStartManufacture, manufacture},
	}

	for _, tc := range cases {
		got, ok := warrantyStart(tc.rule, inputs)
		require.True(t, ok)
		assert.Equal(t, tc.want, got)
	}

	_, ok := warrantyStart(model.WarrantyStartPurchase, ClaimInputs{})
	assert.False(t, ok)
}

func TestDecideMissingWarrantyDate(t *testing.T) {
	snapshot, f := newFixture(t)

	inputs := completeMowerInputs()
	inputs.PurchaseDate = nil

	decision, err := Decide(snapshot, Request{
		Scope:     Scope{AppendixID: &f.gardenID},
		ProductID: f.mowerID,
		EventDate: day(2024, time.June, 1),
		Inputs:    inputs,
	})
	require.NoError(t, err)

	assert.True(t, decision.Eligible)
	assert.Nil(t, decision.InWarranty)
	assert.Equal(t, []ReasonCode{ReasonMissingWarrantyDate}, decision.ReasonCodes)
	assert.Equal(t, []string{"purchase_date"}, decision.RequiredInputs)
	assert.Nil(t, decision.WarrantyEndDate)
	assert.Empty(t, decision.AllowedResolutions)
}
