package engine

import (
	"time"

	"github.com/lcharvet/sav-coverage/internal/model"
)

// gateResult accumulates reason codes and required inputs across the input
// gates. Gates do not short-circuit each other: the claimant sees every gap
// at once. Slices stay non-nil so an empty result serializes as [].
type gateResult struct {
	reasons  []ReasonCode
	required []string
}

func (g *gateResult) addReason(code ReasonCode) {
	for _, existing := range g.reasons {
		if existing == code {
			return
		}
	}
	g.reasons = append(g.reasons, code)
}

func (g *gateResult) addRequired(name string) {
	for _, existing := range g.required {
		if existing == name {
			return
		}
	}
	g.required = append(g.required, name)
}

// applyInputGates runs the serial, proof, country and channel gates in
// order. The format gate only fires when a serial was actually supplied;
// empty restriction lists mean unrestricted.
func applyInputGates(view *Snapshot, line model.Line, inputs ClaimInputs) gateResult {
	result := gateResult{reasons: []ReasonCode{}, required: []string{}}

	if line.SerialRequired && inputs.SerialNumber == "" {
		result.addReason(ReasonMissingSerial)
		result.addRequired(InputSerialNumber)
	}

	if pattern := view.SerialPattern(line.ID); pattern != nil && inputs.SerialNumber != "" {
		if !pattern.MatchString(inputs.SerialNumber) {
			result.addReason(ReasonInvalidSerialFormat)
		}
	}

	if line.ProofRequired && (inputs.ProofProvided == nil || !*inputs.ProofProvided) {
		result.addReason(ReasonMissingProof)
		result.addRequired(InputProofProvided)
	}

	if len(line.AllowedCountries) > 0 {
		if inputs.Country == "" {
			result.addRequired(InputCountry)
		} else if !containsString(line.AllowedCountries, inputs.Country) {
			result.addReason(ReasonCountryNotAllowed)
		}
	}

	if len(line.AllowedChannels) > 0 {
		if inputs.Channel == "" {
			result.addRequired(InputChannel)
		} else if !containsString(line.AllowedChannels, inputs.Channel) {
			result.addReason(ReasonChannelNotAllowed)
		}
	}

	return result
}

// warrantyStart picks the claimant date matching the line's start rule.
func warrantyStart(rule model.WarrantyStartRule, inputs ClaimInputs) (time.Time, bool) {
	var value *time.Time
	switch rule {
	case model.WarrantyStartPurchase:
		value = inputs.PurchaseDate
	case model.WarrantyStartActivation:
		value = inputs.ActivationDate
	case model.WarrantyStartManufacture:
		value = inputs.ManufactureDate
	}
	if value == nil {
		return time.Time{}, false
	}
	return *value, true
}

func containsString(values []string, value string) bool {
	for _, candidate := range values {
		if candidate == value {
			return true
		}
	}
	return false
}
