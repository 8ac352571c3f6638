package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/lcharvet/sav-coverage/internal/model"
)

type ReasonCode string

const (
	ReasonNoActiveLine        ReasonCode = "NO_ACTIVE_LINE"
	ReasonOutsideValidity     ReasonCode = "OUTSIDE_VALIDITY"
	ReasonContractSuspended   ReasonCode = "CONTRACT_SUSPENDED"
	ReasonContractExpired     ReasonCode = "CONTRACT_EXPIRED"
	ReasonMissingSerial       ReasonCode = "MISSING_SERIAL"
	ReasonInvalidSerialFormat ReasonCode = "INVALID_SERIAL_FORMAT"
	ReasonMissingProof        ReasonCode = "MISSING_PROOF"
	ReasonCountryNotAllowed   ReasonCode = "COUNTRY_NOT_ALLOWED"
	ReasonChannelNotAllowed   ReasonCode = "CHANNEL_NOT_ALLOWED"
	ReasonMissingWarrantyDate ReasonCode = "MISSING_WARRANTY_DATE"
)

type Resolution string

const (
	ResolutionRepairStation Resolution = "repair_station"
	ResolutionPartsShipment Resolution = "parts_shipment"
	ResolutionRefund        Resolution = "refund"
	ResolutionReplacement   Resolution = "replacement"
	ResolutionPaidRepair    Resolution = "paid_repair"
	ResolutionPartsSale     Resolution = "parts_sale"
)

// Required-input names as surfaced to the claimant. The warranty date inputs
// reuse the rule names themselves (purchase_date, activation_date,
// manufacture_date).
const (
	InputSerialNumber  = "serial_number"
	InputProofProvided = "proof_provided"
	InputCountry       = "country"
	InputChannel       = "channel"
)

// Scope selects where to look for the applicable line: a single appendix, or
// a contract searched across its active appendices. Appendix scope wins when
// both are set.
type Scope struct {
	ContractID *uuid.UUID
	AppendixID *uuid.UUID
}

// ClaimInputs is the claimant-supplied bundle. Empty strings and nil pointers
// mean "not provided". Country is expected upper-case and channel lower-case;
// the transport layer normalizes before calling the engine.
type ClaimInputs struct {
	SerialNumber    string
	ProofProvided   *bool
	Country         string
	Channel         string
	PurchaseDate    *time.Time
	ActivationDate  *time.Time
	ManufactureDate *time.Time
}

type Request struct {
	Scope     Scope
	ProductID uuid.UUID
	EventDate time.Time
	Inputs    ClaimInputs
}

// Decision is the assembled result record. Resolved ids are populated as soon
// as a line and its owners have been identified, even when a later stage
// fails, for traceability. WarrantyEndDate is set only when the calculator
// actually ran.
type Decision struct {
	Eligible           bool         `json:"eligible"`
	InWarranty         *bool        `json:"in_warranty"`
	RequiredInputs     []string     `json:"required_inputs"`
	AllowedResolutions []Resolution `json:"allowed_resolutions"`
	ReasonCodes        []ReasonCode `json:"reason_codes"`
	ResolvedContractID *uuid.UUID   `json:"resolved_contract_id,omitempty"`
	ResolvedAppendixID *uuid.UUID   `json:"resolved_appendix_id,omitempty"`
	ResolvedLineID     *uuid.UUID   `json:"resolved_line_id,omitempty"`
	WarrantyEndDate    *time.Time   `json:"warranty_end_date,omitempty"`
}

func newDecision() Decision {
	return Decision{
		RequiredInputs:     []string{},
		AllowedResolutions: []Resolution{},
		ReasonCodes:        []ReasonCode{},
	}
}

// Decide runs the full pipeline: line resolution, validity, contract-state
// and input gates, then the warranty calculation. It is a pure function of
// the request and the snapshot; the only possible error is a broken
// reference inside the hierarchy.
func Decide(view *Snapshot, req Request) (Decision, error) {
	event := dateOnly(req.EventDate)

	line, found := resolveLine(view, req.Scope, req.ProductID)
	if !found {
		decision := newDecision()
		decision.ReasonCodes = append(decision.ReasonCodes, ReasonNoActiveLine)
		return decision, nil
	}

	appendix, ok := view.Appendix(line.AppendixID)
	if !ok {
		return Decision{}, &DataIntegrityError{Entity: "appendix", ID: line.AppendixID}
	}
	contract, ok := view.Contract(appendix.ContractID)
	if !ok {
		return Decision{}, &DataIntegrityError{Entity: "contract", ID: appendix.ContractID}
	}

	decision := newDecision()
	decision.ResolvedContractID = uuidPtr(contract.ID)
	decision.ResolvedAppendixID = uuidPtr(appendix.ID)
	decision.ResolvedLineID = uuidPtr(line.ID)

	if !withinHierarchy(line, appendix, contract, event) {
		decision.ReasonCodes = append(decision.ReasonCodes, ReasonOutsideValidity)
		return decision, nil
	}

	// Suspended and expired contracts terminate before any input gate;
	// the claim stays eligible but no warranty verdict is computed.
	switch contract.Status {
	case model.ContractStatusSuspended:
		decision.Eligible = true
		decision.ReasonCodes = append(decision.ReasonCodes, ReasonContractSuspended)
		return decision, nil
	case model.ContractStatusExpired:
		decision.Eligible = true
		decision.ReasonCodes = append(decision.ReasonCodes, ReasonContractExpired)
		return decision, nil
	}

	gates := applyInputGates(view, line, req.Inputs)
	if len(gates.reasons) > 0 || len(gates.required) > 0 {
		decision.Eligible = true
		decision.ReasonCodes = gates.reasons
		decision.RequiredInputs = gates.required
		return decision, nil
	}

	start, ok := warrantyStart(line.WarrantyStartRule, req.Inputs)
	if !ok {
		decision.Eligible = true
		decision.ReasonCodes = append(decision.ReasonCodes, ReasonMissingWarrantyDate)
		decision.RequiredInputs = append(decision.RequiredInputs, string(line.WarrantyStartRule))
		return decision, nil
	}

	inWarranty, end, resolutions := computeWarranty(line, event, dateOnly(start))
	decision.Eligible = true
	decision.InWarranty = &inWarranty
	decision.WarrantyEndDate = &end
	decision.AllowedResolutions = resolutions
	return decision, nil
}

func uuidPtr(id uuid.UUID) *uuid.UUID {
	return &id
}
