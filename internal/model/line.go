package model

import (
	"time"

	"github.com/google/uuid"
)

type LineStatus string

const (
	LineStatusDraft   LineStatus = "draft"
	LineStatusActive  LineStatus = "active"
	LineStatusExpired LineStatus = "expired"
)

type WarrantyStartRule string

const (
	WarrantyStartPurchase    WarrantyStartRule = "purchase_date"
	WarrantyStartActivation  WarrantyStartRule = "activation_date"
	WarrantyStartManufacture WarrantyStartRule = "manufacture_date"
)

// Line holds the warranty and service terms for one product within one
// appendix. An appendix carries at most one active line per product; the
// resolver relies on that uniqueness. The line window must lie within the
// owning appendix's window.
type Line struct {
	ID         uuid.UUID
	AppendixID uuid.UUID
	ProductID  uuid.UUID
	Status     LineStatus
	StartDate  time.Time
	EndDate    time.Time

	SerialRequired bool
	SerialPattern  string // full-string regex, empty = no format constraint

	WarrantyStartRule WarrantyStartRule
	WarrantyMonths    int
	ProofRequired     bool

	AllowedCountries []string // upper-case ISO codes, empty = unrestricted
	AllowedChannels  []string // lower-case, empty = unrestricted

	AllowRepairStation bool
	AllowPartsShipment bool
	AllowRefund        bool
	AllowReplacement   bool
	AllowPaidRepair    bool
	AllowPartsSale     bool
}
