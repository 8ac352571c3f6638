package model

import (
	"time"

	"github.com/google/uuid"
)

type KPIType string

const (
	KPIRepairs        KPIType = "repairs"
	KPIRefunds        KPIType = "refunds"
	KPIReplacements   KPIType = "replacements"
	KPIPartsShipments KPIType = "parts_shipments"
	KPIPaidRepairs    KPIType = "paid_repairs"
	KPIPartsSales     KPIType = "parts_sales"
)

// KPITypes lists the valid types in the fixed reporting order.
var KPITypes = []KPIType{
	KPIPaidRepairs,
	KPIPartsSales,
	KPIPartsShipments,
	KPIRefunds,
	KPIRepairs,
	KPIReplacements,
}

func (t KPIType) Valid() bool {
	for _, known := range KPITypes {
		if t == known {
			return true
		}
	}
	return false
}

// KPIEntry is one daily expected or actual count for a contract.
type KPIEntry struct {
	ID         uuid.UUID
	ContractID uuid.UUID
	Type       KPIType
	Date       time.Time
	Value      int
}
