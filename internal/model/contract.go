package model

import (
	"time"

	"github.com/google/uuid"
)

type ContractStatus string

const (
	ContractStatusDraft     ContractStatus = "draft"
	ContractStatusActive    ContractStatus = "active"
	ContractStatusSuspended ContractStatus = "suspended"
	ContractStatusExpired   ContractStatus = "expired"
)

type Contract struct {
	ID                 uuid.UUID
	ClientID           uuid.UUID
	Reference          string // unique per client
	Status             ContractStatus
	StartDate          time.Time
	EndDate            time.Time
	BillingRatePercent float64
	BillingBase        string // "purchase_cost" or "repair_cost"
	Currency           string
	Notes              string
}
