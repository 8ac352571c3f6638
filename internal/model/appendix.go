package model

import (
	"time"

	"github.com/google/uuid"
)

type AppendixStatus string

const (
	AppendixStatusDraft   AppendixStatus = "draft"
	AppendixStatusActive  AppendixStatus = "active"
	AppendixStatusExpired AppendixStatus = "expired"
)

// Appendix groups the lines of one product range inside a contract. Its
// date window must lie within the owning contract's window.
type Appendix struct {
	ID          uuid.UUID
	ContractID  uuid.UUID
	Name        string
	Code        string
	Status      AppendixStatus
	StartDate   time.Time
	EndDate     time.Time
	Description string
}
