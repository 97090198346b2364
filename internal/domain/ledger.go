package domain

import (
	"time"

	"github.com/google/uuid"
)

// LedgerComponent tags which flow produced a balance change.
type LedgerComponent string

const (
	ComponentDeposit     LedgerComponent = "deposit"
	ComponentWithdrawal  LedgerComponent = "withdrawal"
	ComponentChargeback  LedgerComponent = "chargeback"
	ComponentAdminCredit LedgerComponent = "admin_credit"
	ComponentAdminDebit  LedgerComponent = "admin_debit"
	ComponentSplit       LedgerComponent = "split"
)

// LedgerEvent is the audit row appended alongside every balance mutation.
type LedgerEvent struct {
	ID                uuid.UUID       `json:"id"`
	UserID            uuid.UUID       `json:"user_id"`
	Component         LedgerComponent `json:"component"`
	DeltaCents        int64           `json:"delta_cents"`
	BalanceAfterCents int64           `json:"balance_after_cents"`
	ReferenceID       string          `json:"reference_id,omitempty"`
	Description       string          `json:"description,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}
