package domain

import (
	"time"

	"github.com/google/uuid"
)

type SplitFeeType string

const (
	SplitFeeCashIn  SplitFeeType = "cash_in"
	SplitFeeCashOut SplitFeeType = "cash_out"
)

// SplitInterno is the recurring revenue-share record between a payer (the
// subordinate user) and a beneficiary (manager or affiliate).
type SplitInterno struct {
	ID            uuid.UUID    `json:"id"`
	PayerID       uuid.UUID    `json:"payer_id"`
	BeneficiaryID uuid.UUID    `json:"beneficiary_id"`
	Percent       float64      `json:"percent"`
	FeeType       SplitFeeType `json:"fee_type"`
	CreatedAt     time.Time    `json:"created_at"`
}
