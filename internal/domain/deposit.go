package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

type DepositStatus string

const (
	DepositStatusPending    DepositStatus = "PENDING"
	DepositStatusCompleted  DepositStatus = "COMPLETED"
	DepositStatusCancelled  DepositStatus = "CANCELLED"
	DepositStatusMediation  DepositStatus = "MEDIATION"
	DepositStatusChargeback DepositStatus = "CHARGEBACK"
	DepositStatusDispute    DepositStatus = "DISPUTE"
)

type Deposit struct {
	ID              uuid.UUID            `json:"id"`
	UserID          uuid.UUID            `json:"user_id"`
	AmountCents     int64                `json:"amount_cents"`
	NetAmountCents  int64                `json:"net_amount_cents"`
	Status          DepositStatus        `json:"status"`
	ExternalRef     string               `json:"external_ref"`
	TransactionID   string               `json:"id_transaction,omitempty"`
	PixPayload      string               `json:"pix_payload,omitempty"`
	CallbackPayload pqtype.NullRawMessage `json:"-"`
	PaidAt          time.Time            `json:"paid_at,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// GatewayCallback is the payload a PIX provider posts when a charge settles
// or is cancelled. TransactionID is the provider's id and is mandatory for a
// settlement.
type GatewayCallback struct {
	ExternalRef   string        `json:"external_ref" binding:"required"`
	TransactionID string        `json:"id_transaction"`
	Status        DepositStatus `json:"status" binding:"required"`
	AmountCents   int64         `json:"amount_cents"`
	Raw           []byte        `json:"-"`
}
