package domain

import (
	"time"

	"github.com/google/uuid"
)

type WithdrawalStatus string

const (
	WithdrawalStatusPending   WithdrawalStatus = "PENDING"
	WithdrawalStatusCompleted WithdrawalStatus = "COMPLETED"
	WithdrawalStatusCancelled WithdrawalStatus = "CANCELLED"
)

type PixKeyType string

const (
	PixKeyCPF    PixKeyType = "cpf"
	PixKeyCNPJ   PixKeyType = "cnpj"
	PixKeyEmail  PixKeyType = "email"
	PixKeyPhone  PixKeyType = "phone"
	PixKeyRandom PixKeyType = "random"
)

func (t PixKeyType) Valid() bool {
	switch t {
	case PixKeyCPF, PixKeyCNPJ, PixKeyEmail, PixKeyPhone, PixKeyRandom:
		return true
	}
	return false
}

type Withdrawal struct {
	ID                  uuid.UUID        `json:"id"`
	UserID              uuid.UUID        `json:"user_id"`
	AmountCents         int64            `json:"amount_cents"`
	FeeCents            int64            `json:"fee_cents"`
	NetAmountCents      int64            `json:"net_amount_cents"`
	BeneficiaryName     string           `json:"beneficiary_name"`
	BeneficiaryDocument string           `json:"beneficiary_document"`
	PixKeyType          PixKeyType       `json:"pix_key_type"`
	PixKey              string           `json:"pix_key"`
	Status              WithdrawalStatus `json:"status"`
	ExecutorOrdem       string           `json:"executor_ordem,omitempty"`
	ProcessedAt         time.Time        `json:"processed_at,omitempty"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}
