package withdrawalservice

import (
	"context"

	"github.com/google/uuid"

	"github.com/orizonpaybr/gateway-api-sub004/internal/domain"
)

type RequestInput struct {
	AmountCents         int64
	BeneficiaryName     string
	BeneficiaryDocument string
	PixKeyType          domain.PixKeyType
	PixKey              string
}

// IWithdrawalService owns the cash-out lifecycle: user request with
// reservation, and the one-shot admin approve/reject decision.
type IWithdrawalService interface {
	Request(ctx context.Context, user *domain.User, input RequestInput) (*domain.Withdrawal, error)
	Approve(ctx context.Context, withdrawalID uuid.UUID, admin *domain.User) (*domain.Withdrawal, error)
	Reject(ctx context.Context, withdrawalID uuid.UUID, admin *domain.User) (*domain.Withdrawal, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Withdrawal, error)
	List(ctx context.Context, status domain.WithdrawalStatus, limit, offset int) ([]*domain.Withdrawal, error)
}
