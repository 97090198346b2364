package depositservice

import (
	"context"

	"github.com/google/uuid"

	"github.com/orizonpaybr/gateway-api-sub004/internal/domain"
)

// IDepositService owns the cash-in lifecycle: PIX charge creation, gateway
// callback settlement and the dispute sub-states.
type IDepositService interface {
	Create(ctx context.Context, user *domain.User, amountCents int64) (*domain.Deposit, error)
	ApplyCallback(ctx context.Context, callback *domain.GatewayCallback) (*domain.Deposit, error)
	OpenInfraction(ctx context.Context, user *domain.User, depositID uuid.UUID, kind domain.DepositStatus, reason string) (*domain.Infraction, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Deposit, error)
	List(ctx context.Context, status domain.DepositStatus, limit, offset int) ([]*domain.Deposit, error)
	ListInfractions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Infraction, error)
}
