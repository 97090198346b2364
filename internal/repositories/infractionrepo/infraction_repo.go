package infractionrepo

import (
	"context"

	"github.com/google/uuid"

	"github.com/orizonpaybr/gateway-api-sub004/internal/domain"
)

type IInfractionRepository interface {
	Create(ctx context.Context, infraction *domain.Infraction) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Infraction, error)
}
