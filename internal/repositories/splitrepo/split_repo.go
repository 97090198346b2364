package splitrepo

import (
	"context"

	"github.com/google/uuid"

	"github.com/orizonpaybr/gateway-api-sub004/internal/domain"
)

type ISplitRepository interface {
	// CreateIfAbsent inserts the split unless one already exists for the same
	// payer/beneficiary/fee-type triple. Retried enqueue deliveries land here,
	// so the insert must be idempotent.
	CreateIfAbsent(ctx context.Context, split *domain.SplitInterno) error
	ListByPayer(ctx context.Context, payerID uuid.UUID) ([]*domain.SplitInterno, error)
}
