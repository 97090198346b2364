package ledgerservice

import (
	"context"

	"github.com/google/uuid"

	"github.com/orizonpaybr/gateway-api-sub004/internal/domain"
)

// ILedgerService applies balance deltas for manual admin actions and exposes
// the account's ledger view. Flow-triggered mutations (deposit settlement,
// withdrawal approval) run inside their own services' transactions.
type ILedgerService interface {
	ManualCredit(ctx context.Context, admin *domain.User, userID uuid.UUID, amountCents int64, description string) (*domain.LedgerEvent, error)
	ManualDebit(ctx context.Context, admin *domain.User, userID uuid.UUID, amountCents int64, description string) (*domain.LedgerEvent, error)
	Balance(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	Events(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.LedgerEvent, error)
}
