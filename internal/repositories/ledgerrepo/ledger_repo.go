package ledgerrepo

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/orizonpaybr/gateway-api-sub004/internal/domain"
)

// ILedgerRepository serializes every balance mutation through atomic
// conditional updates. The Tx variants participate in a caller-owned
// transaction so status changes and balance deltas commit together.
type ILedgerRepository interface {
	Credit(ctx context.Context, userID uuid.UUID, amountCents int64) (int64, error)
	Debit(ctx context.Context, userID uuid.UUID, amountCents int64) (int64, error)
	Reserve(ctx context.Context, userID uuid.UUID, amountCents int64) error
	Release(ctx context.Context, userID uuid.UUID, amountCents int64) error

	CreditTx(ctx context.Context, tx *sql.Tx, userID uuid.UUID, amountCents int64) (int64, error)
	DebitTx(ctx context.Context, tx *sql.Tx, userID uuid.UUID, amountCents int64) (int64, error)
	ReleaseTx(ctx context.Context, tx *sql.Tx, userID uuid.UUID, amountCents int64) error

	AppendEvent(ctx context.Context, event *domain.LedgerEvent) error
	AppendEventTx(ctx context.Context, tx *sql.Tx, event *domain.LedgerEvent) error
	ListEvents(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.LedgerEvent, error)

	BeginTx(ctx context.Context) (*sql.Tx, error)
}
