package withdrawalrepo

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/orizonpaybr/gateway-api-sub004/internal/domain"
)

type IWithdrawalRepository interface {
	Create(ctx context.Context, withdrawal *domain.Withdrawal) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Withdrawal, error)
	GetByIDTx(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Withdrawal, error)
	UpdateStatusTx(ctx context.Context, tx *sql.Tx, withdrawal *domain.Withdrawal) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Withdrawal, error)
	List(ctx context.Context, status domain.WithdrawalStatus, limit, offset int) ([]*domain.Withdrawal, error)
	BeginTx(ctx context.Context) (*sql.Tx, error)
}
