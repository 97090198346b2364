package depositrepo

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/orizonpaybr/gateway-api-sub004/internal/domain"
)

type IDepositRepository interface {
	Create(ctx context.Context, deposit *domain.Deposit) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Deposit, error)
	GetByExternalRefTx(ctx context.Context, tx *sql.Tx, externalRef string) (*domain.Deposit, error)
	GetByIDTx(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Deposit, error)
	UpdateStatusTx(ctx context.Context, tx *sql.Tx, deposit *domain.Deposit) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Deposit, error)
	List(ctx context.Context, status domain.DepositStatus, limit, offset int) ([]*domain.Deposit, error)
	BeginTx(ctx context.Context) (*sql.Tx, error)
}
