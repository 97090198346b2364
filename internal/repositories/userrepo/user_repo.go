package userrepo

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/orizonpaybr/gateway-api-sub004/internal/domain"
)

type IUserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByLogin(ctx context.Context, login string) (*domain.User, error)
	GetByRefCode(ctx context.Context, refCode string) (*domain.User, error)
	LeastLoadedManager(ctx context.Context) (*domain.User, error)
	List(ctx context.Context, limit, offset int) ([]*domain.User, error)
	BeginTx(ctx context.Context) (*sql.Tx, error)
}
