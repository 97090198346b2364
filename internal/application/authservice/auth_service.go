package authservice

import (
	"context"

	"github.com/google/uuid"

	"github.com/orizonpaybr/gateway-api-sub004/internal/domain"
)

type RegisterInput struct {
	Username    string
	Name        string
	Email       string
	PhoneNumber string
	Gender      string
	Password    string
	RefCode     string
}

type LoginResult struct {
	Token         string
	TwoFARequired bool
	User          *domain.User
}

type IAuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, string, error)
	Login(ctx context.Context, login, password string) (*LoginResult, error)
	VerifyTwoFA(ctx context.Context, userID uuid.UUID, code string) (string, error)
	VerifyToken(ctx context.Context, tokenString string) (*domain.Claim, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}
