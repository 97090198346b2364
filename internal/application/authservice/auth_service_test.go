package authservice_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"
	"github.com/rs/zerolog"

	"github.com/orizonpaybr/gateway-api-sub004/internal/application/authservice"
	"github.com/orizonpaybr/gateway-api-sub004/internal/domain"
	"github.com/orizonpaybr/gateway-api-sub004/pkg/config"
)

// memUsers keeps registered users in a map so token and credential flows can
// be exercised without a database.
type memUsers struct {
	byID    map[uuid.UUID]*domain.User
	byLogin map[string]*domain.User
	byRef   map[string]*domain.User
}

func newMemUsers() *memUsers {
	return &memUsers{
		byID:    make(map[uuid.UUID]*domain.User),
		byLogin: make(map[string]*domain.User),
		byRef:   make(map[string]*domain.User),
	}
}

func (m *memUsers) add(user *domain.User) {
	m.byID[user.ID] = user
	m.byLogin[user.Username] = user
	m.byLogin[user.Email] = user
	if user.RefCode != "" {
		m.byRef[user.RefCode] = user
	}
}

func (m *memUsers) Create(ctx context.Context, user *domain.User) error {
	if _, exists := m.byLogin[user.Username]; exists {
		return domain.ErrUserExists
	}
	m.add(user)
	return nil
}

func (m *memUsers) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

func (m *memUsers) GetByLogin(ctx context.Context, login string) (*domain.User, error) {
	user, ok := m.byLogin[login]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

func (m *memUsers) GetByRefCode(ctx context.Context, refCode string) (*domain.User, error) {
	user, ok := m.byRef[refCode]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

func (m *memUsers) LeastLoadedManager(ctx context.Context) (*domain.User, error) {
	for _, user := range m.byID {
		if user.IsManager() {
			return user, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memUsers) List(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	return nil, nil
}

func (m *memUsers) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return nil, errors.New("not supported")
}

type recordingSplits struct {
	assignments []*domain.SplitInterno
}

func (r *recordingSplits) EnqueueAssignment(ctx context.Context, split *domain.SplitInterno) error {
	r.assignments = append(r.assignments, split)
	return nil
}

func (r *recordingSplits) PayoutFee(ctx context.Context, payerID uuid.UUID, feeCents int64, feeType domain.SplitFeeType, referenceID string) error {
	return nil
}

func newService(users *memUsers, splits *recordingSplits) authservice.IAuthService {
	cfg := &config.Config{
		JWT: config.JWTConfig{Secret: "test-secret", TTL: time.Hour},
		Platform: config.PlatformConfig{
			DefaultManagerSplit:   5.0,
			DefaultAffiliateSplit: 1.0,
		},
	}
	return authservice.New(cfg, users, splits, zerolog.Nop())
}

func registerInput(username string) authservice.RegisterInput {
	return authservice.RegisterInput{
		Username: username,
		Name:     "Fulano de Tal",
		Email:    username + "@test.local",
		Password: "Str0ng!Pass",
	}
}

func TestRegisterIssuesVerifiableToken(t *testing.T) {
	users := newMemUsers()
	svc := newService(users, &recordingSplits{})

	user, token, err := svc.Register(context.Background(), registerInput("Fulano"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Username != "fulano" {
		t.Fatalf("expected lowercased username, got %q", user.Username)
	}
	if user.PasswordHash == "Str0ng!Pass" {
		t.Fatal("password stored in clear")
	}

	claims, err := svc.VerifyToken(context.Background(), token)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("token subject mismatch: %s vs %s", claims.UserID, user.ID)
	}
	if claims.Scope != "access" {
		t.Fatalf("expected access scope, got %q", claims.Scope)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	users := newMemUsers()
	svc := newService(users, &recordingSplits{})

	if _, _, err := svc.Register(context.Background(), registerInput("fulano")); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, _, err := svc.Register(context.Background(), registerInput("fulano")); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestRegisterAssignsManagerAndSplits(t *testing.T) {
	users := newMemUsers()
	manager := &domain.User{
		ID:         uuid.New(),
		Username:   "gerente",
		Email:      "gerente@test.local",
		Permission: domain.PermissionManager,
		RefCode:    "manager-ref",
	}
	users.add(manager)

	splits := &recordingSplits{}
	svc := newService(users, splits)

	input := registerInput("novato")
	input.RefCode = "manager-ref"
	user, _, err := svc.Register(context.Background(), input)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if user.ManagerID == nil || *user.ManagerID != manager.ID {
		t.Fatal("expected the referred manager to be assigned")
	}
	if len(splits.assignments) != 2 {
		t.Fatalf("expected cash-in and cash-out splits, got %d", len(splits.assignments))
	}
	for _, split := range splits.assignments {
		if split.BeneficiaryID != manager.ID || split.Percent != 5.0 {
			t.Fatalf("unexpected split: %+v", split)
		}
	}
}

func TestLoginWrongPassword(t *testing.T) {
	users := newMemUsers()
	svc := newService(users, &recordingSplits{})

	if _, _, err := svc.Register(context.Background(), registerInput("fulano")); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Login(context.Background(), "fulano", "Wrong123!"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "desconhecido", "Str0ng!Pass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestLoginWithTwoFA(t *testing.T) {
	users := newMemUsers()
	svc := newService(users, &recordingSplits{})

	user, _, err := svc.Register(context.Background(), registerInput("fulano"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	key, err := totp.Generate(totp.GenerateOpts{Issuer: "test", AccountName: user.Email})
	if err != nil {
		t.Fatalf("generate totp key: %v", err)
	}
	user.TwoFAEnabled = true
	user.TwoFASecret = key.Secret()

	result, err := svc.Login(context.Background(), "fulano", "Str0ng!Pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !result.TwoFARequired {
		t.Fatal("expected a 2FA challenge")
	}

	claims, err := svc.VerifyToken(context.Background(), result.Token)
	if err != nil {
		t.Fatalf("verify intermediate token: %v", err)
	}
	if claims.Scope != "twofa" {
		t.Fatalf("expected twofa scope, got %q", claims.Scope)
	}

	if _, err := svc.VerifyTwoFA(context.Background(), user.ID, "000000"); !errors.Is(err, domain.ErrInvalidTwoFACode) {
		t.Fatalf("expected ErrInvalidTwoFACode, got %v", err)
	}

	code, err := totp.GenerateCode(key.Secret(), time.Now())
	if err != nil {
		t.Fatalf("generate code: %v", err)
	}
	accessToken, err := svc.VerifyTwoFA(context.Background(), user.ID, code)
	if err != nil {
		t.Fatalf("verify 2fa: %v", err)
	}

	claims, err = svc.VerifyToken(context.Background(), accessToken)
	if err != nil {
		t.Fatalf("verify access token: %v", err)
	}
	if claims.Scope != "access" {
		t.Fatalf("expected access scope, got %q", claims.Scope)
	}
}

func TestVerifyTokenRejectsForgery(t *testing.T) {
	users := newMemUsers()
	svc := newService(users, &recordingSplits{})

	if _, err := svc.VerifyToken(context.Background(), "not-a-token"); err == nil {
		t.Fatal("expected an error for a malformed token")
	}

	// A token signed with a different secret must not verify.
	otherUsers := newMemUsers()
	other := authservice.New(&config.Config{
		JWT: config.JWTConfig{Secret: "other-secret", TTL: time.Hour},
	}, otherUsers, &recordingSplits{}, zerolog.Nop())

	_, token, err := other.Register(context.Background(), registerInput("fulano"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.VerifyToken(context.Background(), token); err == nil {
		t.Fatal("expected an error for a foreign signature")
	}
}
