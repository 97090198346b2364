package withdrawalservice_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/orizonpaybr/gateway-api-sub004/internal/application/withdrawalservice"
	"github.com/orizonpaybr/gateway-api-sub004/internal/domain"
	"github.com/orizonpaybr/gateway-api-sub004/internal/repositories/ledgerrepo"
	"github.com/orizonpaybr/gateway-api-sub004/internal/repositories/notificationrepo"
	"github.com/orizonpaybr/gateway-api-sub004/internal/repositories/userrepo"
	"github.com/orizonpaybr/gateway-api-sub004/internal/repositories/withdrawalrepo"
	"github.com/orizonpaybr/gateway-api-sub004/internal/server/websocket"
	"github.com/orizonpaybr/gateway-api-sub004/pkg/config"
)

type noopSplits struct{}

func (noopSplits) EnqueueAssignment(ctx context.Context, split *domain.SplitInterno) error {
	return nil
}

func (noopSplits) PayoutFee(ctx context.Context, payerID uuid.UUID, feeCents int64, feeType domain.SplitFeeType, referenceID string) error {
	return nil
}

type testEnv struct {
	db     *sql.DB
	users  userrepo.IUserRepository
	ledger ledgerrepo.ILedgerRepository
	svc    withdrawalservice.IWithdrawalService
}

func setupTest(t *testing.T) *testEnv {
	t.Helper()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("db connection: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schema, err := os.ReadFile(filepath.Join("..", "..", "..", "schema.sql"))
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	if _, err := db.Exec(string(schema)); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	if _, err := db.Exec(`TRUNCATE users, solicitacoes, solicitacoes_cash_out,
		ledger_events, pix_infracoes, notifications, splits_internos CASCADE`); err != nil {
		t.Fatalf("reset db: %v", err)
	}

	logger := zerolog.Nop()
	users := userrepo.New(db, logger)
	ledger := ledgerrepo.New(db, logger)
	withdrawals := withdrawalrepo.New(db, logger)
	notifications := notificationrepo.New(db, logger)
	hub := websocket.NewWsHub(logger)

	platform := config.PlatformConfig{
		CashOutFeePercent:    1.0,
		CashOutFeeFixedCents: 100,
		MinWithdrawalCents:   1000,
	}

	svc := withdrawalservice.New(withdrawals, ledger, notifications, noopSplits{}, platform, hub, logger)

	return &testEnv{db: db, users: users, ledger: ledger, svc: svc}
}

func (e *testEnv) seedUser(t *testing.T, permission domain.Permission, balanceCents int64) *domain.User {
	t.Helper()

	user := &domain.User{
		ID:           uuid.New(),
		Username:     fmt.Sprintf("user-%s", uuid.New().String()[:8]),
		Name:         "Test User",
		Email:        fmt.Sprintf("%s@test.local", uuid.New().String()[:8]),
		PasswordHash: "x",
		Permission:   permission,
		RefCode:      uuid.New().String()[:10],
		Status:       "ACTIVE",
	}
	if err := e.users.Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if balanceCents > 0 {
		if _, err := e.ledger.Credit(context.Background(), user.ID, balanceCents); err != nil {
			t.Fatalf("seed balance: %v", err)
		}
		user.BalanceCents = balanceCents
	}
	return user
}

func (e *testEnv) reload(t *testing.T, id uuid.UUID) *domain.User {
	t.Helper()
	user, err := e.users.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	return user
}

func requestInput(amountCents int64) withdrawalservice.RequestInput {
	return withdrawalservice.RequestInput{
		AmountCents:         amountCents,
		BeneficiaryName:     "Fulano de Tal",
		BeneficiaryDocument: "12345678901",
		PixKeyType:          domain.PixKeyCPF,
		PixKey:              "12345678901",
	}
}

func TestRequestReservesBalance(t *testing.T) {
	env := setupTest(t)
	user := env.seedUser(t, domain.PermissionUser, 10000)

	withdrawal, err := env.svc.Request(context.Background(), user, requestInput(5000))
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	if withdrawal.Status != domain.WithdrawalStatusPending {
		t.Fatalf("expected status PENDING, got %s", withdrawal.Status)
	}
	wantFee := int64(150) // 1% of 5000 plus 100 fixed
	if withdrawal.FeeCents != wantFee {
		t.Fatalf("expected fee %d, got %d", wantFee, withdrawal.FeeCents)
	}
	if withdrawal.NetAmountCents != 5000-wantFee {
		t.Fatalf("expected net %d, got %d", 5000-wantFee, withdrawal.NetAmountCents)
	}

	got := env.reload(t, user.ID)
	if got.BalanceCents != 10000 {
		t.Fatalf("balance must not change on request, got %d", got.BalanceCents)
	}
	if got.PendingWithdrawalCents != 5000 {
		t.Fatalf("expected reservation 5000, got %d", got.PendingWithdrawalCents)
	}
}

func TestRequestInsufficientAvailable(t *testing.T) {
	env := setupTest(t)
	user := env.seedUser(t, domain.PermissionUser, 6000)

	if _, err := env.svc.Request(context.Background(), user, requestInput(5000)); err != nil {
		t.Fatalf("first request: %v", err)
	}

	// 1000 still settled but only 1000 available; a second 5000 must fail.
	_, err := env.svc.Request(context.Background(), user, requestInput(5000))
	if !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	got := env.reload(t, user.ID)
	if got.PendingWithdrawalCents != 5000 {
		t.Fatalf("failed request must not reserve, got %d", got.PendingWithdrawalCents)
	}
}

func TestRequestBelowMinimum(t *testing.T) {
	env := setupTest(t)
	user := env.seedUser(t, domain.PermissionUser, 10000)

	_, err := env.svc.Request(context.Background(), user, requestInput(500))
	if !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestApproveDebitsOnce(t *testing.T) {
	env := setupTest(t)
	user := env.seedUser(t, domain.PermissionUser, 10000)
	admin := env.seedUser(t, domain.PermissionAdmin, 0)

	withdrawal, err := env.svc.Request(context.Background(), user, requestInput(5000))
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	approved, err := env.svc.Approve(context.Background(), withdrawal.ID, admin)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != domain.WithdrawalStatusCompleted {
		t.Fatalf("expected status COMPLETED, got %s", approved.Status)
	}
	if approved.ExecutorOrdem != admin.Username {
		t.Fatalf("expected executor %s, got %s", admin.Username, approved.ExecutorOrdem)
	}

	got := env.reload(t, user.ID)
	if got.BalanceCents != 5000 {
		t.Fatalf("expected balance 5000 after approval, got %d", got.BalanceCents)
	}
	if got.PendingWithdrawalCents != 0 {
		t.Fatalf("expected reservation released, got %d", got.PendingWithdrawalCents)
	}

	events, err := env.ledger.ListEvents(context.Background(), user.ID, 10, 0)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	var found bool
	for _, ev := range events {
		if ev.Component == domain.ComponentWithdrawal && ev.DeltaCents == -5000 {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a withdrawal ledger event with delta -5000")
	}

	// Second approval is a replay and must not debit again.
	if _, err := env.svc.Approve(context.Background(), withdrawal.ID, admin); !errors.Is(err, domain.ErrAlreadyProcessed) {
		t.Fatalf("expected ErrAlreadyProcessed, got %v", err)
	}
	got = env.reload(t, user.ID)
	if got.BalanceCents != 5000 {
		t.Fatalf("replayed approval changed balance to %d", got.BalanceCents)
	}
}

func TestApproveRequiresAdmin(t *testing.T) {
	env := setupTest(t)
	user := env.seedUser(t, domain.PermissionUser, 10000)

	withdrawal, err := env.svc.Request(context.Background(), user, requestInput(5000))
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	if _, err := env.svc.Approve(context.Background(), withdrawal.ID, user); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestRejectReleasesReservation(t *testing.T) {
	env := setupTest(t)
	user := env.seedUser(t, domain.PermissionUser, 10000)
	admin := env.seedUser(t, domain.PermissionAdmin, 0)

	withdrawal, err := env.svc.Request(context.Background(), user, requestInput(5000))
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	rejected, err := env.svc.Reject(context.Background(), withdrawal.ID, admin)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != domain.WithdrawalStatusCancelled {
		t.Fatalf("expected status CANCELLED, got %s", rejected.Status)
	}

	got := env.reload(t, user.ID)
	if got.BalanceCents != 10000 {
		t.Fatalf("rejection must not debit, got %d", got.BalanceCents)
	}
	if got.PendingWithdrawalCents != 0 {
		t.Fatalf("expected reservation released, got %d", got.PendingWithdrawalCents)
	}

	// Approving a cancelled withdrawal is a replay.
	if _, err := env.svc.Approve(context.Background(), withdrawal.ID, admin); !errors.Is(err, domain.ErrAlreadyProcessed) {
		t.Fatalf("expected ErrAlreadyProcessed, got %v", err)
	}
}
