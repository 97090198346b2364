package depositservice_test

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

	"github.com/orizonpaybr/gateway-api-sub004/internal/application/depositservice"
	"github.com/orizonpaybr/gateway-api-sub004/internal/domain"
	"github.com/orizonpaybr/gateway-api-sub004/internal/repositories/depositrepo"
	"github.com/orizonpaybr/gateway-api-sub004/internal/repositories/infractionrepo"
	"github.com/orizonpaybr/gateway-api-sub004/internal/repositories/ledgerrepo"
	"github.com/orizonpaybr/gateway-api-sub004/internal/repositories/notificationrepo"
	"github.com/orizonpaybr/gateway-api-sub004/internal/repositories/userrepo"
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
	svc    depositservice.IDepositService
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
	deposits := depositrepo.New(db, logger)
	infractions := infractionrepo.New(db, logger)
	notifications := notificationrepo.New(db, logger)
	hub := websocket.NewWsHub(logger)

	platform := config.PlatformConfig{
		CashInFeePercent: 2.5,
		MinDepositCents:  500,
	}

	svc := depositservice.New(deposits, ledger, infractions, notifications, noopSplits{}, platform, hub, logger)

	return &testEnv{db: db, users: users, ledger: ledger, svc: svc}
}

func (e *testEnv) seedUser(t *testing.T) *domain.User {
	t.Helper()

	user := &domain.User{
		ID:           uuid.New(),
		Username:     fmt.Sprintf("user-%s", uuid.New().String()[:8]),
		Name:         "Test User",
		Email:        fmt.Sprintf("%s@test.local", uuid.New().String()[:8]),
		PasswordHash: "x",
		Permission:   domain.PermissionUser,
		RefCode:      uuid.New().String()[:10],
		Status:       "ACTIVE",
	}
	if err := e.users.Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func (e *testEnv) balance(t *testing.T, id uuid.UUID) int64 {
	t.Helper()
	user, err := e.users.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	return user.BalanceCents
}

func settleCallback(deposit *domain.Deposit) *domain.GatewayCallback {
	return &domain.GatewayCallback{
		ExternalRef:   deposit.ExternalRef,
		TransactionID: "E123456789",
		Status:        domain.DepositStatusCompleted,
		AmountCents:   deposit.AmountCents,
		Raw:           []byte(`{"status":"COMPLETED"}`),
	}
}

func TestCreateGeneratesCharge(t *testing.T) {
	env := setupTest(t)
	user := env.seedUser(t)

	deposit, err := env.svc.Create(context.Background(), user, 10000)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if deposit.Status != domain.DepositStatusPending {
		t.Fatalf("expected status PENDING, got %s", deposit.Status)
	}
	if deposit.ExternalRef == "" || deposit.PixPayload == "" {
		t.Fatal("expected external ref and pix payload to be set")
	}
	if deposit.NetAmountCents != 9750 { // 2.5% fee on 10000
		t.Fatalf("expected net 9750, got %d", deposit.NetAmountCents)
	}
	if env.balance(t, user.ID) != 0 {
		t.Fatal("creation must not credit the balance")
	}
}

func TestCreateBelowMinimum(t *testing.T) {
	env := setupTest(t)
	user := env.seedUser(t)

	if _, err := env.svc.Create(context.Background(), user, 100); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestCallbackSettlesOnce(t *testing.T) {
	env := setupTest(t)
	user := env.seedUser(t)

	deposit, err := env.svc.Create(context.Background(), user, 10000)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	settled, err := env.svc.ApplyCallback(context.Background(), settleCallback(deposit))
	if err != nil {
		t.Fatalf("callback: %v", err)
	}
	if settled.Status != domain.DepositStatusCompleted {
		t.Fatalf("expected status COMPLETED, got %s", settled.Status)
	}
	if settled.PaidAt.IsZero() {
		t.Fatal("expected paid_at to be set")
	}
	if got := env.balance(t, user.ID); got != 9750 {
		t.Fatalf("expected balance 9750, got %d", got)
	}

	// Duplicate delivery must not credit twice.
	if _, err := env.svc.ApplyCallback(context.Background(), settleCallback(deposit)); !errors.Is(err, domain.ErrAlreadyProcessed) {
		t.Fatalf("expected ErrAlreadyProcessed, got %v", err)
	}
	if got := env.balance(t, user.ID); got != 9750 {
		t.Fatalf("replayed callback changed balance to %d", got)
	}
}

func TestCallbackWithoutTransactionID(t *testing.T) {
	env := setupTest(t)
	user := env.seedUser(t)

	deposit, err := env.svc.Create(context.Background(), user, 10000)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	cb := settleCallback(deposit)
	cb.TransactionID = ""
	if _, err := env.svc.ApplyCallback(context.Background(), cb); !errors.Is(err, domain.ErrMissingTransaction) {
		t.Fatalf("expected ErrMissingTransaction, got %v", err)
	}
	if got := env.balance(t, user.ID); got != 0 {
		t.Fatalf("rejected settlement credited %d", got)
	}

	// The charge is still pending and a proper settlement goes through.
	if _, err := env.svc.ApplyCallback(context.Background(), settleCallback(deposit)); err != nil {
		t.Fatalf("settle after rejected callback: %v", err)
	}
	if got := env.balance(t, user.ID); got != 9750 {
		t.Fatalf("expected balance 9750, got %d", got)
	}
}

func TestCallbackCancelIsTerminal(t *testing.T) {
	env := setupTest(t)
	user := env.seedUser(t)

	deposit, err := env.svc.Create(context.Background(), user, 10000)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	cb := settleCallback(deposit)
	cb.Status = domain.DepositStatusCancelled
	cancelled, err := env.svc.ApplyCallback(context.Background(), cb)
	if err != nil {
		t.Fatalf("cancel callback: %v", err)
	}
	if cancelled.Status != domain.DepositStatusCancelled {
		t.Fatalf("expected status CANCELLED, got %s", cancelled.Status)
	}
	if got := env.balance(t, user.ID); got != 0 {
		t.Fatalf("cancellation credited %d", got)
	}

	// A settlement arriving after the cancel is a replay.
	if _, err := env.svc.ApplyCallback(context.Background(), settleCallback(deposit)); !errors.Is(err, domain.ErrAlreadyProcessed) {
		t.Fatalf("expected ErrAlreadyProcessed, got %v", err)
	}
}

func TestCallbackAmountMismatchRejected(t *testing.T) {
	env := setupTest(t)
	user := env.seedUser(t)

	deposit, err := env.svc.Create(context.Background(), user, 10000)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	cb := settleCallback(deposit)
	cb.AmountCents = 123
	if _, err := env.svc.ApplyCallback(context.Background(), cb); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if got := env.balance(t, user.ID); got != 0 {
		t.Fatalf("mismatched callback credited %d", got)
	}

	// The charge stays pending; a callback quoting the right amount settles.
	if _, err := env.svc.ApplyCallback(context.Background(), settleCallback(deposit)); err != nil {
		t.Fatalf("settle after mismatch: %v", err)
	}
	if got := env.balance(t, user.ID); got != 9750 {
		t.Fatalf("expected balance 9750, got %d", got)
	}
}

func TestCallbackUnknownCharge(t *testing.T) {
	env := setupTest(t)

	_, err := env.svc.ApplyCallback(context.Background(), &domain.GatewayCallback{
		ExternalRef:   "does-not-exist",
		TransactionID: "E1",
		Status:        domain.DepositStatusCompleted,
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestChargebackClawsBackNet(t *testing.T) {
	env := setupTest(t)
	user := env.seedUser(t)

	deposit, err := env.svc.Create(context.Background(), user, 10000)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := env.svc.ApplyCallback(context.Background(), settleCallback(deposit)); err != nil {
		t.Fatalf("settle: %v", err)
	}

	infraction, err := env.svc.OpenInfraction(context.Background(), user, deposit.ID, domain.DepositStatusChargeback, "fraude")
	if err != nil {
		t.Fatalf("open infraction: %v", err)
	}
	if infraction.AmountCents != 9750 {
		t.Fatalf("expected infraction amount 9750, got %d", infraction.AmountCents)
	}
	if got := env.balance(t, user.ID); got != 0 {
		t.Fatalf("expected balance 0 after chargeback, got %d", got)
	}

	// Chargeback is terminal.
	if _, err := env.svc.OpenInfraction(context.Background(), user, deposit.ID, domain.DepositStatusMediation, ""); !errors.Is(err, domain.ErrAlreadyProcessed) {
		t.Fatalf("expected ErrAlreadyProcessed, got %v", err)
	}
}

func TestChargebackRequiresCoveringBalance(t *testing.T) {
	env := setupTest(t)
	user := env.seedUser(t)

	deposit, err := env.svc.Create(context.Background(), user, 10000)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := env.svc.ApplyCallback(context.Background(), settleCallback(deposit)); err != nil {
		t.Fatalf("settle: %v", err)
	}

	// Spend most of the credited amount so the clawback no longer fits.
	if _, err := env.ledger.Debit(context.Background(), user.ID, 9000); err != nil {
		t.Fatalf("spend: %v", err)
	}

	if _, err := env.svc.OpenInfraction(context.Background(), user, deposit.ID, domain.DepositStatusChargeback, ""); !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if got := env.balance(t, user.ID); got != 750 {
		t.Fatalf("refused chargeback changed balance to %d", got)
	}
}

func TestInfractionHiddenFromOtherUsers(t *testing.T) {
	env := setupTest(t)
	owner := env.seedUser(t)
	other := env.seedUser(t)

	deposit, err := env.svc.Create(context.Background(), owner, 10000)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := env.svc.ApplyCallback(context.Background(), settleCallback(deposit)); err != nil {
		t.Fatalf("settle: %v", err)
	}

	if _, err := env.svc.OpenInfraction(context.Background(), other, deposit.ID, domain.DepositStatusMediation, ""); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for cross-user access, got %v", err)
	}
}

func TestMediationEscalatesToChargeback(t *testing.T) {
	env := setupTest(t)
	user := env.seedUser(t)

	deposit, err := env.svc.Create(context.Background(), user, 10000)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := env.svc.ApplyCallback(context.Background(), settleCallback(deposit)); err != nil {
		t.Fatalf("settle: %v", err)
	}

	if _, err := env.svc.OpenInfraction(context.Background(), user, deposit.ID, domain.DepositStatusMediation, "contestação"); err != nil {
		t.Fatalf("open mediation: %v", err)
	}
	if got := env.balance(t, user.ID); got != 9750 {
		t.Fatalf("mediation must not touch the balance, got %d", got)
	}

	// Escalating the mediation to chargeback claws the net back.
	if _, err := env.svc.OpenInfraction(context.Background(), user, deposit.ID, domain.DepositStatusChargeback, ""); err != nil {
		t.Fatalf("escalate: %v", err)
	}
	if got := env.balance(t, user.ID); got != 0 {
		t.Fatalf("expected balance 0 after escalation, got %d", got)
	}
}
