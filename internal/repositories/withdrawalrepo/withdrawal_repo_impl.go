package withdrawalrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/orizonpaybr/gateway-api-sub004/internal/domain"
)

const withdrawalColumns = `id, user_id, amount_cents, fee_cents, net_amount_cents,
	beneficiary_name, beneficiary_document, pix_key_type, pix_key, status,
	executor_ordem, processed_at, created_at, updated_at`

type WithdrawalRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func New(db *sql.DB, logger zerolog.Logger) IWithdrawalRepository {
	return &WithdrawalRepository{
		db:     db,
		logger: logger,
	}
}

func (r *WithdrawalRepository) Create(ctx context.Context, withdrawal *domain.Withdrawal) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO solicitacoes_cash_out (id, user_id, amount_cents, fee_cents,
			net_amount_cents, beneficiary_name, beneficiary_document,
			pix_key_type, pix_key, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now())`,
		withdrawal.ID,
		withdrawal.UserID,
		withdrawal.AmountCents,
		withdrawal.FeeCents,
		withdrawal.NetAmountCents,
		withdrawal.BeneficiaryName,
		withdrawal.BeneficiaryDocument,
		withdrawal.PixKeyType,
		withdrawal.PixKey,
		withdrawal.Status,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", withdrawal.UserID.String()).Msg("Failed to create withdrawal")
		return fmt.Errorf("failed to create withdrawal: %v", err)
	}
	return nil
}

func (r *WithdrawalRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Withdrawal, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+withdrawalColumns+` FROM solicitacoes_cash_out WHERE id = $1`, id)
	return scanWithdrawal(row)
}

// GetByIDTx locks the withdrawal row so a concurrent approve and reject on
// the same id serialize; the loser sees the terminal status.
func (r *WithdrawalRepository) GetByIDTx(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Withdrawal, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+withdrawalColumns+` FROM solicitacoes_cash_out WHERE id = $1 FOR UPDATE`, id)
	return scanWithdrawal(row)
}

func (r *WithdrawalRepository) UpdateStatusTx(ctx context.Context, tx *sql.Tx, withdrawal *domain.Withdrawal) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE solicitacoes_cash_out
		SET status = $1, executor_ordem = NULLIF($2, ''), processed_at = $3, updated_at = now()
		WHERE id = $4`,
		withdrawal.Status,
		withdrawal.ExecutorOrdem,
		nullTime(withdrawal.ProcessedAt),
		withdrawal.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update withdrawal: %v", err)
	}
	return nil
}

func (r *WithdrawalRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Withdrawal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+withdrawalColumns+` FROM solicitacoes_cash_out
		WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list withdrawals: %v", err)
	}
	defer rows.Close()
	return collectWithdrawals(rows)
}

func (r *WithdrawalRepository) List(ctx context.Context, status domain.WithdrawalStatus, limit, offset int) ([]*domain.Withdrawal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+withdrawalColumns+` FROM solicitacoes_cash_out
		WHERE ($1 = '' OR status = $1) ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		string(status), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list withdrawals: %v", err)
	}
	defer rows.Close()
	return collectWithdrawals(rows)
}

func (r *WithdrawalRepository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return r.db.BeginTx(ctx, nil)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWithdrawal(row rowScanner) (*domain.Withdrawal, error) {
	var w domain.Withdrawal
	var executor sql.NullString
	var processedAt sql.NullTime

	err := row.Scan(
		&w.ID,
		&w.UserID,
		&w.AmountCents,
		&w.FeeCents,
		&w.NetAmountCents,
		&w.BeneficiaryName,
		&w.BeneficiaryDocument,
		&w.PixKeyType,
		&w.PixKey,
		&w.Status,
		&executor,
		&processedAt,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan withdrawal: %v", err)
	}

	w.ExecutorOrdem = executor.String
	if processedAt.Valid {
		w.ProcessedAt = processedAt.Time
	}
	return &w, nil
}

func collectWithdrawals(rows *sql.Rows) ([]*domain.Withdrawal, error) {
	var withdrawals []*domain.Withdrawal
	for rows.Next() {
		w, err := scanWithdrawal(rows)
		if err != nil {
			return nil, err
		}
		withdrawals = append(withdrawals, w)
	}
	return withdrawals, rows.Err()
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
