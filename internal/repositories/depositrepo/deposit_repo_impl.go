package depositrepo

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

const depositColumns = `id, user_id, amount_cents, net_amount_cents, status,
	external_ref, transaction_id, pix_payload, callback_payload, paid_at,
	created_at, updated_at`

type DepositRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func New(db *sql.DB, logger zerolog.Logger) IDepositRepository {
	return &DepositRepository{
		db:     db,
		logger: logger,
	}
}

func (r *DepositRepository) Create(ctx context.Context, deposit *domain.Deposit) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO solicitacoes (id, user_id, amount_cents, net_amount_cents,
			status, external_ref, transaction_id, pix_payload, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, now(), now())`,
		deposit.ID,
		deposit.UserID,
		deposit.AmountCents,
		deposit.NetAmountCents,
		deposit.Status,
		deposit.ExternalRef,
		deposit.TransactionID,
		deposit.PixPayload,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("external_ref", deposit.ExternalRef).Msg("Failed to create deposit")
		return fmt.Errorf("failed to create deposit: %v", err)
	}
	return nil
}

func (r *DepositRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Deposit, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+depositColumns+` FROM solicitacoes WHERE id = $1`, id)
	return scanDeposit(row)
}

func (r *DepositRepository) GetByIDTx(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Deposit, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+depositColumns+` FROM solicitacoes WHERE id = $1 FOR UPDATE`, id)
	return scanDeposit(row)
}

// GetByExternalRefTx locks the deposit row for the duration of the callback
// transaction so duplicate gateway deliveries serialize.
func (r *DepositRepository) GetByExternalRefTx(ctx context.Context, tx *sql.Tx, externalRef string) (*domain.Deposit, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+depositColumns+` FROM solicitacoes WHERE external_ref = $1 FOR UPDATE`, externalRef)
	return scanDeposit(row)
}

func (r *DepositRepository) UpdateStatusTx(ctx context.Context, tx *sql.Tx, deposit *domain.Deposit) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE solicitacoes
		SET status = $1,
			transaction_id = NULLIF($2, ''),
			callback_payload = $3,
			paid_at = $4,
			updated_at = now()
		WHERE id = $5`,
		deposit.Status,
		deposit.TransactionID,
		deposit.CallbackPayload,
		nullTime(deposit.PaidAt),
		deposit.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update deposit: %v", err)
	}
	return nil
}

func (r *DepositRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Deposit, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+depositColumns+` FROM solicitacoes
		WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list deposits: %v", err)
	}
	defer rows.Close()
	return collectDeposits(rows)
}

func (r *DepositRepository) List(ctx context.Context, status domain.DepositStatus, limit, offset int) ([]*domain.Deposit, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+depositColumns+` FROM solicitacoes
		WHERE ($1 = '' OR status = $1) ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		string(status), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list deposits: %v", err)
	}
	defer rows.Close()
	return collectDeposits(rows)
}

func (r *DepositRepository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return r.db.BeginTx(ctx, nil)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDeposit(row rowScanner) (*domain.Deposit, error) {
	var d domain.Deposit
	var transactionID, pixPayload sql.NullString
	var paidAt sql.NullTime

	err := row.Scan(
		&d.ID,
		&d.UserID,
		&d.AmountCents,
		&d.NetAmountCents,
		&d.Status,
		&d.ExternalRef,
		&transactionID,
		&pixPayload,
		&d.CallbackPayload,
		&paidAt,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan deposit: %v", err)
	}

	d.TransactionID = transactionID.String
	d.PixPayload = pixPayload.String
	if paidAt.Valid {
		d.PaidAt = paidAt.Time
	}
	return &d, nil
}

func collectDeposits(rows *sql.Rows) ([]*domain.Deposit, error) {
	var deposits []*domain.Deposit
	for rows.Next() {
		d, err := scanDeposit(rows)
		if err != nil {
			return nil, err
		}
		deposits = append(deposits, d)
	}
	return deposits, rows.Err()
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
