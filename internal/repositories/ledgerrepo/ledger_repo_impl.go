package ledgerrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/orizonpaybr/gateway-api-sub004/internal/domain"
)

type LedgerRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func New(db *sql.DB, logger zerolog.Logger) ILedgerRepository {
	return &LedgerRepository{
		db:     db,
		logger: logger,
	}
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *LedgerRepository) Credit(ctx context.Context, userID uuid.UUID, amountCents int64) (int64, error) {
	return credit(ctx, r.db, userID, amountCents)
}

func (r *LedgerRepository) CreditTx(ctx context.Context, tx *sql.Tx, userID uuid.UUID, amountCents int64) (int64, error) {
	return credit(ctx, tx, userID, amountCents)
}

func credit(ctx context.Context, q execer, userID uuid.UUID, amountCents int64) (int64, error) {
	var balanceAfter int64
	err := q.QueryRowContext(ctx, `
		UPDATE users
		SET balance_cents = balance_cents + $1, updated_at = now()
		WHERE id = $2
		RETURNING balance_cents`,
		amountCents, userID).Scan(&balanceAfter)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("failed to credit balance: %v", err)
	}
	return balanceAfter, nil
}

// Debit fails without touching the row when the balance cannot cover the
// amount. The condition rides in the UPDATE itself so two concurrent debits
// cannot both pass a stale read.
func (r *LedgerRepository) Debit(ctx context.Context, userID uuid.UUID, amountCents int64) (int64, error) {
	return debit(ctx, r.db, userID, amountCents)
}

func (r *LedgerRepository) DebitTx(ctx context.Context, tx *sql.Tx, userID uuid.UUID, amountCents int64) (int64, error) {
	return debit(ctx, tx, userID, amountCents)
}

func debit(ctx context.Context, q execer, userID uuid.UUID, amountCents int64) (int64, error) {
	var balanceAfter int64
	err := q.QueryRowContext(ctx, `
		UPDATE users
		SET balance_cents = balance_cents - $1, updated_at = now()
		WHERE id = $2 AND balance_cents >= $1
		RETURNING balance_cents`,
		amountCents, userID).Scan(&balanceAfter)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			var exists bool
			if scanErr := q.QueryRowContext(ctx,
				`SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists); scanErr == nil && !exists {
				return 0, domain.ErrNotFound
			}
			return 0, domain.ErrInsufficientBalance
		}
		return 0, fmt.Errorf("failed to debit balance: %v", err)
	}
	return balanceAfter, nil
}

func (r *LedgerRepository) Reserve(ctx context.Context, userID uuid.UUID, amountCents int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET pending_withdrawal_cents = pending_withdrawal_cents + $1, updated_at = now()
		WHERE id = $2 AND balance_cents - pending_withdrawal_cents >= $1`,
		amountCents, userID)
	if err != nil {
		return fmt.Errorf("failed to reserve balance: %v", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to reserve balance: %v", err)
	}
	if n == 0 {
		return domain.ErrInsufficientBalance
	}
	return nil
}

func (r *LedgerRepository) Release(ctx context.Context, userID uuid.UUID, amountCents int64) error {
	return release(ctx, r.db, userID, amountCents)
}

func (r *LedgerRepository) ReleaseTx(ctx context.Context, tx *sql.Tx, userID uuid.UUID, amountCents int64) error {
	return release(ctx, tx, userID, amountCents)
}

func release(ctx context.Context, q execer, userID uuid.UUID, amountCents int64) error {
	// GREATEST keeps the accumulator at zero if a release races a correction.
	_, err := q.ExecContext(ctx, `
		UPDATE users
		SET pending_withdrawal_cents = GREATEST(pending_withdrawal_cents - $1, 0),
			updated_at = now()
		WHERE id = $2`,
		amountCents, userID)
	if err != nil {
		return fmt.Errorf("failed to release reservation: %v", err)
	}
	return nil
}

func (r *LedgerRepository) AppendEvent(ctx context.Context, event *domain.LedgerEvent) error {
	return appendEvent(ctx, r.db, event)
}

func (r *LedgerRepository) AppendEventTx(ctx context.Context, tx *sql.Tx, event *domain.LedgerEvent) error {
	return appendEvent(ctx, tx, event)
}

func appendEvent(ctx context.Context, q execer, event *domain.LedgerEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO ledger_events (id, user_id, component, delta_cents,
			balance_after_cents, reference_id, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())`,
		event.ID,
		event.UserID,
		event.Component,
		event.DeltaCents,
		event.BalanceAfterCents,
		event.ReferenceID,
		event.Description,
	)
	if err != nil {
		return fmt.Errorf("failed to append ledger event: %v", err)
	}
	return nil
}

func (r *LedgerRepository) ListEvents(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.LedgerEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, component, delta_cents, balance_after_cents,
			reference_id, description, created_at
		FROM ledger_events
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger events: %v", err)
	}
	defer rows.Close()

	var events []*domain.LedgerEvent
	for rows.Next() {
		var e domain.LedgerEvent
		var refID, description sql.NullString
		if err := rows.Scan(
			&e.ID,
			&e.UserID,
			&e.Component,
			&e.DeltaCents,
			&e.BalanceAfterCents,
			&refID,
			&description,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan ledger event: %v", err)
		}
		e.ReferenceID = refID.String
		e.Description = description.String
		events = append(events, &e)
	}
	return events, rows.Err()
}

func (r *LedgerRepository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return r.db.BeginTx(ctx, nil)
}
