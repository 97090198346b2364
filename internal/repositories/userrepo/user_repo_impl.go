package userrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/orizonpaybr/gateway-api-sub004/internal/domain"
)

const userColumns = `id, username, name, email, phone_number, gender, password_hash,
	permission, balance_cents, pending_withdrawal_cents, manager_id,
	manager_split_percent, affiliate_id, ref_code, twofa_enabled, twofa_secret,
	status, created_at, updated_at`

type UserRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func New(db *sql.DB, logger zerolog.Logger) IUserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, username, name, email, phone_number, gender,
			password_hash, permission, balance_cents, pending_withdrawal_cents,
			manager_id, manager_split_percent, affiliate_id, ref_code,
			twofa_enabled, twofa_secret, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, 0, $9, $10, $11, $12, $13, $14, $15, now(), now())`,
		user.ID,
		user.Username,
		user.Name,
		user.Email,
		user.PhoneNumber,
		user.Gender,
		user.PasswordHash,
		user.Permission,
		nullUUID(user.ManagerID),
		user.ManagerSplitPercent,
		nullUUID(user.AffiliateID),
		user.RefCode,
		user.TwoFAEnabled,
		user.TwoFASecret,
		user.Status,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrUserExists
		}
		r.logger.Error().Err(err).Str("username", user.Username).Msg("Failed to create user")
		return fmt.Errorf("failed to create user: %v", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *UserRepository) GetByLogin(ctx context.Context, login string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1 OR email = $1`, login)
	return scanUser(row)
}

func (r *UserRepository) GetByRefCode(ctx context.Context, refCode string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE ref_code = $1`, refCode)
	return scanUser(row)
}

// LeastLoadedManager picks the manager with the fewest assigned clients.
func (r *UserRepository) LeastLoadedManager(ctx context.Context) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT m.id, m.username, m.name, m.email, m.phone_number, m.gender,
			m.password_hash, m.permission, m.balance_cents,
			m.pending_withdrawal_cents, m.manager_id, m.manager_split_percent,
			m.affiliate_id, m.ref_code, m.twofa_enabled, m.twofa_secret,
			m.status, m.created_at, m.updated_at
		FROM users m
		LEFT JOIN users c ON c.manager_id = m.id
		WHERE m.permission = $1
		GROUP BY m.id
		ORDER BY COUNT(c.id) ASC, m.created_at ASC
		LIMIT 1`, domain.PermissionManager)
	return scanUser(row)
}

func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %v", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return r.db.BeginTx(ctx, nil)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	var gender, refCode, twofaSecret sql.NullString
	var managerID, affiliateID uuid.NullUUID
	var managerSplit sql.NullFloat64

	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Name,
		&u.Email,
		&u.PhoneNumber,
		&gender,
		&u.PasswordHash,
		&u.Permission,
		&u.BalanceCents,
		&u.PendingWithdrawalCents,
		&managerID,
		&managerSplit,
		&affiliateID,
		&refCode,
		&u.TwoFAEnabled,
		&twofaSecret,
		&u.Status,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %v", err)
	}

	u.Gender = gender.String
	u.RefCode = refCode.String
	u.TwoFASecret = twofaSecret.String
	u.ManagerSplitPercent = managerSplit.Float64
	if managerID.Valid {
		id := managerID.UUID
		u.ManagerID = &id
	}
	if affiliateID.Valid {
		id := affiliateID.UUID
		u.AffiliateID = &id
	}
	return &u, nil
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
