package infractionrepo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/orizonpaybr/gateway-api-sub004/internal/domain"
)

type InfractionRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func New(db *sql.DB, logger zerolog.Logger) IInfractionRepository {
	return &InfractionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *InfractionRepository) Create(ctx context.Context, infraction *domain.Infraction) error {
	var depositID uuid.NullUUID
	if infraction.DepositID != nil {
		depositID = uuid.NullUUID{UUID: *infraction.DepositID, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pix_infracoes (id, user_id, deposit_id, kind, reason,
			amount_cents, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())`,
		infraction.ID,
		infraction.UserID,
		depositID,
		infraction.Kind,
		infraction.Reason,
		infraction.AmountCents,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", infraction.UserID.String()).Msg("Failed to create infraction")
		return fmt.Errorf("failed to create infraction: %v", err)
	}
	return nil
}

func (r *InfractionRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Infraction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, deposit_id, kind, reason, amount_cents, created_at
		FROM pix_infracoes
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list infractions: %v", err)
	}
	defer rows.Close()

	var infractions []*domain.Infraction
	for rows.Next() {
		var inf domain.Infraction
		var depositID uuid.NullUUID
		var reason sql.NullString
		if err := rows.Scan(
			&inf.ID,
			&inf.UserID,
			&depositID,
			&inf.Kind,
			&reason,
			&inf.AmountCents,
			&inf.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan infraction: %v", err)
		}
		if depositID.Valid {
			id := depositID.UUID
			inf.DepositID = &id
		}
		inf.Reason = reason.String
		infractions = append(infractions, &inf)
	}
	return infractions, rows.Err()
}
