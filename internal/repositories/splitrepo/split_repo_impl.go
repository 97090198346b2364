package splitrepo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/orizonpaybr/gateway-api-sub004/internal/domain"
)

type SplitRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func New(db *sql.DB, logger zerolog.Logger) ISplitRepository {
	return &SplitRepository{
		db:     db,
		logger: logger,
	}
}

func (r *SplitRepository) CreateIfAbsent(ctx context.Context, split *domain.SplitInterno) error {
	if split.ID == uuid.Nil {
		split.ID = uuid.New()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO splits_internos (id, payer_id, beneficiary_id, percent,
			fee_type, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (payer_id, beneficiary_id, fee_type) DO NOTHING`,
		split.ID,
		split.PayerID,
		split.BeneficiaryID,
		split.Percent,
		split.FeeType,
	)
	if err != nil {
		r.logger.Error().Err(err).
			Str("payer_id", split.PayerID.String()).
			Str("beneficiary_id", split.BeneficiaryID.String()).
			Msg("Failed to create split")
		return fmt.Errorf("failed to create split: %v", err)
	}
	return nil
}

func (r *SplitRepository) ListByPayer(ctx context.Context, payerID uuid.UUID) ([]*domain.SplitInterno, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, payer_id, beneficiary_id, percent, fee_type, created_at
		FROM splits_internos
		WHERE payer_id = $1
		ORDER BY created_at ASC`,
		payerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list splits: %v", err)
	}
	defer rows.Close()

	var splits []*domain.SplitInterno
	for rows.Next() {
		var s domain.SplitInterno
		if err := rows.Scan(
			&s.ID,
			&s.PayerID,
			&s.BeneficiaryID,
			&s.Percent,
			&s.FeeType,
			&s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan split: %v", err)
		}
		splits = append(splits, &s)
	}
	return splits, rows.Err()
}
