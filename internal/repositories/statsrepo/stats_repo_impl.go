package statsrepo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
)

type StatsRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func New(db *sql.DB, logger zerolog.Logger) IStatsRepository {
	return &StatsRepository{
		db:     db,
		logger: logger,
	}
}

func (r *StatsRepository) Dashboard(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	err := r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COALESCE(SUM(net_amount_cents), 0) FROM solicitacoes WHERE status = 'COMPLETED'),
			(SELECT COALESCE(SUM(amount_cents), 0) FROM solicitacoes_cash_out WHERE status = 'COMPLETED'),
			(SELECT COUNT(*) FROM solicitacoes_cash_out WHERE status = 'PENDING'),
			(SELECT COALESCE(SUM(amount_cents), 0) FROM solicitacoes_cash_out WHERE status = 'PENDING'),
			(SELECT COUNT(*) FROM pix_infracoes)`,
	).Scan(
		&stats.TotalUsers,
		&stats.TotalDepositedCents,
		&stats.TotalWithdrawnCents,
		&stats.PendingWithdrawals,
		&stats.PendingWithdrawalsCents,
		&stats.OpenInfractions,
	)
	if err != nil {
		r.logger.Error().Err(err).Msg("Failed to load dashboard stats")
		return nil, fmt.Errorf("failed to load dashboard stats: %v", err)
	}
	return &stats, nil
}
