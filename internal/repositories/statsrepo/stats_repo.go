package statsrepo

import "context"

// DashboardStats is the aggregate view behind the admin dashboard.
type DashboardStats struct {
	TotalUsers              int64 `json:"total_users"`
	TotalDepositedCents     int64 `json:"total_deposited_cents"`
	TotalWithdrawnCents     int64 `json:"total_withdrawn_cents"`
	PendingWithdrawals      int64 `json:"pending_withdrawals"`
	PendingWithdrawalsCents int64 `json:"pending_withdrawals_cents"`
	OpenInfractions         int64 `json:"open_infractions"`
}

type IStatsRepository interface {
	Dashboard(ctx context.Context) (*DashboardStats, error)
}
