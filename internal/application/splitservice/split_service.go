package splitservice

import (
	"context"

	"github.com/google/uuid"

	"github.com/orizonpaybr/gateway-api-sub004/internal/domain"
)

// ISplitService manages revenue-split records and fee payouts.
//
// Split creation at registration time is deliberately asynchronous: the record
// is pushed onto a Redis stream and a consumer-group worker persists it with
// retries until acked. EnqueueAssignment falls back to a synchronous insert
// when Redis is unreachable, and any residual failure is surfaced to the
// caller's log rather than swallowed.
type ISplitService interface {
	EnqueueAssignment(ctx context.Context, split *domain.SplitInterno) error
	PayoutFee(ctx context.Context, payerID uuid.UUID, feeCents int64, feeType domain.SplitFeeType, referenceID string) error
}
