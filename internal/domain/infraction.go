package domain

import (
	"time"

	"github.com/google/uuid"
)

// Infraction is a PIX dispute case (mediation, chargeback or dispute) linked
// optionally to a deposit. Visible only to its owner.
type Infraction struct {
	ID          uuid.UUID     `json:"id"`
	UserID      uuid.UUID     `json:"user_id"`
	DepositID   *uuid.UUID    `json:"deposit_id,omitempty"`
	Kind        DepositStatus `json:"kind"`
	Reason      string        `json:"reason,omitempty"`
	AmountCents int64         `json:"amount_cents"`
	CreatedAt   time.Time     `json:"created_at"`
}
