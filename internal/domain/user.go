package domain

import (
	"time"

	"github.com/google/uuid"
)

type Permission int

const (
	PermissionUser      Permission = 1
	PermissionAffiliate Permission = 2
	PermissionAdmin     Permission = 3
	PermissionManager   Permission = 4
)

type User struct {
	ID                     uuid.UUID  `json:"id"`
	Username               string     `json:"username"`
	Name                   string     `json:"name"`
	Email                  string     `json:"email"`
	PhoneNumber            string     `json:"phone_number"`
	Gender                 string     `json:"gender,omitempty"`
	PasswordHash           string     `json:"-"`
	Permission             Permission `json:"permission"`
	BalanceCents           int64      `json:"balance_cents"`
	PendingWithdrawalCents int64      `json:"pending_withdrawal_cents"`
	ManagerID              *uuid.UUID `json:"manager_id,omitempty"`
	ManagerSplitPercent    float64    `json:"manager_split_percent,omitempty"`
	AffiliateID            *uuid.UUID `json:"affiliate_id,omitempty"`
	RefCode                string     `json:"ref_code,omitempty"`
	TwoFAEnabled           bool       `json:"twofa_enabled"`
	TwoFASecret            string     `json:"-"`
	Status                 string     `json:"status"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Permission == PermissionAdmin
}

func (u *User) IsManager() bool {
	return u.Permission == PermissionManager
}

// AvailableCents is the balance a new withdrawal may draw on: the settled
// balance minus what is already reserved by pending withdrawals.
func (u *User) AvailableCents() int64 {
	return u.BalanceCents - u.PendingWithdrawalCents
}
