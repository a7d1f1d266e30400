package model

import (
	"time"
)

type Account struct {
	ID            int64     `json:"id" db:"id"`
	ReferrerID    *int64    `json:"referrer_id,omitempty" db:"referrer_id"`
	ReferralCount int64     `json:"referral_count" db:"referral_count"`
	DisplayName   string    `json:"display_name" db:"display_name"`
	NameKey       string    `json:"-" db:"name_key"`
	IsBanned      bool      `json:"is_banned" db:"is_banned"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// AccountState is derived from stored fields, never persisted.
type AccountState string

const (
	AccountStateUnseen     AccountState = "unseen"
	AccountStateGated      AccountState = "gated"
	AccountStateRegistered AccountState = "registered"
	AccountStateBanned     AccountState = "banned"
)

// StateOf derives the state of a stored account. Ban takes precedence over
// registration; a nil account has not been seen yet. GATED is never derived
// here because it only exists while a gate check is failing.
func StateOf(a *Account) AccountState {
	switch {
	case a == nil:
		return AccountStateUnseen
	case a.IsBanned:
		return AccountStateBanned
	default:
		return AccountStateRegistered
	}
}

// Balance is the referral count expressed in payout units (1 star each).
func (a *Account) Balance() int64 {
	return a.ReferralCount
}

type AccountStats struct {
	Total  int `json:"total" db:"total"`
	Banned int `json:"banned" db:"banned"`
}
