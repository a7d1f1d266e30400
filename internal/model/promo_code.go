package model

import (
	"time"
)

type PromoCode struct {
	Code          string    `json:"code" db:"code"`
	RewardAmount  int64     `json:"reward_amount" db:"reward_amount"`
	UsesRemaining int64     `json:"uses_remaining" db:"uses_remaining"`
	CreatedBy     *int64    `json:"created_by,omitempty" db:"created_by"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

type PromoRedemption struct {
	AccountID  int64     `json:"account_id" db:"account_id"`
	Code       string    `json:"code" db:"code"`
	RedeemedAt time.Time `json:"redeemed_at" db:"redeemed_at"`
}

// IsExhausted reports whether the code has no uses left. Exhausted codes stay
// in the ledger until staff reissue them.
func (p *PromoCode) IsExhausted() bool {
	return p.UsesRemaining <= 0
}
