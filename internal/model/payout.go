package model

import (
	"time"

	"github.com/google/uuid"
)

// PayoutRequest is an audit row written every time an account asks for a payout.
// Requests are never settled; staff close them by overriding the balance.
type PayoutRequest struct {
	ID         uuid.UUID `json:"id" db:"id"`
	AccountID  int64     `json:"account_id" db:"account_id"`
	Balance    int64     `json:"balance" db:"balance"`
	Recipients int       `json:"recipients" db:"recipients"`
	Delivered  int       `json:"delivered" db:"delivered"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
