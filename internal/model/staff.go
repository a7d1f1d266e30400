package model

import (
	"time"

	"github.com/google/uuid"
)

type StaffRole string

const (
	StaffRoleAdmin   StaffRole = "admin"
	StaffRoleManager StaffRole = "manager"
)

type StaffAction struct {
	ID              uuid.UUID `json:"id" db:"id"`
	StaffID         int64     `json:"staff_id" db:"staff_id"`
	Action          string    `json:"action" db:"action"`
	TargetAccountID *int64    `json:"target_account_id,omitempty" db:"target_account_id"`
	Details         []byte    `json:"details,omitempty" db:"details"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// Staff action constants
const (
	StaffActionSetBalance    = "set_balance"
	StaffActionBan           = "ban_account"
	StaffActionCreatePromo   = "create_promo_code"
	StaffActionBroadcast     = "broadcast"
	StaffActionDirectMessage = "direct_message"
)
