package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/refstars/bot/internal/model"
)

// CreateStaffAction creates a staff action log entry
func (r *Repository) CreateStaffAction(ctx context.Context, action *model.StaffAction) error {
	if action.ID == uuid.Nil {
		action.ID = uuid.New()
	}
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO staff_actions (id, staff_id, action, target_account_id, details)
		VALUES (?, ?, ?, ?, ?)`),
		action.ID, action.StaffID, action.Action, action.TargetAccountID, action.Details)
	return err
}

// LogStaffAction is a helper to create a staff action log with JSON details
func (r *Repository) LogStaffAction(ctx context.Context, staffID int64, action string, targetAccountID *int64, details interface{}) error {
	var detailsJSON []byte
	if details != nil {
		var err error
		detailsJSON, err = json.Marshal(details)
		if err != nil {
			return err
		}
	}
	return r.CreateStaffAction(ctx, &model.StaffAction{
		StaffID:         staffID,
		Action:          action,
		TargetAccountID: targetAccountID,
		Details:         detailsJSON,
	})
}

// GetStaffActions retrieves staff action logs, newest first
func (r *Repository) GetStaffActions(ctx context.Context, limit int) ([]model.StaffAction, error) {
	var actions []model.StaffAction
	err := r.db.SelectContext(ctx, &actions, r.db.Rebind(`
		SELECT * FROM staff_actions
		ORDER BY created_at DESC
		LIMIT ?`), limit)
	return actions, err
}

// GetStaffActionsByTarget retrieves staff actions taken on one account
func (r *Repository) GetStaffActionsByTarget(ctx context.Context, targetAccountID int64, limit int) ([]model.StaffAction, error) {
	var actions []model.StaffAction
	err := r.db.SelectContext(ctx, &actions, r.db.Rebind(`
		SELECT * FROM staff_actions
		WHERE target_account_id = ?
		ORDER BY created_at DESC
		LIMIT ?`), targetAccountID, limit)
	return actions, err
}
