package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/refstars/bot/internal/model"
)

func (r *Repository) CreatePayoutRequest(ctx context.Context, req *model.PayoutRequest) error {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO payout_requests (id, account_id, balance, recipients, delivered)
		VALUES (?, ?, ?, ?, ?)`),
		req.ID, req.AccountID, req.Balance, req.Recipients, req.Delivered)
	return err
}

func (r *Repository) CountPayoutRequests(ctx context.Context, accountID int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, r.db.Rebind(`
		SELECT COUNT(*) FROM payout_requests WHERE account_id = ?`), accountID)
	return count, err
}
