package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/refstars/bot/internal/model"
)

var (
	ErrPromoCodeExhausted = errors.New("promo code exhausted or missing")
	ErrPromoCodeRedeemed  = errors.New("promo code already redeemed by account")
	ErrAccountIneligible  = errors.New("account missing or banned")
)

// GetPromoCodeByCode retrieves a promo code by its code string
func (r *Repository) GetPromoCodeByCode(ctx context.Context, code string) (*model.PromoCode, error) {
	var promo model.PromoCode
	err := r.db.GetContext(ctx, &promo, r.db.Rebind(`
		SELECT * FROM promo_codes WHERE code = ?`), code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &promo, nil
}

// HasRedeemedPromoCode checks if an account has already redeemed a specific promo code
func (r *Repository) HasRedeemedPromoCode(ctx context.Context, accountID int64, code string) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count, r.db.Rebind(`
		SELECT COUNT(*) FROM promo_redemptions
		WHERE account_id = ? AND code = ?`), accountID, code)
	return count > 0, err
}

// RedeemPromoCode spends one use of the code, credits its reward to the
// account and records the redemption, all in one transaction. Returns the
// reward and the account's new balance.
func (r *Repository) RedeemPromoCode(ctx context.Context, accountID int64, code string) (reward, balance int64, err error) {
	err = r.inTx(ctx, func(tx *sqlx.Tx) error {
		var redeemed int
		if err := tx.GetContext(ctx, &redeemed, tx.Rebind(`
			SELECT COUNT(*) FROM promo_redemptions
			WHERE account_id = ? AND code = ?`), accountID, code); err != nil {
			return err
		}
		if redeemed > 0 {
			return ErrPromoCodeRedeemed
		}

		err := tx.GetContext(ctx, &reward, tx.Rebind(`
			UPDATE promo_codes SET uses_remaining = uses_remaining - 1, updated_at = CURRENT_TIMESTAMP
			WHERE code = ? AND uses_remaining > 0
			RETURNING reward_amount`), code)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrPromoCodeExhausted
		}
		if err != nil {
			return fmt.Errorf("failed to spend promo code use: %w", err)
		}

		err = tx.GetContext(ctx, &balance, tx.Rebind(`
			UPDATE accounts SET referral_count = referral_count + ?, updated_at = CURRENT_TIMESTAMP
			WHERE id = ? AND is_banned = FALSE
			RETURNING referral_count`), reward, accountID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrAccountIneligible
		}
		if err != nil {
			return fmt.Errorf("failed to credit promo reward: %w", err)
		}

		if _, err := tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO promo_redemptions (account_id, code) VALUES (?, ?)`), accountID, code); err != nil {
			return fmt.Errorf("failed to record promo redemption: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return reward, balance, nil
}

// UpsertPromoCode creates the code or replaces its reward and remaining uses.
// Past redemptions are kept, so accounts that already redeemed it stay refused.
func (r *Repository) UpsertPromoCode(ctx context.Context, promo *model.PromoCode) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO promo_codes (code, reward_amount, uses_remaining, created_by)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (code) DO UPDATE SET
			reward_amount = EXCLUDED.reward_amount,
			uses_remaining = EXCLUDED.uses_remaining,
			created_by = EXCLUDED.created_by,
			updated_at = CURRENT_TIMESTAMP`),
		promo.Code, promo.RewardAmount, promo.UsesRemaining, promo.CreatedBy)
	return err
}

// ListPromoCodes lists all promo codes (for staff use)
func (r *Repository) ListPromoCodes(ctx context.Context) ([]model.PromoCode, error) {
	var promos []model.PromoCode
	err := r.db.SelectContext(ctx, &promos, `
		SELECT * FROM promo_codes
		ORDER BY updated_at DESC, code`)
	return promos, err
}

func (r *Repository) CountActivePromoCodes(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM promo_codes WHERE uses_remaining > 0`)
	return count, err
}
