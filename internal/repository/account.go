package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/refstars/bot/internal/model"
)

var ErrAccountNotFound = errors.New("account not found")

func (r *Repository) GetAccount(ctx context.Context, id int64) (*model.Account, error) {
	var account model.Account
	err := r.db.GetContext(ctx, &account, r.db.Rebind("SELECT * FROM accounts WHERE id = ?"), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// RegisterAccount inserts the account unless it already exists and, on a first
// insert, credits the referrer with one referral. Both writes share a
// transaction. A referrer that does not exist is dropped from the new row; a
// banned referrer is kept as the link but not credited. The increment is a
// single UPDATE so concurrent registrations under one referrer never lose a
// credit.
func (r *Repository) RegisterAccount(ctx context.Context, account *model.Account) (created, credited bool, err error) {
	err = r.inTx(ctx, func(tx *sqlx.Tx) error {
		if account.ReferrerID != nil {
			var exists int
			err := tx.GetContext(ctx, &exists, tx.Rebind("SELECT COUNT(*) FROM accounts WHERE id = ?"), *account.ReferrerID)
			if err != nil {
				return err
			}
			if exists == 0 {
				account.ReferrerID = nil
			}
		}

		res, err := tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO accounts (id, referrer_id, display_name, name_key)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (id) DO NOTHING`),
			account.ID, account.ReferrerID, account.DisplayName, account.NameKey)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		created = true

		if account.ReferrerID == nil {
			return nil
		}
		res, err = tx.ExecContext(ctx, tx.Rebind(`
			UPDATE accounts SET referral_count = referral_count + 1, updated_at = CURRENT_TIMESTAMP
			WHERE id = ? AND is_banned = FALSE`), *account.ReferrerID)
		if err != nil {
			return err
		}
		n, err = res.RowsAffected()
		if err != nil {
			return err
		}
		credited = n == 1
		return nil
	})
	if err != nil {
		return false, false, err
	}
	return created, credited, nil
}

// UpdateDisplayName refreshes the cached handle of an existing account.
func (r *Repository) UpdateDisplayName(ctx context.Context, id int64, name, key string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE accounts SET display_name = ?, name_key = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND (display_name <> ? OR name_key <> ?)`),
		name, key, id, name, key)
	return err
}

// FindAccountByName returns the first account whose folded name equals key or
// starts with it. Exact matches win, then the lowest id.
func (r *Repository) FindAccountByName(ctx context.Context, key string) (*model.Account, error) {
	var account model.Account
	err := r.db.GetContext(ctx, &account, r.db.Rebind(`
		SELECT * FROM accounts
		WHERE name_key LIKE ? ESCAPE '\'
		ORDER BY CASE WHEN name_key = ? THEN 0 ELSE 1 END, id
		LIMIT 1`), escapeLike(key)+"%", key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// SetReferralCount overwrites the balance, bypassing crediting rules.
func (r *Repository) SetReferralCount(ctx context.Context, id int64, count int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE accounts SET referral_count = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`), count, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// BanAccount sets the ban flag. It reports false when the account was already banned.
func (r *Repository) BanAccount(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE accounts SET is_banned = TRUE, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND is_banned = FALSE`), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 1 {
		return true, nil
	}
	if _, err := r.GetAccount(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

// TopAccounts lists accounts by referral count, ties broken by id ascending.
func (r *Repository) TopAccounts(ctx context.Context, limit int) ([]model.Account, error) {
	var accounts []model.Account
	err := r.db.SelectContext(ctx, &accounts, r.db.Rebind(`
		SELECT * FROM accounts
		ORDER BY referral_count DESC, id ASC
		LIMIT ?`), limit)
	return accounts, err
}

func (r *Repository) ListAccountIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := r.db.SelectContext(ctx, &ids, "SELECT id FROM accounts ORDER BY id")
	return ids, err
}

func (r *Repository) CountAccounts(ctx context.Context) (*model.AccountStats, error) {
	var stats model.AccountStats
	err := r.db.GetContext(ctx, &stats, `
		SELECT COUNT(*) AS total,
		       COALESCE(SUM(CASE WHEN is_banned THEN 1 ELSE 0 END), 0) AS banned
		FROM accounts`)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
