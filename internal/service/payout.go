package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/refstars/bot/internal/model"
	"github.com/refstars/bot/internal/repository"
)

type PayoutService struct {
	repo      *repository.Repository
	staff     *StaffDirectory
	notifier  Notifier
	threshold int64
	log       *zap.Logger
}

func NewPayoutService(repo *repository.Repository, staff *StaffDirectory, notifier Notifier, threshold int64, log *zap.Logger) *PayoutService {
	return &PayoutService{
		repo:      repo,
		staff:     staff,
		notifier:  notifier,
		threshold: threshold,
		log:       log,
	}
}

type PayoutResult struct {
	Balance    int64
	Recipients int
	Delivered  int
}

// Request re-reads the account and, when it is eligible, notifies every staff
// member. Admins get the ban and zero-balance shortcuts. The balance is left
// untouched; staff settle by overriding it.
func (s *PayoutService) Request(ctx context.Context, accountID int64) (*PayoutResult, error) {
	account, err := s.repo.GetAccount(ctx, accountID)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return nil, ErrAccountNotRegistered
	}
	if err != nil {
		return nil, err
	}
	if account.IsBanned {
		return nil, ErrAccountBanned
	}
	if account.Balance() < s.threshold {
		return nil, ErrInsufficientBalance
	}

	notice := PayoutNotice{
		AccountID:   account.ID,
		DisplayName: account.DisplayName,
		Balance:     account.Balance(),
	}

	result := &PayoutResult{Balance: account.Balance()}
	for _, recipient := range s.staff.Recipients() {
		result.Recipients++
		privileged := recipient.Role == model.StaffRoleAdmin
		if err := s.notifier.NotifyPayoutRequest(ctx, recipient.ID, notice, privileged); err != nil {
			s.log.Warn("failed to deliver payout request",
				zap.Int64("account_id", accountID),
				zap.Int64("staff_id", recipient.ID),
				zap.Error(err))
			continue
		}
		result.Delivered++
	}

	err = s.repo.CreatePayoutRequest(ctx, &model.PayoutRequest{
		AccountID:  accountID,
		Balance:    result.Balance,
		Recipients: result.Recipients,
		Delivered:  result.Delivered,
	})
	if err != nil {
		s.log.Error("failed to record payout request", zap.Int64("account_id", accountID), zap.Error(err))
	}

	s.log.Info("payout requested",
		zap.Int64("account_id", accountID),
		zap.Int64("balance", result.Balance),
		zap.Int("recipients", result.Recipients),
		zap.Int("delivered", result.Delivered))

	return result, nil
}
