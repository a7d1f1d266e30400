package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/refstars/bot/internal/repository"
)

type PromoCodeService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewPromoCodeService(repo *repository.Repository, log *zap.Logger) *PromoCodeService {
	return &PromoCodeService{repo: repo, log: log}
}

type RedeemResult struct {
	Code    string
	Reward  int64
	Balance int64
}

// NormalizePromoCode trims and upper-cases a code as typed by a user or staff.
func NormalizePromoCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Redeem applies a promo code to a registered, non-banned account. Each
// account may redeem a given code once.
func (s *PromoCodeService) Redeem(ctx context.Context, accountID int64, code string) (*RedeemResult, error) {
	code = NormalizePromoCode(code)
	if code == "" {
		return nil, Usage("/code <КОД>")
	}

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

	used, err := s.repo.HasRedeemedPromoCode(ctx, accountID, code)
	if err != nil {
		return nil, err
	}
	if used {
		return nil, ErrPromoCodeAlreadyUsed
	}

	promo, err := s.repo.GetPromoCodeByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if promo == nil {
		return nil, ErrPromoCodeNotFound
	}
	if promo.IsExhausted() {
		return nil, ErrPromoCodeExhausted
	}

	reward, balance, err := s.repo.RedeemPromoCode(ctx, accountID, code)
	switch {
	case errors.Is(err, repository.ErrPromoCodeRedeemed):
		return nil, ErrPromoCodeAlreadyUsed
	case errors.Is(err, repository.ErrPromoCodeExhausted):
		return nil, ErrPromoCodeExhausted
	case errors.Is(err, repository.ErrAccountIneligible):
		return nil, ErrAccountBanned
	case err != nil:
		return nil, err
	}

	s.log.Info("promo code redeemed",
		zap.Int64("account_id", accountID),
		zap.String("code", code),
		zap.Int64("reward", reward),
		zap.Int64("balance", balance))

	return &RedeemResult{Code: code, Reward: reward, Balance: balance}, nil
}
