package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"

	"github.com/refstars/bot/internal/model"
	"github.com/refstars/bot/internal/repository"
)

type ReferralService struct {
	repo     *repository.Repository
	gate     *SubscriptionGate
	notifier Notifier
	log      *zap.Logger
}

func NewReferralService(repo *repository.Repository, gate *SubscriptionGate, notifier Notifier, log *zap.Logger) *ReferralService {
	return &ReferralService{
		repo:     repo,
		gate:     gate,
		notifier: notifier,
		log:      log,
	}
}

type StartRequest struct {
	AccountID     int64
	DisplayName   string
	ReferralToken string
}

type StartResult struct {
	State    model.AccountState
	Account  *model.Account
	Created  bool
	Credited bool
	// PendingReferrer is the referrer captured from the token while the
	// account is still gated. The confirm action carries it back into Start.
	PendingReferrer *int64
}

// Start runs first contact and every later /start: ban check, then the
// subscription gate, then idempotent registration with referrer crediting.
func (s *ReferralService) Start(ctx context.Context, req StartRequest) (*StartResult, error) {
	existing, err := s.repo.GetAccount(ctx, req.AccountID)
	if err != nil && !errors.Is(err, repository.ErrAccountNotFound) {
		return nil, err
	}
	if existing != nil && existing.IsBanned {
		return nil, ErrAccountBanned
	}

	var referrerID *int64
	if existing == nil {
		referrerID = ParseReferralToken(req.ReferralToken, req.AccountID)
	}

	if !s.gate.IsMember(ctx, req.AccountID) {
		return &StartResult{
			State:           model.AccountStateGated,
			Account:         existing,
			PendingReferrer: referrerID,
		}, nil
	}

	account := &model.Account{
		ID:          req.AccountID,
		ReferrerID:  referrerID,
		DisplayName: req.DisplayName,
		NameKey:     NameKey(req.DisplayName),
	}
	created, credited, err := s.repo.RegisterAccount(ctx, account)
	if err != nil {
		return nil, err
	}

	if created {
		s.log.Info("account registered",
			zap.Int64("account_id", req.AccountID),
			zap.Int64p("referrer_id", account.ReferrerID),
			zap.Bool("credited", credited))
	} else if existing != nil && existing.DisplayName != req.DisplayName && req.DisplayName != "" {
		if err := s.repo.UpdateDisplayName(ctx, req.AccountID, req.DisplayName, account.NameKey); err != nil {
			s.log.Warn("failed to refresh display name", zap.Int64("account_id", req.AccountID), zap.Error(err))
		}
	}

	if credited {
		s.notifyReferrer(ctx, *account.ReferrerID, req.DisplayName)
	}

	current, err := s.repo.GetAccount(ctx, req.AccountID)
	if err != nil {
		return nil, err
	}

	return &StartResult{
		State:    model.StateOf(current),
		Account:  current,
		Created:  created,
		Credited: credited,
	}, nil
}

func (s *ReferralService) notifyReferrer(ctx context.Context, referrerID int64, refereeName string) {
	referrer, err := s.repo.GetAccount(ctx, referrerID)
	if err != nil {
		s.log.Warn("failed to load referrer for notification", zap.Int64("referrer_id", referrerID), zap.Error(err))
		return
	}
	if err := s.notifier.NotifyReferralCredited(ctx, referrerID, refereeName, referrer.ReferralCount); err != nil {
		s.log.Warn("failed to notify referrer", zap.Int64("referrer_id", referrerID), zap.Error(err))
	}
}

// Profile returns the current account snapshot for the profile view.
func (s *ReferralService) Profile(ctx context.Context, accountID int64) (*model.Account, error) {
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
	return account, nil
}

func (s *ReferralService) ReferralLink(botUsername string, accountID int64) string {
	return ReferralLink(botUsername, accountID)
}

// ReferralLink builds the deep link whose start payload is the referrer id.
func ReferralLink(botUsername string, accountID int64) string {
	return "https://t.me/" + botUsername + "?start=" + strconv.FormatInt(accountID, 10)
}

// ParseReferralToken extracts a referrer id from a start payload. Malformed,
// non-positive and self-referencing tokens yield nil.
func ParseReferralToken(token string, self int64) *int64 {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	id, err := strconv.ParseInt(token, 10, 64)
	if err != nil || id <= 0 || id == self {
		return nil
	}
	return &id
}

// NameKey folds a handle for case-insensitive lookup. A leading @ is dropped.
func NameKey(name string) string {
	name = strings.TrimPrefix(strings.TrimSpace(name), "@")
	return cases.Fold().String(name)
}
