package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/refstars/bot/internal/config"
	"github.com/refstars/bot/internal/model"
	"github.com/refstars/bot/internal/repository"
)

const (
	DefaultTopLimit = 10
	MaxTopLimit     = 50
	checkHistory    = 5

	// MaxAmount bounds balances, rewards and use counts set by staff so that
	// later increments stay far from int64 overflow.
	MaxAmount = 1_000_000_000
)

type StaffRecipient struct {
	ID   int64
	Role model.StaffRole
}

// StaffDirectory holds the two disjoint staff sets loaded from config.
type StaffDirectory struct {
	roles      map[int64]model.StaffRole
	recipients []StaffRecipient
}

func NewStaffDirectory(cfg config.StaffConfig) *StaffDirectory {
	d := &StaffDirectory{roles: make(map[int64]model.StaffRole)}
	for _, id := range cfg.AdminIDs {
		d.add(id, model.StaffRoleAdmin)
	}
	for _, id := range cfg.ManagerIDs {
		d.add(id, model.StaffRoleManager)
	}
	return d
}

func (d *StaffDirectory) add(id int64, role model.StaffRole) {
	if _, ok := d.roles[id]; ok {
		return
	}
	d.roles[id] = role
	d.recipients = append(d.recipients, StaffRecipient{ID: id, Role: role})
}

func (d *StaffDirectory) Role(id int64) (model.StaffRole, bool) {
	role, ok := d.roles[id]
	return role, ok
}

func (d *StaffDirectory) IsStaff(id int64) bool {
	_, ok := d.roles[id]
	return ok
}

func (d *StaffDirectory) IsAdmin(id int64) bool {
	return d.roles[id] == model.StaffRoleAdmin
}

// Recipients lists admins first, then managers, in config order.
func (d *StaffDirectory) Recipients() []StaffRecipient {
	out := make([]StaffRecipient, len(d.recipients))
	copy(out, d.recipients)
	return out
}

type StaffService struct {
	repo        *repository.Repository
	directory   *StaffDirectory
	notifier    Notifier
	broadcaster *Broadcaster
	log         *zap.Logger
}

func NewStaffService(repo *repository.Repository, directory *StaffDirectory, notifier Notifier, broadcaster *Broadcaster, log *zap.Logger) *StaffService {
	return &StaffService{
		repo:        repo,
		directory:   directory,
		notifier:    notifier,
		broadcaster: broadcaster,
		log:         log,
	}
}

func (s *StaffService) Role(callerID int64) (model.StaffRole, error) {
	role, ok := s.directory.Role(callerID)
	if !ok {
		return "", ErrNotStaff
	}
	return role, nil
}

func (s *StaffService) requireStaff(callerID int64) error {
	_, err := s.Role(callerID)
	return err
}

func (s *StaffService) requireAdmin(callerID int64) error {
	role, err := s.Role(callerID)
	if err != nil {
		return err
	}
	if role != model.StaffRoleAdmin {
		return ErrNotAdmin
	}
	return nil
}

type AccountReport struct {
	Account        *model.Account
	PayoutRequests int
	RecentActions  []model.StaffAction
}

// Check looks an account up by id. Banned accounts are reported like any other.
func (s *StaffService) Check(ctx context.Context, callerID, accountID int64) (*AccountReport, error) {
	if err := s.requireStaff(callerID); err != nil {
		return nil, err
	}
	account, err := s.getAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return s.report(ctx, account)
}

// Search resolves a display name. Exact matches beat prefix matches and the
// lowest id wins among equals.
func (s *StaffService) Search(ctx context.Context, callerID int64, name string) (*AccountReport, error) {
	if err := s.requireStaff(callerID); err != nil {
		return nil, err
	}
	key := NameKey(name)
	if key == "" {
		return nil, Usage("/search <имя>")
	}
	account, err := s.repo.FindAccountByName(ctx, key)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.report(ctx, account)
}

func (s *StaffService) report(ctx context.Context, account *model.Account) (*AccountReport, error) {
	requests, err := s.repo.CountPayoutRequests(ctx, account.ID)
	if err != nil {
		return nil, err
	}
	actions, err := s.repo.GetStaffActionsByTarget(ctx, account.ID, checkHistory)
	if err != nil {
		return nil, err
	}
	return &AccountReport{
		Account:        account,
		PayoutRequests: requests,
		RecentActions:  actions,
	}, nil
}

// ResolveTarget accepts either a numeric account id or a display name.
func (s *StaffService) ResolveTarget(ctx context.Context, target string) (*model.Account, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, ErrAccountNotFound
	}
	if id, err := strconv.ParseInt(target, 10, 64); err == nil {
		return s.getAccount(ctx, id)
	}
	account, err := s.repo.FindAccountByName(ctx, NameKey(target))
	if errors.Is(err, repository.ErrAccountNotFound) {
		return nil, ErrAccountNotFound
	}
	return account, err
}

type DirectMessageResult struct {
	Account   *model.Account
	Delivered bool
}

// DirectMessage relays text from staff to one account. A failed delivery is
// reported back, not returned as an error.
func (s *StaffService) DirectMessage(ctx context.Context, callerID int64, target, text string) (*DirectMessageResult, error) {
	if err := s.requireStaff(callerID); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, Usage("/pm <id|имя> <текст>")
	}
	account, err := s.ResolveTarget(ctx, target)
	if err != nil {
		return nil, err
	}

	result := &DirectMessageResult{Account: account}
	if err := s.notifier.SendText(ctx, account.ID, text); err != nil {
		s.log.Warn("direct message not delivered",
			zap.Int64("staff_id", callerID), zap.Int64("account_id", account.ID), zap.Error(err))
	} else {
		result.Delivered = true
	}

	s.logAction(ctx, callerID, model.StaffActionDirectMessage, &account.ID, map[string]interface{}{
		"text":      text,
		"delivered": result.Delivered,
	})
	return result, nil
}

func (s *StaffService) Top(ctx context.Context, callerID int64, limit int) ([]model.Account, error) {
	if err := s.requireStaff(callerID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultTopLimit
	}
	if limit > MaxTopLimit {
		limit = MaxTopLimit
	}
	return s.repo.TopAccounts(ctx, limit)
}

// SetBalance overwrites the referral count. Admin only.
func (s *StaffService) SetBalance(ctx context.Context, callerID, accountID, amount int64) (*model.Account, error) {
	if err := s.requireAdmin(callerID); err != nil {
		return nil, err
	}
	if amount < 0 || amount > MaxAmount {
		return nil, Usage("/set <id> <число от 0 до 1000000000>")
	}

	before, err := s.getAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	err = s.repo.SetReferralCount(ctx, accountID, amount)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}

	s.logAction(ctx, callerID, model.StaffActionSetBalance, &accountID, map[string]interface{}{
		"old_balance": before.ReferralCount,
		"new_balance": amount,
	})

	before.ReferralCount = amount
	return before, nil
}

// Ban flags the account. Credits already earned by or through it stay.
func (s *StaffService) Ban(ctx context.Context, callerID, accountID int64) error {
	if err := s.requireAdmin(callerID); err != nil {
		return err
	}
	banned, err := s.repo.BanAccount(ctx, accountID)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return ErrAccountNotFound
	}
	if err != nil {
		return err
	}
	if !banned {
		return ErrAlreadyBanned
	}

	s.logAction(ctx, callerID, model.StaffActionBan, &accountID, nil)
	return nil
}

// AddPromoCode creates or replaces a code. Replacing resets both the reward
// and the remaining uses; past redemptions are kept.
func (s *StaffService) AddPromoCode(ctx context.Context, callerID int64, code string, reward, uses int64) (*model.PromoCode, error) {
	if err := s.requireAdmin(callerID); err != nil {
		return nil, err
	}
	code = NormalizePromoCode(code)
	if code == "" || reward <= 0 || uses < 0 || reward > MaxAmount || uses > MaxAmount {
		return nil, Usage("/add_promo <КОД> <награда 1..1000000000> <активаций 0..1000000000>")
	}

	promo := &model.PromoCode{
		Code:          code,
		RewardAmount:  reward,
		UsesRemaining: uses,
		CreatedBy:     &callerID,
	}
	if err := s.repo.UpsertPromoCode(ctx, promo); err != nil {
		return nil, err
	}

	s.logAction(ctx, callerID, model.StaffActionCreatePromo, nil, map[string]interface{}{
		"code":   code,
		"reward": reward,
		"uses":   uses,
	})
	return promo, nil
}

// Broadcast sends msg to every known account and blocks until done. Callers
// on the update path run it in a goroutine.
func (s *StaffService) Broadcast(ctx context.Context, callerID int64, msg BroadcastMessage) (*BroadcastReport, error) {
	if err := s.requireAdmin(callerID); err != nil {
		return nil, err
	}
	if msg.IsEmpty() {
		return nil, Usage("/send <текст> или ответом на фото")
	}

	report, err := s.broadcaster.Run(ctx, msg)
	if report != nil {
		// A broadcast cut short by shutdown still records how far it got.
		s.logAction(context.WithoutCancel(ctx), callerID, model.StaffActionBroadcast, nil, report)
	}
	return report, err
}

type Stats struct {
	Accounts         model.AccountStats
	ActivePromoCodes int
	PromoCodes       []model.PromoCode
}

func (s *StaffService) Stats(ctx context.Context, callerID int64) (*Stats, error) {
	if err := s.requireStaff(callerID); err != nil {
		return nil, err
	}
	accounts, err := s.repo.CountAccounts(ctx)
	if err != nil {
		return nil, err
	}
	active, err := s.repo.CountActivePromoCodes(ctx)
	if err != nil {
		return nil, err
	}
	codes, err := s.repo.ListPromoCodes(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{
		Accounts:         *accounts,
		ActivePromoCodes: active,
		PromoCodes:       codes,
	}, nil
}

func (s *StaffService) getAccount(ctx context.Context, id int64) (*model.Account, error) {
	account, err := s.repo.GetAccount(ctx, id)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return nil, ErrAccountNotFound
	}
	return account, err
}

func (s *StaffService) logAction(ctx context.Context, staffID int64, action string, target *int64, details interface{}) {
	if err := s.repo.LogStaffAction(ctx, staffID, action, target, details); err != nil {
		s.log.Warn("failed to log staff action",
			zap.Int64("staff_id", staffID), zap.String("action", action), zap.Error(err))
	}
}
