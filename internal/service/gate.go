package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// SubscriptionGate answers whether an account currently belongs to the channel.
// It fails closed: oracle errors and timeouts count as "not a member".
type SubscriptionGate struct {
	checker MembershipChecker
	timeout time.Duration
	log     *zap.Logger
}

func NewSubscriptionGate(checker MembershipChecker, timeout time.Duration, log *zap.Logger) *SubscriptionGate {
	return &SubscriptionGate{
		checker: checker,
		timeout: timeout,
		log:     log,
	}
}

func (g *SubscriptionGate) IsMember(ctx context.Context, accountID int64) bool {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	ok, err := g.checker.IsChannelMember(ctx, accountID)
	if err != nil {
		g.log.Warn("membership check failed, treating as not subscribed",
			zap.Int64("account_id", accountID), zap.Error(err))
		return false
	}
	return ok
}
