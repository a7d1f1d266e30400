package service

import (
	"context"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/refstars/bot/internal/repository"
)

type Broadcaster struct {
	repo     *repository.Repository
	notifier Notifier
	delay    time.Duration
	log      *zap.Logger
}

func NewBroadcaster(repo *repository.Repository, notifier Notifier, delay time.Duration, log *zap.Logger) *Broadcaster {
	return &Broadcaster{
		repo:     repo,
		notifier: notifier,
		delay:    delay,
		log:      log,
	}
}

type BroadcastReport struct {
	Total     int
	Delivered int
	Failed    int
}

// Run sends msg to every known account, one at a time, waiting delay between
// sends. Failed sends are counted and skipped. A cancelled ctx stops the loop
// and returns the partial report with ctx.Err().
func (b *Broadcaster) Run(ctx context.Context, msg BroadcastMessage) (*BroadcastReport, error) {
	ids, err := b.repo.ListAccountIDs(ctx)
	if err != nil {
		return nil, err
	}

	report := &BroadcastReport{Total: len(ids)}

	var tick <-chan time.Time
	if b.delay > 0 {
		ticker := time.NewTicker(b.delay)
		defer ticker.Stop()
		tick = ticker.C
	}

	for i, id := range ids {
		if i > 0 && tick != nil {
			select {
			case <-ctx.Done():
				return report, ctx.Err()
			case <-tick:
			}
		} else if err := ctx.Err(); err != nil {
			return report, err
		}

		if err := b.notifier.SendBroadcast(ctx, id, msg); err != nil {
			report.Failed++
			b.log.Debug("broadcast delivery failed", zap.Int64("account_id", id), zap.Error(err))
		} else {
			report.Delivered++
		}

		runtime.Gosched()
	}

	b.log.Info("broadcast finished",
		zap.Int("total", report.Total),
		zap.Int("delivered", report.Delivered),
		zap.Int("failed", report.Failed))

	return report, nil
}
