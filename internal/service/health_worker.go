package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"github.com/refstars/bot/internal/repository"
)

const PingTimeout = 5 * time.Second

// HealthWorker periodically pings the store and logs ledger totals.
type HealthWorker struct {
	repo     *repository.Repository
	interval time.Duration
	log      *zap.Logger
}

func NewHealthWorker(repo *repository.Repository, interval time.Duration, log *zap.Logger) *HealthWorker {
	return &HealthWorker{
		repo:     repo,
		interval: interval,
		log:      log,
	}
}

// Start schedules the check and blocks until ctx is done.
func (w *HealthWorker) Start(ctx context.Context) error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(w.interval),
		gocron.NewTask(func() {
			if err := w.Check(ctx); err != nil {
				w.log.Error("health check failed", zap.Error(err))
			}
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule health check: %w", err)
	}

	w.log.Info("health worker started", zap.Duration("interval", w.interval))
	sched.Start()

	<-ctx.Done()
	if err := sched.Shutdown(); err != nil {
		w.log.Warn("health worker shutdown", zap.Error(err))
	}
	w.log.Info("health worker stopped")
	return nil
}

// Check pings the store and logs account and promo totals.
func (w *HealthWorker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, PingTimeout)
	defer cancel()

	if err := w.repo.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	accounts, err := w.repo.CountAccounts(ctx)
	if err != nil {
		return fmt.Errorf("count accounts: %w", err)
	}
	promos, err := w.repo.CountActivePromoCodes(ctx)
	if err != nil {
		return fmt.Errorf("count promo codes: %w", err)
	}

	w.log.Info("health check",
		zap.Int("accounts", accounts.Total),
		zap.Int("banned", accounts.Banned),
		zap.Int("active_promo_codes", promos))
	return nil
}
