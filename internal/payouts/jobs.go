package payouts

import (
	"context"
	"time"

	"workhive/pkg/logger"
)

// ReservationReleaser is the slice of the booking service the expiry sweep
// needs.
type ReservationReleaser interface {
	ReleaseExpiredReservations(ctx context.Context) (int, error)
}

// JobProcessor drives the payout scheduler, the disconnection guard, and the
// reservation expiry sweep on their own tickers.
type JobProcessor struct {
	scheduler *Scheduler
	guard     *Guard
	releaser  ReservationReleaser
	config    *JobConfig
	log       *logger.Logger
	done      chan struct{}
}

// JobConfig contains configuration for background jobs
type JobConfig struct {
	PayoutInterval      time.Duration
	GuardInterval       time.Duration
	ExpirySweepInterval time.Duration
}

// DefaultJobConfig returns default job configuration
func DefaultJobConfig() *JobConfig {
	return &JobConfig{
		PayoutInterval:      15 * time.Minute,
		GuardInterval:       10 * time.Minute,
		ExpirySweepInterval: 5 * time.Minute,
	}
}

// NewJobProcessor creates a new job processor
func NewJobProcessor(scheduler *Scheduler, guard *Guard, releaser ReservationReleaser, config *JobConfig, log *logger.Logger) *JobProcessor {
	if config == nil {
		config = DefaultJobConfig()
	}

	return &JobProcessor{
		scheduler: scheduler,
		guard:     guard,
		releaser:  releaser,
		config:    config,
		log:       log,
		done:      make(chan struct{}),
	}
}

// Start starts all background jobs
func (jp *JobProcessor) Start(ctx context.Context) {
	jp.log.Info("Starting payout background jobs")

	go jp.startPayoutSweeper(ctx)
	go jp.startDisconnectionGuard(ctx)
	go jp.startExpirySweeper(ctx)
}

// Stop stops all background jobs
func (jp *JobProcessor) Stop() {
	jp.log.Info("Stopping payout background jobs")
	close(jp.done)
}

func (jp *JobProcessor) startPayoutSweeper(ctx context.Context) {
	ticker := time.NewTicker(jp.config.PayoutInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			jp.runPayoutSweep(ctx)
		case <-jp.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (jp *JobProcessor) runPayoutSweep(ctx context.Context) {
	stats, err := jp.scheduler.Run(ctx, time.Now())
	if err != nil {
		jp.log.ErrorWithContext(ctx, "Payout sweep failed", err, nil)
		return
	}
	if stats.Scanned > 0 {
		jp.log.InfoWithContext(ctx, "Payout sweep finished", map[string]interface{}{
			"scanned": stats.Scanned,
			"issued":  stats.Issued,
			"skipped": stats.Skipped,
			"failed":  stats.Failed,
		})
	}
}

func (jp *JobProcessor) startDisconnectionGuard(ctx context.Context) {
	ticker := time.NewTicker(jp.config.GuardInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			jp.runGuardPass(ctx)
		case <-jp.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (jp *JobProcessor) startExpirySweeper(ctx context.Context) {
	ticker := time.NewTicker(jp.config.ExpirySweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			jp.runExpirySweep(ctx)
		case <-jp.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (jp *JobProcessor) runExpirySweep(ctx context.Context) {
	released, err := jp.releaser.ReleaseExpiredReservations(ctx)
	if err != nil {
		jp.log.ErrorWithContext(ctx, "Reservation expiry sweep failed", err, nil)
		return
	}
	if released > 0 {
		jp.log.InfoWithContext(ctx, "Reservation expiry sweep finished", map[string]interface{}{
			"released": released,
		})
	}
}

func (jp *JobProcessor) runGuardPass(ctx context.Context) {
	stats, err := jp.guard.Run(ctx, time.Now())
	if err != nil {
		jp.log.ErrorWithContext(ctx, "Disconnection guard pass failed", err, nil)
		return
	}
	if stats.Frozen > 0 || stats.Cancelled > 0 || stats.Failed > 0 {
		jp.log.InfoWithContext(ctx, "Disconnection guard pass finished", map[string]interface{}{
			"scanned":   stats.Scanned,
			"frozen":    stats.Frozen,
			"cancelled": stats.Cancelled,
			"failed":    stats.Failed,
		})
	}
}
