package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gdugdh24/match-matrix-backend/internal/usecase/matching"
	"github.com/go-co-op/gocron/v2"
)

// Filler pairs participants that have no match yet.
type Filler interface {
	FillUnmatched(ctx context.Context) (*matching.GenerateStats, error)
}

// AutoFill periodically pairs new registrants without touching existing pairs.
type AutoFill struct {
	sched    gocron.Scheduler
	filler   Filler
	interval time.Duration
	logger   *slog.Logger
}

func NewAutoFill(filler Filler, interval time.Duration, logger *slog.Logger) (*AutoFill, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("auto fill interval must be positive, got %s", interval)
	}
	if logger == nil {
		logger = slog.Default()
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	a := &AutoFill{
		sched:    sched,
		filler:   filler,
		interval: interval,
		logger:   logger,
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(a.run),
		gocron.WithName("fill-unmatched"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("failed to schedule auto fill: %w", err)
	}
	return a, nil
}

func (a *AutoFill) Start() {
	a.logger.Info("auto fill scheduler started", "interval", a.interval.String())
	a.sched.Start()
}

func (a *AutoFill) Shutdown() error {
	return a.sched.Shutdown()
}

func (a *AutoFill) run() {
	ctx, cancel := context.WithTimeout(context.Background(), a.interval)
	defer cancel()

	if _, err := a.filler.FillUnmatched(ctx); err != nil {
		a.logger.Error("auto fill failed", "error", err)
	}
}
