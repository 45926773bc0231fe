package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/amishk599/vacancywatch/internal/poller"
)

// Poller runs one change-detection cycle.
type Poller interface {
	Poll(ctx context.Context) (poller.CycleResult, error)
}

// Scheduler owns the main loop: one cycle at startup, then one cycle per
// interval measured from the end of the previous cycle.
type Scheduler struct {
	poller   Poller
	interval time.Duration
	logger   *slog.Logger

	after func(time.Duration) <-chan time.Time
}

// NewScheduler creates a scheduler that polls at the given interval.
func NewScheduler(p Poller, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		poller:   p,
		interval: interval,
		logger:   logger,
		after:    time.After,
	}
}

// Run starts the polling loop. It runs one immediate cycle, then waits the
// configured interval between cycles. A failed cycle never stops the loop.
// It returns nil when ctx is cancelled (graceful shutdown).
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting scheduler", "interval", s.interval.String())

	runCycle(ctx, s.poller, s.logger)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("shutting down scheduler")
			return nil
		case <-s.after(s.interval):
			runCycle(ctx, s.poller, s.logger)
		}
	}
}

// runCycle polls once, logging failures. A panic inside the cycle is
// recovered and logged like any other failure.
func runCycle(ctx context.Context, p Poller, logger *slog.Logger) {
	if ctx.Err() != nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("cycle failed", "error", fmt.Errorf("panic: %v", r))
		}
	}()

	start := time.Now()
	res, err := p.Poll(ctx)
	if err != nil {
		logger.Error("cycle failed", "error", err)
		return
	}
	logger.Debug("cycle finished",
		"duration", time.Since(start).Round(time.Millisecond).String(),
		"found", res.Found,
		"new", len(res.New),
	)
}
