package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// CronScheduler runs cycles on a cron expression instead of a fixed interval.
// Overlapping triggers are skipped while a cycle is still running.
type CronScheduler struct {
	poller   Poller
	schedule string
	logger   *slog.Logger
	cron     *cron.Cron
}

// NewCronScheduler parses schedule (standard five-field syntax) and returns a
// scheduler ready to Run.
func NewCronScheduler(p Poller, schedule string, logger *slog.Logger) (*CronScheduler, error) {
	cl := cronLogger{logger: logger}
	c := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.SkipIfStillRunning(cl)),
	)
	s := &CronScheduler{poller: p, schedule: schedule, logger: logger, cron: c}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("parsing schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Run runs one immediate cycle, then fires on every schedule match until ctx
// is cancelled. It waits for a running cycle to finish before returning nil.
func (s *CronScheduler) Run(ctx context.Context) error {
	s.logger.Info("starting cron scheduler", "schedule", s.schedule)

	if _, err := s.cron.AddFunc(s.schedule, func() {
		runCycle(ctx, s.poller, s.logger)
	}); err != nil {
		return fmt.Errorf("registering schedule %q: %w", s.schedule, err)
	}

	runCycle(ctx, s.poller, s.logger)

	s.cron.Start()
	<-ctx.Done()

	s.logger.Info("shutting down scheduler")
	<-s.cron.Stop().Done()
	return nil
}

// cronLogger routes cron's internal logging through slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
