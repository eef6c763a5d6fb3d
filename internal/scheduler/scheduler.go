package scheduler

import (
	"context"
	"log/slog"
	"time"

	"newsradar/pkg/fetch"
)

// Runner is the fetch-cycle trigger the scheduler drives.
type Runner interface {
	Run(ctx context.Context) (fetch.Result, error)
}

// Scheduler fires one fetch cycle per day at a configured hour:minute on the
// process-local clock. It is owned by whoever calls Run and stops when the
// context is cancelled.
type Scheduler struct {
	// Now is the clock used to compute the next firing. Overridable for
	// tests.
	Now func() time.Time

	runner Runner
	hour   int
	minute int
	log    *slog.Logger
}

// New creates a daily scheduler.
func New(runner Runner, hour, minute int, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		Now:    time.Now,
		runner: runner,
		hour:   hour,
		minute: minute,
		log:    log,
	}
}

// Run blocks until ctx is cancelled. A failed cycle is logged and the timer
// re-arms; errors never escape the loop.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		now := s.Now()
		next := NextRun(now, s.hour, s.minute)
		s.log.Info("scheduler: next fetch", "at", next.Format(time.RFC3339))

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			s.log.Info("scheduler: stopped")
			return ctx.Err()
		case <-timer.C:
		}

		res, err := s.runner.Run(ctx)
		if err != nil {
			s.log.Error("scheduled fetch failed", "err", err)
			continue
		}
		s.log.Info("scheduled fetch complete",
			"saved", res.Saved, "duplicates", res.Duplicates)
	}
}

// NextRun returns the next occurrence of hour:minute strictly after now.
func NextRun(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
