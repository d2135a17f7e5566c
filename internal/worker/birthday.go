// Package worker hosts the long-running background processes: the
// scheduler poller and the daily birthday trigger.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/churchcomm/admin-api/internal/model"
	"github.com/churchcomm/admin-api/pkg/logger"
)

// BirthdayRunner executes one birthday dispatch pass.
type BirthdayRunner interface {
	RunDailyJob(ctx context.Context, now time.Time) ([]*model.BirthdayDispatchResult, error)
}

// BirthdayTrigger fires the birthday job once a day at a fixed wall-clock
// time.
type BirthdayTrigger struct {
	runner   BirthdayRunner
	hour     int
	minute   int
	location *time.Location
	logger   *logger.Logger
}

// NewBirthdayTrigger parses sendTime ("HH:MM"). A zero location means
// time.Local.
func NewBirthdayTrigger(runner BirthdayRunner, sendTime string, loc *time.Location, logger *logger.Logger) (*BirthdayTrigger, error) {
	parsed, err := time.Parse("15:04", sendTime)
	if err != nil {
		return nil, fmt.Errorf("invalid birthday send time %q: %w", sendTime, err)
	}
	if loc == nil {
		loc = time.Local
	}
	return &BirthdayTrigger{
		runner:   runner,
		hour:     parsed.Hour(),
		minute:   parsed.Minute(),
		location: loc,
		logger:   logger,
	}, nil
}

// NextRun returns the next firing time strictly after now.
func (t *BirthdayTrigger) NextRun(now time.Time) time.Time {
	now = now.In(t.location)
	next := time.Date(now.Year(), now.Month(), now.Day(), t.hour, t.minute, 0, 0, t.location)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Run sleeps until the next firing time, runs the job, and repeats until
// ctx is cancelled.
func (t *BirthdayTrigger) Run(ctx context.Context) {
	for {
		next := t.NextRun(time.Now())
		t.logger.Info("birthday trigger sleeping", "next_run", next)

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			t.logger.Info("birthday trigger stopped")
			return
		case now := <-timer.C:
			t.fire(ctx, now)
		}
	}
}

func (t *BirthdayTrigger) fire(ctx context.Context, now time.Time) {
	results, err := t.runner.RunDailyJob(ctx, now)
	if err != nil {
		t.logger.Error(err, "birthday job failed")
		return
	}
	t.logger.Info("birthday job finished", "groups", len(results))
}
