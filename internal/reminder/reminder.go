// Package reminder runs the daily job that tells learners how many items are
// waiting for review. Delivery is external; the job hands each count to a
// Notifier.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"
	"github.com/snapvocab/snapvocab-api/internal/clock"
	"github.com/snapvocab/snapvocab-api/internal/store"
)

// ErrInvalidTime is returned when the configured time of day is not HH:MM.
var ErrInvalidTime = errors.New("reminder time must be in HH:MM format")

// DueCounter reports due item counts per learner.
type DueCounter interface {
	CountDueByLearner(ctx context.Context, today time.Time) ([]store.LearnerDueCount, error)
}

// Notifier delivers a due-items reminder to one learner.
type Notifier interface {
	NotifyDue(ctx context.Context, learnerID uuid.UUID, dueCount int) error
}

// LogNotifier writes reminders to the log instead of delivering them.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger.With(slog.String("component", "log_notifier"))}
}

// NotifyDue implements Notifier.
func (n *LogNotifier) NotifyDue(ctx context.Context, learnerID uuid.UUID, dueCount int) error {
	n.logger.InfoContext(ctx, "items due for review",
		slog.String("learner_id", learnerID.String()),
		slog.Int("due_count", dueCount))
	return nil
}

// Config places the daily run.
type Config struct {
	// At is the local time of day, HH:MM.
	At string
	// Location interprets At. Nil means UTC.
	Location *time.Location
}

// Scheduler runs RunOnce once a day.
type Scheduler struct {
	counter  DueCounter
	notifier Notifier
	clock    clock.Clock
	at       string
	cron     *gocron.Scheduler
	logger   *slog.Logger
}

// NewScheduler creates a Scheduler. It does not start any jobs.
func NewScheduler(
	counter DueCounter,
	notifier Notifier,
	clk clock.Clock,
	cfg Config,
	logger *slog.Logger,
) (*Scheduler, error) {
	if counter == nil {
		return nil, errors.New("due counter cannot be nil")
	}
	if notifier == nil {
		return nil, errors.New("notifier cannot be nil")
	}
	if clk == nil {
		return nil, errors.New("clock cannot be nil")
	}
	if _, err := time.Parse("15:04", cfg.At); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTime, cfg.At)
	}

	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}

	cron := gocron.NewScheduler(loc)
	cron.SingletonModeAll()

	return &Scheduler{
		counter:  counter,
		notifier: notifier,
		clock:    clk,
		at:       cfg.At,
		cron:     cron,
		logger:   logger.With(slog.String("component", "reminder_scheduler")),
	}, nil
}

// Start registers the daily job and starts the scheduler in the background.
// ctx is passed to every run; cancelling it does not stop the scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	job, err := s.cron.Every(1).Day().At(s.at).Do(func() {
		if _, err := s.RunOnce(ctx); err != nil {
			s.logger.Error("reminder run failed", slog.String("error", err.Error()))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule reminder job: %w", err)
	}

	s.cron.StartAsync()
	s.logger.Info("reminder scheduler started",
		slog.String("at", s.at),
		slog.Time("next_run", job.NextRun()))
	return nil
}

// Stop stops the scheduler. A run already in progress finishes first.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info("reminder scheduler stopped")
}

// RunOnce counts due items for today and notifies every learner with at least
// one. A failed notification is logged and does not stop the others. It
// returns the number of learners notified.
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	today := s.clock.Today()

	counts, err := s.counter.CountDueByLearner(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("failed to count due items: %w", err)
	}

	notified := 0
	for _, c := range counts {
		if c.DueCount <= 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return notified, err
		}
		if err := s.notifier.NotifyDue(ctx, c.LearnerID, c.DueCount); err != nil {
			s.logger.Warn("failed to send reminder",
				slog.String("learner_id", c.LearnerID.String()),
				slog.String("error", err.Error()))
			continue
		}
		notified++
	}

	s.logger.Debug("reminder run complete",
		slog.String("date", today.Format(time.DateOnly)),
		slog.Int("learners", len(counts)),
		slog.Int("notified", notified))
	return notified, nil
}
