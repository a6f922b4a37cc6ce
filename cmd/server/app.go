package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/snapvocab/snapvocab-api/internal/clock"
	"github.com/snapvocab/snapvocab-api/internal/config"
	"github.com/snapvocab/snapvocab-api/internal/domain/srs"
	"github.com/snapvocab/snapvocab-api/internal/platform/ratelimit"
	"github.com/snapvocab/snapvocab-api/internal/reminder"
	"github.com/snapvocab/snapvocab-api/internal/service/auth"
	"github.com/snapvocab/snapvocab-api/internal/service/review"
)

// application holds the wired components of a running server.
type application struct {
	config        *config.Config
	logger        *slog.Logger
	backend       *backend
	clock         clock.Clock
	jwtService    auth.JWTService
	reviewService review.ReviewService
	limiter       *ratelimit.Limiter
	reminder      *reminder.Scheduler
}

// newApplication wires services on top of an open backend. The backend is
// owned by the application afterwards and closed by cleanup.
func newApplication(cfg *config.Config, logger *slog.Logger, b *backend) (*application, error) {
	loc, err := time.LoadLocation(cfg.Server.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid server timezone %q: %w", cfg.Server.Timezone, err)
	}
	clk := clock.New(loc)

	srsService, err := srs.NewServiceWithParams(srs.NewParams(srsParamsConfig(cfg.SRS)))
	if err != nil {
		return nil, fmt.Errorf("invalid SRS parameters: %w", err)
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	reviewService := review.NewReviewService(
		review.NewItemRepositoryAdapter(b.items, b.db),
		review.NewAttemptRepositoryAdapter(b.attempts),
		srsService,
		clk,
		review.SessionLimits{
			DefaultLimit: cfg.Session.DefaultLimit,
			MaxLimit:     cfg.Session.MaxLimit,
		},
		logger,
	)

	app := &application{
		config:        cfg,
		logger:        logger,
		backend:       b,
		clock:         clk,
		jwtService:    jwtService,
		reviewService: reviewService,
	}

	if cfg.Reminder.Enabled {
		reminderLoc := loc
		if cfg.Reminder.Timezone != "" {
			reminderLoc, err = time.LoadLocation(cfg.Reminder.Timezone)
			if err != nil {
				return nil, fmt.Errorf("invalid reminder timezone %q: %w", cfg.Reminder.Timezone, err)
			}
		}
		app.reminder, err = reminder.NewScheduler(
			b.items,
			reminder.NewLogNotifier(logger),
			clk,
			reminder.Config{At: cfg.Reminder.At, Location: reminderLoc},
			logger,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create reminder scheduler: %w", err)
		}
	}

	// Created last so an earlier failure does not leak the sweeper goroutine.
	app.limiter = ratelimit.New(ratelimit.Config{
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
		Burst:             cfg.RateLimit.Burst,
		IdleTTL:           time.Duration(cfg.RateLimit.IdleTTLMinutes) * time.Minute,
	}, logger)

	return app, nil
}

func srsParamsConfig(c config.SRSConfig) srs.ParamsConfig {
	return srs.ParamsConfig{
		MinEasinessFactor:         c.MinEasinessFactor,
		AgainIntervalDays:         c.AgainIntervalDays,
		FirstSuccessHardInterval:  c.FirstSuccessHardInterval,
		FirstSuccessGoodInterval:  c.FirstSuccessGoodInterval,
		FirstSuccessEasyInterval:  c.FirstSuccessEasyInterval,
		SecondSuccessHardInterval: c.SecondSuccessHardInterval,
		SecondSuccessGoodInterval: c.SecondSuccessGoodInterval,
		SecondSuccessEasyInterval: c.SecondSuccessEasyInterval,
		HardIntervalModifier:      c.HardIntervalModifier,
		EasyIntervalModifier:      c.EasyIntervalModifier,
		LearnedThresholdDays:      c.LearnedThresholdDays,
	}
}

// Run starts background jobs and serves HTTP until ctx is cancelled.
func (app *application) Run(ctx context.Context) error {
	defer app.cleanup()

	if app.reminder != nil {
		if err := app.reminder.Start(ctx); err != nil {
			return fmt.Errorf("failed to start reminder scheduler: %w", err)
		}
	}

	return app.startHTTPServer(ctx, app.setupRouter())
}

// cleanup releases resources in reverse order of acquisition.
func (app *application) cleanup() {
	if app.limiter != nil {
		app.limiter.Close()
	}
	if app.reminder != nil {
		app.reminder.Stop()
	}
	app.backend.Close(app.logger)
	app.logger.Info("application resources released")
}
