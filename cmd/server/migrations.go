package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pressly/goose/v3"
)

// ErrUnknownMigrationCommand is returned for -migrate values other than
// up, down, status, version and reset.
var ErrUnknownMigrationCommand = errors.New("unknown migration command")

// runMigrations executes one goose command against provider.
func runMigrations(ctx context.Context, provider *goose.Provider, command string, logger *slog.Logger) error {
	log := logger.With(slog.String("component", "migrations"), slog.String("command", command))

	switch command {
	case "up":
		results, err := provider.Up(ctx)
		if err != nil {
			return fmt.Errorf("migrate up failed: %w", err)
		}
		logResults(log, results)
		log.Info("migrations applied", slog.Int("count", len(results)))

	case "down":
		result, err := provider.Down(ctx)
		if err != nil {
			return fmt.Errorf("migrate down failed: %w", err)
		}
		logResults(log, []*goose.MigrationResult{result})

	case "reset":
		results, err := provider.DownTo(ctx, 0)
		if err != nil {
			return fmt.Errorf("migrate reset failed: %w", err)
		}
		logResults(log, results)
		log.Info("migrations rolled back", slog.Int("count", len(results)))

	case "status":
		statuses, err := provider.Status(ctx)
		if err != nil {
			return fmt.Errorf("migrate status failed: %w", err)
		}
		for _, s := range statuses {
			log.Info("migration status",
				slog.Int64("version", s.Source.Version),
				slog.String("path", s.Source.Path),
				slog.String("state", string(s.State)),
				slog.Time("applied_at", s.AppliedAt))
		}

	case "version":
		version, err := provider.GetDBVersion(ctx)
		if err != nil {
			return fmt.Errorf("migrate version failed: %w", err)
		}
		log.Info("database schema version", slog.Int64("version", version))

	default:
		return fmt.Errorf("%w: %q", ErrUnknownMigrationCommand, command)
	}

	return nil
}

func logResults(log *slog.Logger, results []*goose.MigrationResult) {
	for _, r := range results {
		if r == nil || r.Source == nil {
			continue
		}
		log.Info("migration executed",
			slog.Int64("version", r.Source.Version),
			slog.String("direction", r.Direction),
			slog.Duration("duration", r.Duration))
	}
}
