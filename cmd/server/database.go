package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/pressly/goose/v3"
	"github.com/snapvocab/snapvocab-api/internal/config"
	"github.com/snapvocab/snapvocab-api/internal/platform/postgres"
	"github.com/snapvocab/snapvocab-api/internal/platform/sqlite"
	"github.com/snapvocab/snapvocab-api/internal/redact"
	"github.com/snapvocab/snapvocab-api/internal/store"
)

// backend bundles the connection, stores and migrations of one database driver.
type backend struct {
	driver     string
	db         *sql.DB
	items      store.VocabularyItemStore
	attempts   store.ReviewAttemptStore
	migrations *goose.Provider
}

// openBackend connects to the configured database. SQLite databases are
// migrated to the latest version on open; PostgreSQL schemas are managed with
// the -migrate flag.
func openBackend(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*backend, error) {
	switch cfg.Driver {
	case "postgres":
		db, err := postgres.Open(ctx, cfg.URL, cfg.MaxOpenConns)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %s", redact.Error(err))
		}
		provider, err := postgres.NewMigrationProvider(db)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		logger.Info("database connection established", slog.String("driver", cfg.Driver))
		return &backend{
			driver:     cfg.Driver,
			db:         db,
			items:      postgres.NewPostgresVocabularyItemStore(db, logger),
			attempts:   postgres.NewPostgresReviewAttemptStore(db, logger),
			migrations: provider,
		}, nil

	case "sqlite":
		db, err := sqlite.Open(ctx, cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %s", redact.Error(err))
		}
		provider, err := sqlite.NewMigrationProvider(db)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		if _, err := provider.Up(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to migrate sqlite database: %w", err)
		}
		logger.Info("database connection established",
			slog.String("driver", cfg.Driver),
			slog.String("sqlite_version", sqlite.Version()))
		return &backend{
			driver:     cfg.Driver,
			db:         db.DB,
			items:      sqlite.NewSQLiteVocabularyItemStore(db, logger),
			attempts:   sqlite.NewSQLiteReviewAttemptStore(db, logger),
			migrations: provider,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Close closes the database connection, logging any failure.
func (b *backend) Close(logger *slog.Logger) {
	if b == nil || b.db == nil {
		return
	}
	if err := b.db.Close(); err != nil {
		logger.Error("error closing database connection", slog.String("error", redact.Error(err)))
	}
}
