// Package main runs the snapvocab API server: the spaced-repetition review
// engine behind the photo vocabulary app.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/snapvocab/snapvocab-api/internal/config"
	"github.com/snapvocab/snapvocab-api/internal/platform/logger"
)

func main() {
	configPath := flag.String("config", "", "path to a config file (defaults to ./config.yaml when present)")
	migrateCmd := flag.String("migrate", "", "run a migration command instead of the server: up, down, status, version, reset")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath, *migrateCmd); err != nil {
		log.Printf("snapvocab-api: %v", err)
		stop()
		os.Exit(1)
	}
}

// run loads configuration and either executes a migration command or serves
// the API until ctx is cancelled.
func run(ctx context.Context, configPath, migrateCmd string) error {
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("database_driver", cfg.Database.Driver),
		slog.String("timezone", cfg.Server.Timezone))

	backend, err := openBackend(ctx, cfg.Database, appLogger)
	if err != nil {
		return err
	}

	if migrateCmd != "" {
		defer backend.Close(appLogger)
		return runMigrations(ctx, backend.migrations, migrateCmd, appLogger)
	}

	app, err := newApplication(cfg, appLogger, backend)
	if err != nil {
		backend.Close(appLogger)
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}
