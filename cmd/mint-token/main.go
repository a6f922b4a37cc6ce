// Command mint-token prints a learner access token signed with the configured
// JWT secret. It is meant for local development and manual API testing.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/snapvocab/snapvocab-api/internal/config"
	"github.com/snapvocab/snapvocab-api/internal/service/auth"
)

func main() {
	configPath := flag.String("config", "", "path to a config file")
	learner := flag.String("learner", "", "learner UUID (random when empty)")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if err := run(os.Stdout, *configPath, *learner, *ttl); err != nil {
		log.Fatalf("mint-token: %v", err)
	}
}

func run(out io.Writer, configPath, learner string, ttl time.Duration) error {
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	learnerID := uuid.New()
	if learner != "" {
		learnerID, err = uuid.Parse(learner)
		if err != nil {
			return fmt.Errorf("invalid learner id %q: %w", learner, err)
		}
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return err
	}

	token, err := jwtService.GenerateToken(context.Background(), learnerID, ttl)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "learner: %s\ntoken:   %s\n", learnerID, token)
	return nil
}
