package sqlite

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// DriverName is the database/sql driver registered by go-sqlite3.
const DriverName = "sqlite3"

// DSN builds the connection string for a database file. Foreign keys are
// enforced and every transaction starts with BEGIN IMMEDIATE, which takes the
// write lock up front so read-modify-write sequences on one item serialize.
func DSN(path string) string {
	params := url.Values{}
	params.Set("_busy_timeout", "5000")
	params.Set("_foreign_keys", "on")
	params.Set("_txlock", "immediate")
	return "file:" + path + "?" + params.Encode()
}

// Open opens the database file at path and verifies the connection.
// SQLite allows a single writer, so the pool is capped at one connection.
func Open(ctx context.Context, path string) (*sqlx.DB, error) {
	db, err := sqlx.Open(DriverName, DSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	return db, nil
}

// Version reports the linked SQLite library version.
func Version() string {
	v, _, _ := sqlite3.Version()
	return v
}

// Migrations returns the embedded SQL migrations rooted at the migrations directory.
func Migrations() fs.FS {
	sub, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		// ALLOW-PANIC: the embed pattern guarantees the directory exists
		panic(err)
	}
	return sub
}

// NewMigrationProvider returns a goose provider for the SQLite schema.
func NewMigrationProvider(db *sqlx.DB) (*goose.Provider, error) {
	provider, err := goose.NewProvider(goose.DialectSQLite3, db.DB, Migrations())
	if err != nil {
		return nil, fmt.Errorf("failed to create migration provider: %w", err)
	}
	return provider, nil
}
