package testdb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/snapvocab/snapvocab-api/internal/platform/sqlite"
	"github.com/stretchr/testify/require"
)

// NewSQLiteDB opens a fresh SQLite database under t.TempDir and applies all
// migrations. The database is closed when the test finishes.
func NewSQLiteDB(t *testing.T) *sqlx.DB {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "snapvocab.db"))
	require.NoError(t, err, "Failed to open sqlite database")
	t.Cleanup(func() { _ = db.Close() })

	provider, err := sqlite.NewMigrationProvider(db)
	require.NoError(t, err)
	_, err = provider.Up(ctx)
	require.NoError(t, err, "Failed to run sqlite migrations")

	return db
}
