package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/mattn/go-sqlite3"
	"github.com/snapvocab/snapvocab-api/internal/platform/sqlite"
	"github.com/snapvocab/snapvocab-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	t.Parallel()
	assert.Equal(t,
		"file:/tmp/app.db?_busy_timeout=5000&_foreign_keys=on&_txlock=immediate",
		sqlite.DSN("/tmp/app.db"))
}

func TestMigrationProvider_UpAndDown(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "migrate.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	provider, err := sqlite.NewMigrationProvider(db)
	require.NoError(t, err)

	results, err := provider.Up(ctx)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	version, err := provider.GetDBVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)

	_, err = provider.Down(ctx)
	require.NoError(t, err)
	version, err = provider.GetDBVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)
}

func TestMapError(t *testing.T) {
	t.Parallel()

	unique := sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}
	fk := sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey}
	check := sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintCheck}
	busy := sqlite3.Error{Code: sqlite3.ErrBusy}

	assert.NoError(t, sqlite.MapError(nil))
	assert.ErrorIs(t, sqlite.MapError(unique), store.ErrDuplicate)
	assert.ErrorIs(t, sqlite.MapError(fk), store.ErrInvalidEntity)
	assert.ErrorIs(t, sqlite.MapError(check), store.ErrInvalidEntity)
	assert.ErrorIs(t, sqlite.MapError(busy), store.ErrTransactionFailed)

	assert.True(t, sqlite.IsUniqueViolation(unique))
	assert.False(t, sqlite.IsUniqueViolation(fk))
	assert.True(t, sqlite.IsForeignKeyViolation(fk))

	plain := errors.New("disk full")
	assert.Same(t, plain, sqlite.MapError(plain))
}

func TestVersion(t *testing.T) {
	t.Parallel()
	assert.NotEmpty(t, sqlite.Version())
}
