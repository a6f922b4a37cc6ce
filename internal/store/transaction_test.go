package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", "file:"+filepath.Join(t.TempDir(), "tx.db")+"?_txlock=immediate")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE counters (name TEXT PRIMARY KEY, value INTEGER NOT NULL)`)
	require.NoError(t, err)
	return db
}

func countRows(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM counters`).Scan(&n))
	return n
}

func insertCounter(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO counters (name, value) VALUES ('reviews', 1)`)
	return err
}

func TestRunInTransaction_Success(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)

	err := RunInTransaction(context.Background(), db, insertCounter)

	require.NoError(t, err)
	assert.Equal(t, 1, countRows(t, db))
}

func TestRunInTransaction_FunctionError(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	expectedErr := errors.New("function failed")

	err := RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
		if err := insertCounter(ctx, tx); err != nil {
			return err
		}
		return expectedErr
	})

	assert.Equal(t, expectedErr, err)
	assert.Equal(t, 0, countRows(t, db), "insert must be rolled back")
}

func TestRunInTransaction_Panic(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)

	assert.PanicsWithValue(t, "boom", func() {
		_ = RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
			if err := insertCounter(ctx, tx); err != nil {
				return err
			}
			panic("boom")
		})
	})

	assert.Equal(t, 0, countRows(t, db), "insert must be rolled back after panic")
}

func TestRunInTransaction_BeginError(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	require.NoError(t, db.Close())

	err := RunInTransaction(context.Background(), db, insertCounter)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to begin transaction")
	assert.ErrorIs(t, err, ErrTransactionFailed)
}

func TestRunInTransactionWithOptions_Isolation(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)

	err := RunInTransactionWithOptions(context.Background(), db,
		&sql.TxOptions{Isolation: sql.LevelSerializable}, insertCounter)

	require.NoError(t, err)
	assert.Equal(t, 1, countRows(t, db))
}

func TestRunInTransaction_CancelledContext(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RunInTransaction(ctx, db, insertCounter)

	assert.ErrorIs(t, err, ErrTransactionFailed)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, countRows(t, db))
}
