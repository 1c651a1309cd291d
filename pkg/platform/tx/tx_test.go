package tx

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	dErrors "sampad/pkg/domain-errors"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "tx.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`CREATE TABLE items (name TEXT NOT NULL)`)
	require.NoError(t, err)
	return db
}

func count(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM items`).Scan(&n))
	return n
}

func TestSQLRunner(t *testing.T) {
	ctx := context.Background()

	t.Run("commits on success", func(t *testing.T) {
		db := openDB(t)
		runner := NewSQLRunner(db, 0)
		err := runner.RunInTx(ctx, func(ctx context.Context) error {
			_, err := Exec(ctx, db).ExecContext(ctx, `INSERT INTO items (name) VALUES (?)`, "a")
			return err
		})
		require.NoError(t, err)
		assert.Equal(t, 1, count(t, db))
	})

	t.Run("rolls back on error", func(t *testing.T) {
		db := openDB(t)
		runner := NewSQLRunner(db, 0)
		boom := errors.New("boom")
		err := runner.RunInTx(ctx, func(ctx context.Context) error {
			if _, err := Exec(ctx, db).ExecContext(ctx, `INSERT INTO items (name) VALUES (?)`, "a"); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)
		assert.Equal(t, 0, count(t, db))
	})

	t.Run("nested calls join the outer transaction", func(t *testing.T) {
		db := openDB(t)
		runner := NewSQLRunner(db, 0)
		err := runner.RunInTx(ctx, func(outer context.Context) error {
			outerTx, ok := From(outer)
			require.True(t, ok)
			return runner.RunInTx(outer, func(inner context.Context) error {
				innerTx, ok := From(inner)
				require.True(t, ok)
				assert.Same(t, outerTx, innerTx)
				return nil
			})
		})
		require.NoError(t, err)
	})

	t.Run("cancelled context is a timeout", func(t *testing.T) {
		db := openDB(t)
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		err := NewSQLRunner(db, 0).RunInTx(cancelled, func(context.Context) error {
			t.Fatal("fn must not run")
			return nil
		})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
	})
}

func TestFromWithoutTx(t *testing.T) {
	_, ok := From(context.Background())
	assert.False(t, ok)
}
