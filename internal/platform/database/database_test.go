package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sqliteConfig(t *testing.T) Config {
	return Config{Driver: DriverSQLite, URL: filepath.Join(t.TempDir(), "sampad.db")}
}

func TestSQLiteMigrations(t *testing.T) {
	ctx := context.Background()
	cfg := sqliteConfig(t)

	require.NoError(t, MigrateUp(ctx, cfg))
	// Re-running against an up-to-date schema is a no-op.
	require.NoError(t, MigrateUp(ctx, cfg))

	pool, err := New(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Close() })
	require.NoError(t, pool.Health(ctx))

	var table string
	err = pool.DB().QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'registrations'`).Scan(&table)
	require.NoError(t, err)
	assert.Equal(t, "registrations", table)
}

func TestMigratorVersionAndDown(t *testing.T) {
	ctx := context.Background()
	cfg := sqliteConfig(t)

	pool, err := New(ctx, cfg)
	require.NoError(t, err)
	m, err := NewMigrator(pool.DB(), DriverSQLite)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })

	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Zero(t, version)
	assert.False(t, dirty)

	require.NoError(t, m.Up())
	version, _, err = m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	require.NoError(t, m.Down())
	version, _, err = m.Version()
	require.NoError(t, err)
	assert.Zero(t, version)
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := New(context.Background(), Config{Driver: DriverSQLite})
	assert.Error(t, err)

	_, err = New(context.Background(), Config{Driver: "oracle", URL: "x"})
	assert.Error(t, err)
}
