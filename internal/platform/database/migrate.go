package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"sampad/migrations"
)

// Migrator applies the embedded schema for one driver.
type Migrator struct {
	m *migrate.Migrate
}

// NewMigrator builds a migrator over an open connection.
// Closing the migrator closes db.
func NewMigrator(db *sql.DB, driver string) (*Migrator, error) {
	dir, err := migrations.Dir(driver)
	if err != nil {
		return nil, fmt.Errorf("migrations for %s: %w", driver, err)
	}
	src, err := iofs.New(dir, ".")
	if err != nil {
		return nil, fmt.Errorf("open migration source: %w", err)
	}

	var target migratedb.Driver
	switch driver {
	case DriverPostgres:
		target, err = pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	case DriverSQLite:
		target, err = sqlitemigrate.WithInstance(db, &sqlitemigrate.Config{})
	default:
		err = fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, driver, target)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return &Migrator{m: m}, nil
}

// Up applies every pending migration. An up-to-date schema is not an error.
func (m *Migrator) Up() error {
	if err := m.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// Down rolls back a single migration.
func (m *Migrator) Down() error {
	if err := m.m.Steps(-1); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate down: %w", err)
	}
	return nil
}

// Version returns the current schema version. Zero means no migration has run.
func (m *Migrator) Version() (uint, bool, error) {
	v, dirty, err := m.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}

func (m *Migrator) Close() error {
	srcErr, dbErr := m.m.Close()
	return errors.Join(srcErr, dbErr)
}

// MigrateUp applies pending migrations over a dedicated connection, which is
// closed afterwards.
func MigrateUp(ctx context.Context, cfg Config) error {
	pool, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	m, err := NewMigrator(pool.DB(), cfg.Driver)
	if err != nil {
		_ = pool.Close()
		return err
	}
	defer m.Close() //nolint:errcheck // also closes the dedicated pool
	return m.Up()
}
