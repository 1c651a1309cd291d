package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"sampad/internal/registration/models"
	id "sampad/pkg/domain"
	"sampad/pkg/platform/sentinel"
	txcontext "sampad/pkg/platform/tx"
)

// SQLiteStore persists registrations in a single SQLite file.
// Timestamps are stored as unix nanoseconds.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite constructs a SQLite-backed registration store.
func NewSQLite(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Create(ctx context.Context, reg *models.Registration) error {
	if reg == nil {
		return errRegistrationRequired
	}
	var date sql.NullInt64
	if reg.Date != nil {
		date = sql.NullInt64{Int64: reg.Date.UnixNano(), Valid: true}
	}
	query := `
		INSERT INTO registrations (id, name, is_sampad, national_code, phone, is_registered, date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := txcontext.Exec(ctx, s.db).ExecContext(ctx, query,
		reg.ID.String(),
		reg.Name,
		reg.IsSampad,
		reg.NationalCode,
		reg.Phone,
		reg.IsRegistered,
		date,
		reg.CreatedAt.UnixNano(),
		reg.UpdatedAt.UnixNano(),
	)
	if err != nil {
		if isSQLiteUnique(err) {
			return violationFor(uniqueColumn(err.Error()))
		}
		return fmt.Errorf("create registration: %w", err)
	}
	return nil
}

func (s *SQLiteStore) FindTaken(ctx context.Context, nationalCode, phone string) (models.Taken, error) {
	query := `
		SELECT
			EXISTS (SELECT 1 FROM registrations WHERE national_code = ?),
			EXISTS (SELECT 1 FROM registrations WHERE phone = ?)
	`
	var taken models.Taken
	err := txcontext.Exec(ctx, s.db).QueryRowContext(ctx, query, nationalCode, phone).
		Scan(&taken.NationalCode, &taken.Phone)
	if err != nil {
		return models.Taken{}, fmt.Errorf("find taken registration values: %w", err)
	}
	return taken, nil
}

func (s *SQLiteStore) FindByID(ctx context.Context, regID id.RegistrationID) (*models.Registration, error) {
	query := `
		SELECT id, name, is_sampad, national_code, phone, is_registered, date, created_at, updated_at
		FROM registrations
		WHERE id = ?
	`
	reg, err := scanSQLite(txcontext.Exec(ctx, s.db).QueryRowContext(ctx, query, regID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find registration by id: %w", err)
	}
	return reg, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]*models.Registration, error) {
	query := `
		SELECT id, name, is_sampad, national_code, phone, is_registered, date, created_at, updated_at
		FROM registrations
		ORDER BY created_at, rowid
	`
	rows, err := txcontext.Exec(ctx, s.db).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var out []*models.Registration
	for rows.Next() {
		reg, err := scanSQLite(rows)
		if err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		out = append(out, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate registrations: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := txcontext.Exec(ctx, s.db).QueryRowContext(ctx, `SELECT COUNT(*) FROM registrations`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return count, nil
}

func scanSQLite(row rowScanner) (*models.Registration, error) {
	var reg models.Registration
	var rawID string
	var date sql.NullInt64
	var createdAt, updatedAt int64
	if err := row.Scan(&rawID, &reg.Name, &reg.IsSampad, &reg.NationalCode, &reg.Phone,
		&reg.IsRegistered, &date, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	regID, err := id.ParseRegistrationID(rawID)
	if err != nil {
		return nil, fmt.Errorf("stored registration id: %w", err)
	}
	reg.ID = regID
	reg.CreatedAt = time.Unix(0, createdAt).UTC()
	reg.UpdatedAt = time.Unix(0, updatedAt).UTC()
	if date.Valid {
		d := time.Unix(0, date.Int64).UTC()
		reg.Date = &d
	}
	return &reg, nil
}

func isSQLiteUnique(err error) bool {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.Code() == sqlite3lib.SQLITE_CONSTRAINT_UNIQUE
}

// uniqueColumn extracts "registrations.phone" from
// "UNIQUE constraint failed: registrations.phone".
func uniqueColumn(msg string) string {
	_, column, found := strings.Cut(msg, "UNIQUE constraint failed:")
	if !found {
		return msg
	}
	return strings.TrimSpace(column)
}
