package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"sampad/internal/registration/models"
	id "sampad/pkg/domain"
	"sampad/pkg/platform/sentinel"
	txcontext "sampad/pkg/platform/tx"
)

const pgUniqueViolation = "23505"

// PostgresStore persists registrations in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed registration store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create inserts reg. A collision on either unique column is reported as *models.UniqueViolation.
func (s *PostgresStore) Create(ctx context.Context, reg *models.Registration) error {
	if reg == nil {
		return errRegistrationRequired
	}
	query := `
		INSERT INTO registrations (id, name, is_sampad, national_code, phone, is_registered, date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := txcontext.Exec(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(reg.ID),
		reg.Name,
		reg.IsSampad,
		reg.NationalCode,
		reg.Phone,
		reg.IsRegistered,
		reg.Date,
		reg.CreatedAt,
		reg.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return violationFor(pgErr.ConstraintName)
		}
		return fmt.Errorf("create registration: %w", err)
	}
	return nil
}

// FindTaken reports which of the two unique values already exist in one round trip.
func (s *PostgresStore) FindTaken(ctx context.Context, nationalCode, phone string) (models.Taken, error) {
	query := `
		SELECT
			EXISTS (SELECT 1 FROM registrations WHERE national_code = $1),
			EXISTS (SELECT 1 FROM registrations WHERE phone = $2)
	`
	var taken models.Taken
	err := txcontext.Exec(ctx, s.db).QueryRowContext(ctx, query, nationalCode, phone).
		Scan(&taken.NationalCode, &taken.Phone)
	if err != nil {
		return models.Taken{}, fmt.Errorf("find taken registration values: %w", err)
	}
	return taken, nil
}

// FindByID retrieves a registration by its UUID.
func (s *PostgresStore) FindByID(ctx context.Context, regID id.RegistrationID) (*models.Registration, error) {
	query := `
		SELECT id, name, is_sampad, national_code, phone, is_registered, date, created_at, updated_at
		FROM registrations
		WHERE id = $1
	`
	reg, err := scanPostgres(txcontext.Exec(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(regID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find registration by id: %w", err)
	}
	return reg, nil
}

// List returns all registrations ordered by creation time.
func (s *PostgresStore) List(ctx context.Context) ([]*models.Registration, error) {
	query := `
		SELECT id, name, is_sampad, national_code, phone, is_registered, date, created_at, updated_at
		FROM registrations
		ORDER BY created_at, id
	`
	rows, err := txcontext.Exec(ctx, s.db).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var out []*models.Registration
	for rows.Next() {
		reg, err := scanPostgres(rows)
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

// Count returns the number of stored registrations.
func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := txcontext.Exec(ctx, s.db).QueryRowContext(ctx, `SELECT COUNT(*) FROM registrations`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPostgres(row rowScanner) (*models.Registration, error) {
	var reg models.Registration
	var regID uuid.UUID
	var date sql.NullTime
	if err := row.Scan(&regID, &reg.Name, &reg.IsSampad, &reg.NationalCode, &reg.Phone,
		&reg.IsRegistered, &date, &reg.CreatedAt, &reg.UpdatedAt); err != nil {
		return nil, err
	}
	reg.ID = id.RegistrationID(regID)
	if date.Valid {
		d := date.Time
		reg.Date = &d
	}
	return &reg, nil
}
