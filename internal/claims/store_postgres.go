package claims

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"claimshub/pkg/platform/sentinel"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS claims (
	id UUID PRIMARY KEY,
	reference TEXT NOT NULL UNIQUE,
	introducer TEXT NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	first_name TEXT NOT NULL DEFAULT '',
	middle_name TEXT NOT NULL DEFAULT '',
	last_name TEXT NOT NULL DEFAULT '',
	dob_day TEXT NOT NULL DEFAULT '',
	dob_month TEXT NOT NULL DEFAULT '',
	dob_year TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT '',
	address_line1 TEXT NOT NULL DEFAULT '',
	address_line2 TEXT NOT NULL DEFAULT '',
	city TEXT NOT NULL DEFAULT '',
	county TEXT NOT NULL DEFAULT '',
	postcode TEXT NOT NULL DEFAULT '',
	has_car_finance TEXT NOT NULL DEFAULT '',
	multiple_vehicles TEXT NOT NULL DEFAULT '',
	signature TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	submitted_at TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS claims_introducer_created_idx
	ON claims (introducer, created_at DESC);
`

const uniqueViolation = "23505"

// PostgresStore persists claims in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed claim store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the claims table and indexes if they don't exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, postgresSchema); err != nil {
		return fmt.Errorf("ensure claims schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, claim *Claim) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO claims (
			id, reference, introducer,
			title, first_name, middle_name, last_name,
			dob_day, dob_month, dob_year,
			email, phone,
			address_line1, address_line2, city, county, postcode,
			has_car_finance, multiple_vehicles,
			signature, status, submitted_at, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23)`,
		claim.ID, claim.Reference, claim.Introducer,
		claim.Title, claim.FirstName, claim.MiddleName, claim.LastName,
		claim.DOBDay, claim.DOBMonth, claim.DOBYear,
		claim.Email, claim.Phone,
		claim.AddressLine1, claim.AddressLine2, claim.City, claim.County, claim.Postcode,
		claim.HasCarFinance, claim.MultipleVehicles,
		claim.Signature, claim.Status, claim.SubmittedAt, claim.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert claim: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByIntroducer(ctx context.Context, introducer string, limit int) ([]*Claim, error) {
	query := `
		SELECT id, reference, introducer,
			title, first_name, middle_name, last_name,
			dob_day, dob_month, dob_year,
			email, phone,
			address_line1, address_line2, city, county, postcode,
			has_car_finance, multiple_vehicles,
			signature, status, submitted_at, created_at
		FROM claims`
	args := []any{}
	if introducer != "" {
		query += ` WHERE introducer = $1`
		args = append(args, introducer)
	}
	query += ` ORDER BY created_at DESC`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}
	defer rows.Close()

	var out []*Claim
	for rows.Next() {
		var c Claim
		if err := rows.Scan(
			&c.ID, &c.Reference, &c.Introducer,
			&c.Title, &c.FirstName, &c.MiddleName, &c.LastName,
			&c.DOBDay, &c.DOBMonth, &c.DOBYear,
			&c.Email, &c.Phone,
			&c.AddressLine1, &c.AddressLine2, &c.City, &c.County, &c.Postcode,
			&c.HasCarFinance, &c.MultipleVehicles,
			&c.Signature, &c.Status, &c.SubmittedAt, &c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan claim: %w", err)
		}
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate claims: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) CountByEmail(ctx context.Context, introducer, email string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM claims WHERE introducer = $1 AND LOWER(email) = LOWER($2)`,
		introducer, email,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count claims by email: %w", err)
	}
	return count, nil
}
