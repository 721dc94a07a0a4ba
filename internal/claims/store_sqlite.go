package claims

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"claimshub/pkg/platform/sentinel"
)

// Fixed-width timestamps keep lexicographic ORDER BY correct regardless of
// sub-second precision.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS claims (
	id TEXT PRIMARY KEY,
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
	submitted_at TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS claims_introducer_created_idx
	ON claims (introducer, created_at DESC);
`

// SQLiteStore persists claims in an embedded SQLite database. It is the
// default store when no DATABASE_URL is configured.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the SQLite database at path and
// prepares the claims schema.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// modernc's driver serializes writes itself; one connection avoids
	// SQLITE_BUSY under concurrent submits.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure claims schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) Create(ctx context.Context, claim *Claim) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO claims (
			id, reference, introducer,
			title, first_name, middle_name, last_name,
			dob_day, dob_month, dob_year,
			email, phone,
			address_line1, address_line2, city, county, postcode,
			has_car_finance, multiple_vehicles,
			signature, status, submitted_at, created_at
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		claim.ID, claim.Reference, claim.Introducer,
		claim.Title, claim.FirstName, claim.MiddleName, claim.LastName,
		claim.DOBDay, claim.DOBMonth, claim.DOBYear,
		claim.Email, claim.Phone,
		claim.AddressLine1, claim.AddressLine2, claim.City, claim.County, claim.Postcode,
		claim.HasCarFinance, claim.MultipleVehicles,
		claim.Signature, claim.Status,
		claim.SubmittedAt.UTC().Format(sqliteTimeLayout),
		claim.CreatedAt.UTC().Format(sqliteTimeLayout),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert claim: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListByIntroducer(ctx context.Context, introducer string, limit int) ([]*Claim, error) {
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
		query += ` WHERE introducer = ?`
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
		var (
			c                      Claim
			submittedAt, createdAt string
		)
		if err := rows.Scan(
			&c.ID, &c.Reference, &c.Introducer,
			&c.Title, &c.FirstName, &c.MiddleName, &c.LastName,
			&c.DOBDay, &c.DOBMonth, &c.DOBYear,
			&c.Email, &c.Phone,
			&c.AddressLine1, &c.AddressLine2, &c.City, &c.County, &c.Postcode,
			&c.HasCarFinance, &c.MultipleVehicles,
			&c.Signature, &c.Status, &submittedAt, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan claim: %w", err)
		}
		if c.SubmittedAt, err = time.Parse(time.RFC3339Nano, submittedAt); err != nil {
			return nil, fmt.Errorf("parse submitted_at: %w", err)
		}
		if c.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate claims: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) CountByEmail(ctx context.Context, introducer, email string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM claims WHERE introducer = ? AND email = ? COLLATE NOCASE`,
		introducer, email,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count claims by email: %w", err)
	}
	return count, nil
}
