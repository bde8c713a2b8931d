package emailstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxIface is the slice of a pgx pool the store needs; pgxmock satisfies it
// in tests.
type PgxIface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore persists records in a single table with the email as primary
// key, so dedupe is an ON CONFLICT no-op instead of a read-check-write
// cycle. Only the record-count cap applies; a relational store has no
// meaningful serialized-size bound.
type PostgresStore struct {
	db     PgxIface
	limits Limits
}

func NewPostgresStore(db PgxIface, limits Limits) *PostgresStore {
	return &PostgresStore{
		db:     db,
		limits: limits,
	}
}

// EnsureSchema creates the backing table when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	const q = `
CREATE TABLE IF NOT EXISTS collected_emails (
	email        text PRIMARY KEY,
	session_id   text NOT NULL,
	submitted_at timestamptz NOT NULL,
	consent      boolean NOT NULL
)`
	if _, err := s.db.Exec(ctx, q); err != nil {
		return fmt.Errorf("email store schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, rec Record) (SaveStatus, error) {
	if s.limits.MaxRecords > 0 {
		n, err := s.Count(ctx)
		if err != nil {
			return 0, err
		}
		if n >= s.limits.MaxRecords {
			return StatusDropped, nil
		}
	}

	const q = `
INSERT INTO collected_emails (email, session_id, submitted_at, consent)
VALUES ($1, $2, $3, $4)
ON CONFLICT (email) DO NOTHING`
	tag, err := s.db.Exec(ctx, q, rec.Email, rec.SessionID, rec.Timestamp, rec.Consent)
	if err != nil {
		return 0, fmt.Errorf("email store insert: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return StatusDuplicate, nil
	}
	return StatusStored, nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	const q = `SELECT count(*) FROM collected_emails`
	var n int
	if err := s.db.QueryRow(ctx, q).Scan(&n); err != nil {
		return 0, fmt.Errorf("email store count: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) Close() error {
	return nil
}
