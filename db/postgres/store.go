// Package postgres stores the model artifact in a PostgreSQL table.
//
// Every publish inserts a new row and flips the single active flag inside
// one transaction, so readers see either the previous or the new artifact.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"carprice/db/artifact"
)

// DefaultTable is the table used when none is configured.
const DefaultTable = "model_artifacts"

// Store implements artifact.Store on PostgreSQL.
type Store struct {
	db    *sql.DB
	table string
}

// NewStore connects with a lib/pq DSN and creates the table if needed.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	s := &Store{db: db, table: DefaultTable}
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates the artifact table and its single-active-row index.
func (s *Store) Migrate(ctx context.Context) error {
	table := pq.QuoteIdentifier(s.table)
	index := pq.QuoteIdentifier(s.table + "_one_active")
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ` + table + ` (
			id         UUID PRIMARY KEY,
			sha256     TEXT NOT NULL,
			payload    BYTEA NOT NULL,
			is_active  BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ` + index + ` ON ` + table + ` (is_active) WHERE is_active`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate %s: %w", s.table, err)
		}
	}
	return nil
}

// Publish inserts blob as a new row and makes it the active artifact.
func (s *Store) Publish(ctx context.Context, blob []byte) error {
	table := pq.QuoteIdentifier(s.table)
	id := uuid.New()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin publish: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO `+table+` (id, sha256, payload, is_active, created_at) VALUES ($1, $2, $3, FALSE, $4)`,
		id.String(), artifact.Digest(blob), blob, time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("failed to insert artifact: %w", describe(err))
	}
	if _, err := tx.ExecContext(ctx, `UPDATE `+table+` SET is_active = FALSE WHERE is_active`); err != nil {
		return fmt.Errorf("failed to deactivate artifacts: %w", describe(err))
	}
	if _, err := tx.ExecContext(ctx, `UPDATE `+table+` SET is_active = TRUE WHERE id = $1`, id.String()); err != nil {
		return fmt.Errorf("failed to activate artifact: %w", describe(err))
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit publish: %w", describe(err))
	}
	return nil
}

// Load returns the payload of the active row.
func (s *Store) Load(ctx context.Context) ([]byte, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM `+pq.QuoteIdentifier(s.table)+` WHERE is_active LIMIT 1`,
	).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, artifact.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load artifact: %w", describe(err))
	}
	return blob, nil
}

// History lists published artifact IDs, newest first.
func (s *Store) History(ctx context.Context, limit int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM `+pq.QuoteIdentifier(s.table)+` ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", describe(err))
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan artifact id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// describe adds the SQLSTATE to driver errors.
func describe(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return fmt.Errorf("%s (sqlstate %s): %w", pqErr.Message, pqErr.Code, err)
	}
	return err
}
