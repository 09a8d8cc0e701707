// Package clickhouse stores the model artifact in ClickHouse.
//
// The table is a ReplacingMergeTree keyed by artifact id. State changes
// are written as new row versions and read back with FINAL.
package clickhouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/google/uuid"

	"carprice/db/artifact"
)

// Config holds ClickHouse connection configuration
type Config struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Debug    bool
}

// DefaultConfig returns default development configuration
func DefaultConfig() *Config {
	return &Config{
		Host:     "localhost",
		Port:     9000,
		Database: "carprice",
		Username: "default",
		Password: "",
		Debug:    false,
	}
}

// Record is one published artifact row.
type Record struct {
	ID        uuid.UUID `ch:"id"`
	SHA256    string    `ch:"sha256"`
	IsActive  bool      `ch:"is_active"`
	CreatedAt time.Time `ch:"created_at"`
}

// Store implements artifact.Store using ClickHouse
type Store struct {
	conn driver.Conn
	cfg  *Config
}

// NewStore connects and creates the artifact table if needed.
func NewStore(ctx context.Context, cfg *Config) (*Store, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Debug: cfg.Debug,
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	s := &Store{conn: conn, cfg: cfg}
	if err := s.Ping(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}
	if err := s.Migrate(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// Ping checks database connectivity
func (s *Store) Ping(ctx context.Context) error {
	return s.conn.Ping(ctx)
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.conn.Close()
}

// Migrate creates the versioned artifact table.
func (s *Store) Migrate(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS model_artifacts (
			id         UUID,
			sha256     String,
			payload    String CODEC(ZSTD(3)),
			is_active  UInt8,
			created_at DateTime64(3),
			_version   UInt64,
			_deleted   UInt8 DEFAULT 0
		) ENGINE = ReplacingMergeTree(_version)
		ORDER BY id
	`
	if err := s.conn.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create model_artifacts: %w", err)
	}
	return nil
}

// Publish inserts the blob inactive, activates it, then deactivates every
// older active row. Load orders by creation time, so a reader between the
// two updates already sees the new artifact.
func (s *Store) Publish(ctx context.Context, blob []byte) error {
	id := uuid.New()
	insert := `
		INSERT INTO model_artifacts (id, sha256, payload, is_active, created_at, _version, _deleted)
		VALUES (?, ?, ?, 0, ?, 1, 0)
	`
	if err := s.conn.Exec(ctx, insert, id, artifact.Digest(blob), string(blob), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to insert artifact: %w", err)
	}
	return s.Activate(ctx, id)
}

// Activate marks one artifact active and deactivates all others.
func (s *Store) Activate(ctx context.Context, id uuid.UUID) error {
	activateQuery := `
		INSERT INTO model_artifacts
		SELECT id, sha256, payload, 1 AS is_active, created_at,
			   _version + 1 AS _version, _deleted
		FROM model_artifacts FINAL
		WHERE id = ? AND _deleted = 0
	`
	if err := s.conn.Exec(ctx, activateQuery, id); err != nil {
		return fmt.Errorf("failed to activate artifact: %w", err)
	}

	deactivateQuery := `
		INSERT INTO model_artifacts
		SELECT id, sha256, payload, 0 AS is_active, created_at,
			   _version + 1 AS _version, _deleted
		FROM model_artifacts FINAL
		WHERE is_active = 1 AND _deleted = 0 AND id != ?
	`
	if err := s.conn.Exec(ctx, deactivateQuery, id); err != nil {
		return fmt.Errorf("failed to deactivate artifacts: %w", err)
	}
	return nil
}

// Load returns the payload of the newest active artifact.
func (s *Store) Load(ctx context.Context) ([]byte, error) {
	query := `
		SELECT payload
		FROM model_artifacts FINAL
		WHERE is_active = 1 AND _deleted = 0
		ORDER BY created_at DESC
		LIMIT 1
	`
	var payload string
	err := s.conn.QueryRow(ctx, query).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, artifact.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load artifact: %w", err)
	}
	return []byte(payload), nil
}

// List returns artifact rows without payloads, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	query := `
		SELECT id, sha256, is_active, created_at
		FROM model_artifacts FINAL
		WHERE _deleted = 0
		ORDER BY created_at DESC
		LIMIT ?
	`
	rows, err := s.conn.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var isActive uint8
		if err := rows.Scan(&r.ID, &r.SHA256, &isActive, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan artifact: %w", err)
		}
		r.IsActive = isActive == 1
		records = append(records, r)
	}
	return records, rows.Err()
}
