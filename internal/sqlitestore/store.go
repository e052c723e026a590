// Package sqlitestore keeps the API usage log in a local SQLite file,
// for single-host runs and the CLI when no PostgreSQL is available.
package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gridiron_intel/ingestion/internal/models"
	"gridiron_intel/ingestion/internal/usage"

	// registers the "sqlite" driver
	_ "modernc.org/sqlite"
)

// Store is a usage.Store backed by SQLite
type Store struct {
	db   *sql.DB
	path string
}

var (
	_ usage.Store           = (*Store)(nil)
	_ usage.EndpointCounter = (*Store)(nil)
	_ usage.RecentLister    = (*Store)(nil)
)

// Open creates or opens the database at path and ensures the schema
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// pragmas are per connection; one writer also avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if err := db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &Store{db: db, path: path}

	if err := s.configure(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	if err := s.createSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return s, nil
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.path
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) configure() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := s.db.ExecContext(context.Background(), pragma); err != nil {
			return fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}

	return nil
}

// created_at is unix milliseconds so range filters compare numerically
func (s *Store) createSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS api_usage (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sport TEXT NOT NULL,
		endpoint TEXT NOT NULL,
		status_code INTEGER NOT NULL DEFAULT 0,
		attempts INTEGER NOT NULL DEFAULT 1,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_api_usage_sport_created ON api_usage(sport, created_at);
	`
	_, err := s.db.ExecContext(context.Background(), query)
	return err
}

// Insert writes rec and fills its ID
func (s *Store) Insert(ctx context.Context, rec *models.APIUsageRecord) error {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO api_usage (sport, endpoint, status_code, attempts, created_at) VALUES (?, ?, ?, ?, ?)`,
		string(rec.Sport), rec.Endpoint, rec.StatusCode, rec.Attempts, createdAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert api usage: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read api usage id: %w", err)
	}
	rec.ID = id
	return nil
}

// Count returns the number of records matching filter
func (s *Store) Count(ctx context.Context, filter models.UsageFilter) (int, error) {
	where, args := whereClause(filter)

	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM api_usage`+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count api usage: %w", err)
	}
	return count, nil
}

// CountByEndpoint groups the records matching filter by endpoint
func (s *Store) CountByEndpoint(ctx context.Context, filter models.UsageFilter) (map[string]int, error) {
	where, args := whereClause(filter)

	rows, err := s.db.QueryContext(ctx,
		`SELECT endpoint, COUNT(*) FROM api_usage`+where+` GROUP BY endpoint`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count api usage by endpoint: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var endpoint string
		var n int
		if err := rows.Scan(&endpoint, &n); err != nil {
			return nil, fmt.Errorf("failed to scan api usage count: %w", err)
		}
		counts[endpoint] = n
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating api usage counts: %w", err)
	}
	return counts, nil
}

// Recent returns the newest records matching filter, newest first
func (s *Store) Recent(ctx context.Context, filter models.UsageFilter, limit int) ([]models.APIUsageRecord, error) {
	where, args := whereClause(filter)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, sport, endpoint, status_code, attempts, created_at FROM api_usage`+where+
			` ORDER BY created_at DESC, id DESC LIMIT ?`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query api usage: %w", err)
	}
	defer rows.Close()

	var records []models.APIUsageRecord
	for rows.Next() {
		var rec models.APIUsageRecord
		var sport string
		var createdAt int64
		if err := rows.Scan(&rec.ID, &sport, &rec.Endpoint, &rec.StatusCode, &rec.Attempts, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan api usage: %w", err)
		}
		rec.Sport = models.Sport(sport)
		rec.CreatedAt = time.UnixMilli(createdAt).UTC()
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating api usage: %w", err)
	}
	return records, nil
}

func whereClause(filter models.UsageFilter) (string, []any) {
	var conds []string
	var args []any

	if filter.Sport != "" {
		conds = append(conds, "sport = ?")
		args = append(args, string(filter.Sport))
	}
	if filter.Endpoint != "" {
		conds = append(conds, "endpoint = ?")
		args = append(args, filter.Endpoint)
	}
	if !filter.CreatedAfter.IsZero() {
		conds = append(conds, "created_at >= ?")
		args = append(args, filter.CreatedAfter.UnixMilli())
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
