package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gridiron_intel/ingestion/internal/metrics"
	"gridiron_intel/ingestion/internal/models"
	"gridiron_intel/ingestion/internal/usage"
)

// APIUsageRepository persists one row per logical Sportradar call
type APIUsageRepository struct {
	db *Database
}

var (
	_ usage.Store           = (*APIUsageRepository)(nil)
	_ usage.EndpointCounter = (*APIUsageRepository)(nil)
	_ usage.RecentLister    = (*APIUsageRepository)(nil)
)

// Insert writes rec and fills its ID. A zero CreatedAt is stamped with the current time.
func (r *APIUsageRepository) Insert(ctx context.Context, rec *models.APIUsageRecord) error {
	start := time.Now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = start.UTC()
	}
	query := `
		INSERT INTO api_usage (sport, endpoint, status_code, attempts, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		string(rec.Sport), rec.Endpoint, rec.StatusCode, rec.Attempts, rec.CreatedAt,
	).Scan(&rec.ID)

	if err != nil {
		metrics.RecordDBQuery("insert", "api_usage", "error", time.Since(start).Seconds())
		return fmt.Errorf("failed to insert api usage: %w", err)
	}

	metrics.RecordDBQuery("insert", "api_usage", "success", time.Since(start).Seconds())
	return nil
}

// Count returns the number of rows matching filter
func (r *APIUsageRepository) Count(ctx context.Context, filter models.UsageFilter) (int, error) {
	start := time.Now()
	where, args := usageWhere(filter)
	query := `SELECT COUNT(*) FROM api_usage` + where

	var count int
	err := r.db.Pool.QueryRow(ctx, query, args...).Scan(&count)
	if err != nil {
		metrics.RecordDBQuery("count", "api_usage", "error", time.Since(start).Seconds())
		return 0, fmt.Errorf("failed to count api usage: %w", err)
	}

	metrics.RecordDBQuery("count", "api_usage", "success", time.Since(start).Seconds())
	return count, nil
}

// CountByEndpoint breaks the filtered usage down per endpoint
func (r *APIUsageRepository) CountByEndpoint(ctx context.Context, filter models.UsageFilter) (map[string]int, error) {
	where, args := usageWhere(filter)
	query := `SELECT endpoint, COUNT(*) FROM api_usage` + where + ` GROUP BY endpoint ORDER BY endpoint`

	rows, err := r.db.Pool.Query(ctx, query, args...)
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

// Recent returns up to limit records matching filter, newest first
func (r *APIUsageRepository) Recent(ctx context.Context, filter models.UsageFilter, limit int) ([]models.APIUsageRecord, error) {
	where, args := usageWhere(filter)
	args = append(args, limit)
	query := `SELECT id, sport, endpoint, status_code, attempts, created_at FROM api_usage` + where +
		fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d`, len(args))

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query api usage: %w", err)
	}
	defer rows.Close()

	var records []models.APIUsageRecord
	for rows.Next() {
		var rec models.APIUsageRecord
		var sport string
		if err := rows.Scan(&rec.ID, &sport, &rec.Endpoint, &rec.StatusCode, &rec.Attempts, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan api usage: %w", err)
		}
		rec.Sport = models.Sport(sport)
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating api usage: %w", err)
	}
	return records, nil
}

func usageWhere(filter models.UsageFilter) (string, []any) {
	var conds []string
	var args []any

	if filter.Sport != "" {
		args = append(args, string(filter.Sport))
		conds = append(conds, fmt.Sprintf("sport = $%d", len(args)))
	}
	if filter.Endpoint != "" {
		args = append(args, filter.Endpoint)
		conds = append(conds, fmt.Sprintf("endpoint = $%d", len(args)))
	}
	if !filter.CreatedAfter.IsZero() {
		args = append(args, filter.CreatedAfter)
		conds = append(conds, fmt.Sprintf("created_at >= $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
