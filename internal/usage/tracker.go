// Package usage accounts Sportradar calls against the monthly quota.
package usage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gridiron_intel/ingestion/internal/metrics"
	"gridiron_intel/ingestion/internal/models"

	"github.com/rs/zerolog/log"
)

// DefaultQuota is the per-sport monthly call allowance of a trial key
const DefaultQuota = 1000

// insertTimeout bounds a usage insert once it is detached from the caller
const insertTimeout = 5 * time.Second

// Store persists usage records. Implementations must be safe for concurrent use.
type Store interface {
	Insert(ctx context.Context, rec *models.APIUsageRecord) error
	Count(ctx context.Context, filter models.UsageFilter) (int, error)
}

// EndpointCounter is implemented by stores that can group a count by endpoint
type EndpointCounter interface {
	CountByEndpoint(ctx context.Context, filter models.UsageFilter) (map[string]int, error)
}

// RecentLister is implemented by stores that can list the newest records
type RecentLister interface {
	Recent(ctx context.Context, filter models.UsageFilter, limit int) ([]models.APIUsageRecord, error)
}

// ErrUnsupported is returned when the store lacks an optional capability
var ErrUnsupported = errors.New("not supported by the usage store")

// Logger is what the API client needs: record one logical call
type Logger interface {
	Record(ctx context.Context, rec *models.APIUsageRecord)
}

// NopLogger discards usage records
type NopLogger struct{}

func (NopLogger) Record(context.Context, *models.APIUsageRecord) {}

// Tracker writes usage records and summarises them against a quota
type Tracker struct {
	store Store
	quota int
	now   func() time.Time
}

var _ Logger = (*Tracker)(nil)

// Option configures a Tracker
type Option func(*Tracker)

// WithQuota overrides DefaultQuota
func WithQuota(quota int) Option {
	return func(t *Tracker) {
		if quota > 0 {
			t.quota = quota
		}
	}
}

// WithClock injects the time source used for timestamps and the accounting window
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

// NewTracker creates a tracker on store
func NewTracker(store Store, opts ...Option) *Tracker {
	t := &Tracker{
		store: store,
		quota: DefaultQuota,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Quota returns the per-sport quota
func (t *Tracker) Quota() int {
	return t.quota
}

// LogCall records one call for sport and endpoint
func (t *Tracker) LogCall(ctx context.Context, sport models.Sport, endpoint string) {
	t.Record(ctx, &models.APIUsageRecord{Sport: sport, Endpoint: endpoint})
}

// Record inserts rec. A failed insert is logged and counted but never returned:
// the fetched data matters more than one missed usage entry.
func (t *Tracker) Record(ctx context.Context, rec *models.APIUsageRecord) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = t.now().UTC()
	}
	if rec.Attempts == 0 {
		rec.Attempts = 1
	}

	// Detached so a caller cancelling right after a successful fetch does not drop the record
	insertCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), insertTimeout)
	defer cancel()

	if err := t.store.Insert(insertCtx, rec); err != nil {
		metrics.RecordError("usage", "insert_failed")
		log.Warn().
			Err(err).
			Str("sport", rec.Sport.String()).
			Str("endpoint", rec.Endpoint).
			Msg("Failed to log API usage")
		return
	}

	log.Debug().
		Str("sport", rec.Sport.String()).
		Str("endpoint", rec.Endpoint).
		Int("status", rec.StatusCode).
		Int("attempts", rec.Attempts).
		Msg("API usage logged")
}

// Usage summarises sport's calls in the current calendar month (UTC)
func (t *Tracker) Usage(ctx context.Context, sport models.Sport) (models.UsageSummary, error) {
	used, err := t.store.Count(ctx, models.UsageFilter{
		Sport:        sport,
		CreatedAfter: WindowStart(t.now()),
	})
	if err != nil {
		return models.UsageSummary{}, fmt.Errorf("failed to count API usage for %s: %w", sport, err)
	}

	return models.NewUsageSummary(sport, used, t.quota), nil
}

// WindowStart returns the first instant of now's calendar month in UTC
func WindowStart(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// ByEndpoint breaks sport's calls in the current window down per endpoint
func (t *Tracker) ByEndpoint(ctx context.Context, sport models.Sport) (map[string]int, error) {
	counter, ok := t.store.(EndpointCounter)
	if !ok {
		return nil, fmt.Errorf("count by endpoint: %w", ErrUnsupported)
	}

	counts, err := counter.CountByEndpoint(ctx, models.UsageFilter{
		Sport:        sport,
		CreatedAfter: WindowStart(t.now()),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count API usage by endpoint for %s: %w", sport, err)
	}
	return counts, nil
}

// Recent returns up to limit of sport's newest records, newest first
func (t *Tracker) Recent(ctx context.Context, sport models.Sport, limit int) ([]models.APIUsageRecord, error) {
	lister, ok := t.store.(RecentLister)
	if !ok {
		return nil, fmt.Errorf("recent usage: %w", ErrUnsupported)
	}
	if limit <= 0 {
		return nil, nil
	}

	records, err := lister.Recent(ctx, models.UsageFilter{Sport: sport}, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent API usage for %s: %w", sport, err)
	}
	return records, nil
}
