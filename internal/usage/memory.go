package usage

import (
	"context"
	"sort"
	"sync"

	"gridiron_intel/ingestion/internal/models"
)

// MemoryStore keeps usage records in process memory.
// Used by tests and dry runs where no database is configured.
type MemoryStore struct {
	mu      sync.Mutex
	records []models.APIUsageRecord
	nextID  int64
}

var (
	_ Store           = (*MemoryStore)(nil)
	_ EndpointCounter = (*MemoryStore)(nil)
	_ RecentLister    = (*MemoryStore)(nil)
)

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Insert appends a copy of rec and assigns its ID
func (s *MemoryStore) Insert(ctx context.Context, rec *models.APIUsageRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	rec.ID = s.nextID
	s.records = append(s.records, *rec)
	return nil
}

// Count returns the number of records matching filter
func (s *MemoryStore) Count(ctx context.Context, filter models.UsageFilter) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, rec := range s.records {
		if Matches(rec, filter) {
			count++
		}
	}
	return count, nil
}

// CountByEndpoint groups the records matching filter by endpoint
func (s *MemoryStore) CountByEndpoint(ctx context.Context, filter models.UsageFilter) (map[string]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[string]int)
	for _, rec := range s.records {
		if Matches(rec, filter) {
			counts[rec.Endpoint]++
		}
	}
	return counts, nil
}

// Recent returns up to limit records matching filter, newest first
func (s *MemoryStore) Recent(ctx context.Context, filter models.UsageFilter, limit int) ([]models.APIUsageRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	var out []models.APIUsageRecord
	for _, rec := range s.records {
		if Matches(rec, filter) {
			out = append(out, rec)
		}
	}
	s.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Records returns a snapshot of every stored record
func (s *MemoryStore) Records() []models.APIUsageRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.APIUsageRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Matches reports whether rec satisfies filter
func Matches(rec models.APIUsageRecord, filter models.UsageFilter) bool {
	if filter.Sport != "" && rec.Sport != filter.Sport {
		return false
	}
	if filter.Endpoint != "" && rec.Endpoint != filter.Endpoint {
		return false
	}
	if !filter.CreatedAfter.IsZero() && rec.CreatedAt.Before(filter.CreatedAfter) {
		return false
	}
	return true
}
