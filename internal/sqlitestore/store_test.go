package sqlitestore

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"gridiron_intel/ingestion/internal/models"
	"gridiron_intel/ingestion/internal/usage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "usage.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "usage.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, path, s.Path())
}

func TestStore_InsertAndCount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	now := time.Date(2024, 10, 15, 12, 0, 0, 0, time.UTC)
	records := []*models.APIUsageRecord{
		{Sport: models.SportNFL, Endpoint: "season_schedule", StatusCode: 200, Attempts: 1, CreatedAt: now},
		{Sport: models.SportNFL, Endpoint: "league_hierarchy", StatusCode: 200, Attempts: 1, CreatedAt: now.Add(time.Minute)},
		{Sport: models.SportNFL, Endpoint: "season_schedule", StatusCode: 200, Attempts: 1, CreatedAt: now.AddDate(0, -1, 0)},
		{Sport: models.SportNCAAFB, Endpoint: "season_schedule", StatusCode: 429, Attempts: 2, CreatedAt: now},
	}
	for _, rec := range records {
		require.NoError(t, s.Insert(ctx, rec))
		assert.NotZero(t, rec.ID)
	}

	tests := []struct {
		name   string
		filter models.UsageFilter
		want   int
	}{
		{"all", models.UsageFilter{}, 4},
		{"sport", models.UsageFilter{Sport: models.SportNFL}, 3},
		{"sport in window", models.UsageFilter{Sport: models.SportNFL, CreatedAfter: usage.WindowStart(now)}, 2},
		{"endpoint", models.UsageFilter{Endpoint: "season_schedule"}, 3},
		{"no match", models.UsageFilter{Sport: models.SportNCAAMB}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Count(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStore_Recent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Insert(ctx, &models.APIUsageRecord{
			Sport:      models.SportNFL,
			Endpoint:   "weekly_schedule",
			StatusCode: 200,
			Attempts:   1,
			CreatedAt:  base.Add(time.Duration(i) * time.Hour),
		}))
	}

	recent, err := s.Recent(ctx, models.UsageFilter{Sport: models.SportNFL}, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, base.Add(4*time.Hour), recent[0].CreatedAt)
	assert.Equal(t, models.SportNFL, recent[0].Sport)
}

func TestStore_CountByEndpoint(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	for _, endpoint := range []string{"season_schedule", "season_schedule", "standings"} {
		require.NoError(t, s.Insert(ctx, &models.APIUsageRecord{
			Sport: models.SportNCAAFB, Endpoint: endpoint, StatusCode: 200, Attempts: 1, CreatedAt: now,
		}))
	}
	require.NoError(t, s.Insert(ctx, &models.APIUsageRecord{
		Sport: models.SportNFL, Endpoint: "standings", StatusCode: 200, Attempts: 1, CreatedAt: now,
	}))

	counts, err := s.CountByEndpoint(ctx, models.UsageFilter{Sport: models.SportNCAAFB})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"season_schedule": 2, "standings": 1}, counts)
}

func TestStore_WithTracker(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tracker := usage.NewTracker(s, usage.WithQuota(10))

	var wg sync.WaitGroup
	for i := 0; i < 9; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.LogCall(ctx, models.SportNCAAMB, "season_schedule")
		}()
	}
	wg.Wait()

	summary, err := tracker.Usage(ctx, models.SportNCAAMB)
	require.NoError(t, err)
	assert.Equal(t, 9, summary.Used)
	assert.Equal(t, 1, summary.Remaining)
	assert.True(t, summary.Warning)
}

func TestStore_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Insert(ctx, &models.APIUsageRecord{Sport: models.SportNFL, Endpoint: "standings", Attempts: 1}))
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	count, err := reopened.Count(ctx, models.UsageFilter{Sport: models.SportNFL})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
