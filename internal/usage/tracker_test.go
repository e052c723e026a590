package usage

import (
	"context"
	"errors"
	"testing"
	"time"

	"gridiron_intel/ingestion/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countStore returns a fixed count, or fails every call
type countStore struct {
	used   int
	err    error
	filter models.UsageFilter
}

func (s *countStore) Insert(context.Context, *models.APIUsageRecord) error { return s.err }

func (s *countStore) Count(_ context.Context, f models.UsageFilter) (int, error) {
	s.filter = f
	return s.used, s.err
}

func fixedClock() time.Time {
	return time.Date(2025, time.October, 18, 15, 30, 0, 0, time.UTC)
}

func TestTracker_Usage(t *testing.T) {
	tests := []struct {
		used      int
		remaining int
		warning   bool
	}{
		{150, 850, false},
		{850, 150, true},
		{1050, 0, true},
	}

	for _, tt := range tests {
		store := &countStore{used: tt.used}
		tracker := NewTracker(store, WithClock(fixedClock))

		summary, err := tracker.Usage(context.Background(), models.SportNFL)
		require.NoError(t, err)
		assert.Equal(t, models.UsageSummary{
			Sport:     models.SportNFL,
			Used:      tt.used,
			Quota:     1000,
			Remaining: tt.remaining,
			Warning:   tt.warning,
		}, summary)

		assert.Equal(t, models.SportNFL, store.filter.Sport)
		assert.Equal(t, time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC), store.filter.CreatedAfter)
	}
}

func TestTracker_UsageCountError(t *testing.T) {
	tracker := NewTracker(&countStore{err: errors.New("db down")})

	_, err := tracker.Usage(context.Background(), models.SportNCAAFB)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func TestTracker_WithQuota(t *testing.T) {
	tracker := NewTracker(&countStore{used: 450}, WithQuota(500))

	summary, err := tracker.Usage(context.Background(), models.SportNCAAMB)
	require.NoError(t, err)
	assert.Equal(t, 50, summary.Remaining)
	assert.True(t, summary.Warning)

	assert.Equal(t, DefaultQuota, NewTracker(nil, WithQuota(0)).Quota())
}

func TestTracker_LogCall(t *testing.T) {
	store := NewMemoryStore()
	tracker := NewTracker(store, WithClock(fixedClock))

	tracker.LogCall(context.Background(), models.SportNFL, "season_schedule")

	records := store.Records()
	require.Len(t, records, 1)
	assert.Equal(t, models.SportNFL, records[0].Sport)
	assert.Equal(t, "season_schedule", records[0].Endpoint)
	assert.Equal(t, 1, records[0].Attempts)
	assert.Equal(t, fixedClock(), records[0].CreatedAt)
}

func TestTracker_RecordSurvivesCancelledCaller(t *testing.T) {
	store := NewMemoryStore()
	tracker := NewTracker(store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tracker.LogCall(ctx, models.SportNFL, "season_schedule")
	assert.Len(t, store.Records(), 1)
}

func TestTracker_RecordSwallowsStoreError(t *testing.T) {
	tracker := NewTracker(&countStore{err: errors.New("insert failed")})

	assert.NotPanics(t, func() {
		tracker.LogCall(context.Background(), models.SportNFL, "season_schedule")
	})
}

func TestMemoryStore_CountFilters(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	windowStart := WindowStart(fixedClock())

	recs := []models.APIUsageRecord{
		{Sport: models.SportNFL, Endpoint: "season_schedule", CreatedAt: windowStart.Add(time.Hour)},
		{Sport: models.SportNFL, Endpoint: "game_boxscore", CreatedAt: windowStart.Add(2 * time.Hour)},
		{Sport: models.SportNFL, Endpoint: "season_schedule", CreatedAt: windowStart.Add(-time.Hour)},
		{Sport: models.SportNCAAFB, Endpoint: "season_schedule", CreatedAt: windowStart.Add(time.Hour)},
	}
	for i := range recs {
		require.NoError(t, store.Insert(ctx, &recs[i]))
	}

	count, err := store.Count(ctx, models.UsageFilter{Sport: models.SportNFL})
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	count, err = store.Count(ctx, models.UsageFilter{Sport: models.SportNFL, CreatedAfter: windowStart})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = store.Count(ctx, models.UsageFilter{Sport: models.SportNFL, Endpoint: "season_schedule", CreatedAfter: windowStart})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestWindowStart(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	// 2025-11-01 01:00 UTC is still October in New York
	now := time.Date(2025, time.October, 31, 20, 0, 0, 0, loc)
	assert.Equal(t, time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC), WindowStart(now))
}

func TestTracker_ByEndpointAndRecent(t *testing.T) {
	store := NewMemoryStore()
	tracker := NewTracker(store, WithClock(fixedClock))
	ctx := context.Background()

	lastMonth := time.Date(2025, time.September, 30, 12, 0, 0, 0, time.UTC)
	records := []*models.APIUsageRecord{
		{Sport: models.SportNFL, Endpoint: "season_schedule", CreatedAt: fixedClock().Add(-2 * time.Hour)},
		{Sport: models.SportNFL, Endpoint: "season_schedule", CreatedAt: fixedClock().Add(-time.Hour)},
		{Sport: models.SportNFL, Endpoint: "league_hierarchy", CreatedAt: fixedClock()},
		{Sport: models.SportNFL, Endpoint: "game_boxscore", CreatedAt: lastMonth},
		{Sport: models.SportNCAAFB, Endpoint: "season_schedule", CreatedAt: fixedClock()},
	}
	for _, rec := range records {
		tracker.Record(ctx, rec)
	}

	counts, err := tracker.ByEndpoint(ctx, models.SportNFL)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"season_schedule": 2, "league_hierarchy": 1}, counts)

	recent, err := tracker.Recent(ctx, models.SportNFL, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "league_hierarchy", recent[0].Endpoint)
	assert.Equal(t, fixedClock().Add(-time.Hour), recent[1].CreatedAt)

	none, err := tracker.Recent(ctx, models.SportNFL, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestTracker_BreakdownUnsupported(t *testing.T) {
	tracker := NewTracker(&countStore{})

	_, err := tracker.ByEndpoint(context.Background(), models.SportNFL)
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = tracker.Recent(context.Background(), models.SportNFL, 5)
	assert.ErrorIs(t, err, ErrUnsupported)
}
