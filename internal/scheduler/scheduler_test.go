package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gridiron_intel/ingestion/internal/config"
	"gridiron_intel/ingestion/internal/ingest"
	"gridiron_intel/ingestion/internal/metrics"
	"gridiron_intel/ingestion/internal/models"
	"gridiron_intel/ingestion/internal/usage"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncCall struct {
	kind       string
	sport      models.Sport
	season     int
	seasonType string
}

type fakeSyncer struct {
	mu    sync.Mutex
	calls []syncCall
	fail  map[models.Sport]error
}

func (f *fakeSyncer) SyncTeams(_ context.Context, sport models.Sport) (*ingest.SyncResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, syncCall{kind: ingest.KindTeams, sport: sport})
	return &ingest.SyncResult{Kind: ingest.KindTeams, Sport: sport}, f.fail[sport]
}

func (f *fakeSyncer) SyncSchedule(_ context.Context, sport models.Sport, season int, seasonType string) (*ingest.SyncResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, syncCall{kind: ingest.KindSchedule, sport: sport, season: season, seasonType: seasonType})
	return &ingest.SyncResult{Kind: ingest.KindSchedule, Sport: sport}, f.fail[sport]
}

func testConfig() *config.Config {
	return &config.Config{
		SyncSeason:      2024,
		SyncSeasonType:  "REG",
		NightlySyncCron: "0 3 * * *",
		UsageCheckCron:  "@hourly",
	}
}

func TestRunNightlySync(t *testing.T) {
	syncer := &fakeSyncer{}
	s := NewScheduler(testConfig(), []models.Sport{models.SportNFL, models.SportNCAAMB}, syncer, nil)

	require.NoError(t, s.RunNightlySync(context.Background()))
	require.Len(t, syncer.calls, 4)
	assert.Equal(t, syncCall{kind: ingest.KindSchedule, sport: models.SportNFL, season: 2024, seasonType: "REG"}, syncer.calls[1])
	assert.Equal(t, models.SportNCAAMB, syncer.calls[3].sport)
}

func TestRunNightlySync_ContinuesAfterFailure(t *testing.T) {
	syncer := &fakeSyncer{fail: map[models.Sport]error{models.SportNFL: errors.New("upstream down")}}
	s := NewScheduler(testConfig(), []models.Sport{models.SportNFL, models.SportNCAAFB}, syncer, nil)

	err := s.RunNightlySync(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 4")
	assert.Len(t, syncer.calls, 4, "NCAAFB still synced")
}

func TestCheckUsage(t *testing.T) {
	store := usage.NewMemoryStore()
	tracker := usage.NewTracker(store, usage.WithQuota(10))
	for i := 0; i < 9; i++ {
		tracker.LogCall(context.Background(), models.SportNCAAFB, "season_schedule")
	}

	s := NewScheduler(testConfig(), []models.Sport{models.SportNCAAFB}, &fakeSyncer{}, tracker)
	require.NoError(t, s.CheckUsage(context.Background()))

	assert.Equal(t, 9.0, testutil.ToFloat64(metrics.QuotaUsed.WithLabelValues("ncaafb")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.QuotaRemaining.WithLabelValues("ncaafb")))
}

type failingUsage struct{}

func (failingUsage) Usage(context.Context, models.Sport) (models.UsageSummary, error) {
	return models.UsageSummary{}, errors.New("db down")
}

func TestCheckUsage_Error(t *testing.T) {
	s := NewScheduler(testConfig(), []models.Sport{models.SportNFL}, &fakeSyncer{}, failingUsage{})
	assert.Error(t, s.CheckUsage(context.Background()))
}

func TestStartStop(t *testing.T) {
	s := NewScheduler(testConfig(), []models.Sport{models.SportNFL}, &fakeSyncer{}, failingUsage{})

	require.NoError(t, s.Start(context.Background()))
	assert.Len(t, s.cron.Entries(), 2)

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return")
	}
}

func TestStart_InvalidCron(t *testing.T) {
	cfg := testConfig()
	cfg.NightlySyncCron = "not a cron"

	s := NewScheduler(cfg, []models.Sport{models.SportNFL}, &fakeSyncer{}, failingUsage{})
	assert.Error(t, s.Start(context.Background()))
}
