// Package scheduler runs the nightly sync and the quota check on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"gridiron_intel/ingestion/internal/config"
	"gridiron_intel/ingestion/internal/ingest"
	"gridiron_intel/ingestion/internal/metrics"
	"gridiron_intel/ingestion/internal/models"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Syncer is what the nightly job drives
type Syncer interface {
	SyncTeams(ctx context.Context, sport models.Sport) (*ingest.SyncResult, error)
	SyncSchedule(ctx context.Context, sport models.Sport, season int, seasonType string) (*ingest.SyncResult, error)
}

// UsageReporter summarises quota consumption
type UsageReporter interface {
	Usage(ctx context.Context, sport models.Sport) (models.UsageSummary, error)
}

// Scheduler manages background tasks for data ingestion:
// a nightly refresh of teams and schedules, and a periodic quota check
type Scheduler struct {
	cfg    *config.Config
	sports []models.Sport
	syncer Syncer
	usage  UsageReporter
	cron   *cron.Cron
	now    func() time.Time

	cancel context.CancelFunc
}

// NewScheduler creates a new scheduler instance
func NewScheduler(cfg *config.Config, sports []models.Sport, syncer Syncer, usage UsageReporter) *Scheduler {
	return &Scheduler{
		cfg:    cfg,
		sports: sports,
		syncer: syncer,
		usage:  usage,
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger{}))),
		now:    time.Now,
	}
}

// Start registers the jobs and starts the cron runner
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")

	ctx, s.cancel = context.WithCancel(ctx)

	if _, err := s.cron.AddFunc(s.cfg.NightlySyncCron, s.job(ctx, "nightly_sync", s.RunNightlySync)); err != nil {
		s.cancel()
		return fmt.Errorf("failed to schedule nightly sync: %w", err)
	}

	if _, err := s.cron.AddFunc(s.cfg.UsageCheckCron, s.job(ctx, "usage_check", s.CheckUsage)); err != nil {
		s.cancel()
		return fmt.Errorf("failed to schedule usage check: %w", err)
	}

	s.cron.Start()
	log.Info().
		Str("nightly_sync", s.cfg.NightlySyncCron).
		Str("usage_check", s.cfg.UsageCheckCron).
		Int("sports", len(s.sports)).
		Msg("Scheduler started")

	return nil
}

// Stop stops the cron runner and waits for running jobs
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")

	if s.cancel != nil {
		s.cancel()
	}
	// Done fires once running jobs return
	<-s.cron.Stop().Done()

	log.Info().Msg("Scheduler stopped")
}

func (s *Scheduler) job(ctx context.Context, name string, run func(context.Context) error) func() {
	return func() {
		if ctx.Err() != nil {
			return
		}

		log.Info().Str("job", name).Msg("Running scheduled job")
		if err := run(ctx); err != nil {
			log.Error().Err(err).Str("job", name).Msg("Scheduled job failed")
		}
	}
}

// RunNightlySync refreshes teams and the current season schedule for every sport.
// One sport failing does not stop the others.
func (s *Scheduler) RunNightlySync(ctx context.Context) error {
	season := s.cfg.Season(s.now())
	var failed int

	for _, sport := range s.sports {
		if _, err := s.syncer.SyncTeams(ctx, sport); err != nil {
			failed++
			log.Error().Err(err).Str("sport", sport.String()).Msg("Team sync failed")
		}

		if _, err := s.syncer.SyncSchedule(ctx, sport, season, s.cfg.SyncSeasonType); err != nil {
			failed++
			log.Error().Err(err).Str("sport", sport.String()).Msg("Schedule sync failed")
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d syncs failed", failed, 2*len(s.sports))
	}
	return nil
}

// CheckUsage publishes quota gauges and warns when a sport is near its quota
func (s *Scheduler) CheckUsage(ctx context.Context) error {
	for _, sport := range s.sports {
		summary, err := s.usage.Usage(ctx, sport)
		if err != nil {
			return fmt.Errorf("failed to check usage for %s: %w", sport, err)
		}

		metrics.UpdateQuota(sport.String(), summary.Used, summary.Remaining)

		event := log.Info()
		if summary.Warning {
			event = log.Warn()
		}
		event.
			Str("sport", sport.String()).
			Int("used", summary.Used).
			Int("quota", summary.Quota).
			Int("remaining", summary.Remaining).
			Bool("warning", summary.Warning).
			Msg("API quota status")
	}
	return nil
}

// cronLogger routes cron's own messages through zerolog
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
