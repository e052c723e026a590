// Package ingest pulls Sportradar schedules and hierarchies into the database.
package ingest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"gridiron_intel/ingestion/internal/client"
	"gridiron_intel/ingestion/internal/config"
	"gridiron_intel/ingestion/internal/metrics"
	"gridiron_intel/ingestion/internal/models"

	"github.com/rs/zerolog/log"
)

// Sync kinds, used as the metrics "type" label
const (
	KindSchedule = "schedule"
	KindTeams    = "teams"
	KindLines    = "lines"
)

// Fetcher is the part of the Sportradar client a sync needs
type Fetcher interface {
	SeasonSchedule(ctx context.Context, sport models.Sport, year int, seasonType string) (*models.ScheduleResponse, error)
	LeagueHierarchy(ctx context.Context, sport models.Sport) (*models.HierarchyResponse, error)
}

// GameStore persists games
type GameStore interface {
	Upsert(ctx context.Context, game *models.Game) error
	ListBySeason(ctx context.Context, sport models.Sport, season int, seasonType string) ([]*models.Game, error)
	UpdateLines(ctx context.Context, sport models.Sport, gameID string, spread, overUnder sql.NullFloat64) error
}

// TeamStore persists teams
type TeamStore interface {
	Upsert(ctx context.Context, team *models.Team) error
}

// SyncResult reports one sync run. Skipped entries are listed in Errors.
// Unmatched and Results are only filled by a lines import.
type SyncResult struct {
	Kind      string         `json:"kind"`
	Sport     models.Sport   `json:"sport"`
	Synced    int            `json:"synced"`
	Skipped   int            `json:"skipped"`
	Unmatched int            `json:"unmatched,omitempty"`
	Results   map[string]int `json:"results,omitempty"`
	Errors    []string       `json:"errors,omitempty"`
	Duration  time.Duration  `json:"duration_ns"`
}

func (r *SyncResult) skip(format string, args ...any) {
	r.Skipped++
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Syncer copies upstream data into the stores
type Syncer struct {
	api   Fetcher
	games GameStore
	teams TeamStore
}

// NewSyncer creates a syncer
func NewSyncer(api Fetcher, games GameStore, teams TeamStore) *Syncer {
	return &Syncer{api: api, games: games, teams: teams}
}

// SyncSchedule fetches a season schedule and upserts every game in it.
// A fetch failure is returned; a bad or unsaveable game is skipped.
func (s *Syncer) SyncSchedule(ctx context.Context, sport models.Sport, season int, seasonType string) (*SyncResult, error) {
	start := time.Now()
	seasonType = strings.ToUpper(seasonType)
	result := &SyncResult{Kind: KindSchedule, Sport: sport}

	log.Info().
		Str("sport", sport.String()).
		Int("season", season).
		Str("season_type", seasonType).
		Msg("Syncing schedule")

	schedule, err := s.api.SeasonSchedule(ctx, sport, season, seasonType)
	if err != nil {
		s.finish(result, start, err)
		return result, err
	}

	if year := schedule.SeasonYear(); year != 0 {
		season = year
	}
	if st := schedule.SeasonType(); st != "" {
		seasonType = strings.ToUpper(st)
	}

	for _, sg := range schedule.AllGames() {
		if err := ctx.Err(); err != nil {
			s.finish(result, start, err)
			return result, err
		}

		in := sg.Input
		if reason := invalidGame(&in); reason != "" {
			result.skip("game %q: %s", in.ID, reason)
			continue
		}

		game := in.ToGame(sport, season, seasonType, sg.Week)
		if err := s.games.Upsert(ctx, game); err != nil {
			log.Warn().Err(err).Str("game_id", in.ID).Msg("Failed to save game")
			result.skip("game %q: %v", in.ID, err)
			continue
		}
		result.Synced++
	}

	s.finish(result, start, nil)
	metrics.RecordGamesIngested(sport.String(), result.Synced)
	return result, nil
}

// SyncTeams fetches the league hierarchy and upserts every team in it
func (s *Syncer) SyncTeams(ctx context.Context, sport models.Sport) (*SyncResult, error) {
	start := time.Now()
	result := &SyncResult{Kind: KindTeams, Sport: sport}

	log.Info().Str("sport", sport.String()).Msg("Syncing teams")

	hierarchy, err := s.api.LeagueHierarchy(ctx, sport)
	if err != nil {
		s.finish(result, start, err)
		return result, err
	}

	for _, team := range hierarchy.Teams(sport) {
		if err := ctx.Err(); err != nil {
			s.finish(result, start, err)
			return result, err
		}

		if team.TeamID == "" || team.Name == "" {
			result.skip("team %q: missing id or name", team.TeamID)
			continue
		}

		if err := s.teams.Upsert(ctx, team); err != nil {
			log.Warn().Err(err).Str("team_id", team.TeamID).Msg("Failed to save team")
			result.skip("team %q: %v", team.TeamID, err)
			continue
		}
		result.Synced++
	}

	s.finish(result, start, nil)
	metrics.RecordTeamsIngested(sport.String(), result.Synced)
	return result, nil
}

func (s *Syncer) finish(result *SyncResult, start time.Time, err error) {
	result.Duration = time.Since(start)

	status := "success"
	switch {
	case err != nil:
		status = "error"
	case result.Skipped > 0:
		status = "partial"
	}
	metrics.RecordSync(result.Kind, result.Sport.String(), status, result.Skipped, result.Duration.Seconds())

	if err != nil {
		metrics.RecordError("ingest", errorType(err))
		log.Error().
			Err(err).
			Str("kind", result.Kind).
			Str("sport", result.Sport.String()).
			Msg("Sync failed")
		return
	}

	log.Info().
		Str("kind", result.Kind).
		Str("sport", result.Sport.String()).
		Int("synced", result.Synced).
		Int("skipped", result.Skipped).
		Dur("duration", result.Duration).
		Msg("Sync complete")
}

func invalidGame(in *models.GameInput) string {
	switch {
	case in.ID == "":
		return "missing game id"
	case in.Home.ID == "" || in.Away.ID == "":
		return "missing home or away team"
	case in.Scheduled == "":
		return "missing scheduled time"
	}
	if _, err := time.Parse(time.RFC3339, in.Scheduled); err != nil {
		return "unparseable scheduled time " + in.Scheduled
	}
	return ""
}

func errorType(err error) string {
	var cfgErr *config.ConfigurationError
	switch {
	case errors.As(err, &cfgErr):
		return "configuration"
	case errors.Is(err, client.ErrRateLimitExceeded):
		return "rate_limited"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "fetch_failed"
	}
}
