package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gridiron_intel/ingestion/internal/config"
	"gridiron_intel/ingestion/internal/models"
	"gridiron_intel/ingestion/internal/ratelimit"
	"gridiron_intel/ingestion/internal/usage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSportsradarClient(t *testing.T, handler http.HandlerFunc) (*Client, *usage.MemoryStore) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := usage.NewMemoryStore()
	c := NewClient(config.APIKeys{NFL: "nfl-key", NCAAMB: "cbb-key"}, Options{
		BaseURLs: map[models.Sport]string{
			models.SportNFL:    srv.URL + "/nfl/official/trial/v7/en/",
			models.SportNCAAMB: srv.URL + "/ncaamb/trial/v8/en",
		},
		Limiter: ratelimit.NewTokenBucket(100, time.Second),
		Usage:   usage.NewTracker(store),
	})
	return c, store
}

func TestSeasonSchedule(t *testing.T) {
	var gotPath string
	c, store := newSportsradarClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, `{
			"id": "season-1", "year": 2024, "type": "REG",
			"weeks": [{"sequence": 1, "games": [
				{"id": "g1", "status": "closed", "scheduled": "2024-09-06T00:20:00+00:00",
				 "home": {"id": "h1", "name": "Chiefs", "alias": "KC"},
				 "away": {"id": "a1", "name": "Ravens", "alias": "BAL"}}
			]}]
		}`)
	})

	schedule, err := c.SeasonSchedule(context.Background(), models.SportNFL, 2024, "reg")
	require.NoError(t, err)
	assert.Equal(t, "/nfl/official/trial/v7/en/games/2024/REG/schedule.json", gotPath)
	assert.Equal(t, 2024, schedule.SeasonYear())
	require.Len(t, schedule.AllGames(), 1)
	assert.Equal(t, 1, schedule.AllGames()[0].Week)

	records := store.Records()
	require.Len(t, records, 1)
	assert.Equal(t, EndpointSeasonSchedule, records[0].Endpoint)
}

func TestWeeklySchedule_NotForBasketball(t *testing.T) {
	c, store := newSportsradarClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := c.WeeklySchedule(context.Background(), models.SportNCAAMB, 2024, "REG", 1)
	require.Error(t, err)
	assert.Empty(t, store.Records())
}

func TestLeagueHierarchy(t *testing.T) {
	c, _ := newSportsradarClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/nfl/official/trial/v7/en/league/hierarchy.json", r.URL.Path)
		fmt.Fprint(w, `{"conferences": [{"name": "AFC", "divisions": [{"name": "AFC West",
			"teams": [{"id": "t1", "name": "Chiefs", "market": "Kansas City", "alias": "KC"}]}]}]}`)
	})

	hierarchy, err := c.LeagueHierarchy(context.Background(), models.SportNFL)
	require.NoError(t, err)

	teams := hierarchy.Teams(models.SportNFL)
	require.Len(t, teams, 1)
	assert.Equal(t, "AFC", teams[0].Conference.String)
	assert.Equal(t, "AFC West", teams[0].Division.String)
}

func TestStandings_BasketballPath(t *testing.T) {
	c, _ := newSportsradarClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ncaamb/trial/v8/en/seasons/2024/REG/standings.json", r.URL.Path)
		fmt.Fprint(w, `{"season": {"year": 2024}}`)
	})

	raw, err := c.Standings(context.Background(), models.SportNCAAMB, 2024, "REG")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "2024")
}

func TestGameBoxscore_UpstreamError(t *testing.T) {
	c, store := newSportsradarClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.GameBoxscore(context.Background(), models.SportNFL, "missing")
	var upErr *UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, http.StatusNotFound, upErr.StatusCode)
	assert.Len(t, store.Records(), 1)
}

func TestURL_UnknownSport(t *testing.T) {
	c, _ := newSportsradarClient(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := c.URL(models.SportNCAAFB, "league/hierarchy.json")
	assert.Error(t, err)
}
