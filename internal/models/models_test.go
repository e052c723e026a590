package models

import (
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSport(t *testing.T) {
	s, err := ParseSport(" NFL ")
	require.NoError(t, err)
	assert.Equal(t, SportNFL, s)

	_, err = ParseSport("mlb")
	assert.Error(t, err)
}

func TestSport_KeyEnvVar(t *testing.T) {
	assert.Equal(t, "SPORTSRADAR_NFL_KEY", SportNFL.KeyEnvVar())
	assert.Equal(t, "SPORTSRADAR_NCAAFB_KEY", SportNCAAFB.KeyEnvVar())
	assert.Equal(t, "SPORTSRADAR_NCAAMB_KEY", SportNCAAMB.KeyEnvVar())
}

func TestNewUsageSummary(t *testing.T) {
	tests := []struct {
		name      string
		used      int
		remaining int
		warning   bool
	}{
		{"well under quota", 150, 850, false},
		{"exactly at threshold", 800, 200, false},
		{"above threshold", 850, 150, true},
		{"over quota", 1050, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewUsageSummary(SportNFL, tt.used, 1000)
			assert.Equal(t, tt.used, s.Used)
			assert.Equal(t, 1000, s.Quota)
			assert.Equal(t, tt.remaining, s.Remaining)
			assert.Equal(t, tt.warning, s.Warning)
		})
	}
}

func TestGame_SpreadAndTotalResult(t *testing.T) {
	g := &Game{
		HomePoints: sql.NullInt32{Int32: 24, Valid: true},
		AwayPoints: sql.NullInt32{Int32: 20, Valid: true},
		Spread:     sql.NullFloat64{Float64: -3.5, Valid: true},
		OverUnder:  sql.NullFloat64{Float64: 44, Valid: true},
	}
	assert.Equal(t, ResultCovered, g.SpreadResult())
	assert.Equal(t, ResultPush, g.TotalResult())

	g.Spread.Float64 = -4
	assert.Equal(t, ResultPush, g.SpreadResult())

	g.Spread.Float64 = -7
	assert.Equal(t, ResultLost, g.SpreadResult())

	g.OverUnder.Float64 = 47.5
	assert.Equal(t, ResultUnder, g.TotalResult())

	g.AwayPoints.Valid = false
	assert.Empty(t, g.SpreadResult())
	assert.Empty(t, g.TotalResult())
}

func TestFranchise(t *testing.T) {
	assert.Equal(t, "Raiders", Franchise("Oakland Raiders"))
	assert.Equal(t, "Titans", Franchise("Houston Oilers"))
	assert.Equal(t, "Chiefs", Franchise("Kansas City Chiefs"))
	assert.Equal(t, "Washington", Franchise("Washington Football Team"))
}

func TestScheduleResponse_AllGames(t *testing.T) {
	body := `{
		"year": 2024, "type": "REG",
		"weeks": [{"sequence": 1, "games": [{
			"id": "g1", "status": "closed", "scheduled": "2024-09-06T00:20:00+00:00",
			"home": {"id": "h", "name": "Kansas City Chiefs", "alias": "KC"},
			"away": {"id": "a", "name": "Baltimore Ravens", "alias": "BAL"},
			"venue": {"name": "GEHA Field at Arrowhead Stadium"},
			"scoring": {"home_points": 27, "away_points": 20}
		}]}]
	}`

	var sched ScheduleResponse
	require.NoError(t, json.Unmarshal([]byte(body), &sched))
	assert.Equal(t, 2024, sched.SeasonYear())
	assert.Equal(t, "REG", sched.SeasonType())

	games := sched.AllGames()
	require.Len(t, games, 1)
	assert.Equal(t, 1, games[0].Week)

	game := games[0].Input.ToGame(SportNFL, 2024, "REG", games[0].Week)
	assert.Equal(t, "g1", game.GameID)
	assert.Equal(t, "KC", game.HomeAlias)
	assert.Equal(t, "Chiefs", game.HomeFranchise)
	assert.Equal(t, int32(27), game.HomePoints.Int32)
	assert.Equal(t, int32(20), game.AwayPoints.Int32)
	assert.Equal(t, int32(1), game.Week.Int32)
	assert.True(t, game.IsFinal())
	assert.Equal(t, 2024, game.Scheduled.Year())
	assert.Equal(t, PrimetimeTNF, game.Primetime, "Thursday 8:20pm Eastern kickoff")
	assert.Equal(t, "2024-09-05", game.LineDate())
}

func TestScheduleResponse_FlatBasketball(t *testing.T) {
	body := `{
		"season": {"year": 2025, "type": "REG"},
		"games": [{"id": "b1", "status": "scheduled",
			"home": {"id": "h", "name": "Blue Devils", "market": "Duke", "alias": "DUKE"},
			"away": {"id": "a", "name": "Tar Heels", "market": "North Carolina", "alias": "UNC"},
			"home_points": 70, "away_points": 65}]
	}`

	var sched ScheduleResponse
	require.NoError(t, json.Unmarshal([]byte(body), &sched))
	assert.Equal(t, 2025, sched.SeasonYear())

	games := sched.AllGames()
	require.Len(t, games, 1)
	game := games[0].Input.ToGame(SportNCAAMB, sched.SeasonYear(), sched.SeasonType(), games[0].Week)
	assert.False(t, game.Week.Valid)
	assert.Equal(t, "Duke Blue Devils", game.HomeName)
	assert.Equal(t, int32(70), game.HomePoints.Int32)
	assert.True(t, game.IsScheduled())
	assert.Empty(t, game.Primetime, "only NFL games are tagged")
}

func TestHierarchyResponse_Teams(t *testing.T) {
	body := `{"conferences": [{"name": "AFC", "divisions": [{"name": "AFC West",
		"teams": [{"id": "t1", "name": "Raiders", "market": "Las Vegas", "alias": "LV"}]}]}]}`

	var h HierarchyResponse
	require.NoError(t, json.Unmarshal([]byte(body), &h))

	teams := h.Teams(SportNFL)
	require.Len(t, teams, 1)
	assert.Equal(t, "AFC", teams[0].Conference.String)
	assert.Equal(t, "AFC West", teams[0].Division.String)
	assert.Equal(t, "Raiders", teams[0].Franchise)
}

func TestPrimetime(t *testing.T) {
	et := func(s string) time.Time {
		ts, err := time.ParseInLocation("2006-01-02 15:04", s, Eastern)
		require.NoError(t, err)
		return ts.UTC()
	}

	tests := []struct {
		name    string
		kickoff time.Time
		season  int
		want    string
	}{
		{"monday night", et("2024-09-09 20:15"), 2024, PrimetimeMNF},
		{"monday afternoon still MNF", et("2024-09-09 16:00"), 2024, PrimetimeMNF},
		{"monday before 1970", et("1965-10-04 20:00"), 1965, ""},
		{"thursday night", et("2024-09-12 20:15"), 2024, PrimetimeTNF},
		{"thanksgiving afternoon", et("2024-11-28 12:30"), 2024, PrimetimeTNF},
		{"thursday before 2006", et("2005-09-08 21:00"), 2005, ""},
		{"sunday night", et("2024-09-08 20:20"), 2024, PrimetimeSNF},
		{"sunday late afternoon", et("2024-09-08 16:25"), 2024, ""},
		{"sunday night before 1987", et("1986-09-07 20:00"), 1986, ""},
		{"saturday night", et("2024-12-21 20:00"), 2024, PrimetimeSaturday},
		{"saturday afternoon", et("2024-12-21 16:30"), 2024, ""},
		{"sunday night in UTC is monday", time.Date(2024, 9, 9, 0, 20, 0, 0, time.UTC), 2024, PrimetimeSNF},
		{"unknown kickoff", time.Time{}, 2024, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Primetime(tt.kickoff, tt.season))
		})
	}
}

func TestGame_StateHelpers(t *testing.T) {
	g := &Game{Status: StatusHalftime}
	assert.True(t, g.IsActive())
	assert.False(t, g.IsFinal())

	_, ok := g.Margin()
	assert.False(t, ok)

	g.HomePoints = sql.NullInt32{Int32: 17, Valid: true}
	g.AwayPoints = sql.NullInt32{Int32: 24, Valid: true}
	margin, ok := g.Margin()
	require.True(t, ok)
	assert.Equal(t, -7, margin)
}
