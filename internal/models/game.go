package models

import (
	"database/sql"
	"time"
)

// Game represents one scheduled or played game from a Sportradar schedule
type Game struct {
	ID            int            `db:"id"`
	Sport         Sport          `db:"sport"`
	GameID        string         `db:"game_id"` // Sportradar UUID
	Season        int            `db:"season"`
	SeasonType    string         `db:"season_type"`
	Week          sql.NullInt32  `db:"week"`
	Status        string         `db:"status"`
	Scheduled     time.Time      `db:"scheduled"`
	HomeTeamID    string         `db:"home_team_id"`
	AwayTeamID    string         `db:"away_team_id"`
	HomeAlias     string         `db:"home_alias"`
	AwayAlias     string         `db:"away_alias"`
	HomeName      string         `db:"home_name"`
	AwayName      string         `db:"away_name"`
	HomeFranchise string         `db:"home_franchise"`
	AwayFranchise string         `db:"away_franchise"`
	VenueName     sql.NullString `db:"venue_name"`
	Primetime     string         `db:"primetime"` // MNF, TNF, SNF, Saturday Primetime or empty

	// Scores
	HomePoints sql.NullInt32 `db:"home_points"`
	AwayPoints sql.NullInt32 `db:"away_points"`

	// Closing lines, home perspective
	Spread    sql.NullFloat64 `db:"spread"`
	OverUnder sql.NullFloat64 `db:"over_under"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Sportradar game statuses
const (
	StatusScheduled  = "scheduled"
	StatusCreated    = "created"
	StatusInProgress = "inprogress"
	StatusHalftime   = "halftime"
	StatusComplete   = "complete"
	StatusClosed     = "closed"
	StatusCancelled  = "cancelled"
	StatusPostponed  = "postponed"
)

// IsActive returns true if the game is currently in progress
func (g *Game) IsActive() bool {
	return g.Status == StatusInProgress || g.Status == StatusHalftime
}

// IsScheduled returns true if the game is scheduled but not started
func (g *Game) IsScheduled() bool {
	return g.Status == StatusScheduled || g.Status == StatusCreated
}

// IsFinal returns true if the game is completed
func (g *Game) IsFinal() bool {
	return g.Status == StatusComplete || g.Status == StatusClosed
}

// Betting results
const (
	ResultCovered = "Covered"
	ResultLost    = "Lost"
	ResultOver    = "Over"
	ResultUnder   = "Under"
	ResultPush    = "Push"
)

// SpreadResult grades the home side against the closing spread.
// Returns "" when the line or either score is missing.
func (g *Game) SpreadResult() string {
	if !g.Spread.Valid || !g.HomePoints.Valid || !g.AwayPoints.Valid {
		return ""
	}

	adjusted := float64(g.HomePoints.Int32) + g.Spread.Float64
	away := float64(g.AwayPoints.Int32)
	switch {
	case adjusted > away:
		return ResultCovered
	case adjusted < away:
		return ResultLost
	default:
		return ResultPush
	}
}

// TotalResult grades the combined score against the closing over/under
func (g *Game) TotalResult() string {
	if !g.OverUnder.Valid || !g.HomePoints.Valid || !g.AwayPoints.Valid {
		return ""
	}

	total := float64(g.HomePoints.Int32 + g.AwayPoints.Int32)
	switch {
	case total > g.OverUnder.Float64:
		return ResultOver
	case total < g.OverUnder.Float64:
		return ResultUnder
	default:
		return ResultPush
	}
}

// LineDate is the Eastern calendar date closing lines are listed under
func (g *Game) LineDate() string {
	if g.Scheduled.IsZero() {
		return ""
	}
	return g.Scheduled.In(Eastern).Format(time.DateOnly)
}

// Margin returns home minus away points, if both are known
func (g *Game) Margin() (int, bool) {
	if !g.HomePoints.Valid || !g.AwayPoints.Valid {
		return 0, false
	}
	return int(g.HomePoints.Int32 - g.AwayPoints.Int32), true
}
