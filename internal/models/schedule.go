package models

import (
	"database/sql"
	"time"
)

// ScheduleResponse is the body of a Sportradar season schedule.
// Football feeds nest games under weeks; basketball feeds list them flat.
type ScheduleResponse struct {
	ID     string         `json:"id"`
	Year   int            `json:"year"`
	Type   string         `json:"type"`
	Season *SeasonInfo    `json:"season,omitempty"`
	Weeks  []ScheduleWeek `json:"weeks,omitempty"`
	Games  []GameInput    `json:"games,omitempty"`
}

// SeasonInfo is the season block of basketball schedules
type SeasonInfo struct {
	ID   string `json:"id"`
	Year int    `json:"year"`
	Type string `json:"type"`
}

// ScheduleWeek is one week of a football schedule
type ScheduleWeek struct {
	ID       string      `json:"id"`
	Sequence int         `json:"sequence"`
	Title    string      `json:"title"`
	Games    []GameInput `json:"games"`
}

// ScheduledGame pairs a game with the week it was listed under (0 when unweeked)
type ScheduledGame struct {
	Week  int
	Input GameInput
}

// SeasonYear returns the season year from whichever block carries it
func (s *ScheduleResponse) SeasonYear() int {
	if s.Year != 0 {
		return s.Year
	}
	if s.Season != nil {
		return s.Season.Year
	}
	return 0
}

// SeasonType returns the season type (PRE, REG, PST, CT) from whichever block carries it
func (s *ScheduleResponse) SeasonType() string {
	if s.Type != "" {
		return s.Type
	}
	if s.Season != nil {
		return s.Season.Type
	}
	return ""
}

// AllGames flattens weekly and flat game lists
func (s *ScheduleResponse) AllGames() []ScheduledGame {
	games := make([]ScheduledGame, 0, len(s.Games))
	for _, week := range s.Weeks {
		for _, g := range week.Games {
			games = append(games, ScheduledGame{Week: week.Sequence, Input: g})
		}
	}
	for _, g := range s.Games {
		games = append(games, ScheduledGame{Input: g})
	}
	return games
}

// TeamRef is the home/away team block of a scheduled game
type TeamRef struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Market string `json:"market,omitempty"`
	Alias  string `json:"alias"`
}

// FullName returns "Market Name" when the feed splits them
func (t TeamRef) FullName() string {
	if t.Market == "" {
		return t.Name
	}
	return t.Market + " " + t.Name
}

// GameInput is a game as it appears in a Sportradar schedule
type GameInput struct {
	ID        string   `json:"id"`
	Status    string   `json:"status"`
	Scheduled string   `json:"scheduled"` // ISO 8601
	Home      TeamRef  `json:"home"`
	Away      TeamRef  `json:"away"`
	Venue     *struct {
		Name string `json:"name"`
	} `json:"venue,omitempty"`

	// Football feeds
	Scoring *struct {
		HomePoints *int `json:"home_points"`
		AwayPoints *int `json:"away_points"`
	} `json:"scoring,omitempty"`

	// Basketball feeds
	HomePoints *int `json:"home_points,omitempty"`
	AwayPoints *int `json:"away_points,omitempty"`
}

// ToGame converts a schedule entry into a Game for the given sport and season
func (gi *GameInput) ToGame(sport Sport, season int, seasonType string, week int) *Game {
	game := &Game{
		Sport:         sport,
		GameID:        gi.ID,
		Season:        season,
		SeasonType:    seasonType,
		Status:        gi.Status,
		HomeTeamID:    gi.Home.ID,
		AwayTeamID:    gi.Away.ID,
		HomeAlias:     gi.Home.Alias,
		AwayAlias:     gi.Away.Alias,
		HomeName:      gi.Home.FullName(),
		AwayName:      gi.Away.FullName(),
		HomeFranchise: Franchise(gi.Home.FullName()),
		AwayFranchise: Franchise(gi.Away.FullName()),
	}

	if week > 0 {
		game.Week = sql.NullInt32{Int32: int32(week), Valid: true}
	}

	if scheduled, err := time.Parse(time.RFC3339, gi.Scheduled); err == nil {
		game.Scheduled = scheduled.UTC()
		if sport == SportNFL {
			game.Primetime = Primetime(game.Scheduled, season)
		}
	}

	if gi.Venue != nil && gi.Venue.Name != "" {
		game.VenueName = sql.NullString{String: gi.Venue.Name, Valid: true}
	}

	home, away := gi.HomePoints, gi.AwayPoints
	if gi.Scoring != nil {
		if gi.Scoring.HomePoints != nil {
			home = gi.Scoring.HomePoints
		}
		if gi.Scoring.AwayPoints != nil {
			away = gi.Scoring.AwayPoints
		}
	}
	if home != nil {
		game.HomePoints = sql.NullInt32{Int32: int32(*home), Valid: true}
	}
	if away != nil {
		game.AwayPoints = sql.NullInt32{Int32: int32(*away), Valid: true}
	}

	return game
}
