package models

import (
	"database/sql"
	"strings"
	"time"
)

// Team represents a team from a Sportradar league hierarchy
type Team struct {
	ID         int            `db:"id"`
	Sport      Sport          `db:"sport"`
	TeamID     string         `db:"team_id"` // Sportradar UUID
	Alias      string         `db:"alias"`
	Market     sql.NullString `db:"market"`
	Name       string         `db:"name"`
	Franchise  string         `db:"franchise"`
	Conference sql.NullString `db:"conference"`
	Division   sql.NullString `db:"division"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

// TeamInput is a team as listed in a hierarchy response
type TeamInput struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Market string `json:"market"`
	Alias  string `json:"alias"`
}

// HierarchyResponse is the body of league/hierarchy.json.
// The NFL nests conferences > divisions > teams, college feeds divisions > conferences > teams.
type HierarchyResponse struct {
	Conferences []HierarchyGroup `json:"conferences,omitempty"`
	Divisions   []HierarchyGroup `json:"divisions,omitempty"`
}

// HierarchyGroup is a conference or division node
type HierarchyGroup struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Alias       string           `json:"alias"`
	Conferences []HierarchyGroup `json:"conferences,omitempty"`
	Divisions   []HierarchyGroup `json:"divisions,omitempty"`
	Teams       []TeamInput      `json:"teams,omitempty"`
}

// Teams flattens the hierarchy into Team models for sport
func (h *HierarchyResponse) Teams(sport Sport) []*Team {
	var teams []*Team

	var walk func(g HierarchyGroup, conference, division string)
	walk = func(g HierarchyGroup, conference, division string) {
		for _, ti := range g.Teams {
			teams = append(teams, ti.ToTeam(sport, conference, division))
		}
		for _, d := range g.Divisions {
			walk(d, conference, d.Name)
		}
		for _, c := range g.Conferences {
			walk(c, c.Name, division)
		}
	}

	for _, c := range h.Conferences {
		walk(c, c.Name, "")
	}
	for _, d := range h.Divisions {
		walk(d, "", d.Name)
	}

	return teams
}

// ToTeam converts TeamInput (from API) to Team model
func (ti *TeamInput) ToTeam(sport Sport, conference, division string) *Team {
	team := &Team{
		Sport:  sport,
		TeamID: ti.ID,
		Alias:  ti.Alias,
		Name:   ti.Name,
	}

	fullName := ti.Name
	if ti.Market != "" {
		team.Market = sql.NullString{String: ti.Market, Valid: true}
		fullName = ti.Market + " " + ti.Name
	}
	team.Franchise = Franchise(fullName)

	if conference != "" {
		team.Conference = sql.NullString{String: conference, Valid: true}
	}
	if division != "" {
		team.Division = sql.NullString{String: division, Valid: true}
	}

	return team
}

// franchiseNames collapses relocated and renamed NFL franchises into one name
var franchiseNames = map[string]string{
	"Indianapolis Colts":       "Colts",
	"Baltimore Colts":          "Colts",
	"Las Vegas Raiders":        "Raiders",
	"Oakland Raiders":          "Raiders",
	"Los Angeles Raiders":      "Raiders",
	"Los Angeles Chargers":     "Chargers",
	"San Diego Chargers":       "Chargers",
	"Los Angeles Rams":         "Rams",
	"St. Louis Rams":           "Rams",
	"Cleveland Rams":           "Rams",
	"Tennessee Titans":         "Titans",
	"Tennessee Oilers":         "Titans",
	"Houston Oilers":           "Titans",
	"Arizona Cardinals":        "Cardinals",
	"Phoenix Cardinals":        "Cardinals",
	"St. Louis Cardinals":      "Cardinals",
	"Chicago Cardinals":        "Cardinals",
	"Washington Commanders":    "Washington",
	"Washington Football Team": "Washington",
	"Washington Redskins":      "Washington",
	"New England Patriots":     "Patriots",
	"Boston Patriots":          "Patriots",
	"Houston Texans":           "Texans",
}

// Franchise returns the franchise a full team name belongs to.
// Unmapped names fall back to their last word ("Kansas City Chiefs" -> "Chiefs").
func Franchise(fullName string) string {
	fullName = strings.TrimSpace(fullName)
	if f, ok := franchiseNames[fullName]; ok {
		return f
	}
	if i := strings.LastIndex(fullName, " "); i >= 0 {
		return fullName[i+1:]
	}
	return fullName
}
