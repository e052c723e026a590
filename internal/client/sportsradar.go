package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"gridiron_intel/ingestion/internal/models"
)

// Endpoint names recorded in api_usage
const (
	EndpointSeasonSchedule  = "season_schedule"
	EndpointWeeklySchedule  = "weekly_schedule"
	EndpointGameBoxscore    = "game_boxscore"
	EndpointLeagueHierarchy = "league_hierarchy"
	EndpointStandings       = "standings"
)

// URL joins path onto sport's base URL
func (c *Client) URL(sport models.Sport, path string) (string, error) {
	base, ok := c.baseURLs[sport]
	if !ok || base == "" {
		return "", fmt.Errorf("no base URL configured for sport %q", sport)
	}
	return base + "/" + strings.TrimLeft(path, "/"), nil
}

// SeasonSchedule fetches every game of a season.
// seasonType is PRE, REG or PST.
func (c *Client) SeasonSchedule(ctx context.Context, sport models.Sport, year int, seasonType string) (*models.ScheduleResponse, error) {
	url, err := c.URL(sport, fmt.Sprintf("games/%d/%s/schedule.json", year, strings.ToUpper(seasonType)))
	if err != nil {
		return nil, err
	}

	schedule, err := Fetch[*models.ScheduleResponse](ctx, c, url, Meta{
		Sport:    sport,
		Endpoint: EndpointSeasonSchedule,
		CacheTTL: c.scheduleTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s %d %s schedule: %w", sport, year, seasonType, err)
	}
	if schedule == nil {
		return nil, &ParseError{Endpoint: EndpointSeasonSchedule, Err: fmt.Errorf("empty schedule document")}
	}

	return schedule, nil
}

// WeeklySchedule fetches one week of a football season
func (c *Client) WeeklySchedule(ctx context.Context, sport models.Sport, year int, seasonType string, week int) (*models.ScheduleResponse, error) {
	if sport == models.SportNCAAMB {
		return nil, fmt.Errorf("weekly schedules are not available for %s", sport)
	}

	url, err := c.URL(sport, fmt.Sprintf("games/%d/%s/%d/schedule.json", year, strings.ToUpper(seasonType), week))
	if err != nil {
		return nil, err
	}

	schedule, err := Fetch[*models.ScheduleResponse](ctx, c, url, Meta{
		Sport:    sport,
		Endpoint: EndpointWeeklySchedule,
		CacheTTL: c.scheduleTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s %d %s week %d schedule: %w", sport, year, seasonType, week, err)
	}
	if schedule == nil {
		return nil, &ParseError{Endpoint: EndpointWeeklySchedule, Err: fmt.Errorf("empty schedule document")}
	}

	return schedule, nil
}

// GameBoxscore fetches the raw boxscore of one game. Never cached: live games change.
func (c *Client) GameBoxscore(ctx context.Context, sport models.Sport, gameID string) (json.RawMessage, error) {
	url, err := c.URL(sport, fmt.Sprintf("games/%s/boxscore.json", gameID))
	if err != nil {
		return nil, err
	}

	boxscore, err := Fetch[json.RawMessage](ctx, c, url, Meta{Sport: sport, Endpoint: EndpointGameBoxscore})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch boxscore for game %s: %w", gameID, err)
	}

	return boxscore, nil
}

// LeagueHierarchy fetches conferences, divisions and their teams
func (c *Client) LeagueHierarchy(ctx context.Context, sport models.Sport) (*models.HierarchyResponse, error) {
	url, err := c.URL(sport, "league/hierarchy.json")
	if err != nil {
		return nil, err
	}

	hierarchy, err := Fetch[*models.HierarchyResponse](ctx, c, url, Meta{
		Sport:    sport,
		Endpoint: EndpointLeagueHierarchy,
		CacheTTL: c.hierarchyTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s league hierarchy: %w", sport, err)
	}
	if hierarchy == nil {
		return nil, &ParseError{Endpoint: EndpointLeagueHierarchy, Err: fmt.Errorf("empty hierarchy document")}
	}

	return hierarchy, nil
}

// Standings fetches the raw season standings
func (c *Client) Standings(ctx context.Context, sport models.Sport, year int, seasonType string) (json.RawMessage, error) {
	path := fmt.Sprintf("seasons/%d/%s/standings/season.json", year, strings.ToUpper(seasonType))
	if sport == models.SportNCAAMB {
		path = fmt.Sprintf("seasons/%d/%s/standings.json", year, strings.ToUpper(seasonType))
	}

	url, err := c.URL(sport, path)
	if err != nil {
		return nil, err
	}

	standings, err := Fetch[json.RawMessage](ctx, c, url, Meta{
		Sport:    sport,
		Endpoint: EndpointStandings,
		CacheTTL: c.scheduleTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s %d standings: %w", sport, year, err)
	}

	return standings, nil
}
