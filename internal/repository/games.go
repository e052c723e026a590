package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gridiron_intel/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// ErrNotFound is wrapped by lookups that match no row
var ErrNotFound = errors.New("not found")

const gameColumns = `
	id, sport, game_id, season, season_type, week, status, scheduled,
	home_team_id, away_team_id, home_alias, away_alias, home_name, away_name,
	home_franchise, away_franchise, venue_name, primetime, home_points, away_points,
	spread, over_under, created_at, updated_at`

// GameRepository handles game database operations
type GameRepository struct {
	db *Database
}

// Upsert inserts or updates a game keyed by (sport, game_id).
// Closing lines are kept when the incoming game carries none.
func (r *GameRepository) Upsert(ctx context.Context, game *models.Game) error {
	query := `
		INSERT INTO games (
			sport, game_id, season, season_type, week, status, scheduled,
			home_team_id, away_team_id, home_alias, away_alias, home_name, away_name,
			home_franchise, away_franchise, venue_name, primetime, home_points, away_points,
			spread, over_under
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		ON CONFLICT (sport, game_id) DO UPDATE SET
			season = EXCLUDED.season,
			season_type = EXCLUDED.season_type,
			week = EXCLUDED.week,
			status = EXCLUDED.status,
			scheduled = EXCLUDED.scheduled,
			home_team_id = EXCLUDED.home_team_id,
			away_team_id = EXCLUDED.away_team_id,
			home_alias = EXCLUDED.home_alias,
			away_alias = EXCLUDED.away_alias,
			home_name = EXCLUDED.home_name,
			away_name = EXCLUDED.away_name,
			home_franchise = EXCLUDED.home_franchise,
			away_franchise = EXCLUDED.away_franchise,
			venue_name = EXCLUDED.venue_name,
			primetime = EXCLUDED.primetime,
			home_points = EXCLUDED.home_points,
			away_points = EXCLUDED.away_points,
			spread = COALESCE(EXCLUDED.spread, games.spread),
			over_under = COALESCE(EXCLUDED.over_under, games.over_under),
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		string(game.Sport), game.GameID, game.Season, game.SeasonType, game.Week, game.Status, game.Scheduled,
		game.HomeTeamID, game.AwayTeamID, game.HomeAlias, game.AwayAlias, game.HomeName, game.AwayName,
		game.HomeFranchise, game.AwayFranchise, game.VenueName, game.Primetime, game.HomePoints, game.AwayPoints,
		game.Spread, game.OverUnder,
	).Scan(&game.ID, &game.CreatedAt, &game.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert game: %w", err)
	}

	return nil
}

// GetByGameID retrieves a game by its Sportradar ID
func (r *GameRepository) GetByGameID(ctx context.Context, sport models.Sport, gameID string) (*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE sport = $1 AND game_id = $2`

	game, err := scanGame(r.db.Pool.QueryRow(ctx, query, string(sport), gameID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("game %s/%s: %w", sport, gameID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

// ListBySeason retrieves every game of a season ordered by kickoff
func (r *GameRepository) ListBySeason(ctx context.Context, sport models.Sport, season int, seasonType string) ([]*models.Game, error) {
	query := `SELECT ` + gameColumns + `
		FROM games
		WHERE sport = $1 AND season = $2 AND season_type = $3
		ORDER BY scheduled, game_id`

	return r.list(ctx, query, string(sport), season, seasonType)
}

// GetActiveGames retrieves games currently being played
func (r *GameRepository) GetActiveGames(ctx context.Context, sport models.Sport) ([]*models.Game, error) {
	query := `SELECT ` + gameColumns + `
		FROM games
		WHERE sport = $1 AND status IN ($2, $3)
		ORDER BY scheduled`

	games, err := r.list(ctx, query, string(sport), models.StatusInProgress, models.StatusHalftime)
	if err != nil {
		return nil, err
	}

	log.Debug().Str("sport", sport.String()).Int("count", len(games)).Msg("Retrieved active games")
	return games, nil
}

// UpdateLines stores closing spread and total for a game. A null value clears that line.
func (r *GameRepository) UpdateLines(ctx context.Context, sport models.Sport, gameID string, spread, overUnder sql.NullFloat64) error {
	query := `
		UPDATE games
		SET spread = $1, over_under = $2, updated_at = NOW()
		WHERE sport = $3 AND game_id = $4
	`

	result, err := r.db.Pool.Exec(ctx, query, spread, overUnder, string(sport), gameID)
	if err != nil {
		return fmt.Errorf("failed to update game lines: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("game %s/%s: %w", sport, gameID, ErrNotFound)
	}

	return nil
}

func (r *GameRepository) list(ctx context.Context, query string, args ...any) ([]*models.Game, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query games: %w", err)
	}
	defer rows.Close()

	var games []*models.Game
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, game)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating games: %w", err)
	}

	return games, nil
}

func scanGame(row pgx.Row) (*models.Game, error) {
	var game models.Game
	var sport string
	err := row.Scan(
		&game.ID, &sport, &game.GameID, &game.Season, &game.SeasonType, &game.Week, &game.Status, &game.Scheduled,
		&game.HomeTeamID, &game.AwayTeamID, &game.HomeAlias, &game.AwayAlias, &game.HomeName, &game.AwayName,
		&game.HomeFranchise, &game.AwayFranchise, &game.VenueName, &game.Primetime, &game.HomePoints, &game.AwayPoints,
		&game.Spread, &game.OverUnder, &game.CreatedAt, &game.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	game.Sport = models.Sport(sport)
	return &game, nil
}
