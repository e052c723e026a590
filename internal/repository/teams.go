package repository

import (
	"context"
	"errors"
	"fmt"

	"gridiron_intel/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
)

const teamColumns = `
	id, sport, team_id, alias, market, name, franchise, conference, division,
	created_at, updated_at`

// TeamRepository handles team database operations
type TeamRepository struct {
	db *Database
}

// Upsert inserts or updates a team keyed by (sport, team_id)
func (r *TeamRepository) Upsert(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (
			sport, team_id, alias, market, name, franchise, conference, division
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (sport, team_id) DO UPDATE SET
			alias = EXCLUDED.alias,
			market = EXCLUDED.market,
			name = EXCLUDED.name,
			franchise = EXCLUDED.franchise,
			conference = EXCLUDED.conference,
			division = EXCLUDED.division,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		string(team.Sport), team.TeamID, team.Alias, team.Market, team.Name,
		team.Franchise, team.Conference, team.Division,
	).Scan(&team.ID, &team.CreatedAt, &team.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert team: %w", err)
	}

	return nil
}

// GetByTeamID retrieves a team by its Sportradar ID
func (r *TeamRepository) GetByTeamID(ctx context.Context, sport models.Sport, teamID string) (*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE sport = $1 AND team_id = $2`

	team, err := scanTeam(r.db.Pool.QueryRow(ctx, query, string(sport), teamID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("team %s/%s: %w", sport, teamID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	return team, nil
}

// List retrieves all teams of a sport
func (r *TeamRepository) List(ctx context.Context, sport models.Sport) ([]*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE sport = $1 ORDER BY market, name`
	return r.list(ctx, query, string(sport))
}

// ListByConference retrieves teams of one conference
func (r *TeamRepository) ListByConference(ctx context.Context, sport models.Sport, conference string) ([]*models.Team, error) {
	query := `SELECT ` + teamColumns + `
		FROM teams
		WHERE sport = $1 AND conference = $2
		ORDER BY market, name`
	return r.list(ctx, query, string(sport), conference)
}

func (r *TeamRepository) list(ctx context.Context, query string, args ...any) ([]*models.Team, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var teams []*models.Team
	for rows.Next() {
		team, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, team)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating teams: %w", err)
	}

	return teams, nil
}

func scanTeam(row pgx.Row) (*models.Team, error) {
	var team models.Team
	var sport string
	err := row.Scan(
		&team.ID, &sport, &team.TeamID, &team.Alias, &team.Market, &team.Name,
		&team.Franchise, &team.Conference, &team.Division,
		&team.CreatedAt, &team.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	team.Sport = models.Sport(sport)
	return &team, nil
}
