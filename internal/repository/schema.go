package repository

// schema is applied in order by Migrate
var schema = []string{
	`CREATE TABLE IF NOT EXISTS api_usage (
		id          BIGSERIAL PRIMARY KEY,
		sport       TEXT NOT NULL,
		endpoint    TEXT NOT NULL,
		status_code INTEGER NOT NULL DEFAULT 0,
		attempts    INTEGER NOT NULL DEFAULT 1,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_api_usage_sport_created ON api_usage (sport, created_at)`,

	`CREATE TABLE IF NOT EXISTS teams (
		id         SERIAL PRIMARY KEY,
		sport      TEXT NOT NULL,
		team_id    TEXT NOT NULL,
		alias      TEXT NOT NULL DEFAULT '',
		market     TEXT,
		name       TEXT NOT NULL,
		franchise  TEXT NOT NULL DEFAULT '',
		conference TEXT,
		division   TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (sport, team_id)
	)`,

	`CREATE TABLE IF NOT EXISTS games (
		id             SERIAL PRIMARY KEY,
		sport          TEXT NOT NULL,
		game_id        TEXT NOT NULL,
		season         INTEGER NOT NULL,
		season_type    TEXT NOT NULL,
		week           INTEGER,
		status         TEXT NOT NULL,
		scheduled      TIMESTAMPTZ NOT NULL,
		home_team_id   TEXT NOT NULL,
		away_team_id   TEXT NOT NULL,
		home_alias     TEXT NOT NULL DEFAULT '',
		away_alias     TEXT NOT NULL DEFAULT '',
		home_name      TEXT NOT NULL DEFAULT '',
		away_name      TEXT NOT NULL DEFAULT '',
		home_franchise TEXT NOT NULL DEFAULT '',
		away_franchise TEXT NOT NULL DEFAULT '',
		venue_name     TEXT,
		primetime      TEXT NOT NULL DEFAULT '',
		home_points    INTEGER,
		away_points    INTEGER,
		spread         DOUBLE PRECISION,
		over_under     DOUBLE PRECISION,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (sport, game_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_games_sport_season ON games (sport, season, season_type)`,
	`ALTER TABLE games ADD COLUMN IF NOT EXISTS primetime TEXT NOT NULL DEFAULT ''`,
}
