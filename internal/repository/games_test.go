//go:build integration

package repository

import (
	"database/sql"
	"testing"
	"time"

	"gridiron_intel/ingestion/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: true}
}

func newTestGame(gameID string, scheduled time.Time) *models.Game {
	return &models.Game{
		Sport:         models.SportNFL,
		GameID:        gameID,
		Season:        2024,
		SeasonType:    "REG",
		Week:          sql.NullInt32{Int32: 1, Valid: true},
		Status:        models.StatusScheduled,
		Scheduled:     scheduled,
		HomeTeamID:    "home-1",
		AwayTeamID:    "away-1",
		HomeAlias:     "KC",
		AwayAlias:     "BAL",
		HomeName:      "Kansas City Chiefs",
		AwayName:      "Baltimore Ravens",
		HomeFranchise: "Chiefs",
		AwayFranchise: "Ravens",
	}
}

func TestGameRepository_Upsert(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	game := newTestGame("g-1000", time.Now().Add(24*time.Hour).UTC().Truncate(time.Second))
	game.Primetime = models.PrimetimeSNF

	// Insert game
	err := db.Games.Upsert(ctx, game)
	require.NoError(t, err, "Should insert game")

	// Retrieve and verify
	retrieved, err := db.Games.GetByGameID(ctx, models.SportNFL, "g-1000")
	require.NoError(t, err, "Should retrieve game")
	assert.Equal(t, 2024, retrieved.Season)
	assert.Equal(t, "KC", retrieved.HomeAlias)
	assert.Equal(t, models.StatusScheduled, retrieved.Status)
	assert.False(t, retrieved.HomePoints.Valid)
	assert.Equal(t, models.PrimetimeSNF, retrieved.Primetime)

	// Update game status and scores
	game.Status = models.StatusClosed
	game.HomePoints = sql.NullInt32{Int32: 27, Valid: true}
	game.AwayPoints = sql.NullInt32{Int32: 20, Valid: true}

	err = db.Games.Upsert(ctx, game)
	require.NoError(t, err, "Should update game")

	// Verify update
	updated, err := db.Games.GetByGameID(ctx, models.SportNFL, "g-1000")
	require.NoError(t, err)
	assert.Equal(t, models.StatusClosed, updated.Status)
	assert.Equal(t, int32(27), updated.HomePoints.Int32)
	assert.Equal(t, int32(20), updated.AwayPoints.Int32)
	assert.Equal(t, retrieved.ID, updated.ID)
}

func TestGameRepository_LinesSurviveResync(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	game := newTestGame("g-2000", time.Now().UTC())
	require.NoError(t, db.Games.Upsert(ctx, game))
	require.NoError(t, db.Games.UpdateLines(ctx, models.SportNFL, "g-2000", line(-3.0), line(46.5)))

	// A schedule resync carries no lines
	require.NoError(t, db.Games.Upsert(ctx, newTestGame("g-2000", game.Scheduled)))

	stored, err := db.Games.GetByGameID(ctx, models.SportNFL, "g-2000")
	require.NoError(t, err)
	assert.Equal(t, -3.0, stored.Spread.Float64)
	assert.Equal(t, 46.5, stored.OverUnder.Float64)
}

func TestGameRepository_ListBySeason(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	base := time.Date(2024, 9, 8, 17, 0, 0, 0, time.UTC)
	require.NoError(t, db.Games.Upsert(ctx, newTestGame("late", base.Add(3*time.Hour))))
	require.NoError(t, db.Games.Upsert(ctx, newTestGame("early", base)))

	games, err := db.Games.ListBySeason(ctx, models.SportNFL, 2024, "REG")
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, "early", games[0].GameID, "Should be ordered by kickoff")

	other, err := db.Games.ListBySeason(ctx, models.SportNFL, 2024, "PST")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestGameRepository_GetActiveGames(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	live := newTestGame("live", time.Now().UTC())
	live.Status = models.StatusInProgress
	half := newTestGame("half", time.Now().UTC())
	half.Status = models.StatusHalftime
	done := newTestGame("done", time.Now().UTC())
	done.Status = models.StatusClosed

	for _, g := range []*models.Game{live, half, done} {
		require.NoError(t, db.Games.Upsert(ctx, g))
	}

	active, err := db.Games.GetActiveGames(ctx, models.SportNFL)
	require.NoError(t, err)
	assert.Len(t, active, 2)
}

func TestGameRepository_UpdateLinesNotFound(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	err := db.Games.UpdateLines(ctx, models.SportNFL, "missing", line(1), line(40))
	assert.ErrorIs(t, err, ErrNotFound)
}
