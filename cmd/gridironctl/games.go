package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"gridiron_intel/ingestion/internal/app"
	"gridiron_intel/ingestion/internal/models"

	"github.com/spf13/cobra"
)

func newGamesCmd() *cobra.Command {
	var sportFlag string

	cmd := &cobra.Command{
		Use:   "games",
		Short: "List stored games with scores and closing-line results",
	}
	cmd.PersistentFlags().StringVar(&sportFlag, "sport", "nfl", "sport: nfl, ncaafb or ncaamb")

	var (
		season     int
		seasonType string
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List one season's games in kickoff order",
		RunE: func(cmd *cobra.Command, args []string) error {
			sport, err := models.ParseSport(sportFlag)
			if err != nil {
				return err
			}

			return withApp(cmd.Context(), func(a *app.App) error {
				db, err := a.RequireDB()
				if err != nil {
					return err
				}
				if season == 0 {
					season = a.Config.Season(time.Now())
				}

				games, err := db.Games.ListBySeason(cmd.Context(), sport, season, seasonType)
				if err != nil {
					return err
				}
				return printGames(cmd, games)
			})
		},
	}
	list.Flags().IntVar(&season, "season", 0, "season year (default: current season)")
	list.Flags().StringVar(&seasonType, "type", "REG", "season type: PRE, REG or PST")

	active := &cobra.Command{
		Use:   "active",
		Short: "List games in progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			sport, err := models.ParseSport(sportFlag)
			if err != nil {
				return err
			}

			return withApp(cmd.Context(), func(a *app.App) error {
				db, err := a.RequireDB()
				if err != nil {
					return err
				}

				games, err := db.Games.GetActiveGames(cmd.Context(), sport)
				if err != nil {
					return err
				}
				return printGames(cmd, games)
			})
		},
	}

	show := &cobra.Command{
		Use:   "show <game-id>",
		Short: "Show one stored game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sport, err := models.ParseSport(sportFlag)
			if err != nil {
				return err
			}

			return withApp(cmd.Context(), func(a *app.App) error {
				db, err := a.RequireDB()
				if err != nil {
					return err
				}

				game, err := db.Games.GetByGameID(cmd.Context(), sport, args[0])
				if err != nil {
					return err
				}
				return printGames(cmd, []*models.Game{game})
			})
		},
	}

	cmd.AddCommand(list, active, show)
	return cmd
}

// gameRow is the printed form of a game
type gameRow struct {
	GameID       string   `json:"game_id"`
	Kickoff      string   `json:"kickoff"`
	Week         int32    `json:"week,omitempty"`
	Away         string   `json:"away"`
	Home         string   `json:"home"`
	State        string   `json:"state"`
	AwayPoints   *int32   `json:"away_points,omitempty"`
	HomePoints   *int32   `json:"home_points,omitempty"`
	Margin       *int     `json:"margin,omitempty"`
	Primetime    string   `json:"primetime,omitempty"`
	Spread       *float64 `json:"spread,omitempty"`
	SpreadResult string   `json:"spread_result,omitempty"`
	OverUnder    *float64 `json:"over_under,omitempty"`
	TotalResult  string   `json:"total_result,omitempty"`
}

// gameState collapses Sportradar statuses into upcoming, live, final or the raw status
func gameState(g *models.Game) string {
	switch {
	case g.IsActive():
		return "live"
	case g.IsFinal():
		return "final"
	case g.IsScheduled():
		return "upcoming"
	default:
		return g.Status
	}
}

func newGameRow(g *models.Game) gameRow {
	row := gameRow{
		GameID:       g.GameID,
		Kickoff:      g.Scheduled.In(models.Eastern).Format("2006-01-02 15:04 MST"),
		Away:         g.AwayName,
		Home:         g.HomeName,
		State:        gameState(g),
		Primetime:    g.Primetime,
		SpreadResult: g.SpreadResult(),
		TotalResult:  g.TotalResult(),
	}
	if g.Week.Valid {
		row.Week = g.Week.Int32
	}
	if g.AwayPoints.Valid {
		row.AwayPoints = &g.AwayPoints.Int32
	}
	if g.HomePoints.Valid {
		row.HomePoints = &g.HomePoints.Int32
	}
	if margin, ok := g.Margin(); ok {
		row.Margin = &margin
	}
	if g.Spread.Valid {
		row.Spread = &g.Spread.Float64
	}
	if g.OverUnder.Valid {
		row.OverUnder = &g.OverUnder.Float64
	}
	return row
}

func printGames(cmd *cobra.Command, games []*models.Game) error {
	rows := make([]gameRow, 0, len(games))
	for _, g := range games {
		rows = append(rows, newGameRow(g))
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), rows)
	}
	writeGamesTable(cmd.OutOrStdout(), rows)
	return nil
}

func writeGamesTable(w io.Writer, rows []gameRow) {
	fmt.Fprintf(w, "%-20s %-44s %-8s %-7s %-18s %-14s %s\n",
		"KICKOFF", "MATCHUP", "STATE", "SCORE", "PRIMETIME", "SPREAD", "TOTAL")
	for _, r := range rows {
		score := ""
		if r.AwayPoints != nil && r.HomePoints != nil {
			score = fmt.Sprintf("%d-%d", *r.AwayPoints, *r.HomePoints)
		}
		fmt.Fprintf(w, "%-20s %-44s %-8s %-7s %-18s %-14s %s\n",
			r.Kickoff, r.Away+" @ "+r.Home, r.State, score, r.Primetime,
			lineCell(r.Spread, r.SpreadResult), lineCell(r.OverUnder, r.TotalResult))
	}
}

func lineCell(v *float64, result string) string {
	if v == nil {
		return ""
	}
	cell := strconv.FormatFloat(*v, 'f', -1, 64)
	if result != "" {
		cell += " " + result
	}
	return cell
}
