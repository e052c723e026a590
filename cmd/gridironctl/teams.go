package main

import (
	"fmt"
	"io"

	"gridiron_intel/ingestion/internal/app"
	"gridiron_intel/ingestion/internal/models"

	"github.com/spf13/cobra"
)

func newTeamsCmd() *cobra.Command {
	var (
		sportFlag  string
		conference string
		teamID     string
	)

	cmd := &cobra.Command{
		Use:   "teams",
		Short: "List stored teams, optionally one conference or one team",
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

				var teams []*models.Team
				switch {
				case teamID != "":
					var team *models.Team
					team, err = db.Teams.GetByTeamID(cmd.Context(), sport, teamID)
					teams = []*models.Team{team}
				case conference != "":
					teams, err = db.Teams.ListByConference(cmd.Context(), sport, conference)
				default:
					teams, err = db.Teams.List(cmd.Context(), sport)
				}
				if err != nil {
					return err
				}

				rows := make([]teamRow, 0, len(teams))
				for _, t := range teams {
					rows = append(rows, newTeamRow(t))
				}

				if jsonOutput {
					return printJSON(cmd.OutOrStdout(), rows)
				}
				writeTeamsTable(cmd.OutOrStdout(), rows)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&sportFlag, "sport", "nfl", "sport: nfl, ncaafb or ncaamb")
	cmd.Flags().StringVar(&conference, "conference", "", "only teams of this conference")
	cmd.Flags().StringVar(&teamID, "id", "", "only the team with this Sportradar ID")
	return cmd
}

// teamRow is the printed form of a team
type teamRow struct {
	TeamID     string `json:"team_id"`
	Alias      string `json:"alias"`
	Name       string `json:"name"`
	Franchise  string `json:"franchise"`
	Conference string `json:"conference,omitempty"`
	Division   string `json:"division,omitempty"`
}

func newTeamRow(t *models.Team) teamRow {
	name := t.Name
	if t.Market.Valid {
		name = t.Market.String + " " + t.Name
	}
	return teamRow{
		TeamID:     t.TeamID,
		Alias:      t.Alias,
		Name:       name,
		Franchise:  t.Franchise,
		Conference: t.Conference.String,
		Division:   t.Division.String,
	}
}

func writeTeamsTable(w io.Writer, rows []teamRow) {
	fmt.Fprintf(w, "%-6s %-32s %-12s %-24s %s\n", "ALIAS", "TEAM", "FRANCHISE", "CONFERENCE", "DIVISION")
	for _, r := range rows {
		fmt.Fprintf(w, "%-6s %-32s %-12s %-24s %s\n", r.Alias, r.Name, r.Franchise, r.Conference, r.Division)
	}
}
