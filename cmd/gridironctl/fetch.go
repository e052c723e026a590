package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"gridiron_intel/ingestion/internal/app"
	"gridiron_intel/ingestion/internal/models"

	"github.com/spf13/cobra"
)

func newFetchCmd() *cobra.Command {
	var sportFlag string

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch one Sportradar document and print it (counts against the quota)",
	}
	cmd.PersistentFlags().StringVar(&sportFlag, "sport", "nfl", "sport: nfl, ncaafb or ncaamb")

	cmd.AddCommand(&cobra.Command{
		Use:   "boxscore <game-id>",
		Short: "Fetch a game boxscore",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sport, err := models.ParseSport(sportFlag)
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), func(a *app.App) error {
				raw, err := a.Client.GameBoxscore(cmd.Context(), sport, args[0])
				if err != nil {
					return err
				}
				return printRaw(cmd, raw)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "standings <season> [type]",
		Short: "Fetch season standings",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sport, err := models.ParseSport(sportFlag)
			if err != nil {
				return err
			}
			season, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid season %q: %w", args[0], err)
			}
			seasonType := "REG"
			if len(args) == 2 {
				seasonType = args[1]
			}
			return withApp(cmd.Context(), func(a *app.App) error {
				raw, err := a.Client.Standings(cmd.Context(), sport, season, seasonType)
				if err != nil {
					return err
				}
				return printRaw(cmd, raw)
			})
		},
	})

	var week int
	schedule := &cobra.Command{
		Use:   "schedule <season> [type]",
		Short: "Fetch a season schedule, or one week of it with --week",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sport, err := models.ParseSport(sportFlag)
			if err != nil {
				return err
			}
			season, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid season %q: %w", args[0], err)
			}
			seasonType := "REG"
			if len(args) == 2 {
				seasonType = args[1]
			}
			return withApp(cmd.Context(), func(a *app.App) error {
				var sched *models.ScheduleResponse
				if week > 0 {
					sched, err = a.Client.WeeklySchedule(cmd.Context(), sport, season, seasonType, week)
				} else {
					sched, err = a.Client.SeasonSchedule(cmd.Context(), sport, season, seasonType)
				}
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), sched)
			})
		},
	}
	schedule.Flags().IntVar(&week, "week", 0, "only this week (football only)")
	cmd.AddCommand(schedule)

	cmd.AddCommand(&cobra.Command{
		Use:   "hierarchy",
		Short: "Fetch the league hierarchy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sport, err := models.ParseSport(sportFlag)
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), func(a *app.App) error {
				hierarchy, err := a.Client.LeagueHierarchy(cmd.Context(), sport)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), hierarchy)
			})
		},
	})

	return cmd
}

func printRaw(cmd *cobra.Command, raw json.RawMessage) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), v)
}
