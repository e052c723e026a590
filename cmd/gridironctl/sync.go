package main

import (
	"fmt"
	"os"
	"sort"
	"time"

	"gridiron_intel/ingestion/internal/app"
	"gridiron_intel/ingestion/internal/ingest"
	"gridiron_intel/ingestion/internal/models"

	"github.com/spf13/cobra"
)

func newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Pull Sportradar data into the database",
	}
	cmd.AddCommand(newSyncScheduleCmd())
	cmd.AddCommand(newSyncTeamsCmd())
	cmd.AddCommand(newSyncLinesCmd())
	return cmd
}

func newSyncScheduleCmd() *cobra.Command {
	var (
		sportFlag  string
		season     int
		seasonType string
	)

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Sync one season schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			sport, err := models.ParseSport(sportFlag)
			if err != nil {
				return err
			}

			return withApp(cmd.Context(), func(a *app.App) error {
				syncer, err := a.RequireSyncer()
				if err != nil {
					return err
				}

				if season == 0 {
					season = a.Config.Season(time.Now())
				}

				result, err := syncer.SyncSchedule(cmd.Context(), sport, season, seasonType)
				if err != nil {
					return err
				}
				return printResult(cmd, result)
			})
		},
	}

	cmd.Flags().StringVar(&sportFlag, "sport", "nfl", "sport: nfl, ncaafb or ncaamb")
	cmd.Flags().IntVar(&season, "season", 0, "season year (default: current season)")
	cmd.Flags().StringVar(&seasonType, "type", "REG", "season type: PRE, REG or PST")
	return cmd
}

func newSyncTeamsCmd() *cobra.Command {
	var sportFlag string

	cmd := &cobra.Command{
		Use:   "teams",
		Short: "Sync the league hierarchy teams",
		RunE: func(cmd *cobra.Command, args []string) error {
			sport, err := models.ParseSport(sportFlag)
			if err != nil {
				return err
			}

			return withApp(cmd.Context(), func(a *app.App) error {
				syncer, err := a.RequireSyncer()
				if err != nil {
					return err
				}

				result, err := syncer.SyncTeams(cmd.Context(), sport)
				if err != nil {
					return err
				}
				return printResult(cmd, result)
			})
		},
	}

	cmd.Flags().StringVar(&sportFlag, "sport", "nfl", "sport: nfl, ncaafb or ncaamb")
	return cmd
}

func newSyncLinesCmd() *cobra.Command {
	var (
		sportFlag  string
		season     int
		seasonType string
		file       string
	)

	cmd := &cobra.Command{
		Use:   "lines",
		Short: "Import closing spreads and totals from a CSV file",
		Long: `Import closing lines for a stored season.

The CSV needs a header row with Date and Home Team columns plus Home Line Close
(or Spread) and/or Total Score Close (or Total). Lines are matched to games by
Eastern kickoff date and home team. Use --file - to read standard input.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sport, err := models.ParseSport(sportFlag)
			if err != nil {
				return err
			}

			lines, err := readLinesFile(cmd, file)
			if err != nil {
				return err
			}

			return withApp(cmd.Context(), func(a *app.App) error {
				syncer, err := a.RequireSyncer()
				if err != nil {
					return err
				}

				if season == 0 {
					season = a.Config.Season(time.Now())
				}

				result, err := syncer.SyncLines(cmd.Context(), sport, season, seasonType, lines)
				if err != nil {
					return err
				}
				return printResult(cmd, result)
			})
		},
	}

	cmd.Flags().StringVar(&sportFlag, "sport", "nfl", "sport: nfl, ncaafb or ncaamb")
	cmd.Flags().IntVar(&season, "season", 0, "season year (default: current season)")
	cmd.Flags().StringVar(&seasonType, "type", "REG", "season type: PRE, REG or PST")
	cmd.Flags().StringVar(&file, "file", "", "closing lines CSV, or - for stdin")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func readLinesFile(cmd *cobra.Command, path string) ([]models.ClosingLine, error) {
	if path == "-" {
		return ingest.ReadLines(cmd.InOrStdin())
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open lines file: %w", err)
	}
	defer f.Close()

	lines, err := ingest.ReadLines(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return lines, nil
}

func printResult(cmd *cobra.Command, result *ingest.SyncResult) error {
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), result)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s: synced %d, skipped %d in %s\n",
		result.Sport, result.Kind, result.Synced, result.Skipped, result.Duration.Round(time.Millisecond))
	if result.Kind == ingest.KindLines {
		fmt.Fprintf(out, "  unmatched %d\n", result.Unmatched)
		keys := make([]string, 0, len(result.Results))
		for k := range result.Results {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(out, "  %s %d\n", k, result.Results[k])
		}
	}
	for _, e := range result.Errors {
		fmt.Fprintf(out, "  skipped %s\n", e)
	}
	return nil
}
