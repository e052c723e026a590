package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gridiron_intel/ingestion/internal/app"
	"gridiron_intel/ingestion/internal/config"
	"gridiron_intel/ingestion/internal/models"

	"github.com/spf13/cobra"
)

var (
	jsonOutput bool
	rootCmd    = newRootCmd()
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "gridironctl",
		Short:         "GridIron Intel Sportradar CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			app.SetupLogger(os.Getenv("APP_ENV"), os.Getenv("LOG_LEVEL"))
		},
	}

	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print machine-readable JSON")
	cmd.AddCommand(newUsageCmd())
	cmd.AddCommand(newKeysCmd())
	cmd.AddCommand(newSyncCmd())
	cmd.AddCommand(newFetchCmd())
	cmd.AddCommand(newGamesCmd())
	cmd.AddCommand(newTeamsCmd())
	cmd.AddCommand(newResetLimiterCmd())
	return cmd
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// withApp loads configuration, wires the app and closes it after run
func withApp(ctx context.Context, run func(a *app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	return run(a)
}

// parseSports turns positional args into sports, defaulting to all of them
func parseSports(args []string) ([]models.Sport, error) {
	if len(args) == 0 {
		return models.Sports, nil
	}

	sports := make([]models.Sport, 0, len(args))
	for _, arg := range args {
		sport, err := models.ParseSport(arg)
		if err != nil {
			return nil, err
		}
		sports = append(sports, sport)
	}
	return sports, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
