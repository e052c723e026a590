package main

import (
	"errors"
	"fmt"

	"gridiron_intel/ingestion/internal/config"
	"gridiron_intel/ingestion/internal/models"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type keyStatus struct {
	Sport  models.Sport `json:"sport"`
	EnvVar string       `json:"env_var"`
	Set    bool         `json:"set"`
}

func newKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "Report which Sportradar API keys are configured",
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			statuses, err := keyStatuses(config.EnvKeys{})
			if err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), statuses)
			}
			for _, s := range statuses {
				state := "missing"
				if s.Set {
					state = "set"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-8s %-24s %s\n", s.Sport, s.EnvVar, state)
			}
			return nil
		},
	}
}

// keyStatuses never exposes key values, only whether each is present
func keyStatuses(keys config.EnvKeys) ([]keyStatus, error) {
	statuses := make([]keyStatus, 0, len(models.Sports))
	for _, sport := range models.Sports {
		_, err := keys.APIKey(sport)

		var cfgErr *config.ConfigurationError
		if err != nil && !errors.As(err, &cfgErr) {
			return nil, err
		}

		statuses = append(statuses, keyStatus{
			Sport:  sport,
			EnvVar: sport.KeyEnvVar(),
			Set:    err == nil,
		})
	}
	return statuses, nil
}
