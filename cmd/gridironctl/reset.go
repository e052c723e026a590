package main

import (
	"fmt"

	"gridiron_intel/ingestion/internal/app"

	"github.com/spf13/cobra"
)

func newResetLimiterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-limiter",
		Short: "Clear the shared rate limit window (RATE_LIMIT_BACKEND=redis)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				a.Client.ResetRateLimiter()
				fmt.Fprintln(cmd.OutOrStdout(), "rate limiter reset")
				return nil
			})
		},
	}
}
