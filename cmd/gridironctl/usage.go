package main

import (
	"fmt"
	"io"
	"sort"
	"time"

	"gridiron_intel/ingestion/internal/app"
	"gridiron_intel/ingestion/internal/metrics"
	"gridiron_intel/ingestion/internal/models"

	"github.com/spf13/cobra"
)

// usageReport is one sport's quota position plus the optional breakdowns
type usageReport struct {
	models.UsageSummary
	ByEndpoint map[string]int          `json:"by_endpoint,omitempty"`
	Recent     []models.APIUsageRecord `json:"recent,omitempty"`
}

func newUsageCmd() *cobra.Command {
	var (
		byEndpoint bool
		recent     int
	)

	cmd := &cobra.Command{
		Use:   "usage [sport...]",
		Short: "Show this month's Sportradar calls against the quota",
		RunE: func(cmd *cobra.Command, args []string) error {
			sports, err := parseSports(args)
			if err != nil {
				return err
			}

			return withApp(cmd.Context(), func(a *app.App) error {
				reports := make([]usageReport, 0, len(sports))
				for _, sport := range sports {
					summary, err := a.Tracker.Usage(cmd.Context(), sport)
					if err != nil {
						return err
					}
					metrics.UpdateQuota(sport.String(), summary.Used, summary.Remaining)
					report := usageReport{UsageSummary: summary}

					if byEndpoint {
						if report.ByEndpoint, err = a.Tracker.ByEndpoint(cmd.Context(), sport); err != nil {
							return err
						}
					}
					if recent > 0 {
						if report.Recent, err = a.Tracker.Recent(cmd.Context(), sport, recent); err != nil {
							return err
						}
					}
					reports = append(reports, report)
				}

				if jsonOutput {
					return printJSON(cmd.OutOrStdout(), reports)
				}
				writeUsageReports(cmd.OutOrStdout(), reports)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&byEndpoint, "by-endpoint", false, "break this month's calls down per endpoint")
	cmd.Flags().IntVar(&recent, "recent", 0, "also list the N newest calls per sport")
	return cmd
}

func writeUsageReports(w io.Writer, reports []usageReport) {
	summaries := make([]models.UsageSummary, len(reports))
	for i, r := range reports {
		summaries[i] = r.UsageSummary
	}
	writeUsageTable(w, summaries)

	for _, r := range reports {
		if len(r.ByEndpoint) > 0 {
			fmt.Fprintf(w, "\n%s by endpoint:\n", r.Sport)
			endpoints := make([]string, 0, len(r.ByEndpoint))
			for endpoint := range r.ByEndpoint {
				endpoints = append(endpoints, endpoint)
			}
			sort.Strings(endpoints)
			for _, endpoint := range endpoints {
				fmt.Fprintf(w, "  %-18s %6d\n", endpoint, r.ByEndpoint[endpoint])
			}
		}
		if len(r.Recent) > 0 {
			fmt.Fprintf(w, "\n%s recent calls:\n", r.Sport)
			for _, rec := range r.Recent {
				fmt.Fprintf(w, "  %s  %-18s status=%d attempts=%d\n",
					rec.CreatedAt.UTC().Format(time.RFC3339), rec.Endpoint, rec.StatusCode, rec.Attempts)
			}
		}
	}
}

func writeUsageTable(w io.Writer, summaries []models.UsageSummary) {
	fmt.Fprintf(w, "%-8s %6s %6s %9s %6s\n", "SPORT", "USED", "QUOTA", "REMAINING", "PCT")
	for _, s := range summaries {
		flag := ""
		if s.Warning {
			flag = "  WARNING: over 80% of quota"
		}
		fmt.Fprintf(w, "%-8s %6d %6d %9d %5.1f%%%s\n", s.Sport, s.Used, s.Quota, s.Remaining, s.Percent(), flag)
	}
}
