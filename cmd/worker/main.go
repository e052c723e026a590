package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gridiron_intel/ingestion/internal/app"
	"gridiron_intel/ingestion/internal/config"
	"gridiron_intel/ingestion/internal/metrics"
	"gridiron_intel/ingestion/internal/models"
	"gridiron_intel/ingestion/internal/scheduler"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

func main() {
	// Setup logger
	app.SetupLogger(os.Getenv("APP_ENV"), os.Getenv("LOG_LEVEL"))

	log.Info().Msg("Starting GridIron Intel Sportradar Ingestion Worker")

	// Load configuration
	cfg := config.MustLoad()
	log.Info().
		Str("env", cfg.AppEnv).
		Str("log_level", cfg.LogLevel).
		Msg("Configuration loaded")

	sports, err := cfg.Sports()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid SYNC_SPORTS")
	}

	// Create context that listens for cancellation
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize")
	}
	defer a.Close()

	// Start metrics HTTP server
	var srv *http.Server
	if cfg.EnableMetrics {
		srv = newMetricsServer(cfg.MetricsPort, a)
		go func() {
			log.Info().Int("port", cfg.MetricsPort).Msg("Starting metrics server")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("Metrics server failed")
			}
		}()
	}

	// Update system uptime and pool metrics
	startTime := time.Now()
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.SystemUptime.Set(time.Since(startTime).Seconds())
				if a.DB != nil {
					a.DB.UpdatePoolMetrics()
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	syncer, err := a.RequireSyncer()
	if err != nil {
		log.Fatal().Err(err).Msg("Worker cannot sync")
	}

	sched := scheduler.NewScheduler(cfg, sports, syncer, a.Tracker)

	if cfg.EnableScheduler {
		log.Info().Msg("Starting scheduler...")
		if err := sched.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to start scheduler")
		}
	}

	// Publish quota gauges right away rather than waiting for the first tick
	if err := sched.CheckUsage(ctx); err != nil {
		log.Warn().Err(err).Msg("Initial usage check failed")
	}

	// Run initial sync if enabled
	if cfg.InitialSyncEnabled {
		log.Info().Msg("Running initial data sync...")
		if err := sched.RunNightlySync(ctx); err != nil {
			log.Error().Err(err).Msg("Initial sync failed, continuing anyway...")
		} else {
			log.Info().Msg("Initial sync completed successfully")
		}
	}

	// Keep running until context is cancelled
	<-ctx.Done()
	log.Info().Msg("Received shutdown signal, gracefully shutting down...")

	if cfg.EnableScheduler {
		log.Info().Msg("Shutting down scheduler...")
		sched.Stop()
	}

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("Metrics server shutdown failed")
		}
	}

	log.Info().Msg("Worker shutdown complete")
}

// newMetricsServer serves Prometheus metrics, health and quota status
func newMetricsServer(port int, a *app.App) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	// Health check endpoint
	mux.HandleFunc("/health", healthHandler(a))

	// Quota status per sport
	mux.HandleFunc("/usage", func(w http.ResponseWriter, r *http.Request) {
		summaries := make([]models.UsageSummary, 0, len(models.Sports))
		for _, sport := range models.Sports {
			summary, err := a.Tracker.Usage(r.Context(), sport)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			summaries = append(summaries, summary)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(summaries)
	})

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// healthStatus is the /health body
type healthStatus struct {
	Status    string         `json:"status"`
	Error     string         `json:"error,omitempty"`
	Database  string         `json:"database"`
	Pool      map[string]any `json:"pool,omitempty"`
	RateLimit struct {
		Calls  int    `json:"calls"`
		Window string `json:"window"`
	} `json:"rate_limit"`
}

func healthHandler(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := healthStatus{Status: "healthy", Database: a.Config.DatabaseDriver}
		calls, window := a.Limiter.Limit()
		status.RateLimit.Calls = calls
		status.RateLimit.Window = window.String()

		code := http.StatusOK
		if a.DB != nil {
			status.Pool = a.DB.PoolStats()
			if err := a.DB.Health(r.Context()); err != nil {
				status.Status = "unhealthy"
				status.Error = err.Error()
				code = http.StatusServiceUnavailable
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(status)
	}
}
