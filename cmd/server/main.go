/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the GymFlex operations engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (config.yaml + environment)
  2. Initialize structured logging
  3. Open SQLite store
  4. Wire services, handlers, and router
  5. Register the overdue report job
  6. Start server with graceful shutdown

CONFIGURATION:
  server.address                      listen address (default :8080)
  database.path                       SQLite path, ":memory:" supported
  attendance.warning_threshold_days   expiry warning window (default 5)
  billing.overdue_report_schedule     cron expression (default "0 8 * * *")
  gym.name                            display name

  Every key can also come from the environment (SERVER_ADDRESS,
  DATABASE_PATH, ...).

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the job scheduler
  4. Close the database

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: Configuration keys and defaults
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gymflex/ops-engine/api"
	"github.com/gymflex/ops-engine/config"
	"github.com/gymflex/ops-engine/jobs"
	"github.com/gymflex/ops-engine/logging"
	"github.com/gymflex/ops-engine/store/sqlite"
)

func main() {
	configPath := flag.String("config", ".", "directory containing config.yaml")
	consoleLog := flag.Bool("console-log", true, "human-readable log output")
	flag.Parse()

	logging.Setup(*consoleLog)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Database.Path).Msg("failed to open database")
	}
	defer store.Close()

	handler := api.NewHandler(store, cfg.Attendance.WarningThresholdDays)
	router := api.NewRouter(handler)

	scheduler := jobs.NewScheduler(handler.Billing)
	if err := scheduler.Register(cfg.Billing.OverdueReportSchedule); err != nil {
		log.Fatal().Err(err).
			Str("schedule", cfg.Billing.OverdueReportSchedule).
			Msg("failed to register overdue report job")
	}
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("address", cfg.Server.Address).
			Str("gym", cfg.Gym.Name).
			Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}

	log.Info().Msg("server stopped")
}
