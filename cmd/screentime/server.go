package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goodtune/screentime/internal/analytics"
	"github.com/goodtune/screentime/internal/api"
	"github.com/goodtune/screentime/internal/clock"
	"github.com/goodtune/screentime/internal/config"
	"github.com/goodtune/screentime/internal/metrics"
	"github.com/goodtune/screentime/internal/systemd"
	"github.com/goodtune/screentime/internal/usage"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start screentime server",
	Long:  `Start the screentime HTTP API and metrics endpoints.`,
	RunE:  runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := setupLogger(cfg.Logging)
	log.Logger = logger

	logger.Info().
		Str("version", version).
		Str("config", configPath).
		Msg("Starting screentime")

	// Check for systemd socket activation
	sdListeners, err := systemd.GetListeners()
	if err != nil {
		return fmt.Errorf("failed to get systemd listeners: %w", err)
	}
	if sdListeners.Activated {
		logger.Info().Msg("Running with systemd socket activation")
	}

	store, err := openStorage(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close storage")
		}
	}()

	logger.Info().
		Str("type", cfg.Storage.Type).
		Str("path", cfg.Storage.Path).
		Msg("Storage initialized")

	clk := clock.RealClock{}

	if cfg.Storage.SeedDemoData {
		seeded, err := usage.Seed(context.Background(), store.Activity(), clk.Now())
		if err != nil {
			return fmt.Errorf("failed to seed demo data: %w", err)
		}
		if seeded > 0 {
			logger.Info().Int("sessions", seeded).Msg("Seeded demo sessions")
		}
	}

	engine := analytics.NewEngine(store.Activity(), store.Account(), analytics.Config{
		Clock: clk,
		Policy: &analytics.ScorePolicy{
			ScrollWeight: cfg.Analytics.ScrollWeight,
			FocusWeight:  cfg.Analytics.FocusWeight,
		},
	}, logger)
	recorder := usage.NewRecorder(store.Activity(), clk, logger)
	account := usage.NewAccount(store.Account(), clk, logger)

	// Retention is off unless configured
	// Running services, stopped in this order on shutdown or failed startup.
	var running []service

	if cfg.Retention.Enabled {
		retention, err := usage.NewRetentionScheduler(store.Activity(), cfg.Retention.Days, cfg.Retention.Schedule, clk, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize retention scheduler: %w", err)
		}
		retention.Start()
		running = append(running, service{name: "retention scheduler", stop: func() error {
			retention.Stop()
			return nil
		}})
	}

	apiAddr := fmt.Sprintf("%s:%d", cfg.Server.BindAddress, cfg.Server.Port)
	apiServer := api.NewServer(api.Config{
		ListenAddr:     apiAddr,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		ReadTimeout:    parseDuration(cfg.Server.ReadTimeout, 15*time.Second),
		WriteTimeout:   parseDuration(cfg.Server.WriteTimeout, 15*time.Second),
	}, store, engine, recorder, account, clk, logger)

	// Use systemd socket-activated listener if available
	if sdListeners.API != nil {
		apiServer.SetListener(sdListeners.API)
	}

	if err := apiServer.Start(); err != nil {
		stopServices(logger, running)
		return fmt.Errorf("failed to start API server: %w", err)
	}
	running = append(running, service{name: "API server", stop: apiServer.Stop})

	if cfg.Server.MetricsPort > 0 || sdListeners.Metrics != nil {
		metricsAddr := fmt.Sprintf("%s:%d", cfg.Server.BindAddress, cfg.Server.MetricsPort)
		metricsServer := metrics.NewServer(metricsAddr, logger)
		if sdListeners.Metrics != nil {
			metricsServer.SetListener(sdListeners.Metrics)
		}
		if err := metricsServer.Start(); err != nil {
			stopServices(logger, running)
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
		running = append(running, service{name: "metrics server", stop: metricsServer.Stop})
		logger.Info().Msgf("Metrics: http://%s/metrics", metricsAddr)
	}

	logger.Info().Msgf("API: http://%s/api", apiAddr)
	logger.Info().Msg("screentime startup complete")

	// Notify systemd that we're ready to serve requests
	if err := systemd.NotifyReady(); err != nil {
		logger.Warn().Err(err).Msg("Failed to send systemd ready notification")
	} else {
		logger.Debug().Msg("Sent systemd ready notification")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info().Msg("Shutdown signal received, gracefully stopping...")

	if err := systemd.NotifyStopping(); err != nil {
		logger.Warn().Err(err).Msg("Failed to send systemd stopping notification")
	}

	stopServices(logger, running)

	logger.Info().Msg("screentime stopped")

	return nil
}

// service is a started component that must be stopped before exit.
type service struct {
	name string
	stop func() error
}

// stopServices stops every service in order. A failing service is logged
// and does not prevent the rest from stopping.
func stopServices(logger zerolog.Logger, services []service) {
	for _, svc := range services {
		if err := svc.stop(); err != nil {
			logger.Error().Err(err).Msgf("Error stopping %s", svc.name)
		}
	}
}
