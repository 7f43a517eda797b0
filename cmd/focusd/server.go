package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/goodtune/focusd/internal/clock"
	"github.com/goodtune/focusd/internal/config"
	"github.com/goodtune/focusd/internal/metrics"
	"github.com/goodtune/focusd/internal/notify"
	"github.com/goodtune/focusd/internal/notify/desktop"
	"github.com/goodtune/focusd/internal/storage"
	"github.com/goodtune/focusd/internal/storage/bolt"
	"github.com/goodtune/focusd/internal/storage/redis"
	"github.com/goodtune/focusd/internal/streak"
	"github.com/goodtune/focusd/internal/systemd"
	"github.com/goodtune/focusd/internal/tasks"
	"github.com/goodtune/focusd/internal/threshold"
	"github.com/goodtune/focusd/internal/usage"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start focusd daemon",
	Long:  `Start the focusd daemon with usage tracking, threshold alerts, streak bookkeeping, daily reminders, and metrics endpoints.`,
	RunE:  runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)
}

func runServer(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Setup logger
	logger := setupLogger(cfg.Logging)
	log.Logger = logger

	logger.Info().
		Str("version", version).
		Str("config", configPath).
		Msg("Starting focusd")

	// Check for systemd socket activation
	sdListeners, err := systemd.GetListeners()
	if err != nil {
		return fmt.Errorf("failed to get systemd listeners: %w", err)
	}
	if sdListeners.Activated {
		logger.Info().Msg("Running with systemd socket activation")
	}

	// Initialize storage
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
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize Usage Tracker
	usageTracker := usage.NewTracker(
		store.Usage(),
		clk,
		cfg.Limits.RestrictedCategory,
		logger,
	)

	logger.Info().Msg("Usage Tracker initialized")

	// Initialize Task Service
	taskService := tasks.NewService(store.Tasks(), logger)

	// Seed tasks from profile goals on first run
	if profile, err := store.Profiles().Get(ctx); err == nil && len(profile.Goals) > 0 {
		seeded, err := taskService.Seed(ctx, profile.Goals, clk.Now())
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to seed tasks from profile goals")
		} else if len(seeded) > 0 {
			logger.Info().Int("count", len(seeded)).Msg("Seeded tasks from profile goals")
		}
	}

	// Initialize Streak Engine
	streakEngine := streak.NewEngine(streak.Config{
		TargetTotalMinutes:      config.Minutes(cfg.Streak.TargetTotal),
		TargetRestrictedMinutes: config.Minutes(cfg.Streak.TargetRestricted),
		Milestones:              milestonesFromConfig(cfg.Streak.Milestones),
	}, logger)

	logger.Info().Msg("Streak Engine initialized")

	// Initialize Threshold Engine
	thresholdEngine := threshold.NewEngine(threshold.Config{
		DailyTotalLimit:        config.Duration(cfg.Limits.DailyTotalLimit),
		DailyRestrictedLimit:   config.Duration(cfg.Limits.DailyRestrictedLimit),
		ContinuousSessionLimit: config.Duration(cfg.Limits.ContinuousSessionLimit),
		ReAlertCooldown:        config.Duration(cfg.Limits.ReAlertCooldown),
	})

	logger.Info().Msg("Threshold Engine initialized")

	// Initialize notification sink
	sink, closeSink := openSink(cfg.Notifications, logger)
	defer closeSink()

	// Initialize Notification Scheduler
	scheduler := notify.NewScheduler(
		notify.Config{
			RevealDelay:            config.Duration(cfg.Notifications.RevealDelay),
			UsageCheckInterval:     config.Duration(cfg.Notifications.UsageCheckInterval),
			ReminderCheckInterval:  config.Duration(cfg.Notifications.ReminderCheckInterval),
			ReminderSpacing:        config.Duration(cfg.Notifications.ReminderSpacing),
			ContinuousSessionLimit: config.Duration(cfg.Limits.ContinuousSessionLimit),
			MaxDailyReminders:      cfg.Notifications.MaxDailyReminders,
			AwakeWindowHours:       cfg.Notifications.AwakeWindowHours,
			RestrictedCategory:     cfg.Limits.RestrictedCategory,
		},
		usageTracker,
		thresholdEngine,
		store,
		taskService,
		clk,
		sink,
		logger,
	)

	// Initialize Reset Scheduler
	resetScheduler := usage.NewResetScheduler(
		store,
		usageTracker,
		streakEngine,
		clk,
		cfg.Usage.RetentionDays,
		logger,
	)
	resetScheduler.OnRewards = func(rewards []string) {
		for _, reward := range rewards {
			scheduler.NotifyReward(reward)
		}
	}
	resetScheduler.OnStreakUpdate = func(state storage.StreakState) {
		logger.Info().
			Int("current", state.CurrentStreak).
			Int("longest", state.LongestStreak).
			Msg("Streak settled at day boundary")
	}

	resetScheduler.Start()
	logger.Info().Msg("Reset Scheduler initialized")

	go scheduler.Run(ctx)
	logger.Info().Msg("Notification Scheduler started")

	// Initialize Metrics Server
	metricsAddr := fmt.Sprintf("%s:%d", cfg.Server.BindAddress, cfg.Server.MetricsPort)
	metricsServer := metrics.NewServer(metricsAddr, logger)

	// Use systemd socket-activated listener if available
	if sdListeners.Activated && sdListeners.Metrics != nil {
		metricsServer.SetListener(sdListeners.Metrics)
	}

	if err := metricsServer.Start(); err != nil {
		return fmt.Errorf("failed to start Metrics Server: %w", err)
	}

	logger.Info().
		Str("addr", metricsAddr).
		Msg("Metrics Server started")

	// Log startup complete
	logger.Info().Msg("focusd startup complete")
	logger.Info().Msgf("Metrics: http://%s:%d/metrics", cfg.Server.BindAddress, cfg.Server.MetricsPort)

	// Notify systemd that we're ready
	if err := systemd.NotifyReady(); err != nil {
		logger.Warn().Err(err).Msg("Failed to send systemd ready notification")
	} else {
		logger.Debug().Msg("Sent systemd ready notification")
	}

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan

	logger.Info().Msg("Shutdown signal received, gracefully stopping...")

	// Notify systemd that we're stopping
	if err := systemd.NotifyStopping(); err != nil {
		logger.Warn().Err(err).Msg("Failed to send systemd stopping notification")
	}

	// Stop components
	cancel()
	resetScheduler.Stop()

	if err := metricsServer.Stop(); err != nil {
		logger.Error().Err(err).Msg("Error stopping Metrics Server")
	}

	logger.Info().Msg("focusd stopped")

	return nil
}

func openStorage(cfg config.StorageConfig) (storage.Store, error) {
	switch cfg.Type {
	case "bolt":
		return bolt.Open(cfg.Path)
	case "redis":
		return redis.Open(cfg.Redis)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// openSink picks the desktop notification sink when enabled and reachable,
// falling back to a logging sink.
func openSink(cfg config.NotificationsConfig, logger zerolog.Logger) (notify.Sink, func()) {
	if cfg.Desktop.Enabled {
		desktopSink, err := desktop.NewSink(logger)
		if err != nil {
			logger.Warn().Err(err).Msg("Desktop notifications unavailable, falling back to log sink")
		} else {
			logger.Info().Msg("Desktop notification sink initialized")
			return desktopSink, func() {
				if err := desktopSink.Close(); err != nil {
					logger.Error().Err(err).Msg("Failed to close desktop notification sink")
				}
			}
		}
	}

	logSink := notify.SinkFunc(func(alert notify.Alert) error {
		logger.Info().
			Str("kind", string(alert.Kind)).
			Str("title", alert.Title).
			Str("body", alert.Body).
			Msg("Alert")
		return nil
	})
	return logSink, func() {}
}

func milestonesFromConfig(configured []config.MilestoneConfig) []streak.Milestone {
	if len(configured) == 0 {
		return streak.DefaultMilestones()
	}
	milestones := make([]streak.Milestone, 0, len(configured))
	for _, m := range configured {
		milestones = append(milestones, streak.Milestone{Days: m.Days, Reward: m.Reward})
	}
	return milestones
}

// setupLogger configures the logger based on configuration
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch cfg.Level {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	// Set output format
	if cfg.Format == "text" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Default to JSON
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}
