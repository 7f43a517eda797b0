package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the complete application configuration
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Limits        LimitsConfig        `mapstructure:"limits"`
	Streak        StreakConfig        `mapstructure:"streak"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	Usage         UsageConfig         `mapstructure:"usage_tracking"`
}

// ServerConfig defines daemon ports and addresses
type ServerConfig struct {
	MetricsPort int    `mapstructure:"metrics_port"`
	BindAddress string `mapstructure:"bind_address"`
}

// StorageConfig defines storage backend settings
type StorageConfig struct {
	Type  string      `mapstructure:"type"`
	Path  string      `mapstructure:"path"`
	Redis RedisConfig `mapstructure:"redis"`
}

// RedisConfig defines the Redis backend connection
type RedisConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
	DialTimeout  string `mapstructure:"dial_timeout"`
	ReadTimeout  string `mapstructure:"read_timeout"`
	WriteTimeout string `mapstructure:"write_timeout"`
}

// LoggingConfig defines logging behavior
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LimitsConfig defines the usage thresholds that trigger alerts
type LimitsConfig struct {
	DailyTotalLimit        string `mapstructure:"daily_total_limit"`
	DailyRestrictedLimit   string `mapstructure:"daily_restricted_limit"`
	ContinuousSessionLimit string `mapstructure:"continuous_session_limit"`
	ReAlertCooldown        string `mapstructure:"re_alert_cooldown"`
	RestrictedCategory     string `mapstructure:"restricted_category"`
}

// StreakConfig defines the day-over-day focus streak targets
type StreakConfig struct {
	TargetTotal      string            `mapstructure:"target_total"`
	TargetRestricted string            `mapstructure:"target_restricted"`
	Milestones       []MilestoneConfig `mapstructure:"milestones"`
}

// MilestoneConfig pairs a streak length with its reward
type MilestoneConfig struct {
	Days   int    `mapstructure:"days"`
	Reward string `mapstructure:"reward"`
}

// NotificationsConfig defines alert and reminder timing
type NotificationsConfig struct {
	RevealDelay           string        `mapstructure:"reveal_delay"`
	UsageCheckInterval    string        `mapstructure:"usage_check_interval"`
	ReminderCheckInterval string        `mapstructure:"reminder_check_interval"`
	MaxDailyReminders     int           `mapstructure:"max_daily_reminders"`
	ReminderSpacing       string        `mapstructure:"reminder_spacing"`
	AwakeWindowHours      int           `mapstructure:"awake_window_hours"`
	Desktop               DesktopConfig `mapstructure:"desktop"`
}

// DesktopConfig defines the desktop notification sink
type DesktopConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// UsageConfig defines usage history retention
type UsageConfig struct {
	RetentionDays int `mapstructure:"retention_days"`
}

// Load reads configuration from a file, environment, and defaults
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(configPath)
	v.SetEnvPrefix("FOCUSD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults and environment variables
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.metrics_port", 9090)
	v.SetDefault("server.bind_address", "127.0.0.1")

	// Storage defaults
	v.SetDefault("storage.type", "bolt")
	v.SetDefault("storage.path", "/var/lib/focusd/focusd.bolt")
	v.SetDefault("storage.redis.host", "127.0.0.1")
	v.SetDefault("storage.redis.port", 6379)
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.pool_size", 10)
	v.SetDefault("storage.redis.min_idle_conns", 2)
	v.SetDefault("storage.redis.dial_timeout", "5s")
	v.SetDefault("storage.redis.read_timeout", "3s")
	v.SetDefault("storage.redis.write_timeout", "3s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Limit defaults
	v.SetDefault("limits.daily_total_limit", "4h")
	v.SetDefault("limits.daily_restricted_limit", "2h")
	v.SetDefault("limits.continuous_session_limit", "10m")
	v.SetDefault("limits.re_alert_cooldown", "10m")
	v.SetDefault("limits.restricted_category", "social-media")

	// Streak defaults
	v.SetDefault("streak.target_total", "4h")
	v.SetDefault("streak.target_restricted", "1h30m")

	// Notification defaults
	v.SetDefault("notifications.reveal_delay", "5s")
	v.SetDefault("notifications.usage_check_interval", "30s")
	v.SetDefault("notifications.reminder_check_interval", "30m")
	v.SetDefault("notifications.max_daily_reminders", 5)
	v.SetDefault("notifications.reminder_spacing", "2h")
	v.SetDefault("notifications.awake_window_hours", 10)
	v.SetDefault("notifications.desktop.enabled", true)

	// Usage tracking defaults
	v.SetDefault("usage_tracking.retention_days", 90)
}

// validate checks configuration consistency
func validate(cfg *Config) error {
	if cfg.Server.MetricsPort <= 0 || cfg.Server.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port: %d", cfg.Server.MetricsPort)
	}

	switch cfg.Storage.Type {
	case "bolt":
		if cfg.Storage.Path == "" {
			return fmt.Errorf("storage path is required")
		}
		storageDir := filepath.Dir(cfg.Storage.Path)
		if err := os.MkdirAll(storageDir, 0755); err != nil {
			return fmt.Errorf("failed to create storage directory: %w", err)
		}
	case "redis":
		if cfg.Storage.Redis.Host == "" {
			return fmt.Errorf("redis host is required")
		}
	default:
		return fmt.Errorf("unknown storage type: %s", cfg.Storage.Type)
	}

	durations := map[string]string{
		"limits.daily_total_limit":              cfg.Limits.DailyTotalLimit,
		"limits.daily_restricted_limit":         cfg.Limits.DailyRestrictedLimit,
		"limits.continuous_session_limit":       cfg.Limits.ContinuousSessionLimit,
		"limits.re_alert_cooldown":              cfg.Limits.ReAlertCooldown,
		"streak.target_total":                   cfg.Streak.TargetTotal,
		"streak.target_restricted":              cfg.Streak.TargetRestricted,
		"notifications.reveal_delay":            cfg.Notifications.RevealDelay,
		"notifications.usage_check_interval":    cfg.Notifications.UsageCheckInterval,
		"notifications.reminder_check_interval": cfg.Notifications.ReminderCheckInterval,
		"notifications.reminder_spacing":        cfg.Notifications.ReminderSpacing,
	}
	for key, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid duration for %s: %q", key, value)
		}
	}

	if cfg.Notifications.MaxDailyReminders < 0 {
		return fmt.Errorf("max_daily_reminders cannot be negative: %d", cfg.Notifications.MaxDailyReminders)
	}
	if cfg.Notifications.AwakeWindowHours <= 0 {
		return fmt.Errorf("awake_window_hours must be positive: %d", cfg.Notifications.AwakeWindowHours)
	}
	if cfg.Usage.RetentionDays < 0 {
		return fmt.Errorf("retention_days cannot be negative: %d", cfg.Usage.RetentionDays)
	}

	for _, milestone := range cfg.Streak.Milestones {
		if milestone.Days <= 0 {
			return fmt.Errorf("milestone days must be positive: %d", milestone.Days)
		}
		if milestone.Reward == "" {
			return fmt.Errorf("milestone at %d days has no reward", milestone.Days)
		}
	}

	return nil
}

// Duration parses a duration field that validate has already checked.
func Duration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

// Minutes converts a validated duration field to whole minutes.
func Minutes(s string) int {
	return int(Duration(s) / time.Minute)
}
