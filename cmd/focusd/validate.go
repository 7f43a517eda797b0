package main

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/goodtune/focusd/internal/config"
)

var validateDump bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long:  `Validate the focusd configuration file for syntax and semantic errors.`,
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateDump, "dump", false, "Dump full configuration with defaults highlighted")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Configuration validation failed: %v\n", err)
		return err
	}

	// Check for unknown keys (always, not just with -dump)
	unknownKeys, err := findUnknownKeys(configPath)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "⚠️  Warning: Could not check for unknown keys: %v\n", err)
	}

	_, _ = fmt.Fprintf(os.Stdout, "✅ Configuration is valid: %s\n", configPath)

	// Warn about unknown keys
	if len(unknownKeys) > 0 {
		red := color.New(color.FgRed, color.Bold)
		fmt.Fprintln(os.Stdout)
		red.Fprintf(os.Stdout, "⚠️  WARNING: Found %d unknown configuration key(s):\n", len(unknownKeys))
		for _, key := range unknownKeys {
			red.Fprintf(os.Stdout, "   - %s\n", key)
		}
		fmt.Fprintln(os.Stdout, "\nThese keys will be ignored and may indicate typos or deprecated settings.")
	}

	// If dump requested, show full configuration with defaults highlighted
	if validateDump {
		_, _ = fmt.Fprintln(os.Stdout, "\n"+strings.Repeat("=", 80))
		_, _ = fmt.Fprintln(os.Stdout, "FULL CONFIGURATION (values different from defaults are highlighted)")
		_, _ = fmt.Fprintln(os.Stdout, strings.Repeat("=", 80))

		dumpConfig(cfg, getDefaultConfig(), unknownKeys)
	}

	return nil
}

// getDefaultConfig creates a configuration with default values
func getDefaultConfig() *config.Config {
	v := viper.New()
	setDefaultsForDump(v)

	var cfg config.Config
	_ = v.Unmarshal(&cfg)

	return &cfg
}

// setDefaultsForDump sets default configuration values (copied from config package)
func setDefaultsForDump(v *viper.Viper) {
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

// findUnknownKeys loads the config file and checks for unknown keys
func findUnknownKeys(configPath string) ([]string, error) {
	v := viper.New()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	validKeys := getValidKeys()

	unknown := []string{}
	for _, key := range v.AllKeys() {
		if !validKeys[key] {
			unknown = append(unknown, key)
		}
	}

	return unknown, nil
}

// getValidKeys returns a set of all valid configuration keys
func getValidKeys() map[string]bool {
	return map[string]bool{
		// Server
		"server.metrics_port": true,
		"server.bind_address": true,

		// Storage
		"storage.type":                 true,
		"storage.path":                 true,
		"storage.redis.host":           true,
		"storage.redis.port":           true,
		"storage.redis.password":       true,
		"storage.redis.db":             true,
		"storage.redis.pool_size":      true,
		"storage.redis.min_idle_conns": true,
		"storage.redis.dial_timeout":   true,
		"storage.redis.read_timeout":   true,
		"storage.redis.write_timeout":  true,

		// Logging
		"logging.level":  true,
		"logging.format": true,

		// Limits
		"limits.daily_total_limit":        true,
		"limits.daily_restricted_limit":   true,
		"limits.continuous_session_limit": true,
		"limits.re_alert_cooldown":        true,
		"limits.restricted_category":      true,

		// Streak
		"streak.target_total":      true,
		"streak.target_restricted": true,
		"streak.milestones":        true,

		// Notifications
		"notifications.reveal_delay":            true,
		"notifications.usage_check_interval":    true,
		"notifications.reminder_check_interval": true,
		"notifications.max_daily_reminders":     true,
		"notifications.reminder_spacing":        true,
		"notifications.awake_window_hours":      true,
		"notifications.desktop.enabled":         true,

		// Usage tracking
		"usage_tracking.retention_days": true,
	}
}

// dumpConfig dumps configuration with color highlighting for non-default values
func dumpConfig(cfg, defaultCfg *config.Config, unknownKeys []string) {
	yellow := color.New(color.FgYellow, color.Bold)
	green := color.New(color.FgGreen)
	cyan := color.New(color.FgCyan, color.Bold)

	// Server
	_, _ = cyan.Println("\n[server]")
	dumpField("  metrics_port", cfg.Server.MetricsPort, defaultCfg.Server.MetricsPort, yellow, green)
	dumpField("  bind_address", cfg.Server.BindAddress, defaultCfg.Server.BindAddress, yellow, green)

	// Storage
	_, _ = cyan.Println("\n[storage]")
	dumpField("  type", cfg.Storage.Type, defaultCfg.Storage.Type, yellow, green)
	dumpField("  path", cfg.Storage.Path, defaultCfg.Storage.Path, yellow, green)
	_, _ = cyan.Println("  [storage.redis]")
	dumpField("    host", cfg.Storage.Redis.Host, defaultCfg.Storage.Redis.Host, yellow, green)
	dumpField("    port", cfg.Storage.Redis.Port, defaultCfg.Storage.Redis.Port, yellow, green)
	dumpField("    password", redactPassword(cfg.Storage.Redis.Password), redactPassword(defaultCfg.Storage.Redis.Password), yellow, green)
	dumpField("    db", cfg.Storage.Redis.DB, defaultCfg.Storage.Redis.DB, yellow, green)
	dumpField("    pool_size", cfg.Storage.Redis.PoolSize, defaultCfg.Storage.Redis.PoolSize, yellow, green)
	dumpField("    min_idle_conns", cfg.Storage.Redis.MinIdleConns, defaultCfg.Storage.Redis.MinIdleConns, yellow, green)
	dumpField("    dial_timeout", cfg.Storage.Redis.DialTimeout, defaultCfg.Storage.Redis.DialTimeout, yellow, green)
	dumpField("    read_timeout", cfg.Storage.Redis.ReadTimeout, defaultCfg.Storage.Redis.ReadTimeout, yellow, green)
	dumpField("    write_timeout", cfg.Storage.Redis.WriteTimeout, defaultCfg.Storage.Redis.WriteTimeout, yellow, green)

	// Logging
	_, _ = cyan.Println("\n[logging]")
	dumpField("  level", cfg.Logging.Level, defaultCfg.Logging.Level, yellow, green)
	dumpField("  format", cfg.Logging.Format, defaultCfg.Logging.Format, yellow, green)

	// Limits
	_, _ = cyan.Println("\n[limits]")
	dumpField("  daily_total_limit", cfg.Limits.DailyTotalLimit, defaultCfg.Limits.DailyTotalLimit, yellow, green)
	dumpField("  daily_restricted_limit", cfg.Limits.DailyRestrictedLimit, defaultCfg.Limits.DailyRestrictedLimit, yellow, green)
	dumpField("  continuous_session_limit", cfg.Limits.ContinuousSessionLimit, defaultCfg.Limits.ContinuousSessionLimit, yellow, green)
	dumpField("  re_alert_cooldown", cfg.Limits.ReAlertCooldown, defaultCfg.Limits.ReAlertCooldown, yellow, green)
	dumpField("  restricted_category", cfg.Limits.RestrictedCategory, defaultCfg.Limits.RestrictedCategory, yellow, green)

	// Streak
	_, _ = cyan.Println("\n[streak]")
	dumpField("  target_total", cfg.Streak.TargetTotal, defaultCfg.Streak.TargetTotal, yellow, green)
	dumpField("  target_restricted", cfg.Streak.TargetRestricted, defaultCfg.Streak.TargetRestricted, yellow, green)
	dumpField("  milestones", cfg.Streak.Milestones, defaultCfg.Streak.Milestones, yellow, green)

	// Notifications
	_, _ = cyan.Println("\n[notifications]")
	dumpField("  reveal_delay", cfg.Notifications.RevealDelay, defaultCfg.Notifications.RevealDelay, yellow, green)
	dumpField("  usage_check_interval", cfg.Notifications.UsageCheckInterval, defaultCfg.Notifications.UsageCheckInterval, yellow, green)
	dumpField("  reminder_check_interval", cfg.Notifications.ReminderCheckInterval, defaultCfg.Notifications.ReminderCheckInterval, yellow, green)
	dumpField("  max_daily_reminders", cfg.Notifications.MaxDailyReminders, defaultCfg.Notifications.MaxDailyReminders, yellow, green)
	dumpField("  reminder_spacing", cfg.Notifications.ReminderSpacing, defaultCfg.Notifications.ReminderSpacing, yellow, green)
	dumpField("  awake_window_hours", cfg.Notifications.AwakeWindowHours, defaultCfg.Notifications.AwakeWindowHours, yellow, green)
	dumpField("  desktop.enabled", cfg.Notifications.Desktop.Enabled, defaultCfg.Notifications.Desktop.Enabled, yellow, green)

	// Usage tracking
	_, _ = cyan.Println("\n[usage_tracking]")
	dumpField("  retention_days", cfg.Usage.RetentionDays, defaultCfg.Usage.RetentionDays, yellow, green)

	// Display unknown keys if any
	if len(unknownKeys) > 0 {
		red := color.New(color.FgRed, color.Bold)

		_, _ = cyan.Println("\n[UNKNOWN KEYS - These will be ignored!]")
		for _, key := range unknownKeys {
			_, _ = red.Printf("  %s = (unknown key - check for typos)\n", key)
		}
	}

	_, _ = fmt.Fprintln(os.Stdout, "\n"+strings.Repeat("=", 80))
}

// dumpField prints a field with color if it differs from default
func dumpField(name string, value, defaultValue interface{}, modifiedColor, defaultColor *color.Color) {
	isDefault := reflect.DeepEqual(value, defaultValue)

	valueStr := fmt.Sprintf("%v", value)

	if isDefault {
		_, _ = defaultColor.Printf("%s = %s\n", name, valueStr)
	} else {
		_, _ = modifiedColor.Printf("%s = %s  (modified from default: %v)\n", name, valueStr, defaultValue)
	}
}

// redactPassword redacts password if not empty
func redactPassword(password string) string {
	if password == "" {
		return ""
	}
	return "***REDACTED***"
}
