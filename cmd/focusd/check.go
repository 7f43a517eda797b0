package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/goodtune/focusd/internal/config"
	"github.com/goodtune/focusd/internal/storage"
	"github.com/goodtune/focusd/internal/threshold"
)

var (
	checkTotal      string
	checkRestricted string
	checkSession    string
	checkDismissed  string
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check what alert a usage state would trigger",
	Long: `Check what alert, if any, the configured thresholds would raise for a
hypothetical usage state. Useful for tuning limits without waiting for
real usage to accumulate.`,
	Example: `  focusd check --total 4h10m --restricted 1h
  focusd check --session 12m --dismissed 5m`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkTotal, "total", "0s", "Total usage accumulated today")
	checkCmd.Flags().StringVar(&checkRestricted, "restricted", "0s", "Restricted-category usage accumulated today")
	checkCmd.Flags().StringVar(&checkSession, "session", "0s", "Length of the current continuous session")
	checkCmd.Flags().StringVar(&checkDismissed, "dismissed", "", "How long ago the last alert of each kind was dismissed")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	total, err := time.ParseDuration(checkTotal)
	if err != nil {
		return fmt.Errorf("invalid --total: %w", err)
	}
	restricted, err := time.ParseDuration(checkRestricted)
	if err != nil {
		return fmt.Errorf("invalid --restricted: %w", err)
	}
	session, err := time.ParseDuration(checkSession)
	if err != nil {
		return fmt.Errorf("invalid --session: %w", err)
	}

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	engine := threshold.NewEngine(threshold.Config{
		DailyTotalLimit:        config.Duration(cfg.Limits.DailyTotalLimit),
		DailyRestrictedLimit:   config.Duration(cfg.Limits.DailyRestrictedLimit),
		ContinuousSessionLimit: config.Duration(cfg.Limits.ContinuousSessionLimit),
		ReAlertCooldown:        config.Duration(cfg.Limits.ReAlertCooldown),
	})

	now := time.Now()
	sessionStart := now.Add(-session)

	state := storage.NotifyState{}
	if checkDismissed != "" {
		ago, err := time.ParseDuration(checkDismissed)
		if err != nil {
			return fmt.Errorf("invalid --dismissed: %w", err)
		}
		dismissedAt := now.Add(-ago)
		state.RecordDismiss(string(threshold.KindUsageLimit), dismissedAt)
		state.RecordDismiss(string(threshold.KindBreakReminder), dismissedAt)
		// A session that started before the dismissal stays on cooldown.
		if sessionStart.After(dismissedAt) {
			sessionStart = dismissedAt
		}
	}

	rec := storage.UsageRecord{
		TotalMinutes:      int(total / time.Minute),
		RestrictedMinutes: int(restricted / time.Minute),
	}

	decision := engine.Evaluate(rec, session, sessionStart, &state, now)

	printCheckResult(cfg, rec, session, decision)

	return nil
}

// printCheckResult prints the threshold check result with colors
func printCheckResult(cfg *config.Config, rec storage.UsageRecord, session time.Duration, decision threshold.Decision) {
	cyan := color.New(color.FgCyan, color.Bold)
	green := color.New(color.FgGreen, color.Bold)
	yellow := color.New(color.FgYellow, color.Bold)
	red := color.New(color.FgRed, color.Bold)

	fmt.Println()
	cyan.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	cyan.Println("THRESHOLD CHECK")
	cyan.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println()

	fmt.Printf("Total:      %dm (limit %s)\n", rec.TotalMinutes, cfg.Limits.DailyTotalLimit)
	fmt.Printf("Restricted: %dm (limit %s)\n", rec.RestrictedMinutes, cfg.Limits.DailyRestrictedLimit)
	fmt.Printf("Session:    %s (limit %s)\n", session, cfg.Limits.ContinuousSessionLimit)
	fmt.Println()

	cyan.Print("Decision:   ")
	switch decision.Kind {
	case threshold.KindUsageLimit:
		red.Println("USAGE LIMIT")
		fmt.Println("            → Daily usage limit alert would fire")
		fmt.Println("            → Dismissing starts the re-alert cooldown")
	case threshold.KindBreakReminder:
		yellow.Println("BREAK REMINDER")
		fmt.Println("            → Continuous session alert would fire")
		fmt.Println("            → Dismissing re-anchors the session clock")
	case threshold.KindNone:
		green.Println("NONE")
		fmt.Println("            → No alert at this usage level")
	default:
		fmt.Printf("UNKNOWN (%s)\n", decision.Kind)
	}

	fmt.Println()
	cyan.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println()
}
