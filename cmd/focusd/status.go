package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/goodtune/focusd/internal/clock"
	"github.com/goodtune/focusd/internal/config"
	"github.com/goodtune/focusd/internal/storage"
	"github.com/goodtune/focusd/internal/tasks"
	"github.com/goodtune/focusd/internal/trend"
)

var statusDays int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show today's usage, streak, and tasks",
	Long:  `Show today's tracked usage against the configured limits, the current focus streak, pending tasks, and a recent usage trend.`,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().IntVar(&statusDays, "days", 7, "Number of past days to include in the trend")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Create a quiet logger for status mode
	logger := zerolog.New(os.Stderr).Level(zerolog.ErrorLevel).With().Timestamp().Logger()

	store, err := openStorage(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	clk := clock.RealClock{}
	now := clk.Now()
	today := clock.DayKey(now)

	cyan := color.New(color.FgCyan, color.Bold)
	green := color.New(color.FgGreen, color.Bold)
	yellow := color.New(color.FgYellow, color.Bold)
	red := color.New(color.FgRed, color.Bold)

	fmt.Println()
	cyan.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	cyan.Printf("FOCUSD STATUS - %s\n", today)
	cyan.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	// Today's usage against configured limits
	var rec storage.UsageRecord
	if stored, err := store.Usage().GetDay(ctx, today); err != nil {
		if !storage.IsAbsent(err) {
			return fmt.Errorf("failed to read today's usage: %w", err)
		}
		rec = storage.UsageRecord{Date: today}
	} else {
		rec = stored.Clamp()
	}

	totalLimit := config.Minutes(cfg.Limits.DailyTotalLimit)
	restrictedLimit := config.Minutes(cfg.Limits.DailyRestrictedLimit)

	cyan.Println("\n[usage]")
	printBudget("Total", rec.TotalMinutes, totalLimit, green, yellow, red)
	printBudget("Restricted", rec.RestrictedMinutes, restrictedLimit, green, yellow, red)

	// Streak
	state, err := store.Streaks().Get(ctx)
	if err != nil && !storage.IsAbsent(err) {
		return fmt.Errorf("failed to read streak state: %w", err)
	}
	if state == nil {
		state = &storage.StreakState{}
	}

	cyan.Println("\n[streak]")
	fmt.Printf("Current:    %d day(s)\n", state.CurrentStreak)
	fmt.Printf("Longest:    %d day(s)\n", state.LongestStreak)
	fmt.Printf("Successful: %d day(s) total\n", state.TotalSuccessfulDays)
	for _, reward := range state.UnlockedRewards {
		green.Printf("Unlocked:   %s\n", reward)
	}

	// Tasks
	taskList, err := tasks.NewService(store.Tasks(), logger).List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}

	cyan.Println("\n[tasks]")
	if len(taskList) == 0 {
		fmt.Println("No tasks yet.")
	} else {
		fmt.Printf("Completed:  %d%%\n", tasks.CompletionPercent(taskList))
		for _, task := range taskList {
			mark := " "
			if task.Completed {
				mark = "x"
			}
			line := fmt.Sprintf("[%s] (%s) %s", mark, task.Priority, task.Title)
			if task.Completed {
				fmt.Println(line)
			} else if task.Priority == storage.PriorityHigh {
				red.Println(line)
			} else {
				fmt.Println(line)
			}
		}
	}
	fmt.Printf("\n%s\n", tasks.MotivationalQuote(today))

	// Recent trend
	if statusDays > 0 {
		source, err := trend.NewStoreSource(store.Usage(), clk, statusDays*2)
		if err != nil {
			return fmt.Errorf("failed to initialize trend source: %w", err)
		}

		from := clock.DayKey(now.AddDate(0, 0, -statusDays))
		to := clock.DayKey(now.AddDate(0, 0, -1))
		records, err := source.Days(ctx, from, to)
		if err != nil {
			return fmt.Errorf("failed to read usage history: %w", err)
		}

		stats := trend.Summary(records, totalLimit)
		cyan.Printf("\n[trend: last %d day(s)]\n", statusDays)
		fmt.Printf("Tracked days:     %d\n", stats.Days)
		fmt.Printf("Average usage:    %s/day\n", clock.FormatMinutes(stats.AverageMinutes))
		fmt.Printf("Restricted share: %d%%\n", stats.RestrictedShare)
		fmt.Printf("Days under limit: %d\n", stats.DaysUnderLimit)
	}

	fmt.Println()
	cyan.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println()

	return nil
}

// printBudget prints used minutes against a limit, colored by how close
// the usage is to the limit.
func printBudget(label string, used, limit int, green, yellow, red *color.Color) {
	line := fmt.Sprintf("%-11s %s of %s", label+":", clock.FormatMinutes(used), clock.FormatMinutes(limit))
	switch {
	case limit <= 0:
		fmt.Println(line + " (no limit)")
	case used >= limit:
		red.Println(line + "  LIMIT REACHED")
	case used*4 >= limit*3:
		yellow.Println(line)
	default:
		green.Println(line)
	}
}
