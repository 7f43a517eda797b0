package usage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/goodtune/focusd/internal/clock"
	"github.com/goodtune/focusd/internal/storage"
	"github.com/goodtune/focusd/internal/storage/bolt"
	"github.com/goodtune/focusd/internal/streak"
)

func newTestResetScheduler(t *testing.T) (*ResetScheduler, *clock.TestClock, storage.Store) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "focusd.bolt")
	store, err := bolt.Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	clk := &clock.TestClock{
		CurrentTime: time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC),
	}
	tracker := NewTracker(store.Usage(), clk, restrictedCategory, zerolog.Nop())
	engine := streak.NewEngine(streak.Config{
		TargetTotalMinutes:      240,
		TargetRestrictedMinutes: 90,
		Milestones:              []streak.Milestone{{Days: 1, Reward: "first-day"}},
	}, zerolog.Nop())

	rs := NewResetScheduler(store, tracker, engine, clk, 90, zerolog.Nop())
	return rs, clk, store
}

func TestPerformResetCreditsQualifyingDay(t *testing.T) {
	rs, _, store := newTestResetScheduler(t)
	ctx := context.Background()

	if err := store.Usage().AddMinutes(ctx, "2026-01-05", 215, 73); err != nil {
		t.Fatalf("seed usage: %v", err)
	}

	var gotRewards []string
	var gotState *storage.StreakState
	rs.OnRewards = func(rewards []string) { gotRewards = rewards }
	rs.OnStreakUpdate = func(state storage.StreakState) { gotState = &state }

	rs.PerformReset(ctx, "2026-01-05")

	state, err := store.Streaks().Get(ctx)
	if err != nil {
		t.Fatalf("get streak state: %v", err)
	}
	if state.CurrentStreak != 1 {
		t.Errorf("expected streak 1, got %d", state.CurrentStreak)
	}
	if state.LastSuccessfulDate != "2026-01-05" {
		t.Errorf("expected credited day, got %q", state.LastSuccessfulDate)
	}
	if len(gotRewards) != 1 || gotRewards[0] != "first-day" {
		t.Errorf("expected first-day reward callback, got %v", gotRewards)
	}
	if gotState == nil || gotState.CurrentStreak != 1 {
		t.Errorf("expected streak update callback, got %+v", gotState)
	}
}

func TestPerformResetFailsOverLimitDay(t *testing.T) {
	rs, _, store := newTestResetScheduler(t)
	ctx := context.Background()

	if err := store.Usage().AddMinutes(ctx, "2026-01-05", 300, 120); err != nil {
		t.Fatalf("seed usage: %v", err)
	}
	if err := store.Streaks().Put(ctx, storage.StreakState{
		CurrentStreak: 5,
		LongestStreak: 5,
	}); err != nil {
		t.Fatalf("seed streak: %v", err)
	}

	rs.PerformReset(ctx, "2026-01-05")

	state, err := store.Streaks().Get(ctx)
	if err != nil {
		t.Fatalf("get streak state: %v", err)
	}
	if state.CurrentStreak != 0 {
		t.Errorf("expected streak reset, got %d", state.CurrentStreak)
	}
	if state.LongestStreak != 5 {
		t.Errorf("expected longest streak kept, got %d", state.LongestStreak)
	}
}

func TestPerformResetMissingDayQualifies(t *testing.T) {
	rs, _, store := newTestResetScheduler(t)
	ctx := context.Background()

	// A day with no recorded usage is a zero-usage day and qualifies.
	rs.PerformReset(ctx, "2026-01-05")

	state, err := store.Streaks().Get(ctx)
	if err != nil {
		t.Fatalf("get streak state: %v", err)
	}
	if state.CurrentStreak != 1 {
		t.Errorf("expected zero-usage day to qualify, got streak %d", state.CurrentStreak)
	}
}

func TestPerformResetClearsReminderCounters(t *testing.T) {
	rs, clk, store := newTestResetScheduler(t)
	ctx := context.Background()

	last := clk.Now().Add(-3 * time.Hour)
	dismissed := clk.Now().Add(-30 * time.Minute)
	if err := store.Notify().Put(ctx, storage.NotifyState{
		LastDailyReminder:  &last,
		DailyReminderCount: 5,
		LastDismiss:        map[string]time.Time{"usage-limit": dismissed},
	}); err != nil {
		t.Fatalf("seed notify state: %v", err)
	}

	rs.PerformReset(ctx, "2026-01-05")

	state, err := store.Notify().Get(ctx)
	if err != nil {
		t.Fatalf("get notify state: %v", err)
	}
	if state.DailyReminderCount != 0 {
		t.Errorf("expected reminder count reset, got %d", state.DailyReminderCount)
	}
	if state.LastDailyReminder != nil {
		t.Errorf("expected last reminder cleared, got %v", state.LastDailyReminder)
	}
	if _, ok := state.DismissedAt("usage-limit"); !ok {
		t.Errorf("dismissal times must survive the daily reset")
	}
}

func TestPerformResetPrunesOldHistory(t *testing.T) {
	rs, clk, store := newTestResetScheduler(t)
	ctx := context.Background()

	old := clock.DayKey(clk.Now().AddDate(0, 0, -120))
	recent := clock.DayKey(clk.Now().AddDate(0, 0, -5))
	for _, date := range []string{old, recent} {
		if err := store.Usage().AddMinutes(ctx, date, 30, 0); err != nil {
			t.Fatalf("seed usage for %s: %v", date, err)
		}
	}

	rs.PerformReset(ctx, "2026-01-05")

	if _, err := store.Usage().GetDay(ctx, old); !storage.IsAbsent(err) {
		t.Errorf("expected pruned record, got %v", err)
	}
	if _, err := store.Usage().GetDay(ctx, recent); err != nil {
		t.Errorf("expected recent record kept, got %v", err)
	}
}

func TestResetSchedulerStop(t *testing.T) {
	rs, _, _ := newTestResetScheduler(t)

	rs.Start()
	rs.Stop()
	// Stop closes the loop's stop channel; a second Start after Stop is
	// not supported, matching the single-lifecycle daemon usage.
}
