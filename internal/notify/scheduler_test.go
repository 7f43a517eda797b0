package notify

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goodtune/focusd/internal/clock"
	"github.com/goodtune/focusd/internal/storage"
	"github.com/goodtune/focusd/internal/storage/bolt"
	"github.com/goodtune/focusd/internal/tasks"
	"github.com/goodtune/focusd/internal/threshold"
	"github.com/goodtune/focusd/internal/usage"
)

type recordingSink struct {
	mu     sync.Mutex
	alerts []Alert
}

func (r *recordingSink) Send(alert Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, alert)
	return nil
}

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.alerts)
}

func (r *recordingSink) last() (Alert, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.alerts) == 0 {
		return Alert{}, false
	}
	return r.alerts[len(r.alerts)-1], true
}

type fixture struct {
	scheduler *Scheduler
	tracker   *usage.Tracker
	store     storage.Store
	clk       *clock.TestClock
	sink      *recordingSink
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store, err := bolt.Open(filepath.Join(t.TempDir(), "focusd.bolt"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	clk := &clock.TestClock{
		CurrentTime: time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC),
	}
	tracker := usage.NewTracker(store.Usage(), clk, "social-media", zerolog.Nop())
	engine := threshold.NewEngine(threshold.Config{
		DailyTotalLimit:        4 * time.Hour,
		DailyRestrictedLimit:   2 * time.Hour,
		ContinuousSessionLimit: 10 * time.Minute,
		ReAlertCooldown:        10 * time.Minute,
	})
	taskSvc := tasks.NewService(store.Tasks(), zerolog.Nop())
	sink := &recordingSink{}

	cfg := Config{
		RevealDelay:            5 * time.Millisecond,
		UsageCheckInterval:     time.Hour,
		ReminderCheckInterval:  time.Hour,
		ReminderSpacing:        2 * time.Hour,
		ContinuousSessionLimit: 10 * time.Minute,
		MaxDailyReminders:      5,
		AwakeWindowHours:       10,
		RestrictedCategory:     "social-media",
	}
	scheduler := NewScheduler(cfg, tracker, engine, store, taskSvc, clk, sink, zerolog.Nop())

	return &fixture{
		scheduler: scheduler,
		tracker:   tracker,
		store:     store,
		clk:       clk,
		sink:      sink,
	}
}

func waitVisible(t *testing.T, f *fixture, kind AlertKind) Alert {
	t.Helper()

	require.Eventually(t, func() bool {
		state, _ := f.scheduler.Channel(kind)
		return state == StateVisible
	}, time.Second, time.Millisecond, "alert %s never became visible", kind)

	_, alert := f.scheduler.Channel(kind)
	return alert
}

func TestUsageLimitAlertFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.tracker.AddMinutes(ctx, 250, 0))

	f.scheduler.CheckUsage(ctx)

	state, alert := f.scheduler.Channel(KindUsageLimit)
	if state == StatePending {
		alert = waitVisible(t, f, KindUsageLimit)
	}
	assert.Equal(t, KindUsageLimit, alert.Kind)
	assert.Equal(t, "You've reached your daily limit", alert.Title)

	require.Eventually(t, func() bool { return f.sink.count() == 1 }, time.Second, time.Millisecond)
}

func TestOccupiedChannelDropsAlert(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.tracker.AddMinutes(ctx, 250, 0))

	f.scheduler.CheckUsage(ctx)
	waitVisible(t, f, KindUsageLimit)

	// Another evaluation while the alert is showing must not stack a
	// second one.
	f.scheduler.CheckUsage(ctx)
	f.scheduler.NotifyReward("silver")

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, f.sink.count())
}

func TestDismissStartsCooldown(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.tracker.AddMinutes(ctx, 250, 0))

	f.scheduler.CheckUsage(ctx)
	waitVisible(t, f, KindUsageLimit)
	require.NoError(t, f.scheduler.Dismiss(ctx, KindUsageLimit))

	state, _ := f.scheduler.Channel(KindUsageLimit)
	assert.Equal(t, StateIdle, state)

	// Within the cooldown the alert stays suppressed.
	f.clk.Advance(5 * time.Minute)
	f.scheduler.CheckUsage(ctx)
	state, _ = f.scheduler.Channel(KindUsageLimit)
	assert.Equal(t, StateIdle, state)

	// After the cooldown it fires again.
	f.clk.Advance(6 * time.Minute)
	f.scheduler.CheckUsage(ctx)
	waitVisible(t, f, KindUsageLimit)
	require.Eventually(t, func() bool { return f.sink.count() == 2 }, time.Second, time.Millisecond)
}

func TestBreakReminderDismissResetsSessionClock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.tracker.StartSession(ctx, "social-media"))
	f.clk.Advance(12 * time.Minute)

	f.scheduler.CheckUsage(ctx)
	alert := waitVisible(t, f, KindBreakReminder)
	assert.Equal(t, KindBreakReminder, alert.Kind)
	assert.Contains(t, alert.Body, "10 minutes straight")

	require.NoError(t, f.scheduler.Dismiss(ctx, KindBreakReminder))

	elapsed, err := f.tracker.OpenSessionElapsed(ctx, "social-media")
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), elapsed)
}

func TestDailyReminderGates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.Profiles().Put(ctx, storage.Profile{
		Name:     "Sam",
		WakeTime: "07:00",
		Goals:    []string{"health"},
	}))
	require.NoError(t, f.store.Tasks().Upsert(ctx, storage.Task{
		ID:        "task-1",
		Title:     "Meditate for 10 minutes",
		Priority:  storage.PriorityHigh,
		CreatedAt: f.clk.Now(),
	}))

	// 09:00 with a 07:00 wake time is two whole hours awake: gate open.
	f.scheduler.CheckReminder(ctx)
	alert := waitVisible(t, f, KindDailyReminder)
	assert.Equal(t, `Time to focus on your priority: "Meditate for 10 minutes"`, alert.Body)

	state, err2 := f.store.Notify().Get(ctx)
	require.NoError(t, err2)
	assert.Equal(t, 1, state.DailyReminderCount)
	require.NotNil(t, state.LastDailyReminder)
}

func TestDailyReminderSpacing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.Profiles().Put(ctx, storage.Profile{WakeTime: "07:00"}))

	f.scheduler.CheckReminder(ctx)
	waitVisible(t, f, KindDailyReminder)
	require.NoError(t, f.scheduler.Dismiss(ctx, KindDailyReminder))

	// One hour later: odd hours awake and inside the spacing window.
	f.clk.Advance(time.Hour)
	f.scheduler.CheckReminder(ctx)
	state, _ := f.scheduler.Channel(KindDailyReminder)
	assert.Equal(t, StateIdle, state)

	// Two hours after the first reminder the gate reopens.
	f.clk.Advance(time.Hour)
	f.scheduler.CheckReminder(ctx)
	waitVisible(t, f, KindDailyReminder)
	assert.Equal(t, 2, f.sink.count())
}

func TestDailyReminderCap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.Profiles().Put(ctx, storage.Profile{WakeTime: "07:00"}))

	last := f.clk.Now().Add(-3 * time.Hour)
	require.NoError(t, f.store.Notify().Put(ctx, storage.NotifyState{
		DailyReminderCount: 5,
		LastDailyReminder:  &last,
	}))

	f.scheduler.CheckReminder(ctx)
	state, _ := f.scheduler.Channel(KindDailyReminder)
	assert.Equal(t, StateIdle, state)
}

func TestDailyReminderBeforeWake(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.Profiles().Put(ctx, storage.Profile{WakeTime: "10:00"}))

	// 09:00 is before the wake time: no reminder.
	f.scheduler.CheckReminder(ctx)
	state, _ := f.scheduler.Channel(KindDailyReminder)
	assert.Equal(t, StateIdle, state)
}

func TestDailyReminderAllDoneMessage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.Profiles().Put(ctx, storage.Profile{WakeTime: "07:00"}))
	require.NoError(t, f.store.Tasks().Upsert(ctx, storage.Task{
		ID:        "task-1",
		Title:     "Done already",
		Priority:  storage.PriorityHigh,
		Completed: true,
		CreatedAt: f.clk.Now(),
	}))

	f.scheduler.CheckReminder(ctx)
	alert := waitVisible(t, f, KindDailyReminder)
	assert.Equal(t, allDoneMessage, alert.Body)
}

func TestRewardAlert(t *testing.T) {
	f := newFixture(t)

	f.scheduler.NotifyReward("50% OFF Premium")
	alert := waitVisible(t, f, KindRewardUnlocked)
	assert.Contains(t, alert.Body, "50% OFF Premium")
}

func TestRunTeardown(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		f.scheduler.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop on context cancellation")
	}
	assert.True(t, f.scheduler.Stopped())

	// A stopped scheduler drops new alerts.
	f.scheduler.NotifyReward("late")
	state, _ := f.scheduler.Channel(KindRewardUnlocked)
	assert.Equal(t, StateIdle, state)
}

func TestPendingAlertDismissedBeforeReveal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Long reveal delay so the alert stays pending.
	f.scheduler.cfg.RevealDelay = time.Hour

	require.NoError(t, f.tracker.AddMinutes(ctx, 250, 0))
	f.scheduler.CheckUsage(ctx)

	state, _ := f.scheduler.Channel(KindUsageLimit)
	require.Equal(t, StatePending, state)

	require.NoError(t, f.scheduler.Dismiss(ctx, KindUsageLimit))
	state, _ = f.scheduler.Channel(KindUsageLimit)
	assert.Equal(t, StateIdle, state)
	assert.Equal(t, 0, f.sink.count())
}
