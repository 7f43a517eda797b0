package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/goodtune/focusd/internal/clock"
	"github.com/goodtune/focusd/internal/metrics"
	"github.com/goodtune/focusd/internal/storage"
	"github.com/goodtune/focusd/internal/tasks"
	"github.com/goodtune/focusd/internal/threshold"
	"github.com/goodtune/focusd/internal/usage"
)

const allDoneMessage = "Great work! All tasks are complete. Time to set new goals!"

// Config holds scheduler timing.
type Config struct {
	RevealDelay            time.Duration
	UsageCheckInterval     time.Duration
	ReminderCheckInterval  time.Duration
	ReminderSpacing        time.Duration
	ContinuousSessionLimit time.Duration
	MaxDailyReminders      int
	AwakeWindowHours       int
	RestrictedCategory     string
}

// Scheduler owns the two alert channels and the timers that feed them.
// The usage channel carries limit, break and reward alerts; the reminder
// channel carries daily task reminders. Each channel holds at most one
// alert at a time; a decision arriving for an occupied channel is
// dropped.
type Scheduler struct {
	cfg     Config
	tracker *usage.Tracker
	engine  *threshold.Engine
	store   storage.Store
	tasks   *tasks.Service
	clk     clock.Clock
	sink    Sink
	logger  zerolog.Logger

	mu       sync.Mutex
	channels map[channelID]*channel
	stopped  bool

	// OnAlert observes every alert that becomes visible.
	OnAlert func(alert Alert)
}

type channel struct {
	state  ChannelState
	alert  Alert
	reveal *time.Timer
}

// NewScheduler creates a notification scheduler.
func NewScheduler(cfg Config, tracker *usage.Tracker, engine *threshold.Engine, store storage.Store, taskSvc *tasks.Service, clk clock.Clock, sink Sink, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		cfg:     cfg,
		tracker: tracker,
		engine:  engine,
		store:   store,
		tasks:   taskSvc,
		clk:     clk,
		sink:    sink,
		logger:  logger.With().Str("component", "notify-scheduler").Logger(),
		channels: map[channelID]*channel{
			channelUsage:    {state: StateIdle},
			channelReminder: {state: StateIdle},
		},
	}
}

// Run drives the usage and reminder checks until the context is
// canceled, then tears every timer down.
func (s *Scheduler) Run(ctx context.Context) {
	usageTicker := time.NewTicker(s.cfg.UsageCheckInterval)
	reminderTicker := time.NewTicker(s.cfg.ReminderCheckInterval)
	defer usageTicker.Stop()
	defer reminderTicker.Stop()

	s.logger.Info().
		Dur("usage_interval", s.cfg.UsageCheckInterval).
		Dur("reminder_interval", s.cfg.ReminderCheckInterval).
		Msg("Notification scheduler started")

	// Check once at startup rather than waiting a full interval.
	s.CheckUsage(ctx)
	s.CheckReminder(ctx)

	for {
		select {
		case <-usageTicker.C:
			s.CheckUsage(ctx)
		case <-reminderTicker.C:
			s.CheckReminder(ctx)
		case <-ctx.Done():
			s.teardown()
			return
		}
	}
}

// Stopped reports whether Run has torn the scheduler down.
func (s *Scheduler) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

// CheckUsage evaluates today's usage against the thresholds and raises
// an alert when one is due.
func (s *Scheduler) CheckUsage(ctx context.Context) {
	rec, err := s.tracker.Today(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to read today's usage")
		return
	}

	elapsed, err := s.tracker.OpenSessionElapsed(ctx, s.cfg.RestrictedCategory)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to read open session")
		return
	}
	sessionStart, _, err := s.tracker.OpenSessionStart(ctx, s.cfg.RestrictedCategory)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to read session start")
		return
	}

	state := s.notifyState(ctx)
	now := s.clk.Now()

	decision := s.engine.Evaluate(rec, elapsed, sessionStart, &state, now)
	if decision.None() {
		return
	}

	switch decision.Kind {
	case threshold.KindUsageLimit:
		s.raise(Alert{
			Kind:      KindUsageLimit,
			Title:     "You've reached your daily limit",
			Body:      "It's time to disconnect and refocus.",
			CreatedAt: now,
		})
	case threshold.KindBreakReminder:
		minutes := int(s.cfg.ContinuousSessionLimit / time.Minute)
		s.raise(Alert{
			Kind:      KindBreakReminder,
			Title:     "Take a Break",
			Body:      fmt.Sprintf("You've been on social media for %d minutes straight. Time to take a break and refocus.", minutes),
			CreatedAt: now,
		})
	}
}

// CheckReminder raises a daily task reminder when every gate passes:
// the user has a configured wake time, an even whole number of hours
// awake within the awake window, fewer than the daily cap sent, and
// enough spacing since the last one.
func (s *Scheduler) CheckReminder(ctx context.Context) {
	profile, err := s.store.Profiles().Get(ctx)
	if storage.IsAbsent(err) {
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to load profile")
		return
	}
	if profile.WakeTime == "" {
		return
	}

	wakeMinutes, err := clock.ParseWakeTime(profile.WakeTime)
	if err != nil {
		s.logger.Warn().Str("wake_time", profile.WakeTime).Msg("Unparseable wake time")
		return
	}

	now := s.clk.Now()
	minutesAwake := now.Hour()*60 + now.Minute() - wakeMinutes
	if minutesAwake < 0 {
		return
	}
	hoursAwake := minutesAwake / 60
	if hoursAwake%2 != 0 || hoursAwake > s.cfg.AwakeWindowHours {
		return
	}

	state := s.notifyState(ctx)
	if state.DailyReminderCount >= s.cfg.MaxDailyReminders {
		return
	}
	if state.LastDailyReminder != nil && now.Sub(*state.LastDailyReminder) < s.cfg.ReminderSpacing {
		return
	}

	body := allDoneMessage
	if top, ok, err := s.tasks.TopPending(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Failed to pick reminder task")
		return
	} else if ok {
		body = fmt.Sprintf("Time to focus on your priority: %q", top.Title)
	}

	raised := s.raise(Alert{
		Kind:      KindDailyReminder,
		Title:     "Daily Focus Reminder",
		Body:      body,
		CreatedAt: now,
	})
	if !raised {
		return
	}

	state.DailyReminderCount++
	state.LastDailyReminder = &now
	if err := s.store.Notify().Put(ctx, state); err != nil {
		s.logger.Error().Err(err).Msg("Failed to persist reminder state")
	}
	metrics.RemindersSent.Inc()
}

// NotifyReward raises a reward-unlocked alert. Dropped when the usage
// channel is busy with another alert.
func (s *Scheduler) NotifyReward(reward string) {
	s.raise(Alert{
		Kind:      KindRewardUnlocked,
		Title:     "Reward Unlocked!",
		Body:      fmt.Sprintf("Your focus streak earned you: %s", reward),
		CreatedAt: s.clk.Now(),
	})
}

// Dismiss closes the visible or pending alert of the given kind,
// recording the dismissal time for re-alert cooldowns. Dismissing a
// break reminder re-anchors the running session clock.
func (s *Scheduler) Dismiss(ctx context.Context, kind AlertKind) error {
	return s.close(ctx, kind)
}

// GoToTasks closes the alert the same way Dismiss does; the caller is
// expected to surface the task list.
func (s *Scheduler) GoToTasks(ctx context.Context, kind AlertKind) error {
	return s.close(ctx, kind)
}

func (s *Scheduler) close(ctx context.Context, kind AlertKind) error {
	id := channelFor(kind)

	s.mu.Lock()
	ch := s.channels[id]
	if ch.state == StateIdle || ch.alert.Kind != kind {
		s.mu.Unlock()
		return nil
	}
	if ch.reveal != nil {
		ch.reveal.Stop()
		ch.reveal = nil
	}
	ch.state = StateIdle
	ch.alert = Alert{}
	s.mu.Unlock()

	now := s.clk.Now()
	state := s.notifyState(ctx)
	state.RecordDismiss(string(kind), now)
	if err := s.store.Notify().Put(ctx, state); err != nil {
		return fmt.Errorf("persist dismissal: %w", err)
	}

	if kind == KindBreakReminder {
		if err := s.tracker.ResetSessionClock(ctx, s.cfg.RestrictedCategory); err != nil {
			return fmt.Errorf("reset session clock: %w", err)
		}
	}

	metrics.AlertsDismissed.WithLabelValues(string(kind)).Inc()
	s.logger.Debug().Str("kind", string(kind)).Msg("Alert dismissed")
	return nil
}

// raise moves an idle channel to pending and schedules the reveal.
// Returns false when the channel was occupied and the alert dropped.
func (s *Scheduler) raise(alert Alert) bool {
	id := channelFor(alert.Kind)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return false
	}

	ch := s.channels[id]
	if ch.state != StateIdle {
		s.logger.Debug().
			Str("kind", string(alert.Kind)).
			Str("channel", string(id)).
			Msg("Channel occupied, alert dropped")
		return false
	}

	ch.state = StatePending
	ch.alert = alert
	ch.reveal = time.AfterFunc(s.cfg.RevealDelay, func() {
		s.revealChannel(id)
	})

	s.logger.Debug().Str("kind", string(alert.Kind)).Msg("Alert pending")
	return true
}

// revealChannel fires on the reveal timer and makes a pending alert
// visible.
func (s *Scheduler) revealChannel(id channelID) {
	s.mu.Lock()
	ch := s.channels[id]
	if ch.state != StatePending {
		s.mu.Unlock()
		return
	}
	ch.state = StateVisible
	ch.reveal = nil
	alert := ch.alert
	s.mu.Unlock()

	if err := s.sink.Send(alert); err != nil {
		s.logger.Error().Err(err).Str("kind", string(alert.Kind)).Msg("Failed to deliver alert")
	}
	metrics.AlertsFired.WithLabelValues(string(alert.Kind)).Inc()

	if s.OnAlert != nil {
		s.OnAlert(alert)
	}

	s.logger.Info().
		Str("kind", string(alert.Kind)).
		Str("title", alert.Title).
		Msg("Alert shown")
}

// Channel returns the current state of a kind's channel, for status
// reporting and tests.
func (s *Scheduler) Channel(kind AlertKind) (ChannelState, Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := s.channels[channelFor(kind)]
	return ch.state, ch.alert
}

// notifyState loads the persisted scheduler bookkeeping, zero-valued
// when absent or corrupt.
func (s *Scheduler) notifyState(ctx context.Context) storage.NotifyState {
	state, err := s.store.Notify().Get(ctx)
	if err != nil {
		if !storage.IsAbsent(err) {
			s.logger.Error().Err(err).Msg("Failed to load notification state")
		}
		return storage.NotifyState{}
	}
	return *state
}

// teardown cancels every pending reveal timer and marks the scheduler
// stopped.
func (s *Scheduler) teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ch := range s.channels {
		if ch.reveal != nil {
			ch.reveal.Stop()
			ch.reveal = nil
		}
		ch.state = StateIdle
		ch.alert = Alert{}
	}
	s.stopped = true

	s.logger.Info().Msg("Notification scheduler stopped")
}
