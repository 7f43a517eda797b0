package usage

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/goodtune/focusd/internal/clock"
	"github.com/goodtune/focusd/internal/metrics"
	"github.com/goodtune/focusd/internal/storage"
	"github.com/goodtune/focusd/internal/streak"
)

// ResetScheduler closes out each local day at midnight: it settles the
// streak for the ended day, rolls open sessions into the new day, resets
// the daily reminder counters and prunes old usage history.
type ResetScheduler struct {
	store         storage.Store
	tracker       *Tracker
	engine        *streak.Engine
	clk           clock.Clock
	retentionDays int
	logger        zerolog.Logger
	stopChan      chan struct{}

	// OnRewards receives milestone rewards unlocked by the ended day.
	OnRewards func(rewards []string)
	// OnStreakUpdate receives the settled streak state.
	OnStreakUpdate func(state storage.StreakState)
}

// NewResetScheduler creates a daily reset scheduler.
func NewResetScheduler(store storage.Store, tracker *Tracker, engine *streak.Engine, clk clock.Clock, retentionDays int, logger zerolog.Logger) *ResetScheduler {
	return &ResetScheduler{
		store:         store,
		tracker:       tracker,
		engine:        engine,
		clk:           clk,
		retentionDays: retentionDays,
		logger:        logger.With().Str("component", "reset-scheduler").Logger(),
		stopChan:      make(chan struct{}),
	}
}

// Start begins the reset scheduler.
func (rs *ResetScheduler) Start() {
	go rs.run()
	rs.logger.Info().Msg("Daily reset scheduler started")
}

// Stop stops the reset scheduler.
func (rs *ResetScheduler) Stop() {
	close(rs.stopChan)
	rs.logger.Info().Msg("Daily reset scheduler stopped")
}

// run is the main scheduler loop.
func (rs *ResetScheduler) run() {
	for {
		now := rs.clk.Now()
		endingDay := clock.DayKey(now)
		nextMidnight := clock.NextMidnight(now)
		waitDuration := nextMidnight.Sub(now)

		rs.logger.Info().
			Time("next_reset", nextMidnight).
			Dur("wait_duration", waitDuration).
			Msg("Scheduled next daily reset")

		select {
		case <-time.After(waitDuration):
			rs.PerformReset(context.Background(), endingDay)
		case <-rs.stopChan:
			return
		}
	}
}

// PerformReset settles the day that just ended and prepares the new one.
func (rs *ResetScheduler) PerformReset(ctx context.Context, endedDay string) {
	rs.logger.Info().Str("ended_day", endedDay).Msg("Performing daily reset")

	rs.settleStreak(ctx, endedDay)

	if err := rs.tracker.RolloverDay(ctx); err != nil {
		rs.logger.Error().Err(err).Msg("Failed to roll open sessions into the new day")
	}

	rs.resetReminderCounters(ctx)
	rs.pruneHistory(ctx)
}

// settleStreak credits or fails the ended day against the streak.
func (rs *ResetScheduler) settleStreak(ctx context.Context, endedDay string) {
	rec := storage.UsageRecord{Date: endedDay}
	if loaded, err := rs.store.Usage().GetDay(ctx, endedDay); err == nil {
		rec = *loaded
	} else if !storage.IsAbsent(err) {
		rs.logger.Error().Err(err).Str("day", endedDay).Msg("Failed to load ended day's usage")
		return
	}

	state := storage.StreakState{}
	if loaded, err := rs.store.Streaks().Get(ctx); err == nil {
		state = *loaded
	} else if !storage.IsAbsent(err) {
		rs.logger.Error().Err(err).Msg("Failed to load streak state")
		return
	}

	var rewards []string
	if rs.engine.Qualifies(rec) {
		state, rewards = rs.engine.CheckDayBoundary(rec, state, endedDay)
	} else {
		state = rs.engine.FailDay(state, endedDay)
	}

	if err := rs.store.Streaks().Put(ctx, state); err != nil {
		rs.logger.Error().Err(err).Msg("Failed to persist streak state")
		return
	}

	metrics.StreakCurrentDays.Set(float64(state.CurrentStreak))
	metrics.StreakLongestDays.Set(float64(state.LongestStreak))
	if len(rewards) > 0 {
		metrics.RewardsUnlocked.Add(float64(len(rewards)))
	}

	if rs.OnStreakUpdate != nil {
		rs.OnStreakUpdate(state)
	}
	if len(rewards) > 0 && rs.OnRewards != nil {
		rs.OnRewards(rewards)
	}
}

// resetReminderCounters clears the daily reminder cap. Dismissal times
// are kept; their cooldowns expire on their own.
func (rs *ResetScheduler) resetReminderCounters(ctx context.Context) {
	state := storage.NotifyState{}
	if loaded, err := rs.store.Notify().Get(ctx); err == nil {
		state = *loaded
	} else if !storage.IsAbsent(err) {
		rs.logger.Error().Err(err).Msg("Failed to load notification state")
		return
	}

	state.DailyReminderCount = 0
	state.LastDailyReminder = nil

	if err := rs.store.Notify().Put(ctx, state); err != nil {
		rs.logger.Error().Err(err).Msg("Failed to reset reminder counters")
	}
}

// pruneHistory deletes usage records older than the retention window.
func (rs *ResetScheduler) pruneHistory(ctx context.Context) {
	if rs.retentionDays <= 0 {
		return
	}

	cutoff := clock.DayKey(rs.clk.Now().AddDate(0, 0, -rs.retentionDays))
	deleted, err := rs.store.Usage().DeleteDaysBefore(ctx, cutoff)
	if err != nil {
		rs.logger.Error().Err(err).Str("cutoff", cutoff).Msg("Failed to prune usage history")
		return
	}
	if deleted > 0 {
		rs.logger.Info().
			Int("deleted", deleted).
			Str("cutoff", cutoff).
			Msg("Pruned old usage records")
	}
}
