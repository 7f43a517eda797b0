package streak

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/goodtune/focusd/internal/storage"
)

// Milestone unlocks a reward when the current streak reaches Days.
type Milestone struct {
	Days   int
	Reward string
}

// DefaultMilestones are the stock rewards granted at 15 and 30 days.
func DefaultMilestones() []Milestone {
	return []Milestone{
		{Days: 15, Reward: "50% OFF Premium"},
		{Days: 30, Reward: "1 MONTH FREE"},
	}
}

// Config holds the streak qualification targets.
type Config struct {
	TargetTotalMinutes      int
	TargetRestrictedMinutes int
	Milestones              []Milestone
}

// Engine evaluates day-over-day focus streaks. All methods are pure
// computations over their inputs; persistence belongs to the caller.
type Engine struct {
	cfg    Config
	logger zerolog.Logger
}

// NewEngine creates a streak engine. Milestones are sorted ascending by
// Days so coinciding thresholds unlock in a fixed order.
func NewEngine(cfg Config, logger zerolog.Logger) *Engine {
	milestones := make([]Milestone, len(cfg.Milestones))
	copy(milestones, cfg.Milestones)
	sort.SliceStable(milestones, func(i, j int) bool {
		return milestones[i].Days < milestones[j].Days
	})
	cfg.Milestones = milestones

	return &Engine{
		cfg:    cfg,
		logger: logger.With().Str("component", "streak-engine").Logger(),
	}
}

// Qualifies reports whether a day's usage stayed strictly under both
// targets. Exactly at the limit does not qualify.
func (e *Engine) Qualifies(rec storage.UsageRecord) bool {
	rec = rec.Clamp()
	return rec.TotalMinutes < e.cfg.TargetTotalMinutes &&
		rec.RestrictedMinutes < e.cfg.TargetRestrictedMinutes
}

// CheckDayBoundary credits a qualifying ended day to the streak and
// returns the updated state plus any newly unlocked rewards. Crediting
// the same day twice is a no-op, and a non-qualifying record leaves the
// state untouched; day failure is signaled explicitly via FailDay.
func (e *Engine) CheckDayBoundary(rec storage.UsageRecord, state storage.StreakState, day string) (storage.StreakState, []string) {
	if state.LastSuccessfulDate == day {
		return state, nil
	}
	if !e.Qualifies(rec) {
		return state, nil
	}

	state.CurrentStreak++
	state.TotalSuccessfulDays++
	if state.CurrentStreak > state.LongestStreak {
		state.LongestStreak = state.CurrentStreak
	}
	state.LastSuccessfulDate = day

	var unlocked []string
	for _, milestone := range e.cfg.Milestones {
		if milestone.Days != state.CurrentStreak {
			continue
		}
		if state.HasReward(milestone.Reward) {
			continue
		}
		state.UnlockedRewards = append(state.UnlockedRewards, milestone.Reward)
		state.PendingRewards = append(state.PendingRewards, milestone.Reward)
		unlocked = append(unlocked, milestone.Reward)

		e.logger.Info().
			Str("reward", milestone.Reward).
			Int("streak_days", state.CurrentStreak).
			Msg("Milestone reward unlocked")
	}

	return state, unlocked
}

// FailDay resets the current streak after an ended day did not qualify.
// Only the caller decides when a day has ended; the engine never fails a
// day from partial intra-day data.
func (e *Engine) FailDay(state storage.StreakState, day string) storage.StreakState {
	if state.CurrentStreak > 0 {
		e.logger.Info().
			Int("lost_streak", state.CurrentStreak).
			Str("day", day).
			Msg("Streak broken")
	}
	state.CurrentStreak = 0
	return state
}

// AcknowledgeReward removes a reward from the pending list once the user
// has seen it. The reward stays unlocked.
func AcknowledgeReward(state storage.StreakState, reward string) storage.StreakState {
	pending := state.PendingRewards[:0:0]
	for _, r := range state.PendingRewards {
		if r != reward {
			pending = append(pending, r)
		}
	}
	state.PendingRewards = pending
	return state
}
