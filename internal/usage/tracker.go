package usage

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/goodtune/focusd/internal/clock"
	"github.com/goodtune/focusd/internal/metrics"
	"github.com/goodtune/focusd/internal/storage"
)

// Tracker accounts screen-time minutes into daily usage records. Open
// sessions are persisted so an in-progress session survives a daemon
// restart.
type Tracker struct {
	store              storage.UsageStore
	clk                clock.Clock
	restrictedCategory string
	logger             zerolog.Logger
	mu                 sync.Mutex
}

// NewTracker creates a usage tracker. restrictedCategory names the
// category whose minutes also count against the restricted daily limit.
func NewTracker(store storage.UsageStore, clk clock.Clock, restrictedCategory string, logger zerolog.Logger) *Tracker {
	return &Tracker{
		store:              store,
		clk:                clk,
		restrictedCategory: restrictedCategory,
		logger:             logger.With().Str("component", "usage-tracker").Logger(),
	}
}

// StartSession opens a session for the category at the current time.
// Starting an already-open session is a no-op.
func (t *Tracker) StartSession(ctx context.Context, category string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, err := t.store.GetOpenSession(ctx, category)
	if err == nil {
		return nil
	}
	if !storage.IsAbsent(err) {
		return err
	}

	now := t.clk.Now()
	if err := t.store.PutOpenSession(ctx, storage.OpenSession{
		Category:  category,
		StartedAt: now,
	}); err != nil {
		return err
	}

	t.logger.Debug().
		Str("category", category).
		Time("started_at", now).
		Msg("Session started")

	return nil
}

// EndSession commits the whole minutes elapsed in the category's open
// session to today's record and clears the session. Ending a category
// without an open session is a no-op.
func (t *Tracker) EndSession(ctx context.Context, category string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	session, err := t.store.GetOpenSession(ctx, category)
	if storage.IsAbsent(err) {
		return nil
	}
	if err != nil {
		return err
	}

	now := t.clk.Now()
	minutes := wholeMinutes(now.Sub(session.StartedAt))
	if minutes > 0 {
		if err := t.commitMinutes(ctx, category, minutes); err != nil {
			return err
		}
	}

	if err := t.store.ClearOpenSession(ctx, category); err != nil {
		return err
	}

	t.logger.Debug().
		Str("category", category).
		Int("minutes", minutes).
		Msg("Session ended")

	return nil
}

// Today returns today's usage record, zero-valued when none exists yet.
func (t *Tracker) Today(ctx context.Context) (storage.UsageRecord, error) {
	day := clock.DayKey(t.clk.Now())

	rec, err := t.store.GetDay(ctx, day)
	if storage.IsAbsent(err) {
		return storage.UsageRecord{Date: day}, nil
	}
	if err != nil {
		return storage.UsageRecord{}, err
	}
	return *rec, nil
}

// AddMinutes records usage minutes directly, outside any session.
// Negative values clamp to zero and the restricted subset is capped at
// the total.
func (t *Tracker) AddMinutes(ctx context.Context, total, restricted int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if total < 0 {
		total = 0
	}
	if restricted < 0 {
		restricted = 0
	}
	if restricted > total {
		restricted = total
	}
	if total == 0 {
		return nil
	}

	day := clock.DayKey(t.clk.Now())
	if err := t.store.AddMinutes(ctx, day, total, restricted); err != nil {
		return err
	}

	metrics.UsageMinutesRecorded.WithLabelValues("total").Add(float64(total))
	if restricted > 0 {
		metrics.UsageMinutesRecorded.WithLabelValues("restricted").Add(float64(restricted))
	}

	return nil
}

// OpenSessionStart returns the start time of the category's open session.
func (t *Tracker) OpenSessionStart(ctx context.Context, category string) (time.Time, bool, error) {
	session, err := t.store.GetOpenSession(ctx, category)
	if storage.IsAbsent(err) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return session.StartedAt, true, nil
}

// OpenSessionElapsed returns how long the category's open session has
// been running, zero when none is open. Clock skew clamps to zero.
func (t *Tracker) OpenSessionElapsed(ctx context.Context, category string) (time.Duration, error) {
	start, ok, err := t.OpenSessionStart(ctx, category)
	if err != nil || !ok {
		return 0, err
	}

	elapsed := t.clk.Now().Sub(start)
	if elapsed < 0 {
		elapsed = 0
	}
	return elapsed, nil
}

// ResetSessionClock re-anchors the category's open session at the
// current time without crediting the elapsed span. No-op when no session
// is open.
func (t *Tracker) ResetSessionClock(ctx context.Context, category string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, err := t.store.GetOpenSession(ctx, category)
	if storage.IsAbsent(err) {
		return nil
	}
	if err != nil {
		return err
	}

	return t.store.PutOpenSession(ctx, storage.OpenSession{
		Category:  category,
		StartedAt: t.clk.Now(),
	})
}

// RolloverDay re-anchors every open session at the current time so its
// minutes accrue to the new day. A session spanning midnight is credited
// entirely to the new day.
func (t *Tracker) RolloverDay(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	sessions, err := t.store.ListOpenSessions(ctx)
	if err != nil {
		return err
	}

	now := t.clk.Now()
	for _, session := range sessions {
		if err := t.store.PutOpenSession(ctx, storage.OpenSession{
			Category:  session.Category,
			StartedAt: now,
		}); err != nil {
			return err
		}

		t.logger.Debug().
			Str("category", session.Category).
			Msg("Open session re-anchored at day boundary")
	}

	return nil
}

// commitMinutes writes session minutes into today's record. Callers hold
// the tracker mutex.
func (t *Tracker) commitMinutes(ctx context.Context, category string, minutes int) error {
	restricted := 0
	if category == t.restrictedCategory {
		restricted = minutes
	}

	day := clock.DayKey(t.clk.Now())
	if err := t.store.AddMinutes(ctx, day, minutes, restricted); err != nil {
		return err
	}

	metrics.UsageMinutesRecorded.WithLabelValues(category).Add(float64(minutes))
	return nil
}

// wholeMinutes floors a duration to whole minutes, clamping clock skew
// to zero.
func wholeMinutes(d time.Duration) int {
	if d < 0 {
		return 0
	}
	return int(d / time.Minute)
}
