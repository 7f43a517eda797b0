package threshold

import (
	"time"

	"github.com/goodtune/focusd/internal/storage"
)

// Kind identifies the alert a decision asks for.
type Kind string

const (
	KindNone          Kind = ""
	KindUsageLimit    Kind = "usage-limit"
	KindBreakReminder Kind = "break-reminder"
)

// Decision is the outcome of one threshold evaluation.
type Decision struct {
	Kind Kind
}

// None reports whether the decision asks for no alert.
func (d Decision) None() bool {
	return d.Kind == KindNone
}

// Config holds the usage limits the engine evaluates against.
type Config struct {
	DailyTotalLimit        time.Duration
	DailyRestrictedLimit   time.Duration
	ContinuousSessionLimit time.Duration
	ReAlertCooldown        time.Duration
}

// Engine decides when usage crosses an alerting threshold. Evaluation is
// a pure function over its inputs; the engine holds only configuration.
type Engine struct {
	cfg Config
}

// NewEngine creates a threshold engine.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Dismissals carries the last time each alert kind was dismissed.
type Dismissals interface {
	DismissedAt(kind string) (time.Time, bool)
}

// Evaluate decides whether an alert is due. rec is today's usage,
// openElapsed the running session length, sessionStart the running
// session's anchor (zero when none is open). A usage-limit breach takes
// precedence over a break reminder. A kind dismissed within the
// cooldown stays suppressed, except that a break reminder re-qualifies
// immediately when the open session started after the dismissal.
func (e *Engine) Evaluate(rec storage.UsageRecord, openElapsed time.Duration, sessionStart time.Time, dismissals Dismissals, now time.Time) Decision {
	rec = rec.Clamp()
	if openElapsed < 0 {
		openElapsed = 0
	}

	if e.usageLimitReached(rec) && !e.onCooldown(KindUsageLimit, dismissals, now) {
		return Decision{Kind: KindUsageLimit}
	}

	if e.breakDue(openElapsed) && !e.breakOnCooldown(sessionStart, dismissals, now) {
		return Decision{Kind: KindBreakReminder}
	}

	return Decision{}
}

// usageLimitReached reports whether either daily limit has been hit.
func (e *Engine) usageLimitReached(rec storage.UsageRecord) bool {
	restrictedLimit := int(e.cfg.DailyRestrictedLimit / time.Minute)
	totalLimit := int(e.cfg.DailyTotalLimit / time.Minute)

	if restrictedLimit > 0 && rec.RestrictedMinutes >= restrictedLimit {
		return true
	}
	if totalLimit > 0 && rec.TotalMinutes >= totalLimit {
		return true
	}
	return false
}

// breakDue reports whether the open session has run past the continuous
// session limit.
func (e *Engine) breakDue(openElapsed time.Duration) bool {
	return e.cfg.ContinuousSessionLimit > 0 && openElapsed >= e.cfg.ContinuousSessionLimit
}

// onCooldown reports whether a kind was dismissed within the cooldown.
func (e *Engine) onCooldown(kind Kind, dismissals Dismissals, now time.Time) bool {
	if dismissals == nil {
		return false
	}
	dismissed, ok := dismissals.DismissedAt(string(kind))
	if !ok {
		return false
	}
	return now.Sub(dismissed) < e.cfg.ReAlertCooldown
}

// breakOnCooldown is the break-reminder cooldown with the fresh-session
// exception: a session opened after the dismissal may alert right away.
func (e *Engine) breakOnCooldown(sessionStart time.Time, dismissals Dismissals, now time.Time) bool {
	if dismissals == nil {
		return false
	}
	dismissed, ok := dismissals.DismissedAt(string(KindBreakReminder))
	if !ok {
		return false
	}
	if !sessionStart.IsZero() && sessionStart.After(dismissed) {
		return false
	}
	return now.Sub(dismissed) < e.cfg.ReAlertCooldown
}
