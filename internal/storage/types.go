package storage

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Priority orders tasks for reminders and display.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Rank returns the sort rank for a priority, highest first.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

// ParsePriority normalizes priority casing, rejecting unknown values.
func ParsePriority(s string) (Priority, error) {
	if s == "" {
		return "", fmt.Errorf("priority cannot be empty")
	}

	normalized := Priority(strings.ToUpper(s[:1]) + strings.ToLower(s[1:]))
	switch normalized {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return normalized, nil
	default:
		return "", fmt.Errorf("invalid priority: %s (must be High, Medium, or Low)", s)
	}
}

// UnmarshalJSON implements json.Unmarshaler to normalize priority casing.
func (p *Priority) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	normalized, err := ParsePriority(s)
	if err != nil {
		return err
	}
	*p = normalized
	return nil
}

// MarshalJSON implements json.Marshaler.
func (p Priority) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(p))
}

// UsageRecord aggregates one local day's usage counters.
// RestrictedMinutes is the subset of TotalMinutes spent in the restricted
// category and never exceeds it.
type UsageRecord struct {
	Date              string `json:"date"`
	TotalMinutes      int    `json:"total_minutes"`
	RestrictedMinutes int    `json:"restricted_minutes"`
}

// Clamp normalizes a record read from storage: negative counters become
// zero and the restricted subset is capped at the total.
func (r UsageRecord) Clamp() UsageRecord {
	if r.TotalMinutes < 0 {
		r.TotalMinutes = 0
	}
	if r.RestrictedMinutes < 0 {
		r.RestrictedMinutes = 0
	}
	if r.RestrictedMinutes > r.TotalMinutes {
		r.RestrictedMinutes = r.TotalMinutes
	}
	return r
}

// OpenSession marks an in-progress usage session for one category.
// At most one open session exists per category.
type OpenSession struct {
	Category  string    `json:"category"`
	StartedAt time.Time `json:"started_at"`
}

// StreakState is the singleton day-over-day focus streak.
type StreakState struct {
	CurrentStreak       int      `json:"current_streak"`
	LongestStreak       int      `json:"longest_streak"`
	TotalSuccessfulDays int      `json:"total_successful_days"`
	LastSuccessfulDate  string   `json:"last_successful_date"`
	UnlockedRewards     []string `json:"unlocked_rewards"`
	PendingRewards      []string `json:"pending_rewards"`
}

// HasReward reports whether the reward has already been unlocked.
func (s *StreakState) HasReward(reward string) bool {
	for _, r := range s.UnlockedRewards {
		if r == reward {
			return true
		}
	}
	return false
}

// Task is one user task, generated or hand-entered.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Priority    Priority  `json:"priority"`
	DueDate     string    `json:"due_date,omitempty"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
}

// Profile is the onboarding result for this installation.
type Profile struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Email              string   `json:"email"`
	Bedtime            string   `json:"bedtime"`
	WakeTime           string   `json:"wake_time"`
	Location           string   `json:"location"`
	Nationality        string   `json:"nationality"`
	Hobbies            string   `json:"hobbies"`
	Occupation         string   `json:"occupation"`
	Goals              []string `json:"goals"`
	OnboardingComplete bool     `json:"onboarding_complete"`
}

// NotifyState is the notification scheduler's persisted bookkeeping:
// the daily reminder cap counter and per-kind dismissal times used for
// re-alert cooldowns.
type NotifyState struct {
	LastDailyReminder  *time.Time           `json:"last_daily_reminder,omitempty"`
	DailyReminderCount int                  `json:"daily_reminder_count"`
	LastDismiss        map[string]time.Time `json:"last_dismiss,omitempty"`
}

// DismissedAt returns the last dismissal time for an alert kind, if any.
func (n *NotifyState) DismissedAt(kind string) (time.Time, bool) {
	if n.LastDismiss == nil {
		return time.Time{}, false
	}
	t, ok := n.LastDismiss[kind]
	return t, ok
}

// RecordDismiss stores a dismissal time for an alert kind.
func (n *NotifyState) RecordDismiss(kind string, at time.Time) {
	if n.LastDismiss == nil {
		n.LastDismiss = make(map[string]time.Time)
	}
	n.LastDismiss[kind] = at
}
