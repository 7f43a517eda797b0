package storage

import (
	"context"
	"errors"
	"os"
)

// ErrNotFound is returned when a record is missing from storage.
var ErrNotFound = errors.New("storage: record not found")

// ErrMalformed is returned when a persisted value exists but cannot be
// decoded. Consumers treat it like ErrNotFound and fall back to a zero
// value; the corrupt record is superseded by the next write.
var ErrMalformed = errors.New("storage: malformed record")

// IsAbsent reports whether err means "no usable record" (missing or corrupt).
func IsAbsent(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrMalformed)
}

// EnsureDir ensures a directory exists with default permissions.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// Store represents the root storage interface.
type Store interface {
	Close() error
	Usage() UsageStore
	Streaks() StreakStore
	Tasks() TaskStore
	Profiles() ProfileStore
	Notify() NotifyStore
}

// UsageStore manages daily usage records and the open session slots.
type UsageStore interface {
	GetDay(ctx context.Context, date string) (*UsageRecord, error)
	PutDay(ctx context.Context, rec UsageRecord) error
	// AddMinutes atomically adds to a day's counters, creating the record
	// if absent.
	AddMinutes(ctx context.Context, date string, totalMinutes, restrictedMinutes int) error
	// ListDays returns records with from <= Date <= to, ordered by date.
	ListDays(ctx context.Context, from, to string) ([]UsageRecord, error)
	DeleteDaysBefore(ctx context.Context, cutoffDate string) (int, error)

	GetOpenSession(ctx context.Context, category string) (*OpenSession, error)
	PutOpenSession(ctx context.Context, session OpenSession) error
	ClearOpenSession(ctx context.Context, category string) error
	ListOpenSessions(ctx context.Context) ([]OpenSession, error)
}

// StreakStore manages the singleton streak state.
type StreakStore interface {
	Get(ctx context.Context) (*StreakState, error)
	Put(ctx context.Context, state StreakState) error
}

// TaskStore manages the user's task list.
type TaskStore interface {
	Get(ctx context.Context, id string) (*Task, error)
	List(ctx context.Context) ([]Task, error)
	Upsert(ctx context.Context, task Task) error
	Delete(ctx context.Context, id string) error
}

// ProfileStore manages the singleton user profile.
type ProfileStore interface {
	Get(ctx context.Context) (*Profile, error)
	Put(ctx context.Context, profile Profile) error
}

// NotifyStore manages notification scheduler bookkeeping.
type NotifyStore interface {
	Get(ctx context.Context) (*NotifyState, error)
	Put(ctx context.Context, state NotifyState) error
}
