package redis

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/goodtune/focusd/internal/storage"
)

const (
	dayIndexKey     = "focusd:usage:days"
	sessionIndexKey = "focusd:sessions"
)

type usageStore struct {
	client *redis.Client
}

func dailyUsageKey(date string) string {
	return fmt.Sprintf("focusd:usage:daily:%s", date)
}

func openSessionKey(category string) string {
	return fmt.Sprintf("focusd:session:%s", category)
}

// GetDay retrieves the usage record for a specific date.
func (s *usageStore) GetDay(ctx context.Context, date string) (*storage.UsageRecord, error) {
	data, err := s.client.HGetAll(ctx, dailyUsageKey(date)).Result()
	if err != nil {
		return nil, err
	}
	return parseUsageRecord(data)
}

// PutDay overwrites the usage record for a specific date.
func (s *usageStore) PutDay(ctx context.Context, rec storage.UsageRecord) error {
	rec = rec.Clamp()

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, dailyUsageKey(rec.Date),
		"date", rec.Date,
		"total_minutes", rec.TotalMinutes,
		"restricted_minutes", rec.RestrictedMinutes,
	)
	pipe.SAdd(ctx, dayIndexKey, rec.Date)
	_, err := pipe.Exec(ctx)
	return err
}

// AddMinutes atomically increments a day's counters, creating the record
// if absent.
func (s *usageStore) AddMinutes(ctx context.Context, date string, totalMinutes, restrictedMinutes int) error {
	script := redis.NewScript(addMinutesScript)

	keys := []string{dailyUsageKey(date), dayIndexKey}
	args := []interface{}{date, totalMinutes, restrictedMinutes}

	return script.Run(ctx, s.client, keys, args...).Err()
}

// ListDays returns records with from <= date <= to, ordered by date.
func (s *usageStore) ListDays(ctx context.Context, from, to string) ([]storage.UsageRecord, error) {
	dates, err := s.client.SMembers(ctx, dayIndexKey).Result()
	if err != nil {
		return nil, err
	}

	// Day keys sort lexically in chronological order.
	matched := make([]string, 0, len(dates))
	for _, date := range dates {
		if date >= from && date <= to {
			matched = append(matched, date)
		}
	}
	sort.Strings(matched)

	if len(matched) == 0 {
		return []storage.UsageRecord{}, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(matched))
	for i, date := range matched {
		cmds[i] = pipe.HGetAll(ctx, dailyUsageKey(date))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, err
	}

	records := make([]storage.UsageRecord, 0, len(matched))
	for _, cmd := range cmds {
		data, err := cmd.Result()
		if err != nil || len(data) == 0 {
			continue
		}
		rec, err := parseUsageRecord(data)
		if err == nil {
			records = append(records, *rec)
		}
	}

	return records, nil
}

// DeleteDaysBefore deletes usage records older than the cutoff date and
// prunes them from the day index.
func (s *usageStore) DeleteDaysBefore(ctx context.Context, cutoffDate string) (int, error) {
	if _, err := time.Parse("2006-01-02", cutoffDate); err != nil {
		return 0, fmt.Errorf("invalid cutoff date %q: %w", cutoffDate, err)
	}

	dates, err := s.client.SMembers(ctx, dayIndexKey).Result()
	if err != nil {
		return 0, err
	}

	toDelete := make([]string, 0)
	for _, date := range dates {
		if date < cutoffDate {
			toDelete = append(toDelete, date)
		}
	}
	if len(toDelete) == 0 {
		return 0, nil
	}

	pipe := s.client.TxPipeline()
	for _, date := range toDelete {
		pipe.Del(ctx, dailyUsageKey(date))
		pipe.SRem(ctx, dayIndexKey, date)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}

	return len(toDelete), nil
}

// GetOpenSession retrieves the open session slot for a category.
func (s *usageStore) GetOpenSession(ctx context.Context, category string) (*storage.OpenSession, error) {
	data, err := s.client.HGetAll(ctx, openSessionKey(category)).Result()
	if err != nil {
		return nil, err
	}
	return parseOpenSession(data)
}

// PutOpenSession stores the open session slot for its category.
func (s *usageStore) PutOpenSession(ctx context.Context, session storage.OpenSession) error {
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, openSessionKey(session.Category),
		"category", session.Category,
		"started_at", session.StartedAt.Format(time.RFC3339Nano),
	)
	pipe.SAdd(ctx, sessionIndexKey, session.Category)
	_, err := pipe.Exec(ctx)
	return err
}

// ClearOpenSession removes the open session slot for a category. Clearing
// an absent slot is not an error.
func (s *usageStore) ClearOpenSession(ctx context.Context, category string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, openSessionKey(category))
	pipe.SRem(ctx, sessionIndexKey, category)
	_, err := pipe.Exec(ctx)
	return err
}

// ListOpenSessions returns every open session slot.
func (s *usageStore) ListOpenSessions(ctx context.Context) ([]storage.OpenSession, error) {
	categories, err := s.client.SMembers(ctx, sessionIndexKey).Result()
	if err != nil {
		return nil, err
	}
	if len(categories) == 0 {
		return []storage.OpenSession{}, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(categories))
	for i, category := range categories {
		cmds[i] = pipe.HGetAll(ctx, openSessionKey(category))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, err
	}

	sessions := make([]storage.OpenSession, 0, len(categories))
	for _, cmd := range cmds {
		data, err := cmd.Result()
		if err != nil || len(data) == 0 {
			continue
		}
		session, err := parseOpenSession(data)
		if err == nil {
			sessions = append(sessions, *session)
		}
	}

	return sessions, nil
}
