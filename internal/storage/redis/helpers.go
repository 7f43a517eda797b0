package redis

import (
	"fmt"
	"strconv"
	"time"

	"github.com/goodtune/focusd/internal/storage"
)

// parseUsageRecord converts a Redis hash to a UsageRecord.
func parseUsageRecord(data map[string]string) (*storage.UsageRecord, error) {
	if len(data) == 0 {
		return nil, storage.ErrNotFound
	}

	total, err := strconv.Atoi(data["total_minutes"])
	if err != nil {
		return nil, fmt.Errorf("%w: total_minutes: %v", storage.ErrMalformed, err)
	}

	restricted, err := strconv.Atoi(data["restricted_minutes"])
	if err != nil {
		return nil, fmt.Errorf("%w: restricted_minutes: %v", storage.ErrMalformed, err)
	}

	rec := storage.UsageRecord{
		Date:              data["date"],
		TotalMinutes:      total,
		RestrictedMinutes: restricted,
	}.Clamp()
	return &rec, nil
}

// parseOpenSession converts a Redis hash to an OpenSession.
func parseOpenSession(data map[string]string) (*storage.OpenSession, error) {
	if len(data) == 0 {
		return nil, storage.ErrNotFound
	}

	startedAt, err := time.Parse(time.RFC3339Nano, data["started_at"])
	if err != nil {
		return nil, fmt.Errorf("%w: started_at: %v", storage.ErrMalformed, err)
	}

	return &storage.OpenSession{
		Category:  data["category"],
		StartedAt: startedAt,
	}, nil
}
