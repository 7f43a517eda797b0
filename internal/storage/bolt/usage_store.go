package bolt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goodtune/focusd/internal/storage"
	"go.etcd.io/bbolt"
)

type usageStore struct {
	db *bbolt.DB
}

func (s *usageStore) GetDay(ctx context.Context, date string) (*storage.UsageRecord, error) {
	return getBucketValue[storage.UsageRecord](ctx, s.db, bucketDailyUsage, date)
}

func (s *usageStore) PutDay(ctx context.Context, rec storage.UsageRecord) error {
	return putBucketValue(ctx, s.db, bucketDailyUsage, rec.Date, rec)
}

func (s *usageStore) AddMinutes(ctx context.Context, date string, totalMinutes, restrictedMinutes int) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		b := tx.Bucket([]byte(bucketDailyUsage))
		if b == nil {
			return fmt.Errorf("daily usage bucket missing")
		}
		rec := storage.UsageRecord{Date: date}
		if existing := b.Get([]byte(date)); existing != nil {
			if err := unmarshal(existing, &rec); err != nil {
				// Corrupt record: start over from zero rather than fail.
				rec = storage.UsageRecord{Date: date}
			}
		}
		rec.TotalMinutes += totalMinutes
		rec.RestrictedMinutes += restrictedMinutes
		rec = rec.Clamp()
		data, err := marshal(rec)
		if err != nil {
			return err
		}
		return b.Put([]byte(date), data)
	})
}

func (s *usageStore) ListDays(ctx context.Context, from, to string) ([]storage.UsageRecord, error) {
	records := make([]storage.UsageRecord, 0)
	return records, s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketDailyUsage))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		// Day keys are lexically ordered, so a range scan walks days in order.
		for k, v := c.Seek([]byte(from)); k != nil && string(k) <= to; k, v = c.Next() {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			var rec storage.UsageRecord
			if err := unmarshal(v, &rec); err != nil {
				continue
			}
			records = append(records, rec.Clamp())
		}
		return nil
	})
}

func (s *usageStore) DeleteDaysBefore(ctx context.Context, cutoffDate string) (int, error) {
	if _, err := time.Parse("2006-01-02", cutoffDate); err != nil {
		return 0, fmt.Errorf("invalid cutoff date: %w", err)
	}
	deleted := 0
	return deleted, s.db.Update(func(tx *bbolt.Tx) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		b := tx.Bucket([]byte(bucketDailyUsage))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, _ := c.First(); k != nil && string(k) < cutoffDate; k, _ = c.Next() {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err := c.Delete(); err != nil {
				return err
			}
			deleted++
		}
		return nil
	})
}

func (s *usageStore) GetOpenSession(ctx context.Context, category string) (*storage.OpenSession, error) {
	return getBucketValue[storage.OpenSession](ctx, s.db, bucketOpenSessions, category)
}

func (s *usageStore) PutOpenSession(ctx context.Context, session storage.OpenSession) error {
	return putBucketValue(ctx, s.db, bucketOpenSessions, session.Category, session)
}

func (s *usageStore) ClearOpenSession(ctx context.Context, category string) error {
	err := deleteBucketValue(ctx, s.db, bucketOpenSessions, category)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	return err
}

func (s *usageStore) ListOpenSessions(ctx context.Context) ([]storage.OpenSession, error) {
	return listBucket[storage.OpenSession](ctx, s.db, bucketOpenSessions)
}
