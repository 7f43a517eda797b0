package trend

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/goodtune/focusd/internal/clock"
	"github.com/goodtune/focusd/internal/storage"
	"github.com/goodtune/focusd/internal/storage/bolt"
)

func TestStoreSourceRange(t *testing.T) {
	store, err := bolt.Open(filepath.Join(t.TempDir(), "focusd.bolt"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	for _, date := range []string{"2026-01-01", "2026-01-02", "2026-01-03"} {
		if err := store.Usage().AddMinutes(ctx, date, 100, 40); err != nil {
			t.Fatalf("seed usage: %v", err)
		}
	}

	clk := &clock.TestClock{CurrentTime: time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)}
	source, err := NewStoreSource(store.Usage(), clk, 32)
	if err != nil {
		t.Fatalf("new store source: %v", err)
	}

	records, err := source.Days(ctx, "2026-01-01", "2026-01-03")
	if err != nil {
		t.Fatalf("days: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	// Second read of closed days comes from the cache.
	cached, err := source.Days(ctx, "2026-01-01", "2026-01-03")
	if err != nil {
		t.Fatalf("cached days: %v", err)
	}
	if len(cached) != 3 {
		t.Fatalf("expected 3 cached records, got %d", len(cached))
	}
	for i := range records {
		if cached[i] != records[i] {
			t.Errorf("cache mismatch at %d: %+v vs %+v", i, cached[i], records[i])
		}
	}
}

func TestSyntheticSourceDeterministic(t *testing.T) {
	ctx := context.Background()

	first, err := NewSyntheticSource(7).Days(ctx, "2026-01-01", "2026-01-14")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	second, err := NewSyntheticSource(7).Days(ctx, "2026-01-01", "2026-01-14")
	if err != nil {
		t.Fatalf("generate again: %v", err)
	}

	if len(first) != 14 {
		t.Fatalf("expected 14 records, got %d", len(first))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("seeded runs differ at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestSyntheticSourceDistribution(t *testing.T) {
	records, err := NewSyntheticSource(1).Days(context.Background(), "2026-01-01", "2026-01-31")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	for _, rec := range records {
		day, err := time.Parse(clock.DayKeyLayout, rec.Date)
		if err != nil {
			t.Fatalf("parse %q: %v", rec.Date, err)
		}

		weekend := day.Weekday() == time.Saturday || day.Weekday() == time.Sunday
		min, max := 240, 360
		if weekend {
			min, max = 180, 300
		}
		if rec.TotalMinutes < min || rec.TotalMinutes > max {
			t.Errorf("%s total %d outside [%d, %d]", rec.Date, rec.TotalMinutes, min, max)
		}

		lo := rec.TotalMinutes * 40 / 100
		hi := rec.TotalMinutes * 80 / 100
		if rec.RestrictedMinutes < lo || rec.RestrictedMinutes > hi {
			t.Errorf("%s restricted %d outside [%d, %d]", rec.Date, rec.RestrictedMinutes, lo, hi)
		}
	}
}

func TestSummary(t *testing.T) {
	records := []storage.UsageRecord{
		{Date: "2026-01-01", TotalMinutes: 200, RestrictedMinutes: 100},
		{Date: "2026-01-02", TotalMinutes: 300, RestrictedMinutes: 100},
		{Date: "2026-01-03", TotalMinutes: 100, RestrictedMinutes: 50},
	}

	stats := Summary(records, 240)

	if stats.Days != 3 {
		t.Errorf("expected 3 days, got %d", stats.Days)
	}
	if stats.AverageMinutes != 200 {
		t.Errorf("expected average 200, got %d", stats.AverageMinutes)
	}
	if stats.RestrictedShare != 41 {
		t.Errorf("expected 41%% restricted share, got %d", stats.RestrictedShare)
	}
	if stats.DaysUnderLimit != 2 {
		t.Errorf("expected 2 days under limit, got %d", stats.DaysUnderLimit)
	}
}

func TestSummaryEmpty(t *testing.T) {
	stats := Summary(nil, 240)
	if stats.Days != 0 || stats.AverageMinutes != 0 || stats.RestrictedShare != 0 {
		t.Errorf("expected zero stats, got %+v", stats)
	}
}
