package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/goodtune/focusd/internal/config"
	"github.com/goodtune/focusd/internal/storage"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	mr := miniredis.RunT(t)

	cfg := config.RedisConfig{
		Host:         mr.Addr(),
		Port:         0,
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 5,
		DialTimeout:  "5s",
		ReadTimeout:  "3s",
		WriteTimeout: "3s",
	}

	store, err := Open(cfg)
	if err != nil {
		t.Fatalf("open Redis store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func TestUsageStore_AddMinutes(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	usage := store.Usage()

	if err := usage.AddMinutes(ctx, "2026-01-05", 25, 10); err != nil {
		t.Fatalf("AddMinutes failed: %v", err)
	}
	if err := usage.AddMinutes(ctx, "2026-01-05", 5, 5); err != nil {
		t.Fatalf("AddMinutes failed: %v", err)
	}

	rec, err := usage.GetDay(ctx, "2026-01-05")
	if err != nil {
		t.Fatalf("GetDay failed: %v", err)
	}
	if rec.TotalMinutes != 30 {
		t.Errorf("expected 30 total minutes, got %d", rec.TotalMinutes)
	}
	if rec.RestrictedMinutes != 15 {
		t.Errorf("expected 15 restricted minutes, got %d", rec.RestrictedMinutes)
	}
}

func TestUsageStore_AddMinutesClampsRestricted(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	usage := store.Usage()

	// Restricted increments beyond the total are clamped down.
	if err := usage.AddMinutes(ctx, "2026-01-05", 10, 30); err != nil {
		t.Fatalf("AddMinutes failed: %v", err)
	}

	rec, err := usage.GetDay(ctx, "2026-01-05")
	if err != nil {
		t.Fatalf("GetDay failed: %v", err)
	}
	if rec.RestrictedMinutes != rec.TotalMinutes {
		t.Errorf("expected restricted clamped to total %d, got %d", rec.TotalMinutes, rec.RestrictedMinutes)
	}
}

func TestUsageStore_GetDayMissing(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.Usage().GetDay(context.Background(), "2026-01-01")
	if !storage.IsAbsent(err) {
		t.Fatalf("expected absent error, got %v", err)
	}
}

func TestUsageStore_ListDays(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	usage := store.Usage()

	for _, date := range []string{"2026-01-04", "2026-01-01", "2026-01-02"} {
		if err := usage.AddMinutes(ctx, date, 60, 20); err != nil {
			t.Fatalf("AddMinutes for %s failed: %v", date, err)
		}
	}

	records, err := usage.ListDays(ctx, "2026-01-02", "2026-01-04")
	if err != nil {
		t.Fatalf("ListDays failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Date != "2026-01-02" || records[1].Date != "2026-01-04" {
		t.Errorf("unexpected order: %q, %q", records[0].Date, records[1].Date)
	}
}

func TestUsageStore_DeleteDaysBefore(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	usage := store.Usage()

	for _, date := range []string{"2025-12-30", "2025-12-31", "2026-01-01"} {
		if err := usage.AddMinutes(ctx, date, 10, 0); err != nil {
			t.Fatalf("AddMinutes for %s failed: %v", date, err)
		}
	}

	deleted, err := usage.DeleteDaysBefore(ctx, "2026-01-01")
	if err != nil {
		t.Fatalf("DeleteDaysBefore failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("expected 2 deleted days, got %d", deleted)
	}

	if _, err := usage.GetDay(ctx, "2025-12-31"); !storage.IsAbsent(err) {
		t.Errorf("expected pruned day to be absent, got %v", err)
	}

	records, err := usage.ListDays(ctx, "2025-12-01", "2026-01-31")
	if err != nil {
		t.Fatalf("ListDays failed: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("expected 1 remaining record, got %d", len(records))
	}
}

func TestUsageStore_OpenSession(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	usage := store.Usage()

	started := time.Date(2026, 1, 5, 20, 15, 0, 0, time.UTC)

	if _, err := usage.GetOpenSession(ctx, "social-media"); !storage.IsAbsent(err) {
		t.Fatalf("expected no open session, got %v", err)
	}

	if err := usage.PutOpenSession(ctx, storage.OpenSession{
		Category:  "social-media",
		StartedAt: started,
	}); err != nil {
		t.Fatalf("PutOpenSession failed: %v", err)
	}

	session, err := usage.GetOpenSession(ctx, "social-media")
	if err != nil {
		t.Fatalf("GetOpenSession failed: %v", err)
	}
	if !session.StartedAt.Equal(started) {
		t.Errorf("expected start %v, got %v", started, session.StartedAt)
	}

	if err := usage.ClearOpenSession(ctx, "social-media"); err != nil {
		t.Fatalf("ClearOpenSession failed: %v", err)
	}
	if _, err := usage.GetOpenSession(ctx, "social-media"); !storage.IsAbsent(err) {
		t.Fatalf("expected cleared session to be absent, got %v", err)
	}
}

func TestStreakStore_RoundTrip(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	streaks := store.Streaks()

	if _, err := streaks.Get(ctx); !storage.IsAbsent(err) {
		t.Fatalf("expected absent streak state, got %v", err)
	}

	state := storage.StreakState{
		CurrentStreak:      5,
		LongestStreak:      9,
		LastSuccessfulDate: "2026-01-04",
		PendingRewards:     []string{"badge"},
	}
	if err := streaks.Put(ctx, state); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	loaded, err := streaks.Get(ctx)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if loaded.CurrentStreak != 5 || loaded.LongestStreak != 9 {
		t.Errorf("unexpected state: %+v", loaded)
	}
}

func TestTaskStore_CRUD(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	tasks := store.Tasks()

	task := storage.Task{
		ID:        "task-1",
		Title:     "Stretch for ten minutes",
		Priority:  storage.PriorityMedium,
		CreatedAt: time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC),
	}
	if err := tasks.Upsert(ctx, task); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	loaded, err := tasks.Get(ctx, "task-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if loaded.Title != task.Title {
		t.Errorf("expected title %q, got %q", task.Title, loaded.Title)
	}

	all, err := tasks.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("expected 1 task, got %d", len(all))
	}

	if err := tasks.Delete(ctx, "task-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := tasks.Get(ctx, "task-1"); !storage.IsAbsent(err) {
		t.Fatalf("expected deleted task to be absent, got %v", err)
	}
}

func TestMalformedStateTreatedAsAbsent(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if err := store.client.Set(ctx, streakStateKey, "{broken", 0).Err(); err != nil {
		t.Fatalf("write corrupt state: %v", err)
	}

	_, err := store.Streaks().Get(ctx)
	if !storage.IsAbsent(err) {
		t.Fatalf("expected malformed state to read as absent, got %v", err)
	}
}
