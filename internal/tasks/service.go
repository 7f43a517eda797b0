package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/goodtune/focusd/internal/storage"
)

// Service is the store-backed task list.
type Service struct {
	store  storage.TaskStore
	logger zerolog.Logger
}

// NewService creates a task service.
func NewService(store storage.TaskStore, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger.With().Str("component", "tasks").Logger(),
	}
}

// List returns all tasks sorted by priority.
func (s *Service) List(ctx context.Context) ([]storage.Task, error) {
	list, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	SortByPriority(list)
	return list, nil
}

// Create adds a new task, assigning an ID and creation time.
func (s *Service) Create(ctx context.Context, task storage.Task, now time.Time) (storage.Task, error) {
	if task.Title == "" {
		return storage.Task{}, fmt.Errorf("task title is required")
	}
	if task.Priority == "" {
		task.Priority = storage.PriorityMedium
	}
	task.ID = uuid.NewString()
	task.CreatedAt = now

	if err := s.store.Upsert(ctx, task); err != nil {
		return storage.Task{}, err
	}
	return task, nil
}

// Update replaces an existing task.
func (s *Service) Update(ctx context.Context, task storage.Task) error {
	if _, err := s.store.Get(ctx, task.ID); err != nil {
		return err
	}
	return s.store.Upsert(ctx, task)
}

// Complete marks a task done.
func (s *Service) Complete(ctx context.Context, id string) error {
	task, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	task.Completed = true
	return s.store.Upsert(ctx, *task)
}

// Delete removes a task.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// TopPending returns the highest-priority incomplete task.
func (s *Service) TopPending(ctx context.Context) (storage.Task, bool, error) {
	list, err := s.store.List(ctx)
	if err != nil {
		return storage.Task{}, false, err
	}
	task, ok := TopPending(list)
	return task, ok, nil
}

// Seed generates the starter task list from onboarding goals and
// persists it. Existing tasks are left alone.
func (s *Service) Seed(ctx context.Context, goals []string, now time.Time) ([]storage.Task, error) {
	existing, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return existing, nil
	}

	generated := Generate(goals, now, nil)
	for _, task := range generated {
		if err := s.store.Upsert(ctx, task); err != nil {
			return nil, err
		}
	}

	s.logger.Info().Int("count", len(generated)).Msg("Seeded starter tasks")
	return generated, nil
}

// CompletionPercent reports how much of the task list is done, zero for
// an empty list.
func CompletionPercent(list []storage.Task) int {
	if len(list) == 0 {
		return 0
	}
	done := 0
	for _, task := range list {
		if task.Completed {
			done++
		}
	}
	return done * 100 / len(list)
}
