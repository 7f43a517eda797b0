package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/goodtune/focusd/internal/storage"
)

const (
	streakStateKey  = "focusd:streak:state"
	profileStateKey = "focusd:profile:state"
	notifyStateKey  = "focusd:notify:state"
	taskIndexKey    = "focusd:tasks"
)

func taskKey(id string) string {
	return fmt.Sprintf("focusd:task:%s", id)
}

// getJSON loads a JSON-encoded value from a plain key.
func getJSON[T any](ctx context.Context, client *redis.Client, key string) (*T, error) {
	raw, err := client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var value T
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", storage.ErrMalformed, key, err)
	}
	return &value, nil
}

// putJSON stores a JSON-encoded value under a plain key.
func putJSON(ctx context.Context, client *redis.Client, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return client.Set(ctx, key, raw, 0).Err()
}

type streakStore struct {
	client *redis.Client
}

func (s *streakStore) Get(ctx context.Context) (*storage.StreakState, error) {
	return getJSON[storage.StreakState](ctx, s.client, streakStateKey)
}

func (s *streakStore) Put(ctx context.Context, state storage.StreakState) error {
	return putJSON(ctx, s.client, streakStateKey, state)
}

type profileStore struct {
	client *redis.Client
}

func (s *profileStore) Get(ctx context.Context) (*storage.Profile, error) {
	return getJSON[storage.Profile](ctx, s.client, profileStateKey)
}

func (s *profileStore) Put(ctx context.Context, profile storage.Profile) error {
	return putJSON(ctx, s.client, profileStateKey, profile)
}

type notifyStore struct {
	client *redis.Client
}

func (s *notifyStore) Get(ctx context.Context) (*storage.NotifyState, error) {
	return getJSON[storage.NotifyState](ctx, s.client, notifyStateKey)
}

func (s *notifyStore) Put(ctx context.Context, state storage.NotifyState) error {
	return putJSON(ctx, s.client, notifyStateKey, state)
}

type taskStore struct {
	client *redis.Client
}

func (s *taskStore) Get(ctx context.Context, id string) (*storage.Task, error) {
	return getJSON[storage.Task](ctx, s.client, taskKey(id))
}

func (s *taskStore) List(ctx context.Context) ([]storage.Task, error) {
	ids, err := s.client.SMembers(ctx, taskIndexKey).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []storage.Task{}, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Get(ctx, taskKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, err
	}

	tasks := make([]storage.Task, 0, len(ids))
	for _, cmd := range cmds {
		raw, err := cmd.Result()
		if err != nil {
			continue
		}
		var task storage.Task
		if err := json.Unmarshal([]byte(raw), &task); err != nil {
			continue
		}
		tasks = append(tasks, task)
	}

	return tasks, nil
}

func (s *taskStore) Upsert(ctx context.Context, task storage.Task) error {
	raw, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task %s: %w", task.ID, err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, taskKey(task.ID), raw, 0)
	pipe.SAdd(ctx, taskIndexKey, task.ID)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *taskStore) Delete(ctx context.Context, id string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, taskKey(id))
	pipe.SRem(ctx, taskIndexKey, id)
	_, err := pipe.Exec(ctx)
	return err
}
