package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/goodtune/focusd/internal/config"
	"github.com/goodtune/focusd/internal/storage"
)

// Store implements the storage.Store interface using Redis.
type Store struct {
	client       *redis.Client
	usageStore   *usageStore
	streakStore  *streakStore
	taskStore    *taskStore
	profileStore *profileStore
	notifyStore  *notifyStore
}

// Open creates a new Redis-backed storage instance and verifies the
// connection with a ping.
func Open(cfg config.RedisConfig) (*Store, error) {
	dialTimeout, err := time.ParseDuration(cfg.DialTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid dial_timeout: %w", err)
	}

	readTimeout, err := time.ParseDuration(cfg.ReadTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid read_timeout: %w", err)
	}

	writeTimeout, err := time.ParseDuration(cfg.WriteTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid write_timeout: %w", err)
	}

	addr := cfg.Host
	if cfg.Port > 0 {
		addr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  dialTimeout,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	store := &Store{
		client:       client,
		usageStore:   &usageStore{client: client},
		streakStore:  &streakStore{client: client},
		taskStore:    &taskStore{client: client},
		profileStore: &profileStore{client: client},
		notifyStore:  &notifyStore{client: client},
	}

	return store, nil
}

// Close closes the Redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}

// Usage returns the UsageStore implementation.
func (s *Store) Usage() storage.UsageStore {
	return s.usageStore
}

// Streaks returns the StreakStore implementation.
func (s *Store) Streaks() storage.StreakStore {
	return s.streakStore
}

// Tasks returns the TaskStore implementation.
func (s *Store) Tasks() storage.TaskStore {
	return s.taskStore
}

// Profiles returns the ProfileStore implementation.
func (s *Store) Profiles() storage.ProfileStore {
	return s.profileStore
}

// Notify returns the NotifyStore implementation.
func (s *Store) Notify() storage.NotifyStore {
	return s.notifyStore
}
