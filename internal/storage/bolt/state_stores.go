package bolt

import (
	"context"

	"github.com/goodtune/focusd/internal/storage"
	"go.etcd.io/bbolt"
)

type streakStore struct {
	db *bbolt.DB
}

func (s *streakStore) Get(ctx context.Context) (*storage.StreakState, error) {
	return getBucketValue[storage.StreakState](ctx, s.db, bucketStreak, singletonKey)
}

func (s *streakStore) Put(ctx context.Context, state storage.StreakState) error {
	return putBucketValue(ctx, s.db, bucketStreak, singletonKey, state)
}

type profileStore struct {
	db *bbolt.DB
}

func (s *profileStore) Get(ctx context.Context) (*storage.Profile, error) {
	return getBucketValue[storage.Profile](ctx, s.db, bucketProfile, singletonKey)
}

func (s *profileStore) Put(ctx context.Context, profile storage.Profile) error {
	return putBucketValue(ctx, s.db, bucketProfile, singletonKey, profile)
}

type notifyStore struct {
	db *bbolt.DB
}

func (s *notifyStore) Get(ctx context.Context) (*storage.NotifyState, error) {
	return getBucketValue[storage.NotifyState](ctx, s.db, bucketNotify, singletonKey)
}

func (s *notifyStore) Put(ctx context.Context, state storage.NotifyState) error {
	return putBucketValue(ctx, s.db, bucketNotify, singletonKey, state)
}

type taskStore struct {
	db *bbolt.DB
}

func (s *taskStore) Get(ctx context.Context, id string) (*storage.Task, error) {
	return getBucketValue[storage.Task](ctx, s.db, bucketTasks, id)
}

func (s *taskStore) List(ctx context.Context) ([]storage.Task, error) {
	return listBucket[storage.Task](ctx, s.db, bucketTasks)
}

func (s *taskStore) Upsert(ctx context.Context, task storage.Task) error {
	return putBucketValue(ctx, s.db, bucketTasks, task.ID, task)
}

func (s *taskStore) Delete(ctx context.Context, id string) error {
	return deleteBucketValue(ctx, s.db, bucketTasks, id)
}
