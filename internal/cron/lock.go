package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/sajith213/fuelstation-backend/pkg/instance"
)

const defaultLockTTL = 25 * time.Hour

// Lease is a held lock. Release is safe to call more than once.
type Lease interface {
	Release(ctx context.Context) error
}

// Lock coordinates exclusive cron cycles across worker instances.
type Lock interface {
	// Acquire returns a nil lease and no error when another owner holds the lock.
	Acquire(ctx context.Context) (Lease, error)
}

type lockStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

// RedisLock implements Lock with SET NX plus a TTL so a crashed worker
// cannot hold the lock forever.
type RedisLock struct {
	store lockStore
	key   string
	ttl   time.Duration
}

// NewRedisLock constructs a Redis-backed lock.
func NewRedisLock(store lockStore, key string, ttl time.Duration) (*RedisLock, error) {
	if store == nil {
		return nil, errors.New("redis client required for lock")
	}
	if key == "" {
		return nil, errors.New("lock key is required")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLock{store: store, key: key, ttl: ttl}, nil
}

// Acquire tries to own the lock for the configured TTL.
func (l *RedisLock) Acquire(ctx context.Context) (Lease, error) {
	owner := instance.GetID() + ":" + uuid.NewString()
	ok, err := l.store.SetNX(ctx, l.key, owner, l.ttl)
	if err != nil {
		return nil, fmt.Errorf("setnx %s: %w", l.key, err)
	}
	if !ok {
		return nil, nil
	}
	return &redisLease{lock: l, owner: owner}, nil
}

type redisLease struct {
	lock     *RedisLock
	owner    string
	released bool
}

// Release deletes the key only while this lease still owns it; an expired
// lease that was taken over by another worker is left alone.
func (l *redisLease) Release(ctx context.Context) error {
	if l.released {
		return nil
	}
	value, err := l.lock.store.Get(ctx, l.lock.key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			l.released = true
			return nil
		}
		return fmt.Errorf("read lock owner: %w", err)
	}
	if value != l.owner {
		l.released = true
		return nil
	}
	if err := l.lock.store.Del(ctx, l.lock.key); err != nil {
		return fmt.Errorf("delete lock: %w", err)
	}
	l.released = true
	return nil
}
