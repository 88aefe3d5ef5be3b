package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockTimeout is returned when the claim lock could not be acquired
// within the configured wait.
var ErrLockTimeout = errors.New("timed out waiting for claim lock")

// releaseScript deletes the lock only if it still holds our token, so a
// holder whose lease expired never removes a successor's lock.
var releaseScript = redis.NewScript(`
    if redis.call('GET', KEYS[1]) == ARGV[1] then
        return redis.call('DEL', KEYS[1])
    end
    return 0
`)

// RedisLocker serializes claims across replicas with a single Redis key
// (SET NX PX).  The lease expires after TTL.
type RedisLocker struct {
	rdb   *redis.Client
	key   string
	ttl   time.Duration
	wait  time.Duration
	retry time.Duration
}

// NewRedisLocker returns a locker on key.  ttl bounds how long a holder may
// keep the lock; wait bounds how long Lock retries before giving up.
func NewRedisLocker(rdb *redis.Client, key string, ttl, wait time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	if wait <= 0 {
		wait = 5 * time.Second
	}
	return &RedisLocker{rdb: rdb, key: key, ttl: ttl, wait: wait, retry: 50 * time.Millisecond}
}

// Lock blocks until the lock is held, ctx is done or the wait elapses.
// The returned func releases the lock.
func (l *RedisLocker) Lock(ctx context.Context) (func(), error) {
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)
	for {
		ok, err := l.rdb.SetNX(ctx, l.key, token, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return func() {
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				_ = releaseScript.Run(ctx, l.rdb, []string{l.key}, token).Err()
			}, nil
		}
		if time.Now().After(deadline) {
			return nil, ErrLockTimeout
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retry):
		}
	}
}
