package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrResetInProgress = errors.New("weekly reset already in progress")

// Locker guards the weekly reset so that two runs never overlap.
// TryLock returns ErrResetInProgress when the lock is held elsewhere.
type Locker interface {
	TryLock(ctx context.Context) (unlock func(), err error)
}

type LocalLocker struct {
	mu sync.Mutex
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{}
}

func (l *LocalLocker) TryLock(context.Context) (func(), error) {
	if !l.mu.TryLock() {
		return nil, ErrResetInProgress
	}
	return l.mu.Unlock, nil
}

const (
	DefaultLockKey = "choretracker:reset-week:lock"
	DefaultLockTTL = 10 * time.Minute
)

// RedisLocker holds the lock in a single Redis key shared by every replica.
// The key expires after ttl so a crashed holder cannot block future resets.
type RedisLocker struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewRedisLocker(client *redis.Client, key string, ttl time.Duration) *RedisLocker {
	if key == "" {
		key = DefaultLockKey
	}
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	return &RedisLocker{client: client, key: key, ttl: ttl}
}

// releaseScript deletes the key only if it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func (l *RedisLocker) TryLock(ctx context.Context) (func(), error) {
	token := uuid.New().String()
	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire reset lock: %w", err)
	}
	if !ok {
		return nil, ErrResetInProgress
	}

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = releaseScript.Run(ctx, l.client, []string{l.key}, token).Err()
	}, nil
}
