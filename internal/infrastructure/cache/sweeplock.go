package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// sweepLockKeyPrefix namespaces lock keys: passage:sweep_lock:{name}
const sweepLockKeyPrefix = "passage:sweep_lock:"

// releaseScript deletes the key only while it still holds our token, so an
// expired lock taken over by another instance is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// SweepLock is a Redis-based mutual exclusion for periodic sweeps shared by
// several instances.
type SweepLock struct {
	client *redis.Client
}

func NewSweepLock(client *redis.Client) *SweepLock {
	return &SweepLock{client: client}
}

func (l *SweepLock) key(name string) string {
	return sweepLockKeyPrefix + name
}

// TryAcquire atomically takes the named lock for ttl using SetNX. When the
// lock is held elsewhere it returns acquired=false and a nil release.
func (l *SweepLock) TryAcquire(ctx context.Context, name string, ttl time.Duration) (release func(context.Context) error, acquired bool, err error) {
	token := uuid.NewString()
	key := l.key(name)

	acquired, err = l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire sweep lock: %w", err)
	}
	if !acquired {
		return nil, false, nil
	}

	release = func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
			return fmt.Errorf("failed to release sweep lock: %w", err)
		}
		return nil
	}
	return release, true, nil
}
