package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseLockScript deletes the lock only while it still holds the caller's token.
var releaseLockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// LockStore holds per-session confirm locks in Redis.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

func sessionLockKey(sessionID string) string {
	return "lock:session:" + sessionID
}

// AcquireSessionLock takes the confirm lock for a session under a fresh token.
// acquired is false when another confirm holds it.
func (s *LockStore) AcquireSessionLock(ctx context.Context, sessionID string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := s.client.SetNX(ctx, sessionLockKey(sessionID), token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("acquire session lock: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// ReleaseSessionLock releases the confirm lock if token still owns it.
func (s *LockStore) ReleaseSessionLock(ctx context.Context, sessionID, token string) error {
	if err := releaseLockScript.Run(ctx, s.client, []string{sessionLockKey(sessionID)}, token).Err(); err != nil {
		return fmt.Errorf("release session lock: %w", err)
	}
	return nil
}
