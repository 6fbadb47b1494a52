package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/carepoint/scheduling-api/internal/core/ports"
)

const defaultSlotLockTTL = 10 * time.Second

var _ ports.SlotLocker = (*SlotLocker)(nil)

// releaseScript deletes the lock only while it still holds the caller's token,
// so a request whose lock expired cannot free a lock taken by another.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// SlotLocker serialises bookings of one doctor slot across API instances.
// Key format: slotlock:<doctor_id>|<date>|<time>
type SlotLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSlotLocker creates a SlotLocker. If ttl <= 0, defaultSlotLockTTL is used.
func NewSlotLocker(client *redis.Client, ttl time.Duration) *SlotLocker {
	if ttl <= 0 {
		ttl = defaultSlotLockTTL
	}
	return &SlotLocker{client: client, ttl: ttl}
}

// Acquire takes the lock for slotKey. ok is false when another request holds it.
func (l *SlotLocker) Acquire(ctx context.Context, slotKey string) (string, bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, slotLockKey(slotKey), token, l.ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("acquire slot lock: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Release frees the lock if it is still held with token.
func (l *SlotLocker) Release(ctx context.Context, slotKey, token string) error {
	if token == "" {
		return nil
	}
	if err := releaseScript.Run(ctx, l.client, []string{slotLockKey(slotKey)}, token).Err(); err != nil {
		return fmt.Errorf("release slot lock: %w", err)
	}
	return nil
}

func slotLockKey(slotKey string) string {
	return "slotlock:" + slotKey
}
