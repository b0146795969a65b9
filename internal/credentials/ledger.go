package credentials

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/JaimeStill/lyceum/pkg/cache"
)

// Ledger remembers which accounts a provider has reported out of capacity.
// Entries expire so a freed account is retried eventually.
type Ledger interface {
	Mark(ctx context.Context, id uuid.UUID) error
	Exhausted(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]bool, error)
}

type redisLedger struct {
	cache cache.System
	ttl   time.Duration
}

// NewRedisLedger keeps entries at "<prefix>:exhausted:<id>" for ttl.
func NewRedisLedger(c cache.System, ttl time.Duration) Ledger {
	return &redisLedger{cache: c, ttl: ttl}
}

func (l *redisLedger) key(id uuid.UUID) string {
	return l.cache.Key("exhausted", id.String())
}

func (l *redisLedger) Mark(ctx context.Context, id uuid.UUID) error {
	return l.cache.Client().Set(ctx, l.key(id), 1, l.ttl).Err()
}

func (l *redisLedger) Exhausted(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	out := make(map[uuid.UUID]bool, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = l.key(id)
	}

	vals, err := l.cache.Client().MGet(ctx, keys...).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}

	for i, v := range vals {
		if v != nil {
			out[ids[i]] = true
		}
	}
	return out, nil
}

type memoryLedger struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[uuid.UUID]time.Time
}

// NewMemoryLedger is the single-process ledger used when no Redis URL is
// configured.
func NewMemoryLedger(ttl time.Duration) Ledger {
	return newMemoryLedger(ttl, time.Now)
}

func newMemoryLedger(ttl time.Duration, now func() time.Time) *memoryLedger {
	return &memoryLedger{
		ttl:     ttl,
		now:     now,
		entries: make(map[uuid.UUID]time.Time),
	}
}

func (l *memoryLedger) Mark(_ context.Context, id uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[id] = l.now().Add(l.ttl)
	return nil
}

func (l *memoryLedger) Exhausted(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	out := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		until, ok := l.entries[id]
		if !ok {
			continue
		}
		if now.After(until) {
			delete(l.entries, id)
			continue
		}
		out[id] = true
	}
	return out, nil
}
