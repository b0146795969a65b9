package credentials_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/JaimeStill/lyceum/internal/credentials"
	"github.com/JaimeStill/lyceum/pkg/cache"
)

func TestRedisLedger(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })

	c := cache.NewFromClient(client, "lyceum", slog.New(slog.NewTextHandler(io.Discard, nil)))
	ledger := credentials.NewRedisLedger(c, time.Hour)

	ctx := context.Background()
	a, b := uuid.New(), uuid.New()

	if err := ledger.Mark(ctx, a); err != nil {
		t.Fatalf("mark: %v", err)
	}

	got, err := ledger.Exhausted(ctx, []uuid.UUID{a, b})
	if err != nil {
		t.Fatalf("exhausted: %v", err)
	}
	if !got[a] || got[b] {
		t.Errorf("exhausted = %v, want only %s", got, a)
	}

	key := "lyceum:exhausted:" + a.String()
	if !srv.Exists(key) {
		t.Fatalf("key %s not written", key)
	}
	if ttl := srv.TTL(key); ttl != time.Hour {
		t.Errorf("ttl = %s, want 1h", ttl)
	}

	srv.FastForward(2 * time.Hour)

	got, err = ledger.Exhausted(ctx, []uuid.UUID{a})
	if err != nil {
		t.Fatalf("exhausted after expiry: %v", err)
	}
	if got[a] {
		t.Error("entry should expire")
	}
}

func TestRedisLedgerEmpty(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })

	ledger := credentials.NewRedisLedger(cache.NewFromClient(client, "lyceum", slog.New(slog.NewTextHandler(io.Discard, nil))), time.Minute)

	got, err := ledger.Exhausted(context.Background(), nil)
	if err != nil || len(got) != 0 {
		t.Errorf("Exhausted(nil) = %v, %v", got, err)
	}
}

func TestMemoryLedger(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	ledger := credentials.NewMemoryLedgerAt(time.Hour, func() time.Time { return now })

	ctx := context.Background()
	id := uuid.New()

	ledger.Mark(ctx, id)

	got, _ := ledger.Exhausted(ctx, []uuid.UUID{id, uuid.New()})
	if !got[id] || len(got) != 1 {
		t.Errorf("exhausted = %v", got)
	}

	now = now.Add(61 * time.Minute)

	got, _ = ledger.Exhausted(ctx, []uuid.UUID{id})
	if got[id] {
		t.Error("entry should expire after ttl")
	}
}
