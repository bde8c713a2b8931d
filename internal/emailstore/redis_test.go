package emailstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedisStore(t *testing.T, limits Limits) *RedisStore {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisStore(client, "rgtest", limits)
}

func TestRedisStoreSaveAndCount(t *testing.T) {
	store := newTestRedisStore(t, Limits{MaxRecords: 100, MaxBytes: 1 << 20})
	ctx := context.Background()

	status, err := store.Save(ctx, testRecord("a@example.com"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if status != StatusStored {
		t.Fatalf("status = %v, want StatusStored", status)
	}

	n, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Fatalf("count = %d, want 1", n)
	}
}

func TestRedisStoreDeduplicates(t *testing.T) {
	store := newTestRedisStore(t, Limits{MaxRecords: 100, MaxBytes: 1 << 20})
	ctx := context.Background()

	if _, err := store.Save(ctx, testRecord("a@example.com")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	later := testRecord("a@example.com")
	later.Timestamp = later.Timestamp.Add(time.Hour)
	status, err := store.Save(ctx, later)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if status != StatusDuplicate {
		t.Fatalf("status = %v, want StatusDuplicate", status)
	}
	if n, _ := store.Count(ctx); n != 1 {
		t.Fatalf("count = %d, want 1 after duplicate save", n)
	}
}

func TestRedisStoreCountCapDropsSilently(t *testing.T) {
	store := newTestRedisStore(t, Limits{MaxRecords: 2, MaxBytes: 1 << 20})
	ctx := context.Background()

	for _, email := range []string{"a@example.com", "b@example.com"} {
		if _, err := store.Save(ctx, testRecord(email)); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	status, err := store.Save(ctx, testRecord("c@example.com"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if status != StatusDropped {
		t.Fatalf("status = %v, want StatusDropped", status)
	}
	if n, _ := store.Count(ctx); n != 2 {
		t.Fatalf("count = %d, want unchanged 2", n)
	}
}

func TestRedisStoreByteCapDropsSilently(t *testing.T) {
	store := newTestRedisStore(t, Limits{MaxRecords: 1000, MaxBytes: 32})
	ctx := context.Background()

	// One serialized record is well over 32 bytes, so the side counter trips
	// the cap for the next save.
	if _, err := store.Save(ctx, testRecord("a@example.com")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	status, err := store.Save(ctx, testRecord("b@example.com"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if status != StatusDropped {
		t.Fatalf("status = %v, want StatusDropped once byte counter exceeds cap", status)
	}
}

func TestRedisStoreBackendFailureSurfacesError(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	store := NewRedisStore(client, "rgtest", Limits{MaxRecords: 10})

	mr.Close()

	if _, err := store.Save(context.Background(), testRecord("a@example.com")); err == nil {
		t.Fatal("expected error when backend is down")
	}
	if _, err := store.Count(context.Background()); err == nil {
		t.Fatal("expected count error when backend is down")
	}
}
