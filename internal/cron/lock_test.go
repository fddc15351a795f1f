package cron

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type memoryLockStore struct {
	values map[string]string
	ttls   map[string]time.Duration
}

func newMemoryLockStore() *memoryLockStore {
	return &memoryLockStore{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memoryLockStore) SetNX(_ context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	m.values[key] = value.(string)
	m.ttls[key] = ttl
	return true, nil
}

func (m *memoryLockStore) Get(_ context.Context, key string) (string, error) {
	value, ok := m.values[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (m *memoryLockStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

func TestRedisLockIsExclusive(t *testing.T) {
	store := newMemoryLockStore()
	first, err := NewRedisLock(store, "vkyc:lock:cron-worker:test", 0)
	if err != nil {
		t.Fatalf("new lock: %v", err)
	}
	second, _ := NewRedisLock(store, "vkyc:lock:cron-worker:test", 0)
	ctx := context.Background()

	if ok, err := first.Acquire(ctx); err != nil || !ok {
		t.Fatalf("first acquire: ok=%v err=%v", ok, err)
	}
	if store.ttls["vkyc:lock:cron-worker:test"] != defaultLockTTL {
		t.Fatalf("expected default ttl, got %s", store.ttls["vkyc:lock:cron-worker:test"])
	}
	if owner := store.values["vkyc:lock:cron-worker:test"]; !strings.HasPrefix(owner, first.instance+":") {
		t.Fatalf("expected owner tagged with instance, got %q", owner)
	}
	if ok, _ := second.Acquire(ctx); ok {
		t.Fatal("second instance should not acquire a held lock")
	}
	if err := first.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if ok, _ := second.Acquire(ctx); !ok {
		t.Fatal("lock should be free after release")
	}
}

func TestRedisLockLeavesForeignOwner(t *testing.T) {
	store := newMemoryLockStore()
	lock, _ := NewRedisLock(store, "key", time.Minute)
	ctx := context.Background()
	if ok, _ := lock.Acquire(ctx); !ok {
		t.Fatal("expected acquire")
	}
	// expired and taken over by another worker
	store.values["key"] = "other-owner"

	if err := lock.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if store.values["key"] != "other-owner" {
		t.Fatal("release removed a lock owned by another worker")
	}
}

func TestNewRedisLockValidates(t *testing.T) {
	if _, err := NewRedisLock(nil, "key", 0); err == nil {
		t.Fatal("expected error for nil store")
	}
	if _, err := NewRedisLock(newMemoryLockStore(), "", 0); err == nil {
		t.Fatal("expected error for empty key")
	}
}
