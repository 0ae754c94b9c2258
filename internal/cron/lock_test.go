package cron

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type fakeRedisStore struct {
	values  map[string]string
	ttls    map[string]time.Duration
	getErr  error
	deleted []string
}

func newFakeRedisStore() *fakeRedisStore {
	return &fakeRedisStore{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedisStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, ok := f.values[key]; ok {
		return false, nil
	}
	f.values[key] = value.(string)
	f.ttls[key] = ttl
	return true, nil
}

func (f *fakeRedisStore) CompareAndDelete(ctx context.Context, key, expected string) (bool, error) {
	if f.getErr != nil {
		return false, f.getErr
	}
	if value, ok := f.values[key]; !ok || value != expected {
		return false, nil
	}
	delete(f.values, key)
	f.deleted = append(f.deleted, key)
	return true, nil
}

func TestRedisLockAcquireAndRelease(t *testing.T) {
	store := newFakeRedisStore()
	lock, err := NewRedisLock(store, "cron:lock", 0, "worker-1")
	if err != nil {
		t.Fatalf("NewRedisLock: %v", err)
	}
	ctx := context.Background()

	ok, err := lock.Acquire(ctx)
	if err != nil || !ok {
		t.Fatalf("expected lock acquired, got ok=%v err=%v", ok, err)
	}
	if store.ttls["cron:lock"] != defaultLockTTL {
		t.Fatalf("expected ttl %s, got %s", defaultLockTTL, store.ttls["cron:lock"])
	}
	if !strings.HasPrefix(store.values["cron:lock"], "worker-1:") {
		t.Fatalf("expected owner to carry holder, got %q", store.values["cron:lock"])
	}

	other, _ := NewRedisLock(store, "cron:lock", time.Minute, "worker-2")
	if ok, _ := other.Acquire(ctx); ok {
		t.Fatal("expected second holder to be refused")
	}
	if err := other.Release(ctx); err != nil {
		t.Fatalf("release without ownership: %v", err)
	}
	if _, held := store.values["cron:lock"]; !held {
		t.Fatal("non-owner release must not delete the lock")
	}

	if err := lock.Release(ctx); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if _, held := store.values["cron:lock"]; held {
		t.Fatal("expected lock deleted after release")
	}
}

func TestRedisLockReleaseLeavesForeignOwner(t *testing.T) {
	store := newFakeRedisStore()
	lock, _ := NewRedisLock(store, "cron:lock", time.Minute, "worker-1")
	ctx := context.Background()
	if ok, err := lock.Acquire(ctx); err != nil || !ok {
		t.Fatalf("acquire: ok=%v err=%v", ok, err)
	}

	// the lease expired and another instance took it
	store.values["cron:lock"] = "worker-2:other"

	if err := lock.Release(ctx); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if store.values["cron:lock"] != "worker-2:other" {
		t.Fatalf("foreign owner removed: %q", store.values["cron:lock"])
	}
	if len(store.deleted) != 0 {
		t.Fatalf("expected no deletes, got %v", store.deleted)
	}
}

func TestRedisLockReleaseHandlesMissingKeyAndErrors(t *testing.T) {
	store := newFakeRedisStore()
	lock, _ := NewRedisLock(store, "cron:lock", time.Minute, "")
	ctx := context.Background()
	if ok, _ := lock.Acquire(ctx); !ok {
		t.Fatal("expected acquire")
	}
	delete(store.values, "cron:lock")
	if err := lock.Release(ctx); err != nil {
		t.Fatalf("expected nil on expired key, got %v", err)
	}

	if ok, _ := lock.Acquire(ctx); !ok {
		t.Fatal("expected re-acquire")
	}
	store.getErr = errors.New("connection reset")
	if err := lock.Release(ctx); err == nil {
		t.Fatal("expected redis error to surface")
	}
}

func TestNewRedisLockValidates(t *testing.T) {
	if _, err := NewRedisLock(nil, "k", time.Minute, "h"); err == nil {
		t.Fatal("expected error for nil client")
	}
	if _, err := NewRedisLock(newFakeRedisStore(), "", time.Minute, "h"); err == nil {
		t.Fatal("expected error for empty key")
	}
}
