package idempotency

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Store is the slice of pkg/redis.Client the manager needs.
type Store interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	IdempotencyKey(scope, id string) string
}

// Manager marks keys as seen per scope using Redis SETNX with a TTL.
// Keys follow the `sm:idempotency:seen:<scope>:<key>` pattern.
type Manager struct {
	store Store
	ttl   time.Duration
}

// NewManager builds an idempotency guard that remembers keys for the given TTL.
func NewManager(store Store, ttl time.Duration) (*Manager, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	return &Manager{store: store, ttl: ttl}, nil
}

// CheckAndMark returns true if key was already marked within scope and
// otherwise marks it for the configured TTL.
func (m *Manager) CheckAndMark(ctx context.Context, scope, key string) (bool, error) {
	full, err := m.seenKey(scope, key)
	if err != nil {
		return false, err
	}
	set, err := m.store.SetNX(ctx, full, "1", m.ttl)
	if err != nil {
		return false, err
	}
	return !set, nil
}

// Release forgets key so a later attempt can proceed again.
func (m *Manager) Release(ctx context.Context, scope, key string) error {
	full, err := m.seenKey(scope, key)
	if err != nil {
		return err
	}
	return m.store.Del(ctx, full)
}

func (m *Manager) seenKey(scope, key string) (string, error) {
	if strings.TrimSpace(scope) == "" {
		return "", errors.New("scope is required")
	}
	if strings.TrimSpace(key) == "" {
		return "", errors.New("key is required")
	}
	return m.store.IdempotencyKey(fmt.Sprintf("seen:%s", scope), key), nil
}
