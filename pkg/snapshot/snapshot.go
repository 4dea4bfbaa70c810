// Package snapshot persists the partial store views that survive a restart.
// Each store owns one fixed key; deleting a key is how cached tenant data is
// evicted.
package snapshot

import (
	"context"
	"fmt"
	"sync"
)

type Persister interface {
	Save(ctx context.Context, key string, data []byte) error
	// Load returns ok=false when nothing is stored under key.
	Load(ctx context.Context, key string) (data []byte, ok bool, err error)
	Delete(ctx context.Context, keys ...string) error
}

// Open returns the persister selected by backend ("sqlite", "redis" or "memory").
func Open(backend, sqlitePath, redisAddr string) (Persister, error) {
	switch backend {
	case "memory":
		return NewMemory(), nil
	case "redis":
		return NewRedis(redisAddr), nil
	case "sqlite", "":
		return NewSQLite(sqlitePath)
	default:
		return nil, fmt.Errorf("unknown snapshot backend %q", backend)
	}
}

type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Save(_ context.Context, key string, data []byte) error {
	cp := append([]byte(nil), data...)
	m.mu.Lock()
	m.data[key] = cp
	m.mu.Unlock()
	return nil
}

func (m *Memory) Load(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), d...), true, nil
}

func (m *Memory) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	for _, k := range keys {
		delete(m.data, k)
	}
	m.mu.Unlock()
	return nil
}

// Keys lists the stored keys. Tests use it to check eviction.
func (m *Memory) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	return keys
}
