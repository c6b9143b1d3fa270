package storage

import (
	"context"
	"sync"
)

// MemoryKV is an in-memory KeyValue for development and tests
type MemoryKV struct {
	items      map[string]string
	quotaBytes int
	mu         sync.RWMutex

	// FailWrites makes every SetItem fail with the given error when non-nil
	FailWrites error
}

// NewMemoryKV creates an in-memory store. A quota of 0 means unlimited.
func NewMemoryKV(quotaBytes int) *MemoryKV {
	return &MemoryKV{
		items:      make(map[string]string),
		quotaBytes: quotaBytes,
	}
}

// GetItem returns the value stored under key
func (m *MemoryKV) GetItem(ctx context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, exists := m.items[key]
	return value, exists, nil
}

// SetItem stores value under key, enforcing the quota
func (m *MemoryKV) SetItem(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWrites != nil {
		return m.FailWrites
	}

	if m.quotaBytes > 0 {
		projected := usage(m.items) - len(m.items[key]) + len(value)
		if _, exists := m.items[key]; !exists {
			projected += len(key)
		}
		if projected > m.quotaBytes {
			return ErrQuotaExceeded
		}
	}

	m.items[key] = value
	return nil
}

// RemoveItem deletes key; removing a missing key is not an error
func (m *MemoryKV) RemoveItem(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}
