package storage

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// MemoryStore is an in-process ObjectStore used by tests and the --ephemeral CLI mode.
// Setting FailReads or FailWrites makes the matching operations return that error.
type MemoryStore struct {
	mu          sync.Mutex
	collections map[Collection][]Record

	FailReads  error
	FailWrites error

	writes int
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[Collection][]Record)}
}

// Writes reports how many write operations reached the store
func (m *MemoryStore) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

func (m *MemoryStore) Put(_ context.Context, collection Collection, record Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkWrite(collection); err != nil {
		return err
	}

	records := m.collections[collection]
	idx := slices.IndexFunc(records, func(r Record) bool { return r.Key == record.Key })
	if idx >= 0 {
		records[idx] = cloneRecord(record)
	} else {
		records = append(records, cloneRecord(record))
	}
	m.collections[collection] = records
	return nil
}

func (m *MemoryStore) ReplaceAll(_ context.Context, collection Collection, records []Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkWrite(collection); err != nil {
		return err
	}

	replaced := make([]Record, 0, len(records))
	for _, r := range records {
		idx := slices.IndexFunc(replaced, func(e Record) bool { return e.Key == r.Key })
		if idx >= 0 {
			replaced[idx] = cloneRecord(r)
			continue
		}
		replaced = append(replaced, cloneRecord(r))
	}
	m.collections[collection] = replaced
	return nil
}

func (m *MemoryStore) GetAll(_ context.Context, collection Collection) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkRead(collection); err != nil {
		return nil, err
	}

	out := make([]Record, 0, len(m.collections[collection]))
	for _, r := range m.collections[collection] {
		out = append(out, cloneRecord(r))
	}
	return out, nil
}

func (m *MemoryStore) Get(_ context.Context, collection Collection, key string) (Record, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkRead(collection); err != nil {
		return Record{}, false, err
	}

	for _, r := range m.collections[collection] {
		if r.Key == key {
			return cloneRecord(r), true, nil
		}
	}
	return Record{}, false, nil
}

func (m *MemoryStore) Clear(_ context.Context, collection Collection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkWrite(collection); err != nil {
		return err
	}
	delete(m.collections, collection)
	return nil
}

func (m *MemoryStore) ClearAll(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return m.FailWrites
	}
	m.writes++
	m.collections = make(map[Collection][]Record)
	return nil
}

func (m *MemoryStore) checkRead(collection Collection) error {
	if !validCollection(collection) {
		return fmt.Errorf("%s: %w", collection, ErrUnknownCollection)
	}
	return m.FailReads
}

func (m *MemoryStore) checkWrite(collection Collection) error {
	if !validCollection(collection) {
		return fmt.Errorf("%s: %w", collection, ErrUnknownCollection)
	}
	if m.FailWrites != nil {
		return m.FailWrites
	}
	m.writes++
	return nil
}

func cloneRecord(r Record) Record {
	return Record{Key: r.Key, Value: slices.Clone(r.Value)}
}
