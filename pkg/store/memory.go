package store

import (
	"context"
	"slices"
	"sync"
	"time"
)

// Memory is an in-process store.
type Memory struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]Record)}
}

func (m *Memory) Save(ctx context.Context, data []byte, ttl time.Duration) (string, error) {
	r := newRecord(slices.Clone(data), ttl)
	m.mu.Lock()
	m.records[r.ID] = r
	m.mu.Unlock()
	return r.ID, nil
}

func (m *Memory) Get(ctx context.Context, id string) ([]byte, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	m.mu.RLock()
	r, ok := m.records[id]
	m.mu.RUnlock()
	if !ok || r.IsExpired() {
		return nil, notFound(id)
	}
	return slices.Clone(r.Data), nil
}

// Cleanup drops expired records and returns how many were removed.
func (m *Memory) Cleanup(ctx context.Context) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, r := range m.records {
		if r.IsExpired() {
			delete(m.records, id)
			n++
		}
	}
	return n
}

// Len returns the number of stored records, expired ones included.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

func (m *Memory) Close() error { return nil }

var _ Store = (*Memory)(nil)
