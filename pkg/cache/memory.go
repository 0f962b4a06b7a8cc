package cache

import (
	"context"
	"iter"
	"slices"
	"sync"
)

// Memory is an in-memory Cache. It is safe for concurrent use.
type Memory struct {
	mu   sync.RWMutex
	data map[Key][][]int
}

// NewMemory creates an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{data: make(map[Key][][]int)}
}

func (m *Memory) Get(_ context.Context, key Key) ([][]int, error) {
	m.mu.RLock()
	v, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return cloneBatch(v), nil
}

func (m *Memory) Set(_ context.Context, key Key, batch [][]int) error {
	cp := cloneBatch(batch)
	m.mu.Lock()
	m.data[key] = cp
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(_ context.Context, key Key) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Entries(_ context.Context) iter.Seq2[Entry, error] {
	// Snapshot under read lock.
	m.mu.RLock()
	entries := make([]Entry, 0, len(m.data))
	for k, v := range m.data {
		entries = append(entries, Entry{Key: k, Batch: cloneBatch(v)})
	}
	m.mu.RUnlock()

	slices.SortFunc(entries, func(a, b Entry) int {
		switch {
		case a.Key < b.Key:
			return -1
		case a.Key > b.Key:
			return 1
		}
		return 0
	})

	return func(yield func(Entry, error) bool) {
		for _, e := range entries {
			if !yield(e, nil) {
				return
			}
		}
	}
}

func (m *Memory) Close() error {
	return nil
}
