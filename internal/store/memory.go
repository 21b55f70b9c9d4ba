package store

import (
	"context"
	"sort"
	"sync"
)

// MemoryBucket keeps blobs in memory, it is used in tests and dry runs.
type MemoryBucket struct {
	mutex sync.Mutex
	blobs map[string][]byte
}

func NewMemoryBucket() *MemoryBucket {
	return &MemoryBucket{blobs: map[string][]byte{}}
}

func (m *MemoryBucket) Put(_ context.Context, name string, data []byte) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.blobs[name] = append([]byte(nil), data...)
	return nil
}

func (m *MemoryBucket) Get(_ context.Context, name string) ([]byte, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	data, ok := m.blobs[name]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

// Names lists every stored blob in lexical order.
func (m *MemoryBucket) Names() []string {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	names := make([]string, 0, len(m.blobs))
	for name := range m.blobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
