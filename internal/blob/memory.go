package blob

import (
	"fmt"
	"sync"
)

type entry struct {
	data        []byte
	contentType string
}

// Memory keeps blobs in process memory. URLs are prefix + id, for a server
// route that serves them.
type Memory struct {
	prefix string

	mu     sync.RWMutex
	blobs  map[string]entry
	closed bool
}

// NewMemory creates a Memory store whose URLs start with prefix.
func NewMemory(prefix string) *Memory {
	return &Memory{prefix: prefix, blobs: make(map[string]entry)}
}

// Put stores a copy of data.
func (m *Memory) Put(data []byte, contentType string) (Handle, error) {
	if len(data) == 0 {
		return Handle{}, ErrEmpty
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return Handle{}, ErrClosed
	}

	id := newID()
	m.blobs[id] = entry{data: append([]byte(nil), data...), contentType: contentType}
	return Handle{ID: id, URL: m.prefix + id, ContentType: contentType}, nil
}

// Get returns the stored bytes. Callers must not modify them.
func (m *Memory) Get(id string) ([]byte, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.blobs[id]
	if !ok {
		return nil, "", fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e.data, e.contentType, nil
}

// Revoke drops id.
func (m *Memory) Revoke(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.blobs[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(m.blobs, id)
	return nil
}

// Len returns the number of live blobs.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}

// Close drops every blob. Later Puts fail with ErrClosed.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.blobs = make(map[string]entry)
	m.closed = true
	return nil
}

// Compile-time interface check.
var _ Store = (*Memory)(nil)
