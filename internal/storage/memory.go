package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/promptab/promptvar/internal/errors"
)

// errInjected is the cause used by FailNextSet.
var errInjected = fmt.Errorf("injected write failure")

// Memory is an in-memory Adapter with a change feed. It backs tests and
// stands in for host environments without durable storage.
type Memory struct {
	mu      sync.Mutex
	data    map[string][]byte
	changes chan string

	// FailNextSet makes the next Set return a storage error without
	// applying the write. Used to test failure propagation.
	FailNextSet bool
}

// NewMemory creates an empty in-memory adapter.
func NewMemory() *Memory {
	return &Memory{
		data:    make(map[string][]byte),
		changes: make(chan string, 16),
	}
}

// Get implements Adapter.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	value, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	// Copy so callers cannot mutate the stored value.
	out := make([]byte, len(value))
	copy(out, value)
	return out, true, nil
}

// Set implements Adapter.
func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailNextSet {
		m.FailNextSet = false
		return errors.NewStorage("set", errInjected)
	}

	stored := make([]byte, len(value))
	copy(stored, value)
	m.data[key] = stored
	m.notify(key)
	return nil
}

// Remove implements Adapter.
func (m *Memory) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	m.notify(key)
	return nil
}

// Changes implements Notifier.
func (m *Memory) Changes() <-chan string {
	return m.changes
}

// notify sends the changed key without blocking; drops if no one is reading.
func (m *Memory) notify(key string) {
	select {
	case m.changes <- key:
	default:
	}
}
