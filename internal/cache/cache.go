// Package cache provides an in-memory, content-addressed memo that lives
// for a single analysis run. Nothing is written to disk.
package cache

import (
	"encoding/hex"
	"sync"

	"github.com/zeebo/blake3"
)

// Key derives a memo key from a namespace (such as the language) and the
// content it applies to.
func Key(namespace string, content []byte) string {
	h := blake3.New()
	_, _ = h.Write([]byte(namespace))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}

// Memo stores values by content hash. It is safe for concurrent use.
type Memo[V any] struct {
	mu      sync.RWMutex
	entries map[string]V
}

// NewMemo creates an empty memo.
func NewMemo[V any]() *Memo[V] {
	return &Memo[V]{entries: make(map[string]V)}
}

// Get returns the value stored under key.
func (m *Memo[V]) Get(key string) (V, bool) {
	if m == nil {
		var zero V
		return zero, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[key]
	return v, ok
}

// Put stores value under key, replacing any earlier value.
func (m *Memo[V]) Put(key string, value V) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.entries[key] = value
	m.mu.Unlock()
}

// Len returns the number of stored entries.
func (m *Memo[V]) Len() int {
	if m == nil {
		return 0
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

