// Package inmemory provides the reference memory.Provider: a mutex-guarded
// slice of messages. Suitable for single-process orchestration runs.
package inmemory

import (
	"context"
	"sync"

	"github.com/routegate/routegate/providers/ai"
	"github.com/routegate/routegate/providers/memory"
)

// ArrayMemory is a concurrency-safe in-memory message store. An RWMutex
// guards access, which suits the read-heavy pattern of the orchestration
// loop (every turn reads the full history, appends a handful of messages).
type ArrayMemory struct {
	mu       sync.RWMutex
	messages []ai.Message
}

// New returns an empty ArrayMemory ready for use.
func New() *ArrayMemory {
	return &ArrayMemory{messages: []ai.Message{}}
}

var _ memory.Provider = (*ArrayMemory)(nil)

// AppendMessage stores a copy of message at the end of the history.
// It is a no-op when message is nil.
func (m *ArrayMemory) AppendMessage(_ context.Context, message *ai.Message) {
	if message == nil {
		return
	}
	m.mu.Lock()
	m.messages = append(m.messages, *message)
	m.mu.Unlock()
}

// AllMessages returns a copy of all messages so callers cannot mutate
// internal state. The returned error is always nil.
func (m *ArrayMemory) AllMessages(_ context.Context) ([]ai.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ai.Message, len(m.messages))
	copy(out, m.messages)
	return out, nil
}

// Count returns the number of stored messages. The error is always nil.
func (m *ArrayMemory) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.messages), nil
}

// LastMessages returns up to the last n messages as an independent slice.
// Returns an empty, non-nil slice when n is zero or negative.
func (m *ArrayMemory) LastMessages(_ context.Context, n int) ([]ai.Message, error) {
	if n <= 0 {
		return []ai.Message{}, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if n > len(m.messages) {
		n = len(m.messages)
	}
	out := make([]ai.Message, n)
	copy(out, m.messages[len(m.messages)-n:])
	return out, nil
}

// ClearMessages removes all messages while keeping slice capacity, so the
// next run does not immediately reallocate.
func (m *ArrayMemory) ClearMessages(_ context.Context) {
	m.mu.Lock()
	m.messages = m.messages[:0]
	m.mu.Unlock()
}
