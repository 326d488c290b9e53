package service

import (
	"sync"

	"github.com/opsline/rcachat/internal/domain/chat"
)

// History keeps the chat transcript for the current process. Nothing is
// persisted across restarts; a new session clears it.
type History struct {
	mu   sync.RWMutex
	msgs []chat.Message
}

// NewHistory creates an empty History.
func NewHistory() *History {
	return &History{}
}

// Append adds a message to the transcript.
func (h *History) Append(msg chat.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.msgs = append(h.msgs, msg)
}

// List returns a copy of the transcript in insertion order.
func (h *History) List() []chat.Message {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]chat.Message, len(h.msgs))
	copy(out, h.msgs)
	return out
}

// Clear discards the transcript.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.msgs = nil
}

// Len returns the number of messages.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.msgs)
}
