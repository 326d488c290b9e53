// Package tracesink defines the port for pushing trace fragments to a live
// display as they become available.
package tracesink

import (
	"context"
	"sync"
)

// Sink receives each formatted trace fragment as the invocation progresses.
// Implementations must treat Push as fire-and-forget; a sink failure is a
// display nuisance, never an invocation failure.
type Sink interface {
	Push(ctx context.Context, fragment string)
}

// Func adapts a plain function to the Sink interface.
type Func func(ctx context.Context, fragment string)

// Push calls f.
func (f Func) Push(ctx context.Context, fragment string) { f(ctx, fragment) }

// Discard is a Sink that drops every fragment.
var Discard Sink = Func(func(context.Context, string) {})

// Buffer is a capturing Sink for tests and request-scoped collection.
type Buffer struct {
	mu        sync.Mutex
	fragments []string
}

// Push records the fragment.
func (b *Buffer) Push(_ context.Context, fragment string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fragments = append(b.fragments, fragment)
}

// Fragments returns a copy of everything pushed so far.
func (b *Buffer) Fragments() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.fragments))
	copy(out, b.fragments)
	return out
}

// Len returns the number of fragments pushed.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.fragments)
}
