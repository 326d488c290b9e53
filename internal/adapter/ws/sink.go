package ws

import "context"

// TraceSink pushes trace fragments to every connected client as
// trace.fragment events. It satisfies the tracesink port.
type TraceSink struct {
	hub       *Hub
	sessionID string
}

// NewTraceSink creates a sink that tags fragments with the given session id.
func NewTraceSink(hub *Hub, sessionID string) *TraceSink {
	return &TraceSink{hub: hub, sessionID: sessionID}
}

// Push broadcasts one fragment.
func (s *TraceSink) Push(ctx context.Context, fragment string) {
	s.hub.BroadcastEvent(ctx, EventTraceFragment, TraceFragmentEvent{
		SessionID: s.sessionID,
		Fragment:  fragment,
	})
}
