package ws

import (
	"context"
	"encoding/json"
	"log/slog"
)

// Event type constants for WebSocket messages.
const (
	EventSessionStarted = "session.started"
	EventTraceFragment  = "trace.fragment"
	EventAnswerFinal    = "answer.final"
)

// SessionStartedEvent is broadcast when a fresh conversation session begins.
type SessionStartedEvent struct {
	SessionID string `json:"session_id"`
}

// TraceFragmentEvent carries one formatted reasoning fragment as the agent
// works through an incident.
type TraceFragmentEvent struct {
	SessionID string `json:"session_id"`
	Fragment  string `json:"fragment"`
}

// AnswerFinalEvent is broadcast when the invocation completes with the
// agent's final answer.
type AnswerFinalEvent struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
	Failed    bool   `json:"failed,omitempty"`
}

// BroadcastEvent is a convenience method that marshals a typed event and broadcasts it.
func (h *Hub) BroadcastEvent(ctx context.Context, eventType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal ws event payload", "type", eventType, "error", err)
		return
	}

	h.Broadcast(ctx, Message{
		Type:    eventType,
		Payload: json.RawMessage(data),
	})
}
