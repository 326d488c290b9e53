// Package chat holds the domain types for the incident analysis chat:
// sessions, agent identity, messages and invocation results.
package chat

import (
	"time"

	"github.com/google/uuid"
)

// Session scopes multiple agent invocations together on the remote side.
// It is replaced wholesale on reset, never mutated.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// NewSession returns a Session with a fresh random 128-bit identifier.
func NewSession() Session {
	return Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}
}

// AgentIdentity identifies the remote agent being invoked. Immutable after
// construction; the remote service validates it lazily on first invocation.
type AgentIdentity struct {
	AgentID      string `json:"agent_id"`
	AgentAliasID string `json:"agent_alias_id"`
	Region       string `json:"region"`
	Environment  string `json:"environment,omitempty"` // display label only
}

// InvocationResult is the outcome of one agent invocation.
type InvocationResult struct {
	FinalText string `json:"final_text"`
	TraceText string `json:"trace_text"`
}

// Message is a single entry in the chat history.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Trace     string    `json:"trace,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewMessage builds a Message with a generated id and current timestamp.
func NewMessage(sessionID, role, content, trace string) Message {
	return Message{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		Trace:     trace,
		CreatedAt: time.Now().UTC(),
	}
}
