// Package agentruntime defines the port for invoking a remote managed agent
// and consuming its streamed event sequence.
package agentruntime

import "context"

// Request is the single outbound invocation call.
type Request struct {
	AgentID      string
	AgentAliasID string
	SessionID    string
	InputText    string
	EnableTrace  bool
}

// Runtime is the port interface for the remote agent invocation endpoint.
type Runtime interface {
	// InvokeAgent issues one invocation and returns the event stream.
	// The stream must be closed by the caller.
	InvokeAgent(ctx context.Context, req Request) (Stream, error)
}

// Stream yields invocation events in arrival order. Next returns io.EOF when
// the remote stream is exhausted; any other error is a transport or
// remote-side failure that aborts the invocation.
type Stream interface {
	Next(ctx context.Context) (Event, error)
	Close() error
}

// Event is one tagged element of the invocation stream. The concrete types
// below are the only ones the classifier understands; anything else is
// carried as Unknown and ignored, so new remote event shapes never crash
// consumers.
type Event interface {
	isEvent()
}

// ContentChunk carries a piece of the agent's answer payload.
type ContentChunk struct {
	Bytes []byte
}

// OrchestrationStep describes one internal reasoning or tool-use step.
type OrchestrationStep struct {
	// HasRationale reports whether the remote event carried a rationale
	// field; classification is driven by field presence, not text content.
	HasRationale bool
	Rationale    string

	// ModelInputOnly marks a bare model-invocation-input echo, which is
	// suppressed from the displayed trace.
	ModelInputOnly bool

	// Payload is the event content for display serialization. Timestamp
	// values may appear as time.Time and are normalized downstream.
	Payload map[string]any
}

// FailureStep is a mid-stream failure reported by the remote service. It is
// diagnostic, not fatal.
type FailureStep struct {
	Payload map[string]any
}

// PostProcessingStep carries the parsed response of the remote
// post-processing phase.
type PostProcessingStep struct {
	ParsedResponse string
}

// Unknown is any event shape the adapter does not recognize.
type Unknown struct {
	Kind string
}

func (*ContentChunk) isEvent()       {}
func (*OrchestrationStep) isEvent()  {}
func (*FailureStep) isEvent()        {}
func (*PostProcessingStep) isEvent() {}
func (*Unknown) isEvent()            {}
