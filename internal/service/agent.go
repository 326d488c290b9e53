package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/opsline/rcachat/internal/domain"
	"github.com/opsline/rcachat/internal/domain/chat"
	"github.com/opsline/rcachat/internal/domain/trace"
	"github.com/opsline/rcachat/internal/port/agentruntime"
	"github.com/opsline/rcachat/internal/port/tracesink"
	"github.com/opsline/rcachat/internal/resilience"
)

// InvocationError wraps a transport or remote-side failure during an agent
// invocation. Partial carries whatever trace narrative accumulated before
// the failure, so the caller can still display it.
type InvocationError struct {
	Partial chat.InvocationResult
	Err     error
}

// Error implements the error interface.
func (e *InvocationError) Error() string {
	return fmt.Sprintf("agent invocation failed: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *InvocationError) Unwrap() error { return e.Err }

// InvocationRecorder records invocation outcomes for observability.
// Implemented by the otel adapter; nil-safe via the noopRecorder default.
type InvocationRecorder interface {
	RecordInvocationStart(ctx context.Context, agentID string)
	RecordInvocation(ctx context.Context, agentID string, seconds float64, steps int, failed bool)
}

type noopRecorder struct{}

func (noopRecorder) RecordInvocationStart(context.Context, string)                {}
func (noopRecorder) RecordInvocation(context.Context, string, float64, int, bool) {}

// AgentService owns the conversational session identity and forwards
// incident text to the remote agent, classifying the streamed events into a
// final answer and a step-by-step reasoning trace.
//
// At most one invocation is in flight per AgentService at a time; Invoke
// serializes callers.
type AgentService struct {
	identity chat.AgentIdentity
	runtime  agentruntime.Runtime
	breaker  *resilience.Breaker
	recorder InvocationRecorder

	invokeMu sync.Mutex // serializes Invoke

	mu      sync.Mutex // guards session
	session chat.Session
}

// Option configures an AgentService.
type Option func(*AgentService)

// WithBreaker attaches a circuit breaker to the remote invocation. It counts
// both failed initiations and failed stream consumption.
func WithBreaker(b *resilience.Breaker) Option {
	return func(s *AgentService) { s.breaker = b }
}

// WithRecorder attaches an invocation metrics recorder.
func WithRecorder(r InvocationRecorder) Option {
	return func(s *AgentService) { s.recorder = r }
}

// NewAgentService creates an AgentService for the given agent identity.
// The remote agent's existence is not validated here; the remote service
// validates lazily on first invocation.
func NewAgentService(identity chat.AgentIdentity, rt agentruntime.Runtime, opts ...Option) (*AgentService, error) {
	if identity.AgentID == "" {
		return nil, fmt.Errorf("%w: agent id is required", domain.ErrConfiguration)
	}
	if identity.AgentAliasID == "" {
		return nil, fmt.Errorf("%w: agent alias id is required", domain.ErrConfiguration)
	}
	if rt == nil {
		return nil, fmt.Errorf("%w: agent runtime is required", domain.ErrConfiguration)
	}
	if identity.Region == "" {
		identity.Region = "us-east-1"
	}

	s := &AgentService{
		identity: identity,
		runtime:  rt,
		recorder: noopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Identity returns the immutable agent identity.
func (s *AgentService) Identity() chat.AgentIdentity { return s.identity }

// Session returns the current session, creating one on first use.
func (s *AgentService) Session() chat.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionLocked()
}

// NewSession replaces the current session with a fresh one and returns it.
// An in-flight invocation keeps the session id it started with.
func (s *AgentService) NewSession() chat.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = chat.NewSession()
	slog.Info("new session started", "session_id", s.session.ID)
	return s.session
}

func (s *AgentService) sessionLocked() chat.Session {
	if s.session.ID == "" {
		s.session = chat.NewSession()
		slog.Debug("session created", "session_id", s.session.ID)
	}
	return s.session
}

// Invoke sends inputText to the remote agent and consumes the event stream
// to completion. Formatted trace fragments are pushed to sink as they are
// produced and accumulated into the returned TraceText. The final answer is
// the last content chunk seen (last-write-wins across multiple chunks).
//
// A transport or remote-side error aborts the call and is returned as an
// *InvocationError carrying the partial trace. Failure events reported
// mid-stream are rendered into the trace and do not abort.
func (s *AgentService) Invoke(ctx context.Context, inputText string, sink tracesink.Sink) (chat.InvocationResult, error) {
	if inputText == "" {
		return chat.InvocationResult{}, fmt.Errorf("%w: input text is empty", domain.ErrValidation)
	}
	if sink == nil {
		sink = tracesink.Discard
	}

	s.invokeMu.Lock()
	defer s.invokeMu.Unlock()

	s.mu.Lock()
	session := s.sessionLocked()
	s.mu.Unlock()

	start := time.Now()
	s.recorder.RecordInvocationStart(ctx, s.identity.AgentID)

	var acc trace.Accumulator
	emit := func(fragment string) {
		acc.Append(fragment)
		safePush(ctx, sink, fragment)
	}

	fail := func(err error) (chat.InvocationResult, error) {
		emit(trace.ErrorFragment(err))
		partial := chat.InvocationResult{TraceText: acc.String()}
		s.recorder.RecordInvocation(ctx, s.identity.AgentID, time.Since(start).Seconds(), acc.Steps(), true)
		slog.Error("agent invocation failed",
			"agent_id", s.identity.AgentID,
			"session_id", session.ID,
			"error", err,
		)
		return partial, &InvocationError{Partial: partial, Err: err}
	}

	finalText := ""
	run := func() error {
		stream, err := s.runtime.InvokeAgent(ctx, agentruntime.Request{
			AgentID:      s.identity.AgentID,
			AgentAliasID: s.identity.AgentAliasID,
			SessionID:    session.ID,
			InputText:    inputText,
			EnableTrace:  true,
		})
		if err != nil {
			return err
		}
		defer func() { _ = stream.Close() }()

		for {
			ev, err := stream.Next(ctx)
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}
			finalText = s.classify(ev, finalText, &acc, emit)
		}
	}

	// The breaker covers the whole invocation, initiation and stream
	// consumption alike. A backend that accepts every call but resets every
	// stream still trips it.
	var err error
	if s.breaker != nil {
		err = s.breaker.Execute(run)
	} else {
		err = run()
	}
	if err != nil {
		return fail(err)
	}

	s.recorder.RecordInvocation(ctx, s.identity.AgentID, time.Since(start).Seconds(), acc.Steps(), false)
	slog.Info("agent invocation complete",
		"agent_id", s.identity.AgentID,
		"session_id", session.ID,
		"steps", acc.Steps(),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return chat.InvocationResult{FinalText: finalText, TraceText: acc.String()}, nil
}

// classify folds one stream event into the trace narrative and returns the
// updated candidate final answer.
func (s *AgentService) classify(ev agentruntime.Event, finalText string, acc *trace.Accumulator, emit func(string)) string {
	switch e := ev.(type) {
	case *agentruntime.ContentChunk:
		// Last write wins when multiple chunks arrive in one invocation.
		return string(e.Bytes)

	case *agentruntime.OrchestrationStep:
		switch {
		case e.HasRationale:
			emit(trace.StepFragment(acc.NextStep(), e.Rationale))
		case !e.ModelInputOnly:
			emit(trace.RawFragment(trace.DumpPayload(e.Payload)))
		default:
			// Bare model-invocation-input echo: suppressed from the trace.
		}

	case *agentruntime.FailureStep:
		// Diagnostic only; the invocation keeps consuming events.
		emit(trace.RawFragment(trace.DumpPayload(e.Payload)))

	case *agentruntime.PostProcessingStep:
		emit(trace.StepFragment(acc.NextStep(), trace.DumpPayload(e.ParsedResponse)))

	default:
		// Unknown event shapes are ignored for forward compatibility.
	}
	return finalText
}

// safePush delivers a fragment to the sink, swallowing panics. A broken
// display must never abort the invocation.
func safePush(ctx context.Context, sink tracesink.Sink, fragment string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("trace sink panicked", "panic", r)
		}
	}()
	sink.Push(ctx, fragment)
}
