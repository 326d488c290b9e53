package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "rcachat"

// StartInvocationSpan starts a span for one agent invocation.
func StartInvocationSpan(ctx context.Context, agentID, sessionID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "invoke_agent",
		trace.WithAttributes(
			attribute.String("agent.id", agentID),
			attribute.String("session.id", sessionID),
		),
	)
}
