package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "rcachat"

// Metrics holds all rcachat metric instruments.
type Metrics struct {
	InvocationsStarted   metric.Int64Counter
	InvocationsCompleted metric.Int64Counter
	InvocationsFailed    metric.Int64Counter
	TraceSteps           metric.Int64Counter
	InvocationDuration   metric.Float64Histogram
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.InvocationsStarted, err = meter.Int64Counter("rcachat.invocations.started",
		metric.WithDescription("Number of agent invocations started"))
	if err != nil {
		return nil, err
	}

	m.InvocationsCompleted, err = meter.Int64Counter("rcachat.invocations.completed",
		metric.WithDescription("Number of agent invocations completed"))
	if err != nil {
		return nil, err
	}

	m.InvocationsFailed, err = meter.Int64Counter("rcachat.invocations.failed",
		metric.WithDescription("Number of agent invocations failed"))
	if err != nil {
		return nil, err
	}

	m.TraceSteps, err = meter.Int64Counter("rcachat.trace.steps",
		metric.WithDescription("Number of numbered reasoning steps emitted"))
	if err != nil {
		return nil, err
	}

	m.InvocationDuration, err = meter.Float64Histogram("rcachat.invocation.duration_seconds",
		metric.WithDescription("Agent invocation duration in seconds"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordInvocation records the outcome of one agent invocation. It satisfies
// the service layer's recorder interface.
func (m *Metrics) RecordInvocation(ctx context.Context, agentID string, seconds float64, steps int, failed bool) {
	attrs := metric.WithAttributes(attribute.String("agent.id", agentID))

	if failed {
		m.InvocationsFailed.Add(ctx, 1, attrs)
	} else {
		m.InvocationsCompleted.Add(ctx, 1, attrs)
	}
	m.TraceSteps.Add(ctx, int64(steps), attrs)
	m.InvocationDuration.Record(ctx, seconds, attrs)
}

// RecordInvocationStart counts an invocation beginning.
func (m *Metrics) RecordInvocationStart(ctx context.Context, agentID string) {
	m.InvocationsStarted.Add(ctx, 1, metric.WithAttributes(attribute.String("agent.id", agentID)))
}
