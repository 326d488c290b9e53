// Package trace builds the human-readable reasoning narrative for one agent
// invocation from the orchestration events the remote service emits.
package trace

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Accumulator collects formatted trace fragments for a single invocation.
// It is append-only and not safe for concurrent use; each invocation gets
// its own Accumulator.
type Accumulator struct {
	step int
	b    strings.Builder
}

// NextStep increments and returns the shared step counter. Rationale steps
// and post-processing steps draw from the same sequence.
func (a *Accumulator) NextStep() int {
	a.step++
	return a.step
}

// Steps returns the number of steps numbered so far.
func (a *Accumulator) Steps() int { return a.step }

// Append adds a formatted fragment to the narrative.
func (a *Accumulator) Append(fragment string) {
	a.b.WriteString(fragment)
}

// String returns the accumulated narrative.
func (a *Accumulator) String() string { return a.b.String() }

// StepFragment formats a numbered reasoning step.
func StepFragment(n int, text string) string {
	return fmt.Sprintf("\n\n\n---------- Step %d ----------\n\n\n%s\n\n\n", n, text)
}

// RawFragment wraps an unnumbered serialized payload for display.
func RawFragment(dump string) string {
	return "\n\n\n" + dump + "\n\n\n"
}

// ErrorFragment formats a fatal invocation error for the narrative.
func ErrorFragment(err error) string {
	return fmt.Sprintf("Error: %v", err)
}

// DumpPayload serializes a structured payload to indented JSON with all
// timestamp values rendered as RFC 3339 strings. Serialization failures
// degrade to a fmt representation; the trace must never be the reason an
// invocation fails.
func DumpPayload(v any) string {
	data, err := json.MarshalIndent(Normalize(v), "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

// Normalize recursively converts time.Time values to RFC 3339 strings,
// preserving maps and slices. All other values pass through unchanged.
func Normalize(v any) any {
	switch t := v.(type) {
	case time.Time:
		return t.Format(time.RFC3339Nano)
	case *time.Time:
		if t == nil {
			return nil
		}
		return t.Format(time.RFC3339Nano)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = Normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Normalize(val)
		}
		return out
	default:
		return v
	}
}
