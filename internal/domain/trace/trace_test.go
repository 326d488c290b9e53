package trace

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestStepCounterIsShared(t *testing.T) {
	var acc Accumulator

	if n := acc.NextStep(); n != 1 {
		t.Fatalf("expected step 1, got %d", n)
	}
	if n := acc.NextStep(); n != 2 {
		t.Fatalf("expected step 2, got %d", n)
	}
	if acc.Steps() != 2 {
		t.Fatalf("expected 2 steps, got %d", acc.Steps())
	}
}

func TestAppendIsOrdered(t *testing.T) {
	var acc Accumulator
	acc.Append(StepFragment(1, "r1"))
	acc.Append(StepFragment(2, "r2"))

	out := acc.String()
	i1 := strings.Index(out, "Step 1")
	i2 := strings.Index(out, "Step 2")
	if i1 < 0 || i2 < 0 || i1 > i2 {
		t.Fatalf("expected Step 1 before Step 2, got %q", out)
	}
	if strings.Index(out, "r1") > strings.Index(out, "r2") {
		t.Fatal("expected r1 before r2")
	}
}

func TestDumpPayloadNormalizesTimestamps(t *testing.T) {
	ts := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	payload := map[string]any{
		"metadata": map[string]any{
			"startTime": ts,
			"usage":     map[string]any{"inputTokens": 120},
		},
		"events": []any{ts, "ok"},
	}

	out := DumpPayload(payload)
	if !strings.Contains(out, "2025-03-14T09:26:53Z") {
		t.Fatalf("expected RFC 3339 timestamp in dump, got %s", out)
	}
	if strings.Contains(out, "m=+") {
		t.Fatalf("raw time.Time representation leaked into dump: %s", out)
	}
	if !strings.Contains(out, `"inputTokens": 120`) {
		t.Fatalf("scalar values should pass through unchanged: %s", out)
	}
}

func TestNormalizeNilTimePointer(t *testing.T) {
	var ts *time.Time
	if got := Normalize(ts); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestDumpPayloadUnserializable(t *testing.T) {
	// A channel cannot be marshaled; DumpPayload must degrade, not panic.
	out := DumpPayload(map[string]any{"ch": make(chan int)})
	if out == "" {
		t.Fatal("expected non-empty fallback dump")
	}
}

func TestErrorFragment(t *testing.T) {
	frag := ErrorFragment(errors.New("connection reset"))
	if !strings.Contains(frag, "connection reset") {
		t.Fatalf("expected underlying message in fragment, got %q", frag)
	}
}
