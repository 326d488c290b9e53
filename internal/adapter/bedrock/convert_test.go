package bedrock

import (
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime/types"

	"github.com/opsline/rcachat/internal/port/agentruntime"
)

func TestConvertChunk(t *testing.T) {
	ev := convertEvent(&types.ResponseStreamMemberChunk{
		Value: types.PayloadPart{Bytes: []byte("partial answer")},
	})

	chunk, ok := ev.(*agentruntime.ContentChunk)
	if !ok {
		t.Fatalf("expected ContentChunk, got %T", ev)
	}
	if string(chunk.Bytes) != "partial answer" {
		t.Fatalf("unexpected bytes %q", chunk.Bytes)
	}
}

func TestConvertRationale(t *testing.T) {
	ev := convertEvent(&types.ResponseStreamMemberTrace{
		Value: types.TracePart{
			Trace: &types.TraceMemberOrchestrationTrace{
				Value: &types.OrchestrationTraceMemberRationale{
					Value: types.Rationale{
						Text:    aws.String("checking the connection pool"),
						TraceId: aws.String("t-1"),
					},
				},
			},
		},
	})

	step, ok := ev.(*agentruntime.OrchestrationStep)
	if !ok {
		t.Fatalf("expected OrchestrationStep, got %T", ev)
	}
	if !step.HasRationale || step.Rationale != "checking the connection pool" {
		t.Fatalf("unexpected rationale mapping: %+v", step)
	}
}

func TestConvertModelInvocationInput(t *testing.T) {
	ev := convertEvent(&types.ResponseStreamMemberTrace{
		Value: types.TracePart{
			Trace: &types.TraceMemberOrchestrationTrace{
				Value: &types.OrchestrationTraceMemberModelInvocationInput{
					Value: types.ModelInvocationInput{Text: aws.String("prompt echo")},
				},
			},
		},
	})

	step, ok := ev.(*agentruntime.OrchestrationStep)
	if !ok {
		t.Fatalf("expected OrchestrationStep, got %T", ev)
	}
	if !step.ModelInputOnly {
		t.Fatal("expected ModelInputOnly set for a bare prompt echo")
	}
}

func TestConvertFailureTrace(t *testing.T) {
	ev := convertEvent(&types.ResponseStreamMemberTrace{
		Value: types.TracePart{
			Trace: &types.TraceMemberFailureTrace{
				Value: types.FailureTrace{
					FailureReason: aws.String("model timed out"),
					TraceId:       aws.String("t-9"),
				},
			},
		},
	})

	failure, ok := ev.(*agentruntime.FailureStep)
	if !ok {
		t.Fatalf("expected FailureStep, got %T", ev)
	}
	if failure.Payload["failureReason"] != "model timed out" {
		t.Fatalf("unexpected failure payload: %v", failure.Payload)
	}
}

func TestConvertPostProcessing(t *testing.T) {
	ev := convertEvent(&types.ResponseStreamMemberTrace{
		Value: types.TracePart{
			Trace: &types.TraceMemberPostProcessingTrace{
				Value: &types.PostProcessingTraceMemberModelInvocationOutput{
					Value: types.PostProcessingModelInvocationOutput{
						ParsedResponse: &types.PostProcessingParsedResponse{
							Text: aws.String("final recommendation"),
						},
					},
				},
			},
		},
	})

	pp, ok := ev.(*agentruntime.PostProcessingStep)
	if !ok {
		t.Fatalf("expected PostProcessingStep, got %T", ev)
	}
	if pp.ParsedResponse != "final recommendation" {
		t.Fatalf("unexpected parsed response %q", pp.ParsedResponse)
	}
}

func TestConvertModelOutputCarriesTimes(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ev := convertEvent(&types.ResponseStreamMemberTrace{
		Value: types.TracePart{
			Trace: &types.TraceMemberOrchestrationTrace{
				Value: &types.OrchestrationTraceMemberModelInvocationOutput{
					Value: types.OrchestrationModelInvocationOutput{
						TraceId:  aws.String("t-2"),
						Metadata: &types.Metadata{StartTime: &start},
					},
				},
			},
		},
	})

	step, ok := ev.(*agentruntime.OrchestrationStep)
	if !ok {
		t.Fatalf("expected OrchestrationStep, got %T", ev)
	}
	inner := step.Payload["modelInvocationOutput"].(map[string]any)
	md := inner["metadata"].(map[string]any)
	if md["startTime"] != start {
		t.Fatalf("expected start time carried as time.Time, got %v", md["startTime"])
	}
}

func TestConvertUnknownMember(t *testing.T) {
	ev := convertEvent(&types.ResponseStreamMemberReturnControl{})
	if _, ok := ev.(*agentruntime.Unknown); !ok {
		t.Fatalf("expected Unknown for an unhandled member, got %T", ev)
	}
}
