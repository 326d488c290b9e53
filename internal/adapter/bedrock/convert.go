package bedrock

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime/types"

	"github.com/opsline/rcachat/internal/port/agentruntime"
)

// convertEvent maps one SDK stream union member onto the port event model.
// Members the classifier has no use for come back as Unknown.
func convertEvent(ev types.ResponseStream) agentruntime.Event {
	switch e := ev.(type) {
	case *types.ResponseStreamMemberChunk:
		return &agentruntime.ContentChunk{Bytes: e.Value.Bytes}
	case *types.ResponseStreamMemberTrace:
		return convertTrace(e.Value)
	default:
		return &agentruntime.Unknown{Kind: fmt.Sprintf("%T", ev)}
	}
}

func convertTrace(part types.TracePart) agentruntime.Event {
	switch tr := part.Trace.(type) {
	case *types.TraceMemberOrchestrationTrace:
		return convertOrchestration(tr.Value)
	case *types.TraceMemberFailureTrace:
		return &agentruntime.FailureStep{Payload: failurePayload(tr.Value)}
	case *types.TraceMemberPostProcessingTrace:
		return convertPostProcessing(tr.Value)
	default:
		return &agentruntime.Unknown{Kind: fmt.Sprintf("%T", part.Trace)}
	}
}

func convertOrchestration(tr types.OrchestrationTrace) agentruntime.Event {
	switch t := tr.(type) {
	case *types.OrchestrationTraceMemberRationale:
		return &agentruntime.OrchestrationStep{
			HasRationale: true,
			Rationale:    aws.ToString(t.Value.Text),
			Payload: map[string]any{
				"rationale": map[string]any{
					"text":    aws.ToString(t.Value.Text),
					"traceId": aws.ToString(t.Value.TraceId),
				},
			},
		}

	case *types.OrchestrationTraceMemberModelInvocationInput:
		// Prompt echo only; the classifier keeps it out of the trace.
		return &agentruntime.OrchestrationStep{ModelInputOnly: true}

	case *types.OrchestrationTraceMemberInvocationInput:
		return &agentruntime.OrchestrationStep{
			Payload: map[string]any{"invocationInput": t.Value},
		}

	case *types.OrchestrationTraceMemberObservation:
		return &agentruntime.OrchestrationStep{
			Payload: map[string]any{"observation": t.Value},
		}

	case *types.OrchestrationTraceMemberModelInvocationOutput:
		return &agentruntime.OrchestrationStep{
			Payload: map[string]any{"modelInvocationOutput": modelOutputPayload(t.Value)},
		}

	default:
		return &agentruntime.Unknown{Kind: fmt.Sprintf("%T", tr)}
	}
}

// modelOutputPayload keeps the displayable parts of a model invocation
// output. Start and end times stay as time values; serialization normalizes
// them to RFC 3339 downstream.
func modelOutputPayload(out types.OrchestrationModelInvocationOutput) map[string]any {
	p := map[string]any{
		"traceId": aws.ToString(out.TraceId),
	}
	if out.RawResponse != nil {
		p["rawResponse"] = map[string]any{"content": aws.ToString(out.RawResponse.Content)}
	}
	if out.Metadata != nil {
		md := map[string]any{}
		if out.Metadata.StartTime != nil {
			md["startTime"] = *out.Metadata.StartTime
		}
		if out.Metadata.EndTime != nil {
			md["endTime"] = *out.Metadata.EndTime
		}
		if out.Metadata.TotalTimeMs != nil {
			md["totalTimeMs"] = *out.Metadata.TotalTimeMs
		}
		if out.Metadata.Usage != nil {
			md["usage"] = map[string]any{
				"inputTokens":  aws.ToInt32(out.Metadata.Usage.InputTokens),
				"outputTokens": aws.ToInt32(out.Metadata.Usage.OutputTokens),
			}
		}
		p["metadata"] = md
	}
	return p
}

func failurePayload(f types.FailureTrace) map[string]any {
	p := map[string]any{
		"failureReason": aws.ToString(f.FailureReason),
		"traceId":       aws.ToString(f.TraceId),
	}
	if f.FailureCode != nil {
		p["failureCode"] = *f.FailureCode
	}
	return p
}

func convertPostProcessing(tr types.PostProcessingTrace) agentruntime.Event {
	if t, ok := tr.(*types.PostProcessingTraceMemberModelInvocationOutput); ok {
		if pr := t.Value.ParsedResponse; pr != nil {
			return &agentruntime.PostProcessingStep{ParsedResponse: aws.ToString(pr.Text)}
		}
	}
	return &agentruntime.Unknown{Kind: fmt.Sprintf("%T", tr)}
}
