// Package bedrock adapts the AWS Bedrock agent runtime InvokeAgent streaming
// API to the agentruntime port.
package bedrock

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	"github.com/aws/smithy-go"

	"github.com/opsline/rcachat/internal/port/agentruntime"
)

// Runtime invokes Bedrock agents and exposes their event stream through the
// agentruntime port.
type Runtime struct {
	client *bedrockagentruntime.Client
}

// New creates a Runtime using the default AWS credential chain. readTimeout
// bounds the whole streaming response; agent invocations with deep tool use
// can run for minutes.
func New(ctx context.Context, region string, maxRetries int, readTimeout time.Duration) (*Runtime, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithRetryMaxAttempts(maxRetries),
		awsconfig.WithHTTPClient(&http.Client{Timeout: readTimeout}),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &Runtime{client: bedrockagentruntime.NewFromConfig(cfg)}, nil
}

// InvokeAgent issues one invocation with tracing enabled as requested and
// wraps the SDK event stream.
func (r *Runtime) InvokeAgent(ctx context.Context, req agentruntime.Request) (agentruntime.Stream, error) {
	out, err := r.client.InvokeAgent(ctx, &bedrockagentruntime.InvokeAgentInput{
		AgentId:      aws.String(req.AgentID),
		AgentAliasId: aws.String(req.AgentAliasID),
		SessionId:    aws.String(req.SessionID),
		InputText:    aws.String(req.InputText),
		EnableTrace:  aws.Bool(req.EnableTrace),
	})
	if err != nil {
		return nil, describeAPIError(req.AgentID, err)
	}
	return &stream{es: out.GetStream()}, nil
}

// describeAPIError adds an operator hint for the error codes seen most often
// when pointing at the wrong agent, alias, or account.
func describeAPIError(agentID string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ResourceNotFoundException":
			return fmt.Errorf("invoke agent %s: agent or alias not found, check ids and region: %w", agentID, err)
		case "AccessDeniedException":
			return fmt.Errorf("invoke agent %s: access denied, check credentials and agent resource policy: %w", agentID, err)
		case "ThrottlingException":
			return fmt.Errorf("invoke agent %s: throttled by the service: %w", agentID, err)
		}
	}
	return fmt.Errorf("invoke agent %s: %w", agentID, err)
}

type stream struct {
	es *bedrockagentruntime.InvokeAgentEventStream
}

// Next blocks for the next stream event. A closed channel with no stream
// error means a clean end of stream.
func (s *stream) Next(ctx context.Context) (agentruntime.Event, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case sdkEv, ok := <-s.es.Events():
		if !ok {
			if err := s.es.Err(); err != nil {
				return nil, fmt.Errorf("event stream: %w", err)
			}
			return nil, io.EOF
		}
		return convertEvent(sdkEv), nil
	}
}

func (s *stream) Close() error {
	return s.es.Close()
}
