package bedrock

import (
	"context"
	"strconv"
	"time"

	"github.com/opsline/rcachat/internal/port/agentruntime"
)

func init() {
	agentruntime.Register("bedrock", func(config map[string]string) (agentruntime.Runtime, error) {
		region := config["region"]
		if region == "" {
			region = "us-east-1"
		}
		maxRetries := 3
		if v, err := strconv.Atoi(config["max_retries"]); err == nil && v > 0 {
			maxRetries = v
		}
		readTimeout := 10 * time.Minute
		if v, err := time.ParseDuration(config["read_timeout"]); err == nil && v > 0 {
			readTimeout = v
		}
		return New(context.Background(), region, maxRetries, readTimeout)
	})
}
