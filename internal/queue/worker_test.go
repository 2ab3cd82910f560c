package queue

import (
	"testing"
	"time"

	"github.com/shintaro-0909/omnipost/internal/publisher"
	"github.com/shintaro-0909/omnipost/internal/transfer"
	"github.com/stretchr/testify/assert"
)

func failedSlot(perr *transfer.PlatformError) publisher.PlatformResult {
	res := transfer.FailedResult(perr)
	return publisher.PlatformResult{Success: false, Result: res, Error: res.Error}
}

func TestRetryableResult(t *testing.T) {
	tests := []struct {
		name string
		res  publisher.PlatformResult
		want bool
	}{
		{"rate limit is retryable", failedSlot(transfer.NewRateLimitError("slow down", 3600)), true},
		{"platform failure is retryable", failedSlot(transfer.NewPlatformFailure("backend down")), true},
		{"auth is not", failedSlot(transfer.NewAuthError("revoked")), false},
		{"content is not", failedSlot(transfer.NewContentError("too long")), false},
		{"construction failure has no result", publisher.PlatformResult{Error: "no adapter"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, retryableResult(tt.res))
		})
	}
}

func TestRetryConfigWaitsOutRateLimitWindow(t *testing.T) {
	cfg := retryConfigFor(failedSlot(transfer.NewRateLimitError("hourly limit", 3600)), 3)

	assert.Equal(t, uint64(3), cfg.MaxRetries)
	assert.Equal(t, 3600*time.Second, cfg.InitialInterval)
	assert.GreaterOrEqual(t, cfg.MaxInterval, cfg.InitialInterval)
}

func TestRetryConfigDefaultsWithoutRetryAfter(t *testing.T) {
	cfg := retryConfigFor(failedSlot(transfer.NewPlatformFailure("backend down")), 2)

	assert.Equal(t, uint64(2), cfg.MaxRetries)
	assert.Equal(t, retryConfigFor(publisher.PlatformResult{}, 2).InitialInterval, cfg.InitialInterval)
}

func TestRetryAfterSecondsSurvivesJSONRoundTrip(t *testing.T) {
	// Values pulled out of a decoded task payload arrive as float64.
	res := publisher.PlatformResult{Result: &transfer.PostResult{
		PlatformResponse: map[string]any{"retry_after_seconds": float64(120)},
	}}
	assert.Equal(t, 120, retryAfterSeconds(res))

	assert.Equal(t, 3600, retryAfterSeconds(failedSlot(transfer.NewRateLimitError("limit", 3600))))
}
