package queue

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/shintaro-0909/omnipost/internal/models"
	"github.com/shintaro-0909/omnipost/internal/platform"
	"github.com/shintaro-0909/omnipost/internal/publisher"
	"github.com/shintaro-0909/omnipost/internal/transfer"
	"github.com/shintaro-0909/omnipost/pkg/retry"
)

func (q *Queue) HandlePublishPostTask(ctx context.Context, task *asynq.Task) error {
	var payload PublishPostPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	return q.PublishPost(ctx, payload)
}

// PublishPost resolves the selected accounts into platform credentials,
// fans the post out through the orchestrator and retries platforms whose
// failures are classified retryable. Retry here is caller policy; the
// orchestrator itself never retries.
func (q *Queue) PublishPost(ctx context.Context, payload PublishPostPayload) error {
	entries := q.resolveEntries(ctx, payload.AccountIDs)
	if len(entries) == 0 {
		slog.Info("no publishable accounts for task", "user_id", payload.UserID)
		return nil
	}

	results := q.pub.PublishToMultiplePlatforms(ctx, entries, payload.Content, payload.Options)

	for p, res := range results {
		if res.Success {
			slog.Info("post published",
				"platform", p, "post_id", res.Result.PostID)
			continue
		}

		slog.Info("post failed",
			"platform", p, "error", res.Error)

		if !retryableResult(res) {
			continue
		}

		q.retryPlatform(ctx, p, res, entries, payload)
	}

	return nil
}

func (q *Queue) retryPlatform(ctx context.Context, p platform.Platform, failed publisher.PlatformResult, entries []publisher.PlatformCredentials, payload PublishPostPayload) {
	var entry *publisher.PlatformCredentials
	for i := range entries {
		if entries[i].Platform == p {
			entry = &entries[i]
			break
		}
	}
	if entry == nil {
		return
	}

	cfg := retryConfigFor(failed, q.cfg.RetryAttempts)

	err := retry.Do(ctx, "publish:"+p.String(), func() error {
		res := q.pub.PublishToMultiplePlatforms(ctx, []publisher.PlatformCredentials{*entry}, payload.Content, payload.Options)
		slot, ok := res[p]
		if !ok || slot.Success {
			return nil
		}
		perr := transfer.NewPlatformFailure(slot.Error)
		if !retryableResult(slot) {
			return retry.Permanent(perr)
		}
		return perr
	}, cfg)

	if err != nil {
		slog.Info("retries exhausted", "platform", p, "error", err.Error())
	}
}

func (q *Queue) resolveEntries(ctx context.Context, accountIDs []int64) []publisher.PlatformCredentials {
	var entries []publisher.PlatformCredentials

	for _, id := range accountIDs {
		acc, err := q.sr.GetByID(ctx, id)
		if err != nil || acc == nil {
			slog.Info("skipping unknown account", "account_id", id)
			continue
		}

		creds, err := q.store.Get(ctx, id)
		if err != nil {
			slog.Info("skipping account with unreadable credentials",
				"account_id", id, "error", err.Error())
			continue
		}

		entries = append(entries, publisher.PlatformCredentials{
			Platform:    platform.Platform(acc.Platform),
			Credentials: *creds,
			Active:      acc.AccountStatus == models.AccountStatusActive,
		})
	}

	return entries
}

// retryableResult reads the error taxonomy back out of the opaque
// platform response. Auth and content failures are never retried as-is.
func retryableResult(res publisher.PlatformResult) bool {
	if res.Result == nil || res.Result.PlatformResponse == nil {
		return false
	}
	retryable, ok := res.Result.PlatformResponse["retryable"].(bool)
	return ok && retryable
}

// retryConfigFor seeds the backoff from the failure itself: a ratelimit
// result says exactly how long the window lasts, so the first retry
// waits it out instead of hammering the provider on the default
// interval.
func retryConfigFor(failed publisher.PlatformResult, attempts int) retry.Config {
	cfg := retry.DefaultConfig()
	cfg.MaxRetries = uint64(attempts)

	if after := retryAfterSeconds(failed); after > 0 {
		cfg.InitialInterval = time.Duration(after) * time.Second
		if cfg.MaxInterval < cfg.InitialInterval {
			cfg.MaxInterval = cfg.InitialInterval
		}
	}
	return cfg
}

// retryAfterSeconds handles both the in-process int and the float64 the
// value becomes after a JSON round trip through the task payload.
func retryAfterSeconds(res publisher.PlatformResult) int {
	if res.Result == nil || res.Result.PlatformResponse == nil {
		return 0
	}
	switch v := res.Result.PlatformResponse["retry_after_seconds"].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}
