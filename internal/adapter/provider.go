package adapter

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/shintaro-0909/omnipost/internal/content"
	"github.com/shintaro-0909/omnipost/internal/platform"
	"github.com/shintaro-0909/omnipost/internal/transfer"
)

// ErrPostNotFound is returned by a Gateway when the target post no longer
// exists. DeletePost maps it to success so deletes stay idempotent.
var ErrPostNotFound = errors.New("post not found")

// Gateway is the wire-protocol collaborator behind a real platform
// adapter. The provider-specific HTTP details live outside this core;
// the adapter only validates, bounds and classifies around it.
type Gateway interface {
	Publish(ctx context.Context, post transfer.PostContent, opts *transfer.PostOptions) (*transfer.PostResult, error)
	Delete(ctx context.Context, postID string) error
	AccountInfo(ctx context.Context) (*transfer.AccountInfo, error)
	CheckCredentials(ctx context.Context, creds transfer.AuthCredentials) error
}

// providerAdapter implements the adapter contract for a real platform by
// composing the registry, validator, rate-limit helper and a Gateway.
// Every outbound call is wrapped with the configured timeout so one
// unresponsive provider cannot stall a sweep or orchestration. The
// factory shares one instance across concurrent callers, so credential
// reads and the refresh write go through the mutex.
type providerAdapter struct {
	p         platform.Platform
	gw        Gateway
	refresher TokenRefresher
	timeout   time.Duration
	clock     clockwork.Clock
	usage     *usageTracker

	mu    sync.Mutex
	creds transfer.AuthCredentials
}

func NewProviderAdapter(p platform.Platform, creds transfer.AuthCredentials, gw Gateway, refresher TokenRefresher, timeout time.Duration, clock clockwork.Clock) Adapter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &providerAdapter{
		p:         p,
		creds:     creds,
		gw:        gw,
		refresher: refresher,
		timeout:   timeout,
		clock:     clock,
		usage:     newUsageTracker(clock),
	}
}

func (a *providerAdapter) credentials() transfer.AuthCredentials {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.creds
}

func (a *providerAdapter) Platform() platform.Platform { return a.p }

func (a *providerAdapter) Limits() platform.Limits { return platform.LimitsFor(a.p) }

func (a *providerAdapter) SupportedFeatures() platform.Features { return platform.FeaturesFor(a.p) }

func (a *providerAdapter) ValidateContent(post transfer.PostContent) transfer.ValidationResult {
	return content.Validate(a.p, post)
}

func (a *providerAdapter) OptimizeContent(post transfer.PostContent) transfer.PostContent {
	return content.Optimize(a.p, post)
}

func (a *providerAdapter) AccountInfo(ctx context.Context) (*transfer.AccountInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	info, err := a.gw.AccountInfo(ctx)
	if err != nil {
		return nil, transfer.Classify(err)
	}
	return info, nil
}

func (a *providerAdapter) PublishPost(ctx context.Context, post transfer.PostContent, opts *transfer.PostOptions) *transfer.PostResult {
	if res := a.ValidateContent(post); !res.IsValid {
		return transfer.FailedResult(transfer.NewContentError(strings.Join(res.Errors, "; ")))
	}

	if perr := CheckRateLimit(a.usage.Counts(), a.Limits().RateLimits); perr != nil {
		return transfer.FailedResult(perr)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	result, err := a.gw.Publish(ctx, post, opts)
	if err != nil {
		return transfer.FailedResult(transfer.Classify(err))
	}

	a.usage.Record()
	return result
}

func (a *providerAdapter) SchedulePost(ctx context.Context, post transfer.PostContent, scheduleAt time.Time, opts *transfer.PostOptions) *transfer.PostResult {
	if res := a.ValidateContent(post); !res.IsValid {
		return transfer.FailedResult(transfer.NewContentError(strings.Join(res.Errors, "; ")))
	}

	if !scheduleAt.After(a.clock.Now()) {
		return transfer.FailedResult(transfer.NewContentError("schedule time must be in the future"))
	}

	if opts == nil {
		opts = transfer.DefaultPostOptions()
	}
	scheduled := *opts
	scheduled.ScheduleAt = scheduleAt

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	result, err := a.gw.Publish(ctx, post, &scheduled)
	if err != nil {
		return transfer.FailedResult(transfer.Classify(err))
	}

	result.ScheduledFor = scheduleAt
	return result
}

func (a *providerAdapter) DeletePost(ctx context.Context, postID string) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	err := a.gw.Delete(ctx, postID)
	if err == nil || errors.Is(err, ErrPostNotFound) {
		return nil
	}
	return transfer.Classify(err)
}

func (a *providerAdapter) ValidateCredentials(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	if err := a.gw.CheckCredentials(ctx, a.credentials()); err != nil {
		return transfer.Classify(err)
	}
	return nil
}

func (a *providerAdapter) RefreshCredentials(ctx context.Context) (*transfer.AuthCredentials, error) {
	if a.refresher == nil {
		return nil, transfer.NewAuthError("no token refresher configured")
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	refreshed, err := a.refresher.Refresh(ctx, a.p, a.credentials())
	if err != nil {
		// The existing credentials stay untouched on failure.
		return nil, transfer.Classify(err)
	}

	a.mu.Lock()
	a.creds = *refreshed
	a.mu.Unlock()
	return refreshed, nil
}

func (a *providerAdapter) HandlePlatformError(err error) *transfer.PlatformError {
	return transfer.Classify(err)
}
