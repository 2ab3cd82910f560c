package adapter

import (
	"context"
	"time"

	"github.com/shintaro-0909/omnipost/internal/platform"
	"github.com/shintaro-0909/omnipost/internal/transfer"
)

// Adapter is the per-platform publishing contract. PublishPost and
// SchedulePost validate content first and short-circuit with a failed
// PostResult before any outbound call; expected provider failures are
// folded into the PostResult rather than returned as errors, so a
// multi-platform caller needs no per-platform error handling.
type Adapter interface {
	Platform() platform.Platform
	Limits() platform.Limits
	SupportedFeatures() platform.Features

	ValidateContent(post transfer.PostContent) transfer.ValidationResult
	OptimizeContent(post transfer.PostContent) transfer.PostContent

	AccountInfo(ctx context.Context) (*transfer.AccountInfo, error)
	PublishPost(ctx context.Context, post transfer.PostContent, opts *transfer.PostOptions) *transfer.PostResult
	SchedulePost(ctx context.Context, post transfer.PostContent, scheduleAt time.Time, opts *transfer.PostOptions) *transfer.PostResult

	// DeletePost is idempotent from the caller's perspective: deleting a
	// post that is already gone returns nil.
	DeletePost(ctx context.Context, postID string) error

	// ValidateCredentials returns nil when the adapter's credentials are
	// usable and a classified error when they are not.
	ValidateCredentials(ctx context.Context) error

	// RefreshCredentials returns new credentials on success. On failure
	// the adapter's existing credentials are left untouched; the caller
	// decides what to do with the old ones.
	RefreshCredentials(ctx context.Context) (*transfer.AuthCredentials, error)

	HandlePlatformError(err error) *transfer.PlatformError
}

// TokenRefresher exchanges a refresh token for new credentials. The OAuth
// implementation lives in the credentials package; tests substitute fakes.
type TokenRefresher interface {
	Refresh(ctx context.Context, p platform.Platform, creds transfer.AuthCredentials) (*transfer.AuthCredentials, error)
}
