package transfer

import "time"

type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
)

type MediaItem struct {
	Type            MediaType `json:"type"`
	URL             string    `json:"url"`
	ThumbnailURL    string    `json:"thumbnail_url,omitempty"`
	Alt             string    `json:"alt,omitempty"`
	MimeType        string    `json:"mime_type,omitempty"`
	DurationSeconds int       `json:"duration_seconds,omitempty"`
}

// PostContent is the platform-independent representation of a post. It is
// treated as a value: optimization returns a new PostContent and never
// mutates the input.
type PostContent struct {
	Text     string      `json:"text"`
	Media    []MediaItem `json:"media,omitempty"`
	Hashtags []string    `json:"hashtags,omitempty"`
	Mentions []string    `json:"mentions,omitempty"`
	Location string      `json:"location,omitempty"`
}

type PostOptions struct {
	ScheduleAt        time.Time `json:"schedule_at,omitempty"`
	EnableComments    bool      `json:"enable_comments"`
	EnableLikes       bool      `json:"enable_likes"`
	AudienceTargeting string    `json:"audience_targeting,omitempty"`
}

func DefaultPostOptions() *PostOptions {
	return &PostOptions{EnableComments: true, EnableLikes: true}
}

// PostResult is the terminal value of a publish or schedule attempt.
// Expected failures travel inside it; adapters never surface them as
// returned errors. A failed result never carries a PostID.
type PostResult struct {
	Success          bool           `json:"success"`
	PostID           string         `json:"post_id,omitempty"`
	URL              string         `json:"url,omitempty"`
	ScheduledFor     time.Time      `json:"scheduled_for,omitempty"`
	Error            string         `json:"error,omitempty"`
	PlatformResponse map[string]any `json:"platform_response,omitempty"`
}

// FailedResult builds a failure PostResult from a classified platform
// error. The error taxonomy rides along in the opaque platform response so
// callers deciding retry policy can read it back.
func FailedResult(perr *PlatformError) *PostResult {
	return &PostResult{
		Success: false,
		Error:   perr.Message,
		PlatformResponse: map[string]any{
			"error_type":          string(perr.Type),
			"retryable":           perr.Retryable,
			"retry_after_seconds": perr.RetryAfterSeconds,
		},
	}
}

type AccountInfo struct {
	ID                string `json:"id"`
	Username          string `json:"username"`
	DisplayName       string `json:"display_name"`
	ProfilePicture    string `json:"profile_picture,omitempty"`
	IsVerified        bool   `json:"is_verified"`
	FollowersCount    int64  `json:"followers_count"`
	IsBusinessAccount bool   `json:"is_business_account"`
}

type ValidationResult struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors,omitempty"`
}
