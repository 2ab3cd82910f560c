package platform

import "time"

const (
	MB int64 = 1 << 20
	GB int64 = 1 << 30
)

type RateLimits struct {
	PostsPerHour int
	PostsPerDay  int
}

// Limits describes the per-platform content constraints. Zero values for
// the video/image fields mean the platform publishes no limit for them.
type Limits struct {
	TextMaxLength       int
	MediaMaxCount       int
	HashtagMaxCount     int
	VideoMaxDuration    time.Duration
	VideoMaxSize        int64
	ImageMaxSize        int64
	SupportedMediaTypes []string
	RateLimits          RateLimits
}

// limitsTable is loaded once and never mutated, so concurrent reads need
// no locking.
var limitsTable = map[Platform]Limits{
	Instagram: {
		TextMaxLength:       2200,
		MediaMaxCount:       10,
		HashtagMaxCount:     30,
		VideoMaxDuration:    60 * time.Minute,
		VideoMaxSize:        4 * GB,
		ImageMaxSize:        30 * MB,
		SupportedMediaTypes: []string{"image/jpeg", "image/png", "video/mp4", "video/quicktime"},
		RateLimits:          RateLimits{PostsPerHour: 25, PostsPerDay: 50},
	},
	X: {
		TextMaxLength:       280,
		MediaMaxCount:       4,
		HashtagMaxCount:     5,
		VideoMaxDuration:    140 * time.Second,
		VideoMaxSize:        512 * MB,
		ImageMaxSize:        5 * MB,
		SupportedMediaTypes: []string{"image/jpeg", "image/png", "image/gif", "image/webp", "video/mp4"},
		RateLimits:          RateLimits{PostsPerHour: 15, PostsPerDay: 100},
	},
	Facebook: {
		TextMaxLength:       63206,
		MediaMaxCount:       10,
		HashtagMaxCount:     30,
		VideoMaxDuration:    240 * time.Minute,
		VideoMaxSize:        4 * GB,
		ImageMaxSize:        30 * MB,
		SupportedMediaTypes: []string{"image/jpeg", "image/png", "image/gif", "video/mp4", "video/quicktime"},
		RateLimits:          RateLimits{PostsPerHour: 25, PostsPerDay: 200},
	},
	TikTok: {
		TextMaxLength:       2200,
		MediaMaxCount:       1,
		HashtagMaxCount:     20,
		VideoMaxDuration:    10 * time.Minute,
		VideoMaxSize:        4 * GB,
		SupportedMediaTypes: []string{"video/mp4", "video/quicktime", "video/webm"},
		RateLimits:          RateLimits{PostsPerHour: 10, PostsPerDay: 30},
	},
	LinkedIn: {
		TextMaxLength:       3000,
		MediaMaxCount:       9,
		HashtagMaxCount:     30,
		VideoMaxDuration:    10 * time.Minute,
		VideoMaxSize:        5 * GB,
		ImageMaxSize:        100 * MB,
		SupportedMediaTypes: []string{"image/jpeg", "image/png", "image/gif", "video/mp4"},
		RateLimits:          RateLimits{PostsPerHour: 10, PostsPerDay: 100},
	},
	Mock: {
		TextMaxLength:       5000,
		MediaMaxCount:       10,
		HashtagMaxCount:     30,
		VideoMaxDuration:    60 * time.Minute,
		VideoMaxSize:        4 * GB,
		ImageMaxSize:        30 * MB,
		SupportedMediaTypes: []string{"image/jpeg", "image/png", "image/gif", "video/mp4"},
		RateLimits:          RateLimits{PostsPerHour: 100, PostsPerDay: 1000},
	},
}

// defaultLimits is the conservative fallback for platforms missing from
// the table.
var defaultLimits = Limits{
	TextMaxLength:       280,
	MediaMaxCount:       1,
	HashtagMaxCount:     5,
	SupportedMediaTypes: []string{"image/jpeg", "image/png"},
	RateLimits:          RateLimits{PostsPerHour: 5, PostsPerDay: 20},
}

// LimitsFor returns the content limits for p. Unknown platforms get the
// conservative default set rather than an error.
func LimitsFor(p Platform) Limits {
	if l, ok := limitsTable[p]; ok {
		return l
	}
	return defaultLimits
}

func (l Limits) SupportsMediaType(mime string) bool {
	for _, m := range l.SupportedMediaTypes {
		if m == mime {
			return true
		}
	}
	return false
}
