package content

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shintaro-0909/omnipost/internal/platform"
	"github.com/shintaro-0909/omnipost/internal/transfer"
)

// ellipsis is appended whenever Optimize truncates post text. It counts
// as a single character against the platform limit.
const ellipsis = "…"

// Validate checks post against the capability registry for p and returns
// every violated rule, not just the first, so callers can show a complete
// error list.
func Validate(p platform.Platform, post transfer.PostContent) transfer.ValidationResult {
	limits := platform.LimitsFor(p)
	var errs []string

	if n := utf8.RuneCountInString(post.Text); n > limits.TextMaxLength {
		errs = append(errs, fmt.Sprintf("text length %d exceeds the maximum of %d characters", n, limits.TextMaxLength))
	}

	if len(post.Media) > limits.MediaMaxCount {
		errs = append(errs, fmt.Sprintf("media count %d exceeds the maximum of %d items", len(post.Media), limits.MediaMaxCount))
	}

	if len(post.Hashtags) > limits.HashtagMaxCount {
		errs = append(errs, fmt.Sprintf("hashtag count %d exceeds the maximum of %d", len(post.Hashtags), limits.HashtagMaxCount))
	}

	for _, m := range post.Media {
		if m.MimeType != "" && !limits.SupportsMediaType(m.MimeType) {
			errs = append(errs, fmt.Sprintf("media type %s is not supported", m.MimeType))
		}
		if m.Type == transfer.MediaTypeVideo && limits.VideoMaxDuration > 0 &&
			m.DurationSeconds > int(limits.VideoMaxDuration.Seconds()) {
			errs = append(errs, fmt.Sprintf("video duration %ds exceeds the maximum of %ds", m.DurationSeconds, int(limits.VideoMaxDuration.Seconds())))
		}
	}

	switch p {
	case platform.TikTok:
		hasVideo := false
		for _, m := range post.Media {
			if m.Type == transfer.MediaTypeVideo {
				hasVideo = true
			} else {
				errs = append(errs, fmt.Sprintf("tiktok does not accept %s media, video required", m.Type))
			}
		}
		if !hasVideo {
			errs = append(errs, "tiktok posts require at least one video")
		}
	case platform.X:
		if strings.TrimSpace(post.Text) == "" && len(post.Media) == 0 {
			errs = append(errs, "x posts require text or media")
		}
	}

	return transfer.ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}

// Optimize trims post down to the limits for p: text is truncated at a
// word boundary with an ellipsis, hashtags and media are sliced to their
// maxima with front items winning. It never invents or reorders content,
// and applying it to already-compliant input returns the input unchanged,
// which makes it idempotent.
func Optimize(p platform.Platform, post transfer.PostContent) transfer.PostContent {
	limits := platform.LimitsFor(p)
	out := post

	out.Text = TruncateText(post.Text, limits.TextMaxLength)

	if len(out.Hashtags) > limits.HashtagMaxCount {
		out.Hashtags = out.Hashtags[:limits.HashtagMaxCount]
	}

	if len(out.Media) > limits.MediaMaxCount {
		out.Media = out.Media[:limits.MediaMaxCount]
	}

	return out
}

// TruncateText cuts text to at most max characters. The cut happens at
// the last space when that space falls within the final 20% of the limit,
// otherwise mid-word, and a truncated result always ends with an ellipsis
// that fits inside the limit.
func TruncateText(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	if max < 1 {
		return ""
	}

	cut := runes[:max-1]
	if idx := lastSpace(cut); idx >= (max-1)*4/5 {
		cut = cut[:idx]
	}

	return strings.TrimRight(string(cut), " ") + ellipsis
}

func lastSpace(runes []rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == ' ' {
			return i
		}
	}
	return -1
}
