package adapter

import (
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/shintaro-0909/omnipost/internal/platform"
	"github.com/shintaro-0909/omnipost/internal/transfer"
)

// UsageCounts is a snapshot of recent publish activity for one account.
type UsageCounts struct {
	PostsLastHour int
	PostsLastDay  int
}

// CheckRateLimit compares recent usage against the platform's rate limits
// and returns a ratelimit PlatformError when a window is exhausted, nil
// otherwise.
func CheckRateLimit(counts UsageCounts, limits platform.RateLimits) *transfer.PlatformError {
	if limits.PostsPerHour > 0 && counts.PostsLastHour >= limits.PostsPerHour {
		return transfer.NewRateLimitError(
			fmt.Sprintf("hourly post limit of %d reached", limits.PostsPerHour), 3600)
	}
	if limits.PostsPerDay > 0 && counts.PostsLastDay >= limits.PostsPerDay {
		return transfer.NewRateLimitError(
			fmt.Sprintf("daily post limit of %d reached", limits.PostsPerDay), 86400)
	}
	return nil
}

// usageTracker records publish timestamps so adapters can self-check rate
// limits before hitting the provider.
type usageTracker struct {
	mu    sync.Mutex
	clock clockwork.Clock
	posts []time.Time
}

func newUsageTracker(clock clockwork.Clock) *usageTracker {
	return &usageTracker{clock: clock}
}

func (t *usageTracker) Record() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.posts = append(t.posts, t.clock.Now())
}

func (t *usageTracker) Counts() UsageCounts {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	dayAgo := now.Add(-24 * time.Hour)
	hourAgo := now.Add(-time.Hour)

	// Prune everything older than a day while counting.
	kept := t.posts[:0]
	var counts UsageCounts
	for _, ts := range t.posts {
		if ts.Before(dayAgo) {
			continue
		}
		kept = append(kept, ts)
		counts.PostsLastDay++
		if !ts.Before(hourAgo) {
			counts.PostsLastHour++
		}
	}
	t.posts = kept

	return counts
}
