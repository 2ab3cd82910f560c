package adapter

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/shintaro-0909/omnipost/internal/content"
	"github.com/shintaro-0909/omnipost/internal/platform"
	"github.com/shintaro-0909/omnipost/internal/transfer"
)

const (
	// mockExpiryChancePercent is the probability that a credential check
	// against the mock provider reports a spontaneously expired token.
	// It exists so callers can exercise their re-auth flow without a real
	// provider revoking anything.
	mockExpiryChancePercent = 10

	mockLatencyMin = 50 * time.Millisecond
	mockLatencyMax = 250 * time.Millisecond

	mockRefreshedTokenTTL = 60 * 24 * time.Hour
)

// MockOptions tunes the simulated provider. A zero value gives a real
// clock, default latency jitter and a time-seeded random source.
type MockOptions struct {
	// ErrorRate is the percentage (0-100) of valid publish attempts that
	// fail with a simulated provider error. Invalid content always fails
	// deterministically regardless of ErrorRate.
	ErrorRate int

	// Seed makes the mock's random behavior reproducible. Zero means
	// seed from the current time.
	Seed int64

	Clock      clockwork.Clock
	LatencyMin time.Duration
	LatencyMax time.Duration
	NoLatency  bool
}

// MockAdapter implements the full adapter contract against an in-memory
// simulated provider. It is the implementation behind every platform when
// real posting is disabled, and the fallback when a real adapter is not
// yet available.
type MockAdapter struct {
	p     platform.Platform
	creds transfer.AuthCredentials
	opts  MockOptions
	clock clockwork.Clock
	usage *usageTracker

	mu      sync.Mutex
	rng     *rand.Rand
	expired bool

	networkCalls atomic.Int64
}

func NewMockAdapter(p platform.Platform, creds transfer.AuthCredentials, opts MockOptions) *MockAdapter {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	if opts.LatencyMin == 0 && opts.LatencyMax == 0 && !opts.NoLatency {
		opts.LatencyMin = mockLatencyMin
		opts.LatencyMax = mockLatencyMax
	}

	return &MockAdapter{
		p:     p,
		creds: creds,
		opts:  opts,
		clock: opts.Clock,
		usage: newUsageTracker(opts.Clock),
		rng:   rand.New(rand.NewSource(opts.Seed)),
	}
}

func (m *MockAdapter) Platform() platform.Platform { return m.p }

func (m *MockAdapter) Limits() platform.Limits { return platform.LimitsFor(m.p) }

func (m *MockAdapter) SupportedFeatures() platform.Features { return platform.FeaturesFor(m.p) }

func (m *MockAdapter) ValidateContent(post transfer.PostContent) transfer.ValidationResult {
	return content.Validate(m.p, post)
}

func (m *MockAdapter) OptimizeContent(post transfer.PostContent) transfer.PostContent {
	return content.Optimize(m.p, post)
}

// AccountInfo is deterministic per platform: calling it twice returns the
// same identity, never a re-randomized one.
func (m *MockAdapter) AccountInfo(ctx context.Context) (*transfer.AccountInfo, error) {
	if err := m.simulateNetwork(ctx); err != nil {
		return nil, err
	}

	h := fnv.New32a()
	h.Write([]byte(m.p.String()))
	seed := h.Sum32()

	return &transfer.AccountInfo{
		ID:                fmt.Sprintf("mock-%s-%d", m.p, seed%100000),
		Username:          fmt.Sprintf("%s_creator", m.p),
		DisplayName:       fmt.Sprintf("Mock %s Account", strings.ToUpper(m.p.String()[:1])+m.p.String()[1:]),
		ProfilePicture:    fmt.Sprintf("https://mock.example.com/avatars/%s.png", m.p),
		IsVerified:        seed%2 == 0,
		FollowersCount:    int64(1000 + seed%100000),
		IsBusinessAccount: seed%3 == 0,
	}, nil
}

func (m *MockAdapter) PublishPost(ctx context.Context, post transfer.PostContent, opts *transfer.PostOptions) *transfer.PostResult {
	if res := m.ValidateContent(post); !res.IsValid {
		return transfer.FailedResult(transfer.NewContentError(strings.Join(res.Errors, "; ")))
	}

	if perr := CheckRateLimit(m.usage.Counts(), m.Limits().RateLimits); perr != nil {
		return transfer.FailedResult(perr)
	}

	if err := m.simulateNetwork(ctx); err != nil {
		return transfer.FailedResult(transfer.Classify(err))
	}

	if m.roll() < m.opts.ErrorRate {
		return transfer.FailedResult(transfer.NewPlatformFailure(
			fmt.Sprintf("simulated %s publish failure", m.p)))
	}

	m.usage.Record()

	postID, err := gonanoid.New()
	if err != nil {
		return transfer.FailedResult(transfer.NewUnknownError(err.Error()))
	}

	return &transfer.PostResult{
		Success: true,
		PostID:  postID,
		URL:     fmt.Sprintf("https://mock.example.com/%s/posts/%s", m.p, postID),
		PlatformResponse: map[string]any{
			"likes":    m.roll() * 10,
			"comments": m.roll(),
			"shares":   m.roll() / 2,
		},
	}
}

func (m *MockAdapter) SchedulePost(ctx context.Context, post transfer.PostContent, scheduleAt time.Time, opts *transfer.PostOptions) *transfer.PostResult {
	if res := m.ValidateContent(post); !res.IsValid {
		return transfer.FailedResult(transfer.NewContentError(strings.Join(res.Errors, "; ")))
	}

	// A past schedule time is a content-class failure, not a network one.
	if !scheduleAt.After(m.clock.Now()) {
		return transfer.FailedResult(transfer.NewContentError("schedule time must be in the future"))
	}

	if err := m.simulateNetwork(ctx); err != nil {
		return transfer.FailedResult(transfer.Classify(err))
	}

	if m.roll() < m.opts.ErrorRate {
		return transfer.FailedResult(transfer.NewPlatformFailure(
			fmt.Sprintf("simulated %s schedule failure", m.p)))
	}

	postID, err := gonanoid.New()
	if err != nil {
		return transfer.FailedResult(transfer.NewUnknownError(err.Error()))
	}

	return &transfer.PostResult{
		Success:      true,
		PostID:       postID,
		ScheduledFor: scheduleAt,
	}
}

// DeletePost always succeeds: deleting an already-deleted mock post is
// indistinguishable from deleting a live one.
func (m *MockAdapter) DeletePost(ctx context.Context, postID string) error {
	return m.simulateNetwork(ctx)
}

func (m *MockAdapter) ValidateCredentials(ctx context.Context) error {
	if err := m.simulateNetwork(ctx); err != nil {
		return transfer.Classify(err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.expired {
		return transfer.NewAuthError("mock credentials expired")
	}
	if m.rng.Intn(100) < mockExpiryChancePercent {
		// Sticky: once expired the adapter stays dead until refreshed,
		// so factory eviction is observable.
		m.expired = true
		return transfer.NewAuthError("mock credentials expired")
	}
	return nil
}

func (m *MockAdapter) RefreshCredentials(ctx context.Context) (*transfer.AuthCredentials, error) {
	if err := m.simulateNetwork(ctx); err != nil {
		return nil, transfer.Classify(err)
	}

	token, err := gonanoid.New()
	if err != nil {
		return nil, transfer.NewUnknownError(err.Error())
	}

	m.mu.Lock()
	refreshed := m.creds
	refreshed.AccessToken = fmt.Sprintf("mock-token-%s", token)
	refreshed.ExpiresAt = m.clock.Now().Add(mockRefreshedTokenTTL)
	m.creds = refreshed
	m.expired = false
	m.mu.Unlock()

	return &refreshed, nil
}

func (m *MockAdapter) HandlePlatformError(err error) *transfer.PlatformError {
	return transfer.Classify(err)
}

// NetworkCalls reports how many simulated provider calls the adapter has
// made. Tests use it to prove that invalid content never reaches the
// network.
func (m *MockAdapter) NetworkCalls() int64 {
	return m.networkCalls.Load()
}

func (m *MockAdapter) simulateNetwork(ctx context.Context) error {
	m.networkCalls.Add(1)

	if err := ctx.Err(); err != nil {
		return err
	}

	if m.opts.NoLatency || m.opts.LatencyMax <= 0 {
		return nil
	}

	jitter := m.opts.LatencyMax - m.opts.LatencyMin
	delay := m.opts.LatencyMin
	if jitter > 0 {
		delay += time.Duration(m.roll()) * jitter / 100
	}
	m.clock.Sleep(delay)
	return nil
}

func (m *MockAdapter) roll() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rng.Intn(100)
}
