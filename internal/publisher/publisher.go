package publisher

import (
	"context"
	"log/slog"
	"sync"

	"github.com/shintaro-0909/omnipost/internal/adapter"
	"github.com/shintaro-0909/omnipost/internal/platform"
	"github.com/shintaro-0909/omnipost/internal/transfer"
)

const defaultConcurrency = 10

// AdapterFactory is the slice of the factory the publisher needs.
type AdapterFactory interface {
	CreateAdapter(ctx context.Context, p platform.Platform, creds transfer.AuthCredentials) (adapter.Adapter, error)
}

// PlatformCredentials pairs one platform with the credentials to publish
// under. Inactive entries are skipped entirely.
type PlatformCredentials struct {
	Platform    platform.Platform        `json:"platform"`
	Credentials transfer.AuthCredentials `json:"credentials"`
	Active      bool                     `json:"active"`
}

// PlatformResult is one platform's slot in a multi-platform outcome.
// Either Result carries the publish outcome or Error explains why no
// attempt could be made (adapter construction failure).
type PlatformResult struct {
	Success bool                 `json:"success"`
	Result  *transfer.PostResult `json:"result,omitempty"`
	Error   string               `json:"error,omitempty"`
}

// CredentialStatus is one platform's slot in a validation sweep.
type CredentialStatus struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// Publisher fans a single logical post out to every requested platform
// concurrently and aggregates per-platform results. One platform's
// failure never cancels or blocks the others.
type Publisher struct {
	factory     AdapterFactory
	concurrency int
}

func New(factory AdapterFactory, concurrency int) *Publisher {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Publisher{factory: factory, concurrency: concurrency}
}

// PublishToMultiplePlatforms publishes post to every active entry and
// waits for all of them before returning. The returned map has exactly
// one slot per active platform; there is no ordering guarantee between
// platforms' completion times.
func (p *Publisher) PublishToMultiplePlatforms(ctx context.Context, entries []PlatformCredentials, post transfer.PostContent, opts *transfer.PostOptions) map[platform.Platform]PlatformResult {
	results := make(map[platform.Platform]PlatformResult)

	var mu sync.Mutex
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, p.concurrency)

	for _, entry := range entries {
		if !entry.Active {
			continue
		}

		wg.Add(1)
		semaphore <- struct{}{}

		go func(entry PlatformCredentials) {
			defer wg.Done()
			defer func() { <-semaphore }()

			slot := p.publishOne(ctx, entry, post, opts)

			mu.Lock()
			results[entry.Platform] = slot
			mu.Unlock()
		}(entry)
	}

	wg.Wait()
	return results
}

func (p *Publisher) publishOne(ctx context.Context, entry PlatformCredentials, post transfer.PostContent, opts *transfer.PostOptions) PlatformResult {
	a, err := p.factory.CreateAdapter(ctx, entry.Platform, entry.Credentials)
	if err != nil {
		slog.Info("adapter construction failed",
			"platform", entry.Platform, "error", err.Error())
		return PlatformResult{Success: false, Error: err.Error()}
	}

	result := a.PublishPost(ctx, post, opts)
	return PlatformResult{Success: result.Success, Result: result, Error: result.Error}
}

// ValidateAllCredentials checks every active entry's credentials with the
// same bounded fan-out as publishing.
func (p *Publisher) ValidateAllCredentials(ctx context.Context, entries []PlatformCredentials) map[platform.Platform]CredentialStatus {
	statuses := make(map[platform.Platform]CredentialStatus)

	var mu sync.Mutex
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, p.concurrency)

	for _, entry := range entries {
		if !entry.Active {
			continue
		}

		wg.Add(1)
		semaphore <- struct{}{}

		go func(entry PlatformCredentials) {
			defer wg.Done()
			defer func() { <-semaphore }()

			status := CredentialStatus{Valid: true}

			a, err := p.factory.CreateAdapter(ctx, entry.Platform, entry.Credentials)
			if err != nil {
				status = CredentialStatus{Valid: false, Error: err.Error()}
			} else if err := a.ValidateCredentials(ctx); err != nil {
				status = CredentialStatus{Valid: false, Error: err.Error()}
			}

			mu.Lock()
			statuses[entry.Platform] = status
			mu.Unlock()
		}(entry)
	}

	wg.Wait()
	return statuses
}
