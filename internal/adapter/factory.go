package adapter

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/jonboulle/clockwork"
	config "github.com/shintaro-0909/omnipost/configs"
	"github.com/shintaro-0909/omnipost/internal/platform"
	"github.com/shintaro-0909/omnipost/internal/transfer"
)

// ErrNotImplemented marks a platform whose real adapter does not exist
// yet. Builders return it so the mock fallback stays an explicit,
// observable decision instead of a silent fallthrough.
var ErrNotImplemented = errors.New("real adapter not implemented for platform")

// BuilderFunc constructs a real adapter for one platform.
type BuilderFunc func(creds transfer.AuthCredentials, cfg config.Adapter) (Adapter, error)

type cacheKey struct {
	platform platform.Platform
	userID   string
}

// Factory constructs and caches adapters per (platform, user). Cached
// instances are re-validated before reuse so a caller never receives a
// provably dead adapter. There is no package-level singleton; the factory
// is constructed in main and passed to its consumers.
type Factory struct {
	mu       sync.Mutex
	cfg      config.Adapter
	clock    clockwork.Clock
	cache    map[cacheKey]Adapter
	builders map[platform.Platform]BuilderFunc
}

func NewFactory(cfg config.Adapter, clock clockwork.Clock) *Factory {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Factory{
		cfg:      cfg,
		clock:    clock,
		cache:    make(map[cacheKey]Adapter),
		builders: make(map[platform.Platform]BuilderFunc),
	}
}

// RegisterBuilder installs the real-adapter constructor for p. Platforms
// without a registered builder fall back to the mock when real posting is
// enabled.
func (f *Factory) RegisterBuilder(p platform.Platform, fn BuilderFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.builders[p] = fn
}

// CreateAdapter returns the cached adapter for (p, credentials.UserID)
// when its credentials still validate, evicting and rebuilding otherwise.
// The cache lookup, liveness check and insert happen under one lock so
// two callers never race to construct duplicate adapters for the same
// key.
func (f *Factory) CreateAdapter(ctx context.Context, p platform.Platform, creds transfer.AuthCredentials) (Adapter, error) {
	key := cacheKey{platform: p, userID: creds.UserID}
	if key.userID == "" {
		key.userID = "default"
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if cached, ok := f.cache[key]; ok {
		if err := cached.ValidateCredentials(ctx); err == nil {
			return cached, nil
		}
		slog.Info("cached adapter failed credential validation, rebuilding",
			"platform", p, "user_id", key.userID)
		delete(f.cache, key)
	}

	a, err := f.build(p, creds)
	if err != nil {
		return nil, err
	}

	f.cache[key] = a
	return a, nil
}

func (f *Factory) build(p platform.Platform, creds transfer.AuthCredentials) (Adapter, error) {
	if !f.cfg.EnableRealPosting {
		return f.newMock(p, creds), nil
	}

	builder, ok := f.builders[p]
	if !ok {
		slog.Warn("real posting enabled but no real adapter is available, falling back to mock",
			"platform", p)
		return f.newMock(p, creds), nil
	}

	a, err := builder(creds, f.cfg)
	if errors.Is(err, ErrNotImplemented) {
		slog.Warn("real adapter not yet implemented, falling back to mock",
			"platform", p)
		return f.newMock(p, creds), nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (f *Factory) newMock(p platform.Platform, creds transfer.AuthCredentials) Adapter {
	return NewMockAdapter(p, creds, MockOptions{
		ErrorRate: f.cfg.MockErrorRate,
		Clock:     f.clock,
	})
}

// UpdateConfig swaps the adapter configuration and invalidates the entire
// cache, since cached adapters were built under the old settings.
func (f *Factory) UpdateConfig(cfg config.Adapter) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cfg = cfg
	f.cache = make(map[cacheKey]Adapter)
}

// CacheSize reports the number of live cache entries.
func (f *Factory) CacheSize() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cache)
}
