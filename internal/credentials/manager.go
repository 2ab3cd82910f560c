package credentials

import (
	"context"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/shintaro-0909/omnipost/internal/adapter"
	"github.com/shintaro-0909/omnipost/internal/platform"
	"github.com/shintaro-0909/omnipost/internal/transfer"
)

// Status classifies an account's credentials by time to expiry.
type Status string

const (
	StatusHealthy      Status = "healthy"
	StatusExpiringSoon Status = "expiring_soon"
	StatusRefreshDue   Status = "refresh_due"
	StatusExpired      Status = "expired"
)

const (
	// RefreshWindow is how close to expiry a token must be before a
	// refresh is attempted.
	RefreshWindow = 3 * 24 * time.Hour

	// WarningWindow is how close to expiry a token must be before the
	// account owner is warned.
	WarningWindow = 7 * 24 * time.Hour
)

var ErrUnknownExpiry = errors.New("credentials have no recorded expiry")

// ClassifyExpiry assigns a status from now and the token expiry. Both
// window boundaries are inclusive on the earlier (more urgent) state:
// exactly now+3d classifies as refresh-due, exactly now+7d as
// expiring-soon.
func ClassifyExpiry(now, expiresAt time.Time) Status {
	switch {
	case !expiresAt.After(now):
		return StatusExpired
	case !expiresAt.After(now.Add(RefreshWindow)):
		return StatusRefreshDue
	case !expiresAt.After(now.Add(WarningWindow)):
		return StatusExpiringSoon
	default:
		return StatusHealthy
	}
}

// Store is the persistence collaborator for account credentials. It is
// owned by the surrounding application; this core only reads and writes
// through it.
type Store interface {
	Get(ctx context.Context, accountID int64) (*transfer.AuthCredentials, error)
	Put(ctx context.Context, accountID int64, creds transfer.AuthCredentials) error
}

// Manager validates and refreshes account credentials without blocking
// its callers on anything but the refresh call itself.
type Manager struct {
	store     Store
	refresher adapter.TokenRefresher
	clock     clockwork.Clock
}

func NewManager(store Store, refresher adapter.TokenRefresher, clock clockwork.Clock) *Manager {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Manager{store: store, refresher: refresher, clock: clock}
}

// Classify returns the expiry status of creds against the manager's
// clock. Credentials without a recorded expiry cannot be classified.
func (m *Manager) Classify(creds transfer.AuthCredentials) (Status, error) {
	if !creds.HasKnownExpiry() {
		return "", ErrUnknownExpiry
	}
	return ClassifyExpiry(m.clock.Now(), creds.ExpiresAt), nil
}

// Refresh exchanges the refresh token for new credentials and persists
// them. On failure nothing is persisted and the caller's existing
// credentials remain valid as far as this core is concerned.
func (m *Manager) Refresh(ctx context.Context, p platform.Platform, accountID int64, creds transfer.AuthCredentials) (*transfer.AuthCredentials, error) {
	refreshed, err := m.refresher.Refresh(ctx, p, creds)
	if err != nil {
		return nil, err
	}

	if err := m.store.Put(ctx, accountID, *refreshed); err != nil {
		return nil, err
	}

	return refreshed, nil
}
