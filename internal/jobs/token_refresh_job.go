package job

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/shintaro-0909/omnipost/internal/credentials"
	"github.com/shintaro-0909/omnipost/internal/models"
	"github.com/shintaro-0909/omnipost/internal/notify"
	"github.com/shintaro-0909/omnipost/internal/platform"
	"github.com/shintaro-0909/omnipost/internal/repository"
)

const sweepConcurrencyLimit = 10

// SweepStats are the aggregate counters of one refresh sweep.
type SweepStats struct {
	Processed int
	Refreshed int
	Warned    int
	Expired   int
	Failed    int
}

// TokenRefreshJob walks every social account, classifies it by time to
// token expiry and refreshes or notifies accordingly. Each account is
// processed independently: one account's failure never aborts the sweep
// for the others.
type TokenRefreshJob struct {
	sr       repository.SocialAccountRepository
	store    credentials.Store
	manager  *credentials.Manager
	notifier notify.Sink
	clock    clockwork.Clock
}

func NewTokenRefreshJob(
	sr repository.SocialAccountRepository,
	store credentials.Store,
	manager *credentials.Manager,
	notifier notify.Sink,
	clock clockwork.Clock) *TokenRefreshJob {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &TokenRefreshJob{
		sr:       sr,
		store:    store,
		manager:  manager,
		notifier: notifier,
		clock:    clock,
	}
}

// RefreshTokens is the cron entry point.
func (j *TokenRefreshJob) RefreshTokens() {
	stats := j.Run(context.Background())
	slog.Info("credential refresh sweep finished",
		"processed", stats.Processed,
		"refreshed", stats.Refreshed,
		"warned", stats.Warned,
		"expired", stats.Expired,
		"failed", stats.Failed,
	)
}

// Run executes one sweep and returns its counters. Every account is
// visited exactly once; processing order is undefined.
func (j *TokenRefreshJob) Run(ctx context.Context) SweepStats {
	var stats SweepStats

	accounts, err := j.sr.ListAll(ctx)
	if err != nil {
		slog.Info(err.Error())
		return stats
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, sweepConcurrencyLimit)

	for _, acc := range accounts {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(acc *models.SocialAccount) {
			defer wg.Done()
			defer func() { <-semaphore }()

			outcome := j.processAccount(ctx, acc)

			mu.Lock()
			stats.Processed++
			switch outcome {
			case credentials.StatusExpired:
				stats.Expired++
			case credentials.StatusRefreshDue:
				stats.Refreshed++
			case credentials.StatusExpiringSoon:
				stats.Warned++
			case credentials.StatusHealthy:
			default:
				stats.Failed++
			}
			mu.Unlock()
		}(acc)
	}

	wg.Wait()
	return stats
}

// processAccount handles one account and returns the status it resolved
// to, or empty when the account failed to process.
func (j *TokenRefreshJob) processAccount(ctx context.Context, acc *models.SocialAccount) credentials.Status {
	if acc.TokenExpiresAt.IsZero() {
		slog.Info("account has no recorded token expiry, skipping",
			"account_id", acc.ID, "platform", acc.Platform)
		return ""
	}

	status := credentials.ClassifyExpiry(j.clock.Now(), acc.TokenExpiresAt)

	switch status {
	case credentials.StatusExpired:
		// A dead token cannot refresh itself; mark the account and tell
		// the owner to re-authenticate.
		if err := j.sr.UpdateStatus(ctx, acc.ID, models.AccountStatusExpired); err != nil {
			slog.Info("failed to mark account expired",
				"account_id", acc.ID, "error", err.Error())
			return ""
		}
		j.send(ctx, acc, notify.KindExpired)

	case credentials.StatusRefreshDue:
		if err := j.refreshAccount(ctx, acc); err != nil {
			// The account keeps its previous, still technically valid
			// state rather than being marked expired prematurely.
			slog.Info("token refresh failed",
				"account_id", acc.ID, "platform", acc.Platform, "error", err.Error())
			j.send(ctx, acc, notify.KindRefreshFailed)
			return ""
		}
		slog.Info("token refreshed",
			"account_id", acc.ID, "platform", acc.Platform)

	case credentials.StatusExpiringSoon:
		j.send(ctx, acc, notify.KindExpiringSoon)
	}

	return status
}

func (j *TokenRefreshJob) refreshAccount(ctx context.Context, acc *models.SocialAccount) error {
	creds, err := j.store.Get(ctx, acc.ID)
	if err != nil {
		return err
	}

	_, err = j.manager.Refresh(ctx, platform.Platform(acc.Platform), acc.ID, *creds)
	return err
}

func (j *TokenRefreshJob) send(ctx context.Context, acc *models.SocialAccount, kind notify.Kind) {
	payload := map[string]any{
		"platform":   acc.Platform,
		"expires_at": acc.TokenExpiresAt,
	}
	if err := j.notifier.Send(ctx, acc.ID, kind, payload); err != nil {
		// Notification delivery is fire-and-forget; a sink failure never
		// fails the sweep.
		slog.Info("notification delivery failed",
			"account_id", acc.ID, "kind", string(kind), "error", err.Error())
	}
}
