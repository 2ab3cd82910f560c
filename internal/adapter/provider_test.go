package adapter

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/shintaro-0909/omnipost/internal/platform"
	"github.com/shintaro-0909/omnipost/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGateway records calls and returns canned results so providerAdapter
// tests never touch a real provider.
type fakeGateway struct {
	mu           sync.Mutex
	publishCalls int
	deleteCalls  int
	lastCreds    transfer.AuthCredentials

	publishResult *transfer.PostResult
	publishErr    error
	deleteErr     error
	checkErr      error
}

func (g *fakeGateway) Publish(ctx context.Context, post transfer.PostContent, opts *transfer.PostOptions) (*transfer.PostResult, error) {
	g.mu.Lock()
	g.publishCalls++
	g.mu.Unlock()
	if g.publishErr != nil {
		return nil, g.publishErr
	}
	if g.publishResult != nil {
		return g.publishResult, nil
	}
	return &transfer.PostResult{Success: true, PostID: "real-1"}, nil
}

func (g *fakeGateway) Delete(ctx context.Context, postID string) error {
	g.mu.Lock()
	g.deleteCalls++
	g.mu.Unlock()
	return g.deleteErr
}

func (g *fakeGateway) AccountInfo(ctx context.Context) (*transfer.AccountInfo, error) {
	return &transfer.AccountInfo{ID: "acct-1", Username: "creator"}, nil
}

func (g *fakeGateway) CheckCredentials(ctx context.Context, creds transfer.AuthCredentials) error {
	g.mu.Lock()
	g.lastCreds = creds
	g.mu.Unlock()
	return g.checkErr
}

func (g *fakeGateway) checkedCreds() transfer.AuthCredentials {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastCreds
}

func (g *fakeGateway) published() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.publishCalls
}

type fakeRefresher struct {
	creds *transfer.AuthCredentials
	err   error
}

func (r *fakeRefresher) Refresh(ctx context.Context, p platform.Platform, creds transfer.AuthCredentials) (*transfer.AuthCredentials, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.creds, nil
}

func newTestProvider(gw Gateway, refresher TokenRefresher) Adapter {
	return NewProviderAdapter(platform.X, transfer.AuthCredentials{AccessToken: "old"}, gw, refresher, time.Second, nil)
}

func TestProviderPublishPassesThrough(t *testing.T) {
	gw := &fakeGateway{}
	a := newTestProvider(gw, nil)

	res := a.PublishPost(context.Background(), transfer.PostContent{Text: "hi"}, nil)
	require.True(t, res.Success)
	assert.Equal(t, "real-1", res.PostID)
	assert.Equal(t, 1, gw.publishCalls)
}

func TestProviderInvalidContentNeverReachesGateway(t *testing.T) {
	gw := &fakeGateway{}
	a := newTestProvider(gw, nil)

	res := a.PublishPost(context.Background(), transfer.PostContent{}, nil)
	require.False(t, res.Success)
	assert.Equal(t, string(transfer.ErrorTypeContent), res.PlatformResponse["error_type"])
	assert.Zero(t, gw.publishCalls)
}

func TestProviderClassifiesGatewayErrors(t *testing.T) {
	gw := &fakeGateway{publishErr: context.DeadlineExceeded}
	a := newTestProvider(gw, nil)

	res := a.PublishPost(context.Background(), transfer.PostContent{Text: "hi"}, nil)
	require.False(t, res.Success)
	assert.Equal(t, string(transfer.ErrorTypeNetwork), res.PlatformResponse["error_type"])
	assert.Equal(t, true, res.PlatformResponse["retryable"])
}

func TestProviderSchedulePost(t *testing.T) {
	clock := clockwork.NewFakeClock()
	gw := &fakeGateway{}
	a := NewProviderAdapter(platform.X, transfer.AuthCredentials{}, gw, nil, time.Second, clock)

	future := clock.Now().Add(time.Hour)
	res := a.SchedulePost(context.Background(), transfer.PostContent{Text: "hi"}, future, nil)
	require.True(t, res.Success)
	assert.Equal(t, future, res.ScheduledFor)

	// A past schedule time fails before the gateway is consulted.
	res = a.SchedulePost(context.Background(), transfer.PostContent{Text: "hi"}, clock.Now().Add(-time.Minute), nil)
	require.False(t, res.Success)
	assert.Equal(t, 1, gw.publishCalls)
}

func TestProviderDeleteTreatsMissingPostAsDeleted(t *testing.T) {
	gw := &fakeGateway{deleteErr: ErrPostNotFound}
	a := newTestProvider(gw, nil)

	assert.NoError(t, a.DeletePost(context.Background(), "already-gone"))
}

func TestProviderDeleteClassifiesOtherErrors(t *testing.T) {
	gw := &fakeGateway{deleteErr: transfer.NewPlatformFailure("backend down")}
	a := newTestProvider(gw, nil)

	err := a.DeletePost(context.Background(), "p1")
	require.Error(t, err)

	perr := a.HandlePlatformError(err)
	assert.Equal(t, transfer.ErrorTypePlatform, perr.Type)
}

func TestProviderValidateCredentials(t *testing.T) {
	gw := &fakeGateway{}
	a := newTestProvider(gw, nil)

	require.NoError(t, a.ValidateCredentials(context.Background()))
	assert.Equal(t, "old", gw.lastCreds.AccessToken)

	gw.checkErr = transfer.NewAuthError("revoked")
	err := a.ValidateCredentials(context.Background())
	require.Error(t, err)
	assert.Equal(t, transfer.ErrorTypeAuth, a.HandlePlatformError(err).Type)
}

func TestProviderRefreshSwapsCredentials(t *testing.T) {
	gw := &fakeGateway{}
	refresher := &fakeRefresher{creds: &transfer.AuthCredentials{AccessToken: "new"}}
	a := newTestProvider(gw, refresher)

	creds, err := a.RefreshCredentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "new", creds.AccessToken)

	// Subsequent calls run under the refreshed credentials.
	require.NoError(t, a.ValidateCredentials(context.Background()))
	assert.Equal(t, "new", gw.lastCreds.AccessToken)
}

func TestProviderRefreshFailureKeepsOldCredentials(t *testing.T) {
	gw := &fakeGateway{}
	refresher := &fakeRefresher{err: transfer.NewAuthError("refresh token rejected")}
	a := newTestProvider(gw, refresher)

	_, err := a.RefreshCredentials(context.Background())
	require.Error(t, err)

	require.NoError(t, a.ValidateCredentials(context.Background()))
	assert.Equal(t, "old", gw.lastCreds.AccessToken)
}

func TestProviderRefreshWithoutRefresher(t *testing.T) {
	a := newTestProvider(&fakeGateway{}, nil)

	_, err := a.RefreshCredentials(context.Background())
	require.Error(t, err)
	assert.Equal(t, transfer.ErrorTypeAuth, a.HandlePlatformError(err).Type)
}

func TestProviderConcurrentRefreshAndValidate(t *testing.T) {
	gw := &fakeGateway{}
	refresher := &fakeRefresher{creds: &transfer.AuthCredentials{AccessToken: "new"}}
	a := newTestProvider(gw, refresher)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := a.RefreshCredentials(context.Background())
			assert.NoError(t, err)
			assert.NoError(t, a.ValidateCredentials(context.Background()))
		}()
	}
	wg.Wait()

	assert.Equal(t, "new", gw.checkedCreds().AccessToken)
}
