package handlers

import (
	"context"
	"database/sql"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	config "github.com/shintaro-0909/omnipost/configs"
	"github.com/shintaro-0909/omnipost/internal/adapter"
	"github.com/shintaro-0909/omnipost/internal/models"
	"github.com/shintaro-0909/omnipost/internal/platform"
	"github.com/shintaro-0909/omnipost/internal/publisher"
	"github.com/shintaro-0909/omnipost/internal/transfer"
	"github.com/shintaro-0909/omnipost/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAccountRepo struct {
	created []*models.SocialAccount
}

func (r *fakeAccountRepo) Create(ctx context.Context, tx *sql.Tx, sa *models.SocialAccount) (int64, error) {
	r.created = append(r.created, sa)
	return int64(len(r.created)), nil
}

func (r *fakeAccountRepo) GetByID(ctx context.Context, id int64) (*models.SocialAccount, error) {
	return nil, nil
}

func (r *fakeAccountRepo) ListAll(ctx context.Context) ([]*models.SocialAccount, error) {
	return nil, nil
}

func (r *fakeAccountRepo) ListByUserID(ctx context.Context, userID int64) ([]*models.SocialAccount, error) {
	return nil, nil
}

func (r *fakeAccountRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	return nil
}

func (r *fakeAccountRepo) SetToken(ctx context.Context, id int64, sa *models.SocialAccount) error {
	return nil
}

func (r *fakeAccountRepo) Remove(ctx context.Context, id int64) error { return nil }

type fakeCredStore struct {
	puts map[int64]transfer.AuthCredentials
}

func newFakeCredStore() *fakeCredStore {
	return &fakeCredStore{puts: make(map[int64]transfer.AuthCredentials)}
}

func (s *fakeCredStore) Get(ctx context.Context, accountID int64) (*transfer.AuthCredentials, error) {
	c, ok := s.puts[accountID]
	if !ok {
		return nil, errors.New("account not found")
	}
	return &c, nil
}

func (s *fakeCredStore) Put(ctx context.Context, accountID int64, creds transfer.AuthCredentials) error {
	s.puts[accountID] = creds
	return nil
}

type fakeConnector struct {
	creds *transfer.AuthCredentials
	err   error
}

func (c *fakeConnector) AuthURL(p platform.Platform, state string, scopes ...string) string {
	return "https://consent.example.com/authorize?state=" + state
}

func (c *fakeConnector) Exchange(ctx context.Context, p platform.Platform, code string) (*transfer.AuthCredentials, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.creds, nil
}

type fakeAdapterFactory struct{}

func (f *fakeAdapterFactory) CreateAdapter(ctx context.Context, p platform.Platform, creds transfer.AuthCredentials) (adapter.Adapter, error) {
	return adapter.NewMockAdapter(p, creds, adapter.MockOptions{Seed: 42, NoLatency: true}), nil
}

func newCallbackApp(repo *fakeAccountRepo, store *fakeCredStore, connector *fakeConnector) (*fiber.App, config.Config) {
	cfg := config.Config{SecretKey: "test-secret", FrontendURL: "http://localhost:5173"}
	factory := &fakeAdapterFactory{}
	h := NewPlatformHandler(repo, store, publisher.New(factory, 1), connector, factory, cfg)

	app := fiber.New()
	app.Get("/auth/:platform/callback", h.AuthCallback)
	return app, cfg
}

func TestAuthCallbackPersistsConnectedAccount(t *testing.T) {
	repo := &fakeAccountRepo{}
	store := newFakeCredStore()
	connector := &fakeConnector{creds: &transfer.AuthCredentials{
		AccessToken:  "tok",
		RefreshToken: "rtok",
		ExpiresAt:    time.Now().Add(45 * 24 * time.Hour),
	}}
	app, cfg := newCallbackApp(repo, store, connector)

	state, err := utils.GenerateToken(cfg.SecretKey, "7", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/auth/instagram/callback?code=abc&state="+state, nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTemporaryRedirect, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Location"), "/dashboard/accounts")

	require.Len(t, repo.created, 1)
	acc := repo.created[0]
	assert.Equal(t, int64(7), acc.UserID)
	assert.Equal(t, "instagram", acc.Platform)
	assert.NotEmpty(t, acc.AccountID)
	assert.NotEmpty(t, acc.AccountUsername)

	// Tokens land in the credential store keyed by the new account id.
	assert.Equal(t, "tok", store.puts[1].AccessToken)
	assert.Equal(t, "rtok", store.puts[1].RefreshToken)
}

func TestAuthCallbackRejectsInvalidState(t *testing.T) {
	repo := &fakeAccountRepo{}
	store := newFakeCredStore()
	app, _ := newCallbackApp(repo, store, &fakeConnector{})

	req := httptest.NewRequest("GET", "/auth/instagram/callback?code=abc&state=garbage", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, repo.created)
}

func TestAuthCallbackExchangeFailurePersistsNothing(t *testing.T) {
	repo := &fakeAccountRepo{}
	store := newFakeCredStore()
	connector := &fakeConnector{err: transfer.NewAuthError("authorization code expired")}
	app, cfg := newCallbackApp(repo, store, connector)

	state, err := utils.GenerateToken(cfg.SecretKey, "7", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/auth/x/callback?code=stale&state="+state, nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, repo.created)
	assert.Empty(t, store.puts)
}

func TestAuthCallbackUnknownPlatform(t *testing.T) {
	repo := &fakeAccountRepo{}
	app, _ := newCallbackApp(repo, newFakeCredStore(), &fakeConnector{})

	req := httptest.NewRequest("GET", "/auth/myspace/callback?code=abc", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, repo.created)
}
