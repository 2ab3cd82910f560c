package credentials

import (
	"context"
	"errors"
	"fmt"

	config "github.com/shintaro-0909/omnipost/configs"
	"github.com/shintaro-0909/omnipost/internal/platform"
	"github.com/shintaro-0909/omnipost/internal/transfer"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
	"golang.org/x/oauth2/linkedin"
)

const (
	INSTAGRAM_AUTH_URL  = "https://www.instagram.com/oauth/authorize"
	INSTAGRAM_TOKEN_URL = "https://api.instagram.com/oauth/access_token"
	TIKTOK_AUTH_URL     = "https://www.tiktok.com/v2/auth/authorize"
	TIKTOK_TOKEN_URL    = "https://open.tiktokapis.com/v2/oauth/token/"
	X_AUTH_URL          = "https://twitter.com/i/oauth2/authorize"
	X_TOKEN_URL         = "https://api.twitter.com/2/oauth2/token"
)

// OAuthRefresher refreshes access tokens through each platform's OAuth
// token endpoint. Publishing wire protocols stay outside this core, but
// credential refresh is the credential manager's own job.
type OAuthRefresher struct {
	configs map[platform.Platform]*oauth2.Config
}

func NewOAuthRefresher(cfg config.Config) *OAuthRefresher {
	return &OAuthRefresher{
		configs: map[platform.Platform]*oauth2.Config{
			platform.Instagram: {
				ClientID:     cfg.Instagram.ClientID,
				ClientSecret: cfg.Instagram.ClientSecret,
				RedirectURL:  cfg.Instagram.RedirectURI,
				Endpoint:     oauth2.Endpoint{AuthURL: INSTAGRAM_AUTH_URL, TokenURL: INSTAGRAM_TOKEN_URL},
			},
			platform.X: {
				ClientID:     cfg.X.ClientID,
				ClientSecret: cfg.X.ClientSecret,
				RedirectURL:  cfg.X.RedirectURI,
				Endpoint:     oauth2.Endpoint{AuthURL: X_AUTH_URL, TokenURL: X_TOKEN_URL},
			},
			platform.Facebook: {
				ClientID:     cfg.Facebook.ClientID,
				ClientSecret: cfg.Facebook.ClientSecret,
				RedirectURL:  cfg.Facebook.RedirectURI,
				Endpoint:     facebook.Endpoint,
			},
			platform.TikTok: {
				ClientID:     cfg.TikTok.ClientID,
				ClientSecret: cfg.TikTok.ClientSecret,
				RedirectURL:  cfg.TikTok.RedirectURI,
				Endpoint:     oauth2.Endpoint{AuthURL: TIKTOK_AUTH_URL, TokenURL: TIKTOK_TOKEN_URL},
			},
			platform.LinkedIn: {
				ClientID:     cfg.LinkedIn.ClientID,
				ClientSecret: cfg.LinkedIn.ClientSecret,
				RedirectURL:  cfg.LinkedIn.RedirectURI,
				Endpoint:     linkedin.Endpoint,
			},
		},
	}
}

// AuthURL builds the authorization URL callers redirect account owners to
// when connecting a platform.
func (r *OAuthRefresher) AuthURL(p platform.Platform, state string, scopes ...string) string {
	cfg, ok := r.configs[p]
	if !ok {
		return ""
	}
	withScopes := *cfg
	withScopes.Scopes = scopes
	return withScopes.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades an authorization code from the consent callback for an
// initial token pair.
func (r *OAuthRefresher) Exchange(ctx context.Context, p platform.Platform, code string) (*transfer.AuthCredentials, error) {
	cfg, ok := r.configs[p]
	if !ok {
		return nil, fmt.Errorf("oauth connect is not supported for platform %s", p)
	}

	if code == "" {
		return nil, transfer.NewAuthError("authorization code is empty")
	}

	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return nil, transfer.ClassifyStatus(retrieveErr.Response.StatusCode, retrieveErr.Error(), 0)
		}
		return nil, transfer.NewNetworkError(err.Error())
	}

	return &transfer.AuthCredentials{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry,
	}, nil
}

// Refresh exchanges the refresh token for a new token pair. The input
// credentials are never mutated; failure leaves the caller holding its
// previous, possibly still valid, credentials.
func (r *OAuthRefresher) Refresh(ctx context.Context, p platform.Platform, creds transfer.AuthCredentials) (*transfer.AuthCredentials, error) {
	cfg, ok := r.configs[p]
	if !ok {
		return nil, fmt.Errorf("token refresh is not supported for platform %s", p)
	}

	if creds.RefreshToken == "" {
		return nil, transfer.NewAuthError("no refresh token available")
	}

	ts := cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: creds.RefreshToken})
	token, err := ts.Token()
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return nil, transfer.ClassifyStatus(retrieveErr.Response.StatusCode, retrieveErr.Error(), 0)
		}
		return nil, transfer.NewNetworkError(err.Error())
	}

	refreshed := creds
	refreshed.AccessToken = token.AccessToken
	refreshed.ExpiresAt = token.Expiry
	if token.RefreshToken != "" {
		refreshed.RefreshToken = token.RefreshToken
	}

	return &refreshed, nil
}
