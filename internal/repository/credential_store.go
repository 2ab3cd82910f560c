package repository

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shintaro-0909/omnipost/internal/models"
	"github.com/shintaro-0909/omnipost/internal/transfer"
	"github.com/shintaro-0909/omnipost/pkg/utils"
)

var ErrAccountNotFound = errors.New("social account not found")

// CredentialStore adapts the social account repository to the credential
// manager's Store contract. Tokens are encrypted at rest; this is the one
// place encryption and decryption happen.
type CredentialStore struct {
	sr        SocialAccountRepository
	secretKey []byte
}

func NewCredentialStore(sr SocialAccountRepository, secretKey string) *CredentialStore {
	return &CredentialStore{sr: sr, secretKey: []byte(secretKey)}
}

func (s *CredentialStore) Get(ctx context.Context, accountID int64) (*transfer.AuthCredentials, error) {
	acc, err := s.sr.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, ErrAccountNotFound
	}

	accessToken, err := utils.Decrypt(acc.AccessToken, s.secretKey)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	creds := &transfer.AuthCredentials{
		AccessToken: accessToken,
		ExpiresAt:   acc.TokenExpiresAt,
		UserID:      acc.AccountID,
	}

	if acc.RefreshToken != "" {
		refreshToken, err := utils.Decrypt(acc.RefreshToken, s.secretKey)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		creds.RefreshToken = refreshToken
	}

	return creds, nil
}

func (s *CredentialStore) Put(ctx context.Context, accountID int64, creds transfer.AuthCredentials) error {
	encryptedAccessToken, err := utils.Encrypt([]byte(creds.AccessToken), s.secretKey)
	if err != nil {
		return err
	}

	var encryptedRefreshToken string
	if creds.RefreshToken != "" {
		encryptedRefreshToken, err = utils.Encrypt([]byte(creds.RefreshToken), s.secretKey)
		if err != nil {
			return err
		}
	}

	return s.sr.SetToken(ctx, accountID, &models.SocialAccount{
		AccessToken:    encryptedAccessToken,
		RefreshToken:   encryptedRefreshToken,
		TokenExpiresAt: creds.ExpiresAt,
	})
}
