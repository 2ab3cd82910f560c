package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"
	config "github.com/shintaro-0909/omnipost/configs"
	"github.com/shintaro-0909/omnipost/internal/credentials"
	"github.com/shintaro-0909/omnipost/internal/models"
	"github.com/shintaro-0909/omnipost/internal/platform"
	"github.com/shintaro-0909/omnipost/internal/publisher"
	"github.com/shintaro-0909/omnipost/internal/repository"
	"github.com/shintaro-0909/omnipost/internal/transfer"
	"github.com/shintaro-0909/omnipost/pkg/utils"
)

// OAuthConnector is the slice of the OAuth refresher the connect flow
// needs: a consent URL to redirect to and the code exchange on callback.
type OAuthConnector interface {
	AuthURL(p platform.Platform, state string, scopes ...string) string
	Exchange(ctx context.Context, p platform.Platform, code string) (*transfer.AuthCredentials, error)
}

type PlatformHandler struct {
	sr        repository.SocialAccountRepository
	store     credentials.Store
	pub       *publisher.Publisher
	refresher OAuthConnector
	factory   publisher.AdapterFactory
	cfg       config.Config
}

func NewPlatformHandler(
	sr repository.SocialAccountRepository,
	store credentials.Store,
	pub *publisher.Publisher,
	refresher OAuthConnector,
	factory publisher.AdapterFactory,
	cfg config.Config) *PlatformHandler {
	return &PlatformHandler{
		sr:        sr,
		store:     store,
		pub:       pub,
		refresher: refresher,
		factory:   factory,
		cfg:       cfg,
	}
}

// GetPlatformLimits exposes the capability registry so the frontend can
// validate before submitting.
func (h *PlatformHandler) GetPlatformLimits(c *fiber.Ctx) error {
	p, ok := platform.Parse(c.Params("platform"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown platform",
		})
	}

	return c.JSON(fiber.Map{
		"limits":   platform.LimitsFor(p),
		"features": platform.FeaturesFor(p),
	})
}

// AddSocialAccount redirects the account owner to the platform's OAuth
// consent screen.
func (h *PlatformHandler) AddSocialAccount(c *fiber.Ctx) error {
	p, ok := platform.Parse(c.Params("platform"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown platform",
		})
	}

	authURL := h.refresher.AuthURL(p, c.Query("state"))
	if authURL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Platform does not support OAuth connect",
		})
	}
	return c.Redirect(authURL)
}

// AuthCallback completes the connect flow: the state parameter carries
// the user's session token, the code is exchanged for credentials, the
// account identity is fetched and the account is persisted.
func (h *PlatformHandler) AuthCallback(c *fiber.Ctx) error {
	p, ok := platform.Parse(c.Params("platform"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown platform",
		})
	}

	claims, err := utils.ValidateToken(h.cfg.SecretKey, c.Query("state"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to validate user",
		})
	}

	userID, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to validate user",
		})
	}

	creds, err := h.refresher.Exchange(c.Context(), p, c.Query("code"))
	if err != nil {
		slog.Info("code exchange failed", "platform", p, "error", err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to connect account",
		})
	}

	a, err := h.factory.CreateAdapter(c.Context(), p, *creds)
	if err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to connect account",
		})
	}

	info, err := a.AccountInfo(c.Context())
	if err != nil {
		slog.Info("account info fetch failed", "platform", p, "error", err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to connect account",
		})
	}

	id, err := h.sr.Create(c.Context(), nil, &models.SocialAccount{
		UserID:          userID,
		Platform:        p.String(),
		AccountID:       info.ID,
		AccountName:     info.DisplayName,
		AccountUsername: info.Username,
		ProfilePicture:  info.ProfilePicture,
		TokenExpiresAt:  creds.ExpiresAt,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error saving account",
		})
	}

	// Tokens go through the credential store so they are encrypted at
	// rest like every other write.
	if err := h.store.Put(c.Context(), id, *creds); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error saving account",
		})
	}

	redirectURL := fmt.Sprintf("%s/dashboard/accounts", h.cfg.FrontendURL)
	return c.Redirect(redirectURL, fiber.StatusTemporaryRedirect)
}

func (h *PlatformHandler) ListSocialAccounts(c *fiber.Ctx) error {
	userID := GetUserID(c)

	accounts, err := h.sr.ListByUserID(c.Context(), userID)
	if err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error getting social accounts",
		})
	}

	return c.JSON(fiber.Map{"accounts": accounts})
}

// ValidateAccounts runs a pure credential validation sweep over the
// user's connected accounts.
func (h *PlatformHandler) ValidateAccounts(c *fiber.Ctx) error {
	userID := GetUserID(c)

	accounts, err := h.sr.ListByUserID(c.Context(), userID)
	if err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error getting social accounts",
		})
	}

	var entries []publisher.PlatformCredentials
	for _, acc := range accounts {
		creds, err := h.store.Get(c.Context(), acc.ID)
		if err != nil {
			slog.Info("skipping account with unreadable credentials",
				"account_id", acc.ID, "error", err.Error())
			continue
		}
		entries = append(entries, publisher.PlatformCredentials{
			Platform:    platform.Platform(acc.Platform),
			Credentials: *creds,
			Active:      acc.AccountStatus == models.AccountStatusActive,
		})
	}

	statuses := h.pub.ValidateAllCredentials(c.Context(), entries)
	return c.JSON(fiber.Map{"credentials": statuses})
}

type removeAccountRequest struct {
	AccountID int64 `json:"account_id"`
}

func (h *PlatformHandler) DeleteSocialAccount(c *fiber.Ctx) error {
	var req removeAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	if err := h.sr.Remove(c.Context(), req.AccountID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error removing account",
		})
	}

	return c.JSON(fiber.Map{"status": "removed"})
}
