package handlers

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/shintaro-0909/omnipost/internal/content"
	"github.com/shintaro-0909/omnipost/internal/platform"
	"github.com/shintaro-0909/omnipost/internal/queue"
	"github.com/shintaro-0909/omnipost/internal/transfer"
)

type PublishHandler struct {
	q           *queue.Queue
	AsynqClient *asynq.Client
}

func NewPublishHandler(q *queue.Queue, asynqClient *asynq.Client) *PublishHandler {
	return &PublishHandler{q: q, AsynqClient: asynqClient}
}

type publishRequest struct {
	AccountIDs []int64               `json:"account_ids"`
	Content    transfer.PostContent  `json:"content"`
	Options    *transfer.PostOptions `json:"options,omitempty"`
}

// PublishPost publishes immediately when no schedule time is set, and
// enqueues a delayed task otherwise.
func (h *PublishHandler) PublishPost(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req publishRequest
	if err := c.BodyParser(&req); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	if len(req.AccountIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No accounts selected",
		})
	}

	payload := queue.PublishPostPayload{
		UserID:     userID,
		AccountIDs: req.AccountIDs,
		Content:    req.Content,
		Options:    req.Options,
	}

	if req.Options != nil && req.Options.ScheduleAt.After(time.Now()) {
		delay := time.Until(req.Options.ScheduleAt)
		if err := queue.EnqueuePost(h.AsynqClient, payload, delay); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Error scheduling post",
			})
		}
		return c.JSON(fiber.Map{
			"scheduled_for": req.Options.ScheduleAt,
		})
	}

	if err := h.q.PublishPost(c.Context(), payload); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"status": "published"})
}

type validateRequest struct {
	Platform string               `json:"platform"`
	Content  transfer.PostContent `json:"content"`
}

// ValidateContent checks a post against one platform's limits and returns
// every violated rule so the frontend can show a complete list.
func (h *PublishHandler) ValidateContent(c *fiber.Ctx) error {
	var req validateRequest
	if err := c.BodyParser(&req); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	p, ok := platform.Parse(req.Platform)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown platform",
		})
	}

	result := content.Validate(p, req.Content)
	optimized := content.Optimize(p, req.Content)

	return c.JSON(fiber.Map{
		"validation": result,
		"optimized":  optimized,
	})
}
