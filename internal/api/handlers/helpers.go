package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// GetUserID reads the authenticated user id set by the auth middleware.
// A missing or malformed local yields 0, never a panic.
func GetUserID(c *fiber.Ctx) int64 {
	raw, ok := c.Locals("user_id").(string)
	if !ok {
		return 0
	}
	userID, _ := strconv.Atoi(raw)
	return int64(userID)
}
