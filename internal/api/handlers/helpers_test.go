package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUserID(t *testing.T) {
	var got int64

	app := fiber.New()
	app.Get("/me", func(c *fiber.Ctx) error {
		got = GetUserID(c)
		return c.SendStatus(fiber.StatusOK)
	})

	// No middleware set the local; the handler still answers.
	resp, err := app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Zero(t, got)
}

func TestGetUserIDFromLocal(t *testing.T) {
	var got int64

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", "7")
		return c.Next()
	})
	app.Get("/me", func(c *fiber.Ctx) error {
		got = GetUserID(c)
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(7), got)
}

func TestGetUserIDWrongLocalType(t *testing.T) {
	var got int64

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", int64(7))
		return c.Next()
	})
	app.Get("/me", func(c *fiber.Ctx) error {
		got = GetUserID(c)
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Zero(t, got)
}
