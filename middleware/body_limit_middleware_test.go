package middleware

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestWithBodyLimit(t *testing.T) {
	newApp := func() *fiber.App {
		app := fiber.New()
		app.Use(WithBodyLimit(64))
		app.Post("/api/v1/public/interview/:token/consent", func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusOK)
		})
		app.Get("/api/v1/public/interview/:token/ws", func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusOK)
		})
		return app
	}

	t.Run(`small body passes check`, func(t *testing.T) {
		app := newApp()
		req := httptest.NewRequest(fiber.MethodPost, "/api/v1/public/interview/tkn/consent", strings.NewReader(`{"accepted":true}`))
		resp, err := app.Test(req)
		require.Nil(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run(`oversized body rejected check`, func(t *testing.T) {
		app := newApp()
		req := httptest.NewRequest(fiber.MethodPost, "/api/v1/public/interview/tkn/consent", strings.NewReader(strings.Repeat("a", 200)))
		resp, err := app.Test(req)
		require.Nil(t, err)
		require.Equal(t, fiber.StatusRequestEntityTooLarge, resp.StatusCode)
	})

	t.Run(`websocket path exempt check`, func(t *testing.T) {
		app := newApp()
		req := httptest.NewRequest(fiber.MethodGet, "/api/v1/public/interview/tkn/ws", strings.NewReader(strings.Repeat("a", 200)))
		resp, err := app.Test(req)
		require.Nil(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	})
}
