package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const pingTimeout = 2 * time.Second

// Pinger is the store check behind /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves the keep-alive routes a hosting platform polls.
type Handler struct {
	store Pinger
	log   *zap.Logger
}

func New(store Pinger, log *zap.Logger) *Handler {
	return &Handler{store: store, log: log}
}

// Register mounts the routes on app.
func (h *Handler) Register(app *fiber.App) {
	app.Get("/", h.Root)
	app.Get("/health", h.Health)
}

func (h *Handler) Root(c *fiber.Ctx) error {
	return c.SendString("Bot is running")
}

func (h *Handler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), pingTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.log.Warn("health check: store unreachable", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unavailable",
		})
	}
	return c.JSON(fiber.Map{
		"status": "ok",
	})
}
