package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"
)

type HealthHandler struct {
	db     *mongo.Client
	aiMode string // "vertex" or "stub"
}

func NewHealthHandler(db *mongo.Client, aiMode string) *HealthHandler {
	return &HealthHandler{db: db, aiMode: aiMode}
}

func (h *HealthHandler) Register(r fiber.Router) {
	r.Get("/health", h.health)
}

func (h *HealthHandler) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"db":     h.checkDB(),
		"ai":     h.aiMode,
	})
}

func (h *HealthHandler) checkDB() string {
	if h.db == nil {
		return "not_configured"
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := h.db.Ping(ctx, nil); err != nil {
		return "error"
	}
	return "connected"
}
