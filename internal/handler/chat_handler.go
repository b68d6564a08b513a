package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"nauassist/internal/models"
	"nauassist/internal/service"
)

// ChatHandler wires HTTP → Assistant.
type ChatHandler struct {
	assistant *service.Assistant
}

func NewChatHandler(assistant *service.Assistant) *ChatHandler {
	return &ChatHandler{assistant: assistant}
}

// Register mounts the /chat endpoint on the supplied router group.
func (h *ChatHandler) Register(r fiber.Router) {
	r.Post("/chat", h.chat)
}

// chat handles POST /chat.
func (h *ChatHandler) chat(c *fiber.Ctx) error {
	var req models.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		return fiber.NewError(fiber.StatusBadRequest, "message is required")
	}

	return c.JSON(h.assistant.Ask(c.UserContext(), req))
}
