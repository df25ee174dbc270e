package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"gluebot/internal/models"
	"gluebot/internal/services"
)

// ChatHandler handles chat requests
type ChatHandler struct {
	router *services.Router
}

// NewChatHandler creates a new chat handler
func NewChatHandler(router *services.Router) *ChatHandler {
	return &ChatHandler{router: router}
}

// Handle routes one chat message and returns {answer, source}. Routing
// itself never fails; the only error surface here is a malformed body.
func (h *ChatHandler) Handle(c *fiber.Ctx) error {
	var req models.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body: expected {\"message\": \"...\"}",
		})
	}

	resp := h.router.Route(c.UserContext(), strings.TrimSpace(req.Message))
	return c.JSON(resp)
}
