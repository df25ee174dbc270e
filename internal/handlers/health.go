package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"gluebot/internal/knowledge"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	store *knowledge.Store
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(store *knowledge.Store) *HealthHandler {
	return &HealthHandler{store: store}
}

// Handle responds with server health status
func (h *HealthHandler) Handle(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":            "healthy",
		"knowledge_entries": h.store.Count(),
		"timestamp":         time.Now().Format(time.RFC3339),
	})
}

// HandleRoot responds to the bare liveness probe used by the chat UI.
func (h *HealthHandler) HandleRoot(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
