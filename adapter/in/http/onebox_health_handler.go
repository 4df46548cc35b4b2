package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/parvatkhattak/onebox-email-aggregator/core/service/ingest"
	"github.com/parvatkhattak/onebox-email-aggregator/pkg/response"
)

// HealthHandler reports process and ingest health.
type HealthHandler struct {
	registry  *ingest.Service
	startedAt time.Time
}

func NewHealthHandler(registry *ingest.Service) *HealthHandler {
	return &HealthHandler{
		registry:  registry,
		startedAt: time.Now(),
	}
}

// Register registers health routes.
func (h *HealthHandler) Register(router fiber.Router) {
	router.Get("/health", h.Health)
}

// Health returns liveness info and the set of active IMAP sessions.
// GET /api/health
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	active := h.registry.ActiveAccountIDs()

	return response.OK(c, fiber.Map{
		"status":         "ok",
		"uptime":         time.Since(h.startedAt).Round(time.Second).String(),
		"activeAccounts": len(active),
		"accountIds":     active,
	})
}
