package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/parvatkhattak/onebox-email-aggregator/core/domain"
	"github.com/parvatkhattak/onebox-email-aggregator/core/port/in"
	"github.com/parvatkhattak/onebox-email-aggregator/pkg/apperr"
	"github.com/parvatkhattak/onebox-email-aggregator/pkg/response"
)

// SettingsHandler handles notification settings reads and updates.
type SettingsHandler struct {
	settings in.SettingsService
}

func NewSettingsHandler(settings in.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Register registers settings routes.
func (h *SettingsHandler) Register(router fiber.Router) {
	group := router.Group("/settings")

	group.Get("/", h.Get)
	group.Post("/", h.Update)
}

// Get returns the current notification settings.
// GET /api/settings
func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	settings, err := h.settings.Get(c.Context())
	if err != nil {
		return err
	}

	return response.OK(c, settings)
}

// Update applies a partial settings update. Omitted fields keep their
// stored value.
// POST /api/settings
func (h *SettingsHandler) Update(c *fiber.Ctx) error {
	var patch domain.SettingsPatch
	if err := c.BodyParser(&patch); err != nil {
		return apperr.BadRequest("invalid request body")
	}

	settings, err := h.settings.Update(c.Context(), patch)
	if err != nil {
		return err
	}

	return response.OK(c, settings)
}
