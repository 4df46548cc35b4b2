package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/parvatkhattak/onebox-email-aggregator/core/domain"
	"github.com/parvatkhattak/onebox-email-aggregator/core/port/in"
	"github.com/parvatkhattak/onebox-email-aggregator/core/port/out"
	"github.com/parvatkhattak/onebox-email-aggregator/pkg/apperr"
	"github.com/parvatkhattak/onebox-email-aggregator/pkg/response"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// EmailHandler handles email search, retrieval and AI operations.
type EmailHandler struct {
	emails in.EmailService
}

func NewEmailHandler(emails in.EmailService) *EmailHandler {
	return &EmailHandler{emails: emails}
}

// Register registers email routes.
func (h *EmailHandler) Register(router fiber.Router) {
	group := router.Group("/emails")

	group.Get("/", h.Search)
	group.Get("/:id", h.Get)
	group.Post("/:id/categorize", h.Categorize)
	group.Post("/:id/suggest-reply", h.SuggestReply)
}

// Search returns emails filtered by text, account, folder and category.
// GET /api/emails?q=...&accountId=...&folder=...&category=...&from=0&size=50
func (h *EmailHandler) Search(c *fiber.Ctx) error {
	page := response.GetPage(c, defaultPageSize, maxPageSize)

	query := out.EmailQuery{
		Text:      c.Query("q"),
		AccountID: c.Query("accountId"),
		Folder:    c.Query("folder"),
		From:      page.From,
		Size:      page.Size,
	}

	if raw := c.Query("category"); raw != "" {
		cat := domain.Category(raw)
		if !cat.IsValid() {
			return apperr.InvalidInput("category", "unknown category")
		}
		query.Category = cat
	}

	emails, total, err := h.emails.SearchEmails(c.Context(), query)
	if err != nil {
		return err
	}

	meta := &response.Meta{
		Total:   int(total),
		From:    page.From,
		Size:    page.Size,
		HasMore: int64(page.From+len(emails)) < total,
	}

	return response.OKWithMeta(c, emails, meta)
}

// Get returns a single email by message id.
// GET /api/emails/:id
func (h *EmailHandler) Get(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return apperr.MissingField("id")
	}

	email, err := h.emails.GetEmail(c.Context(), id)
	if err != nil {
		return err
	}

	return response.OK(c, email)
}

type categorizeRequest struct {
	Category string `json:"category"`
}

// Categorize overrides the stored category of an email.
// POST /api/emails/:id/categorize
func (h *EmailHandler) Categorize(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return apperr.MissingField("id")
	}

	var req categorizeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("invalid request body")
	}
	if req.Category == "" {
		return apperr.MissingField("category")
	}

	email, err := h.emails.Categorize(c.Context(), id, domain.Category(req.Category))
	if err != nil {
		return err
	}

	return response.OK(c, email)
}

// SuggestReply generates an AI reply suggestion for an email.
// POST /api/emails/:id/suggest-reply
func (h *EmailHandler) SuggestReply(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return apperr.MissingField("id")
	}

	reply, err := h.emails.SuggestReply(c.Context(), id)
	if err != nil {
		return err
	}

	return response.OK(c, fiber.Map{"reply": reply})
}
