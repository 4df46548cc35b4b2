// Package http implements the inbound HTTP API.
package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/parvatkhattak/onebox-email-aggregator/core/port/in"
	"github.com/parvatkhattak/onebox-email-aggregator/pkg/apperr"
	"github.com/parvatkhattak/onebox-email-aggregator/pkg/response"
)

// AccountHandler handles account registration and lifecycle.
type AccountHandler struct {
	accounts in.AccountService
}

func NewAccountHandler(accounts in.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// Register registers account routes.
func (h *AccountHandler) Register(router fiber.Router) {
	group := router.Group("/accounts")

	group.Post("/", h.Create)
	group.Get("/", h.List)
	group.Delete("/:id", h.Delete)
}

// Create registers a new IMAP account and starts its ingest session.
// POST /api/accounts
func (h *AccountHandler) Create(c *fiber.Ctx) error {
	var req in.CreateAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("invalid request body")
	}

	account, err := h.accounts.CreateAccount(c.Context(), &req)
	if err != nil {
		return err
	}

	return response.Created(c, account)
}

// List returns all registered accounts with connection state.
// GET /api/accounts
func (h *AccountHandler) List(c *fiber.Ctx) error {
	accounts, err := h.accounts.ListAccounts(c.Context())
	if err != nil {
		return err
	}

	return response.OK(c, accounts)
}

// Delete removes an account, its session, and its stored emails.
// DELETE /api/accounts/:id
func (h *AccountHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return apperr.MissingField("id")
	}

	if err := h.accounts.DeleteAccount(c.Context(), id); err != nil {
		return err
	}

	return response.NoContent(c)
}
