// Package in defines inbound ports (driving ports) consumed by the
// HTTP adapters.
package in

import (
	"context"

	"github.com/parvatkhattak/onebox-email-aggregator/core/domain"
	"github.com/parvatkhattak/onebox-email-aggregator/core/port/out"
)

// AccountService manages registered mailboxes and their live sessions.
type AccountService interface {
	// CreateAccount validates, encrypts the password, persists, and kicks
	// off a session open in the background.
	CreateAccount(ctx context.Context, req *CreateAccountRequest) (*domain.Account, error)

	// ListAccounts returns all accounts with passwords redacted.
	ListAccounts(ctx context.Context) ([]AccountView, error)

	// DeleteAccount closes any live session and removes the account and
	// its stored emails.
	DeleteAccount(ctx context.Context, id string) error
}

// CreateAccountRequest carries the plaintext credentials from the API.
type CreateAccountRequest struct {
	Email    string `json:"email"`
	IMAPHost string `json:"imapHost"`
	IMAPPort int    `json:"imapPort"`
	IMAPUser string `json:"imapUser"`
	Password string `json:"password"`
}

// AccountView is an account plus its live connection state.
type AccountView struct {
	domain.Account
	Connected bool `json:"connected"`
}

// EmailService reads and amends stored emails.
type EmailService interface {
	SearchEmails(ctx context.Context, q out.EmailQuery) ([]*domain.Email, int64, error)
	GetEmail(ctx context.Context, id string) (*domain.Email, error)
	Categorize(ctx context.Context, id string, category domain.Category) (*domain.Email, error)
	SuggestReply(ctx context.Context, id string) (string, error)
}

// SettingsService reads and partially updates notification settings.
type SettingsService interface {
	Get(ctx context.Context) (domain.Settings, error)
	Update(ctx context.Context, patch domain.SettingsPatch) (domain.Settings, error)
}
