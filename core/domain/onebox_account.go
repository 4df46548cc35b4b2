package domain

import (
	"strings"
	"time"
)

// Account is a registered IMAP mailbox. Password holds the encrypted
// credential; it is decrypted only when a session is opened.
type Account struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	IMAPHost  string    `json:"imapHost"`
	IMAPPort  int       `json:"imapPort"`
	IMAPUser  string    `json:"imapUser"`
	Password  string    `json:"password"`
	CreatedAt time.Time `json:"createdAt"`
}

// Validate checks the fields required to open an IMAP session.
func (a *Account) Validate() error {
	switch {
	case strings.TrimSpace(a.Email) == "":
		return ErrMissingAccountField("email")
	case strings.TrimSpace(a.IMAPHost) == "":
		return ErrMissingAccountField("imapHost")
	case a.IMAPPort <= 0 || a.IMAPPort > 65535:
		return ErrInvalidAccountField("imapPort")
	case strings.TrimSpace(a.IMAPUser) == "":
		return ErrMissingAccountField("imapUser")
	case a.Password == "":
		return ErrMissingAccountField("password")
	}
	return nil
}

// Redacted returns a copy safe to expose over the API.
func (a Account) Redacted() Account {
	a.Password = ""
	return a
}
