package out

import (
	"context"
	"time"

	"github.com/parvatkhattak/onebox-email-aggregator/core/domain"
)

// =============================================================================
// IMAP Session
// =============================================================================

// MailCredentials are the decrypted connection parameters for one mailbox.
type MailCredentials struct {
	Host     string
	Port     int
	User     string
	Password string
}

// MailSession is a live connection to one mailbox with INBOX selected.
// Implementations are not safe for concurrent calls; the ingest service
// serializes access with a per-session lock.
type MailSession interface {
	// FetchSince streams every message received on or after since, in UID
	// order, through fn. A non-nil error from fn stops the fetch.
	FetchSince(ctx context.Context, since time.Time, fn func(*domain.Email) error) error

	// SearchUnseen returns the UIDs of unseen messages.
	SearchUnseen(ctx context.Context) ([]uint32, error)

	// FetchByUID fetches a single message.
	FetchByUID(ctx context.Context, uid uint32) (*domain.Email, error)

	// WaitForUpdate blocks until the mailbox signals new mail, ctx is
	// done, or the connection fails.
	WaitForUpdate(ctx context.Context) error

	// Close logs out and releases the connection.
	Close() error
}

// MailDialer opens authenticated sessions.
type MailDialer interface {
	Dial(ctx context.Context, creds MailCredentials) (MailSession, error)
}
