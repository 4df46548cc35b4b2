// Package imapmail implements the MailSession port over IMAP.
package imapmail

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/emersion/go-imap/client"

	"github.com/parvatkhattak/onebox-email-aggregator/core/port/out"
)

// Dialer opens TLS IMAP sessions with INBOX selected.
type Dialer struct {
	dialTimeout time.Duration
}

func NewDialer(dialTimeout time.Duration) *Dialer {
	if dialTimeout <= 0 {
		dialTimeout = 30 * time.Second
	}
	return &Dialer{dialTimeout: dialTimeout}
}

// Dial connects, authenticates, and selects INBOX.
func (d *Dialer) Dial(ctx context.Context, creds out.MailCredentials) (out.MailSession, error) {
	addr := fmt.Sprintf("%s:%d", creds.Host, creds.Port)

	netDialer := &net.Dialer{Timeout: d.dialTimeout}
	c, err := client.DialWithDialerTLS(netDialer, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("imap dial %s: %w", addr, err)
	}

	if err := c.Login(creds.User, creds.Password); err != nil {
		c.Logout()
		return nil, fmt.Errorf("imap login %s: %w", creds.User, err)
	}

	if _, err := c.Select("INBOX", false); err != nil {
		c.Logout()
		return nil, fmt.Errorf("imap select INBOX: %w", err)
	}

	return &Session{client: c}, nil
}
