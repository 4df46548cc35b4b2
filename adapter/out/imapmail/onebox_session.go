package imapmail

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"

	"github.com/parvatkhattak/onebox-email-aggregator/core/domain"
)

// fetchTimeout bounds individual IMAP commands.
const fetchTimeout = 30 * time.Second

// idleLogoutTimeout restarts IDLE before servers drop the connection
// (RFC 2177 recommends re-issuing within 29 minutes).
const idleLogoutTimeout = 25 * time.Minute

// Session wraps a logged-in go-imap client with INBOX selected.
// Not safe for concurrent use.
type Session struct {
	client *client.Client
}

// FetchSince streams messages received on or after since through fn in
// UID order.
func (s *Session) FetchSince(ctx context.Context, since time.Time, fn func(*domain.Email) error) error {
	criteria := imap.NewSearchCriteria()
	criteria.Since = since

	uids, err := s.uidSearch(criteria)
	if err != nil {
		return fmt.Errorf("imap search since %s: %w", since.Format("2006-01-02"), err)
	}

	sort.Slice(uids, func(i, j int) bool { return uids[i] < uids[j] })

	for _, uid := range uids {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		email, err := s.FetchByUID(ctx, uid)
		if err != nil {
			return err
		}
		if email == nil {
			continue
		}
		if err := fn(email); err != nil {
			return err
		}
	}

	return nil
}

// SearchUnseen returns the UIDs of unseen messages.
func (s *Session) SearchUnseen(ctx context.Context) ([]uint32, error) {
	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}

	uids, err := s.uidSearch(criteria)
	if err != nil {
		return nil, fmt.Errorf("imap search unseen: %w", err)
	}
	return uids, nil
}

// FetchByUID fetches one full message. Returns (nil, nil) when the UID
// no longer exists.
func (s *Session) FetchByUID(ctx context.Context, uid uint32) (*domain.Email, error) {
	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uid)

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{
		imap.FetchEnvelope,
		imap.FetchInternalDate,
		imap.FetchUid,
		section.FetchItem(),
	}

	prevTimeout := s.client.Timeout
	s.client.Timeout = fetchTimeout
	defer func() { s.client.Timeout = prevTimeout }()

	messages := make(chan *imap.Message, 1)
	done := make(chan error, 1)

	go func() {
		done <- s.client.UidFetch(seqSet, items, messages)
	}()

	var msg *imap.Message
	for m := range messages {
		msg = m
	}

	if err := <-done; err != nil {
		return nil, fmt.Errorf("imap fetch uid %d: %w", uid, err)
	}
	if msg == nil {
		return nil, nil
	}

	return parseMessage(msg, section), nil
}

// WaitForUpdate idles until the server reports a mailbox change, the
// connection drops, or ctx is done. IDLE is re-issued on the logout
// timeout so long-lived sessions survive server-side idle limits.
func (s *Session) WaitForUpdate(ctx context.Context) error {
	updates := make(chan client.Update, 16)
	s.client.Updates = updates
	defer func() { s.client.Updates = nil }()

	stop := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- s.client.Idle(stop, &client.IdleOptions{
			LogoutTimeout: idleLogoutTimeout,
		})
	}()

	stopped := false
	stopIdle := func() {
		if !stopped {
			close(stop)
			stopped = true
		}
	}

	for {
		select {
		case <-ctx.Done():
			stopIdle()
			<-done
			return ctx.Err()

		case err := <-done:
			// Idle ended without an update: connection problem.
			if err == nil {
				err = fmt.Errorf("imap idle ended unexpectedly")
			}
			return err

		case update := <-updates:
			if _, ok := update.(*client.MailboxUpdate); !ok {
				continue
			}
			stopIdle()
			if err := <-done; err != nil {
				return err
			}
			return nil
		}
	}
}

// Close logs out and drops the connection.
func (s *Session) Close() error {
	return s.client.Logout()
}

func (s *Session) uidSearch(criteria *imap.SearchCriteria) ([]uint32, error) {
	prevTimeout := s.client.Timeout
	s.client.Timeout = fetchTimeout
	defer func() { s.client.Timeout = prevTimeout }()

	return s.client.UidSearch(criteria)
}
