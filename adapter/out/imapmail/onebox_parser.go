package imapmail

import (
	"io"
	"strings"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-message/mail"

	"github.com/parvatkhattak/onebox-email-aggregator/core/domain"
)

// parseMessage converts a fetched IMAP message into a domain email.
// AccountID and Folder are filled in by the caller; Normalize supplies
// the remaining defaults.
func parseMessage(msg *imap.Message, section *imap.BodySectionName) *domain.Email {
	email := &domain.Email{
		UID:  msg.Uid,
		Date: msg.InternalDate,
	}

	if env := msg.Envelope; env != nil {
		email.Subject = env.Subject
		email.ID = strings.Trim(env.MessageId, "<>")
		if !env.Date.IsZero() {
			email.Date = env.Date
		}
		if len(env.From) > 0 {
			email.From = formatAddress(env.From[0])
		}
		for _, addr := range env.To {
			email.To = append(email.To, addr.Address())
		}
	}

	if body := msg.GetBody(section); body != nil {
		email.Body = extractTextBody(body)
	}

	return email
}

// formatAddress renders "Name <addr>" or the bare address.
func formatAddress(addr *imap.Address) string {
	if addr == nil {
		return ""
	}
	if addr.PersonalName != "" {
		return addr.PersonalName + " <" + addr.Address() + ">"
	}
	return addr.Address()
}

// extractTextBody walks the MIME tree and returns the first text/plain
// inline part, falling back to the first inline text part of any
// subtype, else "".
func extractTextBody(r io.Reader) string {
	mr, err := mail.CreateReader(r)
	if err != nil {
		return ""
	}

	fallback := ""
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		} else if err != nil {
			break
		}

		h, ok := p.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}

		contentType, _, err := h.ContentType()
		if err != nil {
			continue
		}

		if !strings.HasPrefix(contentType, "text/") {
			continue
		}

		body, err := io.ReadAll(p.Body)
		if err != nil {
			continue
		}

		if contentType == "text/plain" {
			return string(body)
		}
		if fallback == "" {
			fallback = string(body)
		}
	}

	return fallback
}
