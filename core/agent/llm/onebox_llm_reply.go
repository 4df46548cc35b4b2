package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/parvatkhattak/onebox-email-aggregator/core/domain"
)

// FallbackReply is returned to callers when reply generation fails.
const FallbackReply = "Thank you for your email. I will get back to you shortly."

const replyKnowledgeBase = `Product: Onebox Email Aggregator
- Aggregates multiple IMAP mailboxes into a single searchable inbox
- Classifies incoming email by sales intent automatically
- Sends realtime notifications for interested leads
- Book a demo: https://cal.com/onebox-demo`

// GenerateReply drafts a reply to an email grounded on the product
// knowledge base.
func (c *Client) GenerateReply(ctx context.Context, email *domain.Email) (string, error) {
	systemPrompt := fmt.Sprintf(`You are an email reply assistant for an outbound sales team.
Use the product knowledge base below to write a helpful, professional reply.
If the sender shows interest, offer the demo booking link.

Knowledge base:
%s

Write a natural, contextually appropriate reply. Do not include subject line or email headers.
Only output the reply body.`, replyKnowledgeBase)

	userPrompt := fmt.Sprintf("Original email from %s:\nSubject: %s\n\n%s\n\nGenerate a reply:",
		email.From, email.Subject, truncateBody(email.Body, 2000))

	reply, err := c.CompleteWithSystem(ctx, systemPrompt, userPrompt)
	if err != nil {
		return "", err
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		return FallbackReply, nil
	}
	return reply, nil
}
