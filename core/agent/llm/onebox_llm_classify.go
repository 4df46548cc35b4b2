package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/parvatkhattak/onebox-email-aggregator/core/domain"
)

const classifySystemPrompt = `You are an email classification AI for a sales team. Classify the email into exactly one of these categories:

- Interested: The sender shows interest in the product, asks questions, or wants to learn more
- Meeting Booked: The sender confirms or proposes a meeting, demo, or call
- Not Interested: The sender declines, unsubscribes, or shows no interest
- Spam: Unsolicited bulk mail, phishing, or irrelevant promotions
- Out of Office: Automatic out-of-office or vacation replies

Respond with ONLY the category name.`

// ClassifyEmail classifies a message's sales intent. The returned string
// is the raw model output; callers coerce it with domain.ParseCategory.
func (c *Client) ClassifyEmail(ctx context.Context, email *domain.Email) (string, error) {
	userPrompt := fmt.Sprintf("From: %s\nSubject: %s\n\nBody:\n%s",
		email.From, email.Subject, truncateBody(email.Body, 2000))

	resp, err := c.CompleteWithSystem(ctx, classifySystemPrompt, userPrompt)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(resp), nil
}

func truncateBody(body string, maxLen int) string {
	if len(body) <= maxLen {
		return body
	}
	return body[:maxLen] + "..."
}
