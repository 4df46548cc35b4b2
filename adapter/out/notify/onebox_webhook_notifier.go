package notify

import (
	"context"
	"net/http"

	"github.com/parvatkhattak/onebox-email-aggregator/core/domain"
	"github.com/parvatkhattak/onebox-email-aggregator/core/port/out"
	"github.com/parvatkhattak/onebox-email-aggregator/pkg/httputil"
)

// =============================================================================
// External Webhook Notifier
// =============================================================================

// WebhookNotifier posts Interested emails to a user-supplied endpoint.
type WebhookNotifier struct {
	settingsRepo out.SettingsRepository
	fallbackURL  string
	client       *http.Client
}

func NewWebhookNotifier(settingsRepo out.SettingsRepository, fallbackURL string) *WebhookNotifier {
	return &WebhookNotifier{
		settingsRepo: settingsRepo,
		fallbackURL:  fallbackURL,
		client:       httputil.WebhookClient(),
	}
}

func (n *WebhookNotifier) Name() string { return "webhook" }

func (n *WebhookNotifier) Notify(ctx context.Context, email *domain.Email) error {
	url := n.resolveURL(ctx)
	if url == "" {
		return nil
	}

	payload := map[string]any{
		"event": "email.interested",
		"data": map[string]any{
			"messageId":   email.ID,
			"accountId":   email.AccountID,
			"from":        email.From,
			"to":          email.To,
			"subject":     email.Subject,
			"bodyPreview": email.Preview(500),
			"date":        email.Date,
			"category":    email.Category,
		},
	}

	return postJSON(ctx, n.client, url, payload)
}

func (n *WebhookNotifier) resolveURL(ctx context.Context) string {
	if n.settingsRepo != nil {
		settings, err := n.settingsRepo.Get(ctx)
		if err == nil && settings.ExternalWebhookURL != "" {
			return settings.ExternalWebhookURL
		}
	}
	return n.fallbackURL
}
