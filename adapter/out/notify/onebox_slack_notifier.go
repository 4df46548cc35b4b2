// Package notify implements outbound notification sinks.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/parvatkhattak/onebox-email-aggregator/core/domain"
	"github.com/parvatkhattak/onebox-email-aggregator/core/port/out"
	"github.com/parvatkhattak/onebox-email-aggregator/pkg/httputil"
)

// =============================================================================
// Slack Notifier
// =============================================================================

// SlackNotifier posts Interested emails to a Slack incoming webhook.
// The URL comes from settings, falling back to the env-configured
// default. An empty URL disables the sink for that delivery.
type SlackNotifier struct {
	settingsRepo out.SettingsRepository
	fallbackURL  string
	client       *http.Client
}

func NewSlackNotifier(settingsRepo out.SettingsRepository, fallbackURL string) *SlackNotifier {
	return &SlackNotifier{
		settingsRepo: settingsRepo,
		fallbackURL:  fallbackURL,
		client:       httputil.WebhookClient(),
	}
}

func (n *SlackNotifier) Name() string { return "slack" }

func (n *SlackNotifier) Notify(ctx context.Context, email *domain.Email) error {
	url := n.resolveURL(ctx)
	if url == "" {
		return nil
	}

	payload := map[string]any{
		"blocks": []map[string]any{
			{
				"type": "header",
				"text": map[string]any{
					"type": "plain_text",
					"text": "🎯 New Interested Email",
				},
			},
			{
				"type": "section",
				"fields": []map[string]any{
					{"type": "mrkdwn", "text": fmt.Sprintf("*From:*\n%s", email.From)},
					{"type": "mrkdwn", "text": fmt.Sprintf("*Subject:*\n%s", email.Subject)},
				},
			},
			{
				"type": "section",
				"text": map[string]any{
					"type": "mrkdwn",
					"text": fmt.Sprintf("*Preview:*\n%s", email.Preview(200)),
				},
			},
		},
	}

	return postJSON(ctx, n.client, url, payload)
}

func (n *SlackNotifier) resolveURL(ctx context.Context) string {
	if n.settingsRepo != nil {
		settings, err := n.settingsRepo.Get(ctx)
		if err == nil && settings.SlackWebhookURL != "" {
			return settings.SlackWebhookURL
		}
	}
	return n.fallbackURL
}

// postJSON posts a JSON payload and treats any non-2xx status as an error.
func postJSON(ctx context.Context, client *http.Client, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
