// Package classification implements sales-intent classification of
// ingested emails.
package classification

import (
	"context"
	"time"

	"github.com/sony/gobreaker"

	"github.com/parvatkhattak/onebox-email-aggregator/core/agent/llm"
	"github.com/parvatkhattak/onebox-email-aggregator/core/domain"
	"github.com/parvatkhattak/onebox-email-aggregator/pkg/logger"
)

// =============================================================================
// LLM Intent Classifier
// =============================================================================

// IntentClassifier classifies emails with the LLM behind a circuit
// breaker. Any failure (LLM error, open breaker, unrecognized label)
// yields Not Interested so ingest never stalls on the model.
type IntentClassifier struct {
	llmClient *llm.Client
	cb        *gobreaker.CircuitBreaker
}

// NewIntentClassifier creates a classifier wrapping the given LLM client.
func NewIntentClassifier(llmClient *llm.Client) *IntentClassifier {
	cbSettings := gobreaker.Settings{
		Name:        "openai-classify",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.ConsecutiveFailures > 5 ||
				(counts.Requests >= 10 && failureRatio >= 0.6)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(map[string]any{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("circuit breaker state changed")
		},
	}

	return &IntentClassifier{
		llmClient: llmClient,
		cb:        gobreaker.NewCircuitBreaker(cbSettings),
	}
}

// Classify returns the sales-intent category for an email. The error is
// informational; the category is always valid.
func (c *IntentClassifier) Classify(ctx context.Context, email *domain.Email) (domain.Category, error) {
	raw, err := c.cb.Execute(func() (interface{}, error) {
		return c.llmClient.ClassifyEmail(ctx, email)
	})
	if err != nil {
		return domain.CategoryNotInterested, err
	}

	label, _ := raw.(string)
	return domain.ParseCategory(label), nil
}
