package out

import (
	"context"

	"github.com/parvatkhattak/onebox-email-aggregator/core/domain"
)

// IntentClassifier assigns a sales-intent category to an email.
// Implementations must always return a valid category; classification
// failures map to Not Interested.
type IntentClassifier interface {
	Classify(ctx context.Context, email *domain.Email) (domain.Category, error)
}

// ReplySuggester drafts a reply for an email grounded on the product
// knowledge base.
type ReplySuggester interface {
	GenerateReply(ctx context.Context, email *domain.Email) (string, error)
}

// InterestedNotifier delivers a notification for an Interested email.
type InterestedNotifier interface {
	Name() string
	Notify(ctx context.Context, email *domain.Email) error
}
