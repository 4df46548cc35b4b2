// Package out defines outbound ports (driven ports) for the application.
// These interfaces represent dependencies that the application needs.
package out

import (
	"context"

	"github.com/parvatkhattak/onebox-email-aggregator/core/domain"
)

// =============================================================================
// Email Document Store (MongoDB)
// =============================================================================

// EmailQuery selects stored emails. Zero values mean "no filter".
type EmailQuery struct {
	Text      string
	AccountID string
	Folder    string
	Category  domain.Category
	From      int
	Size      int
}

// EmailRepository defines the outbound port for email document persistence.
type EmailRepository interface {
	// Upsert stores or replaces an email keyed by its message id.
	Upsert(ctx context.Context, email *domain.Email) error

	// PatchCategory updates only the category of a stored email.
	PatchCategory(ctx context.Context, id string, category domain.Category) error

	// GetByID fetches one email; returns (nil, nil) when absent.
	GetByID(ctx context.Context, id string) (*domain.Email, error)

	// Search returns matching emails sorted by date descending plus the
	// total match count.
	Search(ctx context.Context, q EmailQuery) ([]*domain.Email, int64, error)

	// DeleteByAccount removes everything ingested for one account.
	DeleteByAccount(ctx context.Context, accountID string) (int64, error)
}
