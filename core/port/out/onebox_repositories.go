package out

import (
	"context"

	"github.com/parvatkhattak/onebox-email-aggregator/core/domain"
)

// AccountRepository persists registered IMAP accounts. Passwords are
// stored encrypted; callers decrypt on use.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	List(ctx context.Context) ([]*domain.Account, error)
	Delete(ctx context.Context, id string) error
}

// SettingsRepository persists notification settings.
type SettingsRepository interface {
	Get(ctx context.Context) (domain.Settings, error)
	Update(ctx context.Context, patch domain.SettingsPatch) (domain.Settings, error)
}
