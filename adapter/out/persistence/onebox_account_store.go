// Package persistence implements file-backed stores for small,
// rarely-changing data sets.
package persistence

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/parvatkhattak/onebox-email-aggregator/core/domain"
	"github.com/parvatkhattak/onebox-email-aggregator/core/port/out"
	"github.com/parvatkhattak/onebox-email-aggregator/pkg/apperr"
	"github.com/parvatkhattak/onebox-email-aggregator/pkg/crypto"
)

// =============================================================================
// Account Store (JSON file, encrypted passwords)
// =============================================================================

// AccountStore persists accounts in a single JSON file. Passwords are
// encrypted before they touch disk. Whole-file read/write,
// last-write-wins; the mutex serializes writers in-process.
type AccountStore struct {
	path      string
	encryptor *crypto.Encryptor

	mu sync.Mutex
}

func NewAccountStore(path string, encryptor *crypto.Encryptor) *AccountStore {
	return &AccountStore{
		path:      path,
		encryptor: encryptor,
	}
}

// Create assigns an id, encrypts the password, and appends the account.
func (s *AccountStore) Create(ctx context.Context, account *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.load()
	if err != nil {
		return err
	}

	for _, existing := range accounts {
		if existing.Email == account.Email {
			return apperr.AlreadyExists("account")
		}
	}

	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}

	encrypted, err := s.encryptor.Encrypt(account.Password)
	if err != nil {
		return fmt.Errorf("failed to encrypt password: %w", err)
	}
	account.Password = encrypted

	accounts = append(accounts, account)
	return s.save(accounts)
}

// GetByID returns one account; (nil, nil) when absent.
func (s *AccountStore) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.load()
	if err != nil {
		return nil, err
	}

	for _, account := range accounts {
		if account.ID == id {
			return account, nil
		}
	}
	return nil, nil
}

// List returns all accounts.
func (s *AccountStore) List(ctx context.Context) ([]*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load()
}

// Delete removes one account. Deleting an unknown id is a no-op.
func (s *AccountStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.load()
	if err != nil {
		return err
	}

	kept := accounts[:0]
	for _, account := range accounts {
		if account.ID != id {
			kept = append(kept, account)
		}
	}

	return s.save(kept)
}

func (s *AccountStore) load() ([]*domain.Account, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read accounts file: %w", err)
	}

	if len(data) == 0 {
		return nil, nil
	}

	var accounts []*domain.Account
	if err := json.Unmarshal(data, &accounts); err != nil {
		return nil, fmt.Errorf("failed to parse accounts file: %w", err)
	}
	return accounts, nil
}

func (s *AccountStore) save(accounts []*domain.Account) error {
	if accounts == nil {
		accounts = []*domain.Account{}
	}

	data, err := json.MarshalIndent(accounts, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal accounts: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write accounts file: %w", err)
	}
	return nil
}

var _ out.AccountRepository = (*AccountStore)(nil)
