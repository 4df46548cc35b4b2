package persistence

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/parvatkhattak/onebox-email-aggregator/core/domain"
	"github.com/parvatkhattak/onebox-email-aggregator/pkg/apperr"
	"github.com/parvatkhattak/onebox-email-aggregator/pkg/crypto"
)

func newTestAccountStore(t *testing.T) (*AccountStore, string) {
	t.Helper()
	enc, err := crypto.NewEncryptor([]byte("0123456789abcdef0123456789abcdef"))
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "accounts.json")
	return NewAccountStore(path, enc), path
}

func testAccount(email string) *domain.Account {
	return &domain.Account{
		Email:    email,
		IMAPHost: "imap.example.com",
		IMAPPort: 993,
		IMAPUser: email,
		Password: "plaintext-secret",
	}
}

func TestAccountStore_CreateEncryptsPassword(t *testing.T) {
	store, path := newTestAccountStore(t)
	ctx := context.Background()

	account := testAccount("a@example.com")
	if err := store.Create(ctx, account); err != nil {
		t.Fatalf("Create() = %v", err)
	}
	if account.ID == "" {
		t.Error("Create() did not assign an id")
	}
	if account.Password == "plaintext-secret" {
		t.Error("password left in plaintext on the account")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), "plaintext-secret") {
		t.Error("plaintext password written to disk")
	}
}

func TestAccountStore_DuplicateEmailRejected(t *testing.T) {
	store, _ := newTestAccountStore(t)
	ctx := context.Background()

	if err := store.Create(ctx, testAccount("a@example.com")); err != nil {
		t.Fatal(err)
	}

	err := store.Create(ctx, testAccount("a@example.com"))
	if err == nil {
		t.Fatal("Create() accepted duplicate email")
	}
	appErr := apperr.AsAppError(err)
	if appErr.Code != apperr.CodeAlreadyExists {
		t.Errorf("error = %v, want %s", err, apperr.CodeAlreadyExists)
	}
}

func TestAccountStore_RoundTrip(t *testing.T) {
	store, _ := newTestAccountStore(t)
	ctx := context.Background()

	account := testAccount("a@example.com")
	if err := store.Create(ctx, account); err != nil {
		t.Fatal(err)
	}

	got, err := store.GetByID(ctx, account.ID)
	if err != nil {
		t.Fatalf("GetByID() = %v", err)
	}
	if got == nil || got.Email != "a@example.com" {
		t.Fatalf("GetByID() = %+v", got)
	}

	missing, err := store.GetByID(ctx, "no-such-id")
	if err != nil || missing != nil {
		t.Errorf("GetByID(unknown) = %v, %v; want nil, nil", missing, err)
	}

	all, err := store.List(ctx)
	if err != nil || len(all) != 1 {
		t.Fatalf("List() = %v, %v", all, err)
	}
}

func TestAccountStore_Delete(t *testing.T) {
	store, _ := newTestAccountStore(t)
	ctx := context.Background()

	account := testAccount("a@example.com")
	if err := store.Create(ctx, account); err != nil {
		t.Fatal(err)
	}

	if err := store.Delete(ctx, account.ID); err != nil {
		t.Fatalf("Delete() = %v", err)
	}
	all, _ := store.List(ctx)
	if len(all) != 0 {
		t.Errorf("List() after delete = %v", all)
	}

	// Unknown id is a no-op
	if err := store.Delete(ctx, "no-such-id"); err != nil {
		t.Errorf("Delete(unknown) = %v", err)
	}
}

func TestSettingsStore_MergePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	store := NewSettingsStore(path)
	ctx := context.Background()

	// Empty file yields zero settings
	initial, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("Get() = %v", err)
	}
	if initial.SlackWebhookURL != "" || initial.ExternalWebhookURL != "" {
		t.Errorf("initial settings = %+v", initial)
	}

	slack := "https://hooks.slack.com/services/T/B/x"
	updated, err := store.Update(ctx, domain.SettingsPatch{SlackWebhookURL: &slack})
	if err != nil {
		t.Fatalf("Update() = %v", err)
	}
	if updated.SlackWebhookURL != slack {
		t.Errorf("SlackWebhookURL = %q", updated.SlackWebhookURL)
	}

	// Patch the other field; the first survives
	external := "https://example.com/hook"
	updated, err = store.Update(ctx, domain.SettingsPatch{ExternalWebhookURL: &external})
	if err != nil {
		t.Fatal(err)
	}
	if updated.SlackWebhookURL != slack || updated.ExternalWebhookURL != external {
		t.Errorf("merged settings = %+v", updated)
	}

	// A fresh store sees the persisted state
	reopened := NewSettingsStore(path)
	got, err := reopened.Get(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got.SlackWebhookURL != slack || got.ExternalWebhookURL != external {
		t.Errorf("reloaded settings = %+v", got)
	}

	// Explicit empty string clears a field
	empty := ""
	cleared, err := store.Update(ctx, domain.SettingsPatch{SlackWebhookURL: &empty})
	if err != nil {
		t.Fatal(err)
	}
	if cleared.SlackWebhookURL != "" {
		t.Errorf("SlackWebhookURL after clear = %q", cleared.SlackWebhookURL)
	}
}
