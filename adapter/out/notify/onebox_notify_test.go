package notify

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/parvatkhattak/onebox-email-aggregator/core/domain"
)

type fakeSettingsRepo struct {
	settings domain.Settings
	err      error
}

func (f *fakeSettingsRepo) Get(ctx context.Context) (domain.Settings, error) {
	return f.settings, f.err
}

func (f *fakeSettingsRepo) Update(ctx context.Context, patch domain.SettingsPatch) (domain.Settings, error) {
	f.settings = f.settings.Merge(patch)
	return f.settings, nil
}

func testEmail() *domain.Email {
	return &domain.Email{
		ID:        "<lead@example.com>",
		AccountID: "acc-1",
		Folder:    "INBOX",
		From:      "Jordan Lee <jordan@example.com>",
		To:        []string{"sales@mycompany.com"},
		Subject:   "Re: demo request",
		Body:      "Yes, I would love to see a demo next week.",
		Date:      time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC),
		Category:  domain.CategoryInterested,
	}
}

func captureServer(t *testing.T, got *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, got); err != nil {
			t.Errorf("invalid JSON payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
}

func TestSlackNotifier_PostsBlocks(t *testing.T) {
	var got map[string]any
	srv := captureServer(t, &got)
	defer srv.Close()

	n := NewSlackNotifier(&fakeSettingsRepo{}, srv.URL)
	if err := n.Notify(context.Background(), testEmail()); err != nil {
		t.Fatalf("Notify() = %v", err)
	}

	blocks, ok := got["blocks"].([]any)
	if !ok || len(blocks) != 3 {
		t.Fatalf("blocks = %v", got["blocks"])
	}
	header := blocks[0].(map[string]any)
	if header["type"] != "header" {
		t.Errorf("first block type = %v", header["type"])
	}
}

func TestSlackNotifier_SettingsOverrideEnvFallback(t *testing.T) {
	var got map[string]any
	srv := captureServer(t, &got)
	defer srv.Close()

	repo := &fakeSettingsRepo{settings: domain.Settings{SlackWebhookURL: srv.URL}}
	n := NewSlackNotifier(repo, "http://127.0.0.1:1/unreachable-fallback")
	if err := n.Notify(context.Background(), testEmail()); err != nil {
		t.Fatalf("Notify() = %v", err)
	}
	if got == nil {
		t.Fatal("settings URL was not used")
	}
}

func TestSlackNotifier_NoURLIsNoop(t *testing.T) {
	n := NewSlackNotifier(&fakeSettingsRepo{}, "")
	if err := n.Notify(context.Background(), testEmail()); err != nil {
		t.Fatalf("Notify() with no URL = %v, want nil", err)
	}
}

func TestSlackNotifier_NonOKStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewSlackNotifier(&fakeSettingsRepo{}, srv.URL)
	if err := n.Notify(context.Background(), testEmail()); err == nil {
		t.Fatal("Notify() = nil, want error on 500")
	}
}

func TestWebhookNotifier_PayloadShape(t *testing.T) {
	var got map[string]any
	srv := captureServer(t, &got)
	defer srv.Close()

	n := NewWebhookNotifier(&fakeSettingsRepo{}, srv.URL)
	if err := n.Notify(context.Background(), testEmail()); err != nil {
		t.Fatalf("Notify() = %v", err)
	}

	if got["event"] != "email.interested" {
		t.Errorf("event = %v", got["event"])
	}
	data, ok := got["data"].(map[string]any)
	if !ok {
		t.Fatalf("data = %v", got["data"])
	}
	if data["messageId"] != "<lead@example.com>" {
		t.Errorf("messageId = %v", data["messageId"])
	}
	if data["accountId"] != "acc-1" {
		t.Errorf("accountId = %v", data["accountId"])
	}
	if data["category"] != string(domain.CategoryInterested) {
		t.Errorf("category = %v", data["category"])
	}
}

func TestNotifierNames(t *testing.T) {
	if got := NewSlackNotifier(nil, "").Name(); got != "slack" {
		t.Errorf("slack Name() = %q", got)
	}
	if got := NewWebhookNotifier(nil, "").Name(); got != "webhook" {
		t.Errorf("webhook Name() = %q", got)
	}
}
