package email

import (
	"context"
	"errors"
	"testing"

	"github.com/parvatkhattak/onebox-email-aggregator/core/agent/llm"
	"github.com/parvatkhattak/onebox-email-aggregator/core/domain"
	"github.com/parvatkhattak/onebox-email-aggregator/core/port/out"
	"github.com/parvatkhattak/onebox-email-aggregator/pkg/apperr"
)

type fakeEmailRepo struct {
	emails   map[string]*domain.Email
	patched  map[string]domain.Category
	patchErr error
}

func newFakeEmailRepo(emails ...*domain.Email) *fakeEmailRepo {
	r := &fakeEmailRepo{
		emails:  make(map[string]*domain.Email),
		patched: make(map[string]domain.Category),
	}
	for _, e := range emails {
		r.emails[e.ID] = e
	}
	return r
}

func (r *fakeEmailRepo) Upsert(ctx context.Context, email *domain.Email) error {
	r.emails[email.ID] = email
	return nil
}

func (r *fakeEmailRepo) PatchCategory(ctx context.Context, id string, category domain.Category) error {
	if r.patchErr != nil {
		return r.patchErr
	}
	r.patched[id] = category
	return nil
}

func (r *fakeEmailRepo) GetByID(ctx context.Context, id string) (*domain.Email, error) {
	return r.emails[id], nil
}

func (r *fakeEmailRepo) Search(ctx context.Context, q out.EmailQuery) ([]*domain.Email, int64, error) {
	var all []*domain.Email
	for _, e := range r.emails {
		all = append(all, e)
	}
	return all, int64(len(all)), nil
}

func (r *fakeEmailRepo) DeleteByAccount(ctx context.Context, accountID string) (int64, error) {
	return 0, nil
}

type fakeSuggester struct {
	reply string
	err   error
}

func (f *fakeSuggester) GenerateReply(ctx context.Context, email *domain.Email) (string, error) {
	return f.reply, f.err
}

func TestGetEmail_NotFound(t *testing.T) {
	svc := NewService(newFakeEmailRepo(), &fakeSuggester{})

	_, err := svc.GetEmail(context.Background(), "<missing@x>")
	if err == nil {
		t.Fatal("GetEmail() = nil, want not found")
	}
	if apperr.AsAppError(err).Code != apperr.CodeNotFound {
		t.Errorf("error = %v, want %s", err, apperr.CodeNotFound)
	}
}

func TestCategorize(t *testing.T) {
	stored := &domain.Email{ID: "<m@x>", Category: domain.CategorySpam}

	tests := []struct {
		name     string
		id       string
		category domain.Category
		wantCode string
	}{
		{"valid override", "<m@x>", domain.CategoryInterested, ""},
		{"invalid category", "<m@x>", domain.Category("Neutral"), apperr.CodeInvalidInput},
		{"unknown email", "<missing@x>", domain.CategoryInterested, apperr.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeEmailRepo(stored)
			svc := NewService(repo, &fakeSuggester{})

			email, err := svc.Categorize(context.Background(), tt.id, tt.category)
			if tt.wantCode != "" {
				if err == nil {
					t.Fatal("Categorize() = nil, want error")
				}
				if got := apperr.AsAppError(err).Code; got != tt.wantCode {
					t.Errorf("error code = %s, want %s", got, tt.wantCode)
				}
				return
			}

			if err != nil {
				t.Fatalf("Categorize() = %v", err)
			}
			if email.Category != tt.category {
				t.Errorf("returned category = %q", email.Category)
			}
			if repo.patched[tt.id] != tt.category {
				t.Errorf("stored category = %q", repo.patched[tt.id])
			}
		})
	}
}

func TestSuggestReply_FallsBackOnLLMFailure(t *testing.T) {
	stored := &domain.Email{ID: "<m@x>", Subject: "Re: demo"}

	repo := newFakeEmailRepo(stored)
	svc := NewService(repo, &fakeSuggester{err: errors.New("llm down")})

	reply, err := svc.SuggestReply(context.Background(), "<m@x>")
	if err != nil {
		t.Fatalf("SuggestReply() = %v, want fallback instead of error", err)
	}
	if reply != llm.FallbackReply {
		t.Errorf("reply = %q, want fallback", reply)
	}
}

func TestSuggestReply_ReturnsGeneratedReply(t *testing.T) {
	stored := &domain.Email{ID: "<m@x>"}
	svc := NewService(newFakeEmailRepo(stored), &fakeSuggester{reply: "Happy to connect, here is my calendar."})

	reply, err := svc.SuggestReply(context.Background(), "<m@x>")
	if err != nil {
		t.Fatal(err)
	}
	if reply != "Happy to connect, here is my calendar." {
		t.Errorf("reply = %q", reply)
	}
}
