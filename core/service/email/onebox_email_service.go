// Package email implements read and amend operations on stored emails.
package email

import (
	"context"

	"github.com/parvatkhattak/onebox-email-aggregator/core/agent/llm"
	"github.com/parvatkhattak/onebox-email-aggregator/core/domain"
	"github.com/parvatkhattak/onebox-email-aggregator/core/port/out"
	"github.com/parvatkhattak/onebox-email-aggregator/pkg/apperr"
	"github.com/parvatkhattak/onebox-email-aggregator/pkg/logger"
)

// Service implements in.EmailService on top of the document store and
// the reply suggester.
type Service struct {
	emailRepo out.EmailRepository
	suggester out.ReplySuggester
}

func NewService(emailRepo out.EmailRepository, suggester out.ReplySuggester) *Service {
	return &Service{
		emailRepo: emailRepo,
		suggester: suggester,
	}
}

// SearchEmails returns matching emails sorted by date descending.
func (s *Service) SearchEmails(ctx context.Context, q out.EmailQuery) ([]*domain.Email, int64, error) {
	emails, total, err := s.emailRepo.Search(ctx, q)
	if err != nil {
		return nil, 0, apperr.DatabaseError("search emails", err)
	}
	return emails, total, nil
}

// GetEmail fetches one stored email by message id.
func (s *Service) GetEmail(ctx context.Context, id string) (*domain.Email, error) {
	email, err := s.emailRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.DatabaseError("get email", err)
	}
	if email == nil {
		return nil, apperr.NotFound("email")
	}
	return email, nil
}

// Categorize overrides the stored category.
func (s *Service) Categorize(ctx context.Context, id string, category domain.Category) (*domain.Email, error) {
	if !category.IsValid() {
		return nil, apperr.InvalidInput("category", "unknown category")
	}

	email, err := s.GetEmail(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.emailRepo.PatchCategory(ctx, id, category); err != nil {
		return nil, apperr.DatabaseError("update category", err)
	}

	email.Category = category
	return email, nil
}

// SuggestReply drafts a reply for a stored email. LLM failures fall
// back to a canned acknowledgment rather than erroring the request.
func (s *Service) SuggestReply(ctx context.Context, id string) (string, error) {
	email, err := s.GetEmail(ctx, id)
	if err != nil {
		return "", err
	}

	reply, err := s.suggester.GenerateReply(ctx, email)
	if err != nil {
		logger.WithError(err).WithField("message_id", id).
			Warn("reply suggestion failed, using fallback")
		return llm.FallbackReply, nil
	}
	return reply, nil
}
