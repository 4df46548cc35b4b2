// Package account implements registered-mailbox management.
package account

import (
	"context"
	"time"

	"github.com/parvatkhattak/onebox-email-aggregator/core/domain"
	"github.com/parvatkhattak/onebox-email-aggregator/core/port/in"
	"github.com/parvatkhattak/onebox-email-aggregator/core/port/out"
	"github.com/parvatkhattak/onebox-email-aggregator/core/service/ingest"
	"github.com/parvatkhattak/onebox-email-aggregator/pkg/apperr"
	"github.com/parvatkhattak/onebox-email-aggregator/pkg/logger"
)

// Service implements in.AccountService. The account store owns
// encryption at rest; the ingest registry owns live sessions.
type Service struct {
	accountRepo out.AccountRepository
	emailRepo   out.EmailRepository
	registry    *ingest.Service
}

func NewService(accountRepo out.AccountRepository, emailRepo out.EmailRepository, registry *ingest.Service) *Service {
	return &Service{
		accountRepo: accountRepo,
		emailRepo:   emailRepo,
		registry:    registry,
	}
}

// CreateAccount validates and persists the account, then opens its
// ingest session in the background. Session failures never fail the
// create: they surface through the registry's retry loop.
func (s *Service) CreateAccount(ctx context.Context, req *in.CreateAccountRequest) (*domain.Account, error) {
	account := &domain.Account{
		Email:     req.Email,
		IMAPHost:  req.IMAPHost,
		IMAPPort:  req.IMAPPort,
		IMAPUser:  req.IMAPUser,
		Password:  req.Password,
		CreatedAt: time.Now().UTC(),
	}

	if err := account.Validate(); err != nil {
		return nil, apperr.ValidationFailed(err.Error())
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		if apperr.IsAppError(err) {
			return nil, err
		}
		return nil, apperr.DatabaseError("create account", err)
	}

	go func() {
		if err := s.registry.Open(context.Background(), account); err != nil {
			logger.WithError(err).WithAccount(account.ID).
				Error("failed to open session for new account")
		}
	}()

	redacted := account.Redacted()
	return &redacted, nil
}

// ListAccounts returns every account, passwords redacted, with its
// connection state.
func (s *Service) ListAccounts(ctx context.Context) ([]in.AccountView, error) {
	accounts, err := s.accountRepo.List(ctx)
	if err != nil {
		return nil, apperr.DatabaseError("list accounts", err)
	}

	views := make([]in.AccountView, 0, len(accounts))
	for _, account := range accounts {
		views = append(views, in.AccountView{
			Account:   account.Redacted(),
			Connected: s.registry.IsConnected(account.ID),
		})
	}
	return views, nil
}

// DeleteAccount closes the session and removes the account and its
// ingested emails.
func (s *Service) DeleteAccount(ctx context.Context, id string) error {
	account, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		return apperr.DatabaseError("get account", err)
	}
	if account == nil {
		return apperr.NotFound("account")
	}

	s.registry.Close(id)

	if _, err := s.emailRepo.DeleteByAccount(ctx, id); err != nil {
		logger.WithError(err).WithAccount(id).Warn("failed to delete stored emails")
	}

	if err := s.accountRepo.Delete(ctx, id); err != nil {
		return apperr.DatabaseError("delete account", err)
	}
	return nil
}
