// Package ingest owns live IMAP sessions and the per-message pipeline.
package ingest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/parvatkhattak/onebox-email-aggregator/core/domain"
	"github.com/parvatkhattak/onebox-email-aggregator/core/port/out"
	"github.com/parvatkhattak/onebox-email-aggregator/pkg/logger"
)

// =============================================================================
// Session Registry
// =============================================================================

// InterestedDispatcher fans out notifications for Interested emails.
type InterestedDispatcher interface {
	DispatchInterested(ctx context.Context, email *domain.Email)
}

// Decryptor recovers the plaintext IMAP password from its stored form.
type Decryptor func(ciphertext string) (string, error)

// Config tunes backfill and watch behavior.
type Config struct {
	LookbackDays int
	WatchRetry   time.Duration
	InboxFolder  string
}

func (c *Config) withDefaults() Config {
	cfg := *c
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = 7
	}
	if cfg.WatchRetry <= 0 {
		cfg.WatchRetry = 30 * time.Second
	}
	if cfg.InboxFolder == "" {
		cfg.InboxFolder = "INBOX"
	}
	return cfg
}

// Service is the session registry: the single source of truth for which
// accounts have a live IMAP connection. At most one session per account.
type Service struct {
	dialer     out.MailDialer
	emailRepo  out.EmailRepository
	classifier out.IntentClassifier
	dispatcher InterestedDispatcher
	realtime   out.RealtimePort
	decrypt    Decryptor
	cfg        Config

	mu       sync.Mutex
	sessions map[string]*session
}

// session is one account's ingest lifecycle handle.
type session struct {
	account domain.Account
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewService(
	dialer out.MailDialer,
	emailRepo out.EmailRepository,
	classifier out.IntentClassifier,
	dispatcher InterestedDispatcher,
	realtime out.RealtimePort,
	decrypt Decryptor,
	cfg Config,
) *Service {
	return &Service{
		dialer:     dialer,
		emailRepo:  emailRepo,
		classifier: classifier,
		dispatcher: dispatcher,
		realtime:   realtime,
		decrypt:    decrypt,
		cfg:        cfg.withDefaults(),
		sessions:   make(map[string]*session),
	}
}

// Open starts ingest for an account: backfill then live watch. Any
// existing session for the account is closed first. The returned error
// covers only registration; connection failures are retried in the
// background.
func (s *Service) Open(ctx context.Context, account *domain.Account) error {
	password, err := s.decrypt(account.Password)
	if err != nil {
		return err
	}

	s.closeSession(account.ID)

	runCtx, cancel := context.WithCancel(context.Background())
	sess := &session{
		account: *account,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	s.mu.Lock()
	s.sessions[account.ID] = sess
	s.mu.Unlock()

	creds := out.MailCredentials{
		Host:     account.IMAPHost,
		Port:     account.IMAPPort,
		User:     account.IMAPUser,
		Password: password,
	}

	go s.run(runCtx, sess, creds)

	return nil
}

// OpenAll opens a session for every stored account. Per-account failures
// are logged, not returned.
func (s *Service) OpenAll(ctx context.Context, accountRepo out.AccountRepository) {
	accounts, err := accountRepo.List(ctx)
	if err != nil {
		logger.WithError(err).Error("failed to list accounts for startup sweep")
		return
	}

	for _, account := range accounts {
		if err := s.Open(ctx, account); err != nil {
			logger.WithError(err).WithAccount(account.ID).
				Error("failed to open session on startup")
		}
	}
}

// Close tears down the session for one account, if any.
func (s *Service) Close(accountID string) {
	s.closeSession(accountID)
}

// CloseAll tears down every live session. Used on shutdown.
func (s *Service) CloseAll() {
	s.mu.Lock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	for _, id := range ids {
		s.closeSession(id)
	}
}

// IsConnected reports whether the account has a registered session.
func (s *Service) IsConnected(accountID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[accountID]
	return ok
}

// ActiveAccountIDs lists accounts with a registered session, sorted.
func (s *Service) ActiveAccountIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *Service) closeSession(accountID string) {
	s.mu.Lock()
	sess, ok := s.sessions[accountID]
	if ok {
		delete(s.sessions, accountID)
	}
	s.mu.Unlock()

	if !ok {
		return
	}

	sess.cancel()
	<-sess.done
}
