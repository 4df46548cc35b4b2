// Package notification fans out alerts for Interested emails.
package notification

import (
	"context"
	"sync"

	"github.com/parvatkhattak/onebox-email-aggregator/core/domain"
	"github.com/parvatkhattak/onebox-email-aggregator/core/port/out"
	"github.com/parvatkhattak/onebox-email-aggregator/pkg/logger"
)

// Service delivers Interested-email notifications to every configured
// sink concurrently. Sink failures are logged and never propagate to
// the ingest pipeline.
type Service struct {
	notifiers []out.InterestedNotifier
}

func NewService(notifiers ...out.InterestedNotifier) *Service {
	return &Service{notifiers: notifiers}
}

// DispatchInterested notifies every sink about an Interested email and
// waits for all of them to finish.
func (s *Service) DispatchInterested(ctx context.Context, email *domain.Email) {
	var wg sync.WaitGroup

	for _, n := range s.notifiers {
		wg.Add(1)
		go func(n out.InterestedNotifier) {
			defer wg.Done()

			if err := n.Notify(ctx, email); err != nil {
				logger.WithError(err).WithFields(map[string]any{
					"sink":       n.Name(),
					"message_id": email.ID,
				}).Warn("notification delivery failed")
			}
		}(n)
	}

	wg.Wait()
}
