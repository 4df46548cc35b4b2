package ingest

import (
	"context"
	"time"

	"github.com/parvatkhattak/onebox-email-aggregator/core/domain"
	"github.com/parvatkhattak/onebox-email-aggregator/core/port/out"
	"github.com/parvatkhattak/onebox-email-aggregator/pkg/logger"
)

// =============================================================================
// Session Lifecycle
// =============================================================================

// run owns one account's connection for the session's lifetime. Dial,
// backfill, and watch failures all funnel into the same retry loop;
// only closing the session stops it.
func (s *Service) run(ctx context.Context, sess *session, creds out.MailCredentials) {
	defer close(sess.done)

	log := logger.WithAccount(sess.account.ID)

	for {
		if ctx.Err() != nil {
			return
		}

		conn, err := s.dialer.Dial(ctx, creds)
		if err != nil {
			log.WithError(err).Warn("imap connect failed, retrying in %s", s.cfg.WatchRetry)
			if !sleepCtx(ctx, s.cfg.WatchRetry) {
				return
			}
			continue
		}

		log.Info("imap session established")

		if err := s.backfill(ctx, sess, conn); err != nil {
			log.WithError(err).Warn("backfill failed, reconnecting in %s", s.cfg.WatchRetry)
			conn.Close()
			if !sleepCtx(ctx, s.cfg.WatchRetry) {
				return
			}
			continue
		}

		err = s.watch(ctx, sess, conn)
		conn.Close()
		if ctx.Err() != nil {
			return
		}

		log.WithError(err).Warn("watch loop ended, reconnecting in %s", s.cfg.WatchRetry)
		if !sleepCtx(ctx, s.cfg.WatchRetry) {
			return
		}
	}
}

// backfill ingests everything received within the lookback window,
// sequentially in UID order, emitting progress after each message.
func (s *Service) backfill(ctx context.Context, sess *session, conn out.MailSession) error {
	since := time.Now().AddDate(0, 0, -s.cfg.LookbackDays)
	processed := 0

	err := conn.FetchSince(ctx, since, func(email *domain.Email) error {
		email.AccountID = sess.account.ID
		email.Folder = s.cfg.InboxFolder
		s.processMessage(ctx, email)

		processed++
		s.pushProgress(ctx, sess.account.ID, processed)
		return nil
	})
	if err != nil {
		return err
	}

	logger.WithAccount(sess.account.ID).Info("backfill complete: %d messages", processed)
	return nil
}

// watch blocks on mailbox updates. On each wake only the newest unseen
// message is fetched; older unseen mail was either backfilled already or
// will surface on later wakes.
func (s *Service) watch(ctx context.Context, sess *session, conn out.MailSession) error {
	log := logger.WithAccount(sess.account.ID)

	for {
		if err := conn.WaitForUpdate(ctx); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		uids, err := conn.SearchUnseen(ctx)
		if err != nil {
			return err
		}
		if len(uids) == 0 {
			continue
		}

		maxUID := uids[0]
		for _, uid := range uids[1:] {
			if uid > maxUID {
				maxUID = uid
			}
		}

		email, err := conn.FetchByUID(ctx, maxUID)
		if err != nil {
			return err
		}
		if email == nil {
			continue
		}

		email.AccountID = sess.account.ID
		email.Folder = s.cfg.InboxFolder
		s.processMessage(ctx, email)

		log.Debug("ingested live message uid=%d", maxUID)
	}
}

// =============================================================================
// Per-Message Pipeline
// =============================================================================

// processMessage runs normalize -> persist -> classify -> notify ->
// broadcast. Persist failure aborts the rest; every later stage only
// logs its own failure. Returns whether the message was persisted.
func (s *Service) processMessage(ctx context.Context, email *domain.Email) bool {
	email.Normalize()

	log := logger.WithAccount(email.AccountID).WithField("message_id", email.ID)

	if err := s.emailRepo.Upsert(ctx, email); err != nil {
		log.WithError(err).Error("failed to persist email")
		return false
	}

	category, err := s.classifier.Classify(ctx, email)
	if err != nil {
		log.WithError(err).Warn("classification failed, defaulting to %s", category)
	}
	email.Category = category

	if err := s.emailRepo.PatchCategory(ctx, email.ID, category); err != nil {
		log.WithError(err).Error("failed to update category")
	}

	if email.Category == domain.CategoryInterested && s.dispatcher != nil {
		s.dispatcher.DispatchInterested(ctx, email)
	}

	s.broadcast(ctx, &domain.RealtimeEvent{
		Type:    domain.EventNewEmail,
		Payload: email,
	})

	return true
}

func (s *Service) pushProgress(ctx context.Context, accountID string, processed int) {
	s.broadcast(ctx, &domain.RealtimeEvent{
		Type: domain.EventSyncProgress,
		Payload: &domain.SyncProgress{
			AccountID: accountID,
			Folder:    s.cfg.InboxFolder,
			Processed: processed,
		},
	})
}

func (s *Service) broadcast(ctx context.Context, event *domain.RealtimeEvent) {
	if s.realtime == nil {
		return
	}
	if err := s.realtime.Broadcast(ctx, event); err != nil {
		logger.WithError(err).Debug("realtime broadcast failed")
	}
}

// sleepCtx sleeps for d unless ctx is done first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
