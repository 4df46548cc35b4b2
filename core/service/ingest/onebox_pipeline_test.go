package ingest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/parvatkhattak/onebox-email-aggregator/core/domain"
	"github.com/parvatkhattak/onebox-email-aggregator/core/port/out"
)

// =============================================================================
// Fakes
// =============================================================================

type fakeRepo struct {
	mu        sync.Mutex
	ops       []string
	upserted  []*domain.Email
	patched   map[string]domain.Category
	upsertErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{patched: make(map[string]domain.Category)}
}

func (r *fakeRepo) Upsert(ctx context.Context, email *domain.Email) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, "upsert")
	if r.upsertErr != nil {
		return r.upsertErr
	}
	copied := *email
	r.upserted = append(r.upserted, &copied)
	return nil
}

func (r *fakeRepo) PatchCategory(ctx context.Context, id string, category domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, "patch")
	r.patched[id] = category
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id string) (*domain.Email, error) {
	return nil, nil
}

func (r *fakeRepo) Search(ctx context.Context, q out.EmailQuery) ([]*domain.Email, int64, error) {
	return nil, 0, nil
}

func (r *fakeRepo) DeleteByAccount(ctx context.Context, accountID string) (int64, error) {
	return 0, nil
}

type fakeClassifier struct {
	repo     *fakeRepo
	category domain.Category
	err      error
}

func (c *fakeClassifier) Classify(ctx context.Context, email *domain.Email) (domain.Category, error) {
	if c.repo != nil {
		c.repo.mu.Lock()
		c.repo.ops = append(c.repo.ops, "classify")
		c.repo.mu.Unlock()
	}
	if c.err != nil {
		return domain.CategoryNotInterested, c.err
	}
	return c.category, nil
}

type fakeDispatcher struct {
	mu         sync.Mutex
	dispatched []*domain.Email
}

func (d *fakeDispatcher) DispatchInterested(ctx context.Context, email *domain.Email) {
	d.mu.Lock()
	defer d.mu.Unlock()
	copied := *email
	d.dispatched = append(d.dispatched, &copied)
}

type fakeRealtime struct {
	mu     sync.Mutex
	events []*domain.RealtimeEvent
}

func (f *fakeRealtime) Subscribe(clientID string) <-chan *domain.RealtimeEvent { return nil }
func (f *fakeRealtime) Unsubscribe(clientID string, ch <-chan *domain.RealtimeEvent) {
}
func (f *fakeRealtime) ConnectedCount() int { return 0 }

func (f *fakeRealtime) Broadcast(ctx context.Context, event *domain.RealtimeEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeRealtime) byType(eventType string) []*domain.RealtimeEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []*domain.RealtimeEvent
	for _, e := range f.events {
		if e.Type == eventType {
			matched = append(matched, e)
		}
	}
	return matched
}

type fakeSession struct {
	backlog   []*domain.Email
	unseen    [][]uint32
	byUID     map[uint32]*domain.Email
	fetched   []uint32
	wakeCount int
	closed    bool
}

func (s *fakeSession) FetchSince(ctx context.Context, since time.Time, fn func(*domain.Email) error) error {
	for _, email := range s.backlog {
		copied := *email
		if err := fn(&copied); err != nil {
			return err
		}
	}
	return nil
}

func (s *fakeSession) SearchUnseen(ctx context.Context) ([]uint32, error) {
	if len(s.unseen) == 0 {
		return nil, nil
	}
	uids := s.unseen[0]
	s.unseen = s.unseen[1:]
	return uids, nil
}

func (s *fakeSession) FetchByUID(ctx context.Context, uid uint32) (*domain.Email, error) {
	s.fetched = append(s.fetched, uid)
	email, ok := s.byUID[uid]
	if !ok {
		return nil, nil
	}
	copied := *email
	return &copied, nil
}

func (s *fakeSession) WaitForUpdate(ctx context.Context) error {
	if s.wakeCount <= 0 {
		return errors.New("connection lost")
	}
	s.wakeCount--
	return nil
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

type fakeDialer struct {
	session out.MailSession
	err     error
}

func (d *fakeDialer) Dial(ctx context.Context, creds out.MailCredentials) (out.MailSession, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.session, nil
}

func passthroughDecrypt(s string) (string, error) { return s, nil }

func newTestService(repo *fakeRepo, classifier out.IntentClassifier, dispatcher InterestedDispatcher, realtime out.RealtimePort) *Service {
	return NewService(
		&fakeDialer{},
		repo,
		classifier,
		dispatcher,
		realtime,
		passthroughDecrypt,
		Config{},
	)
}

// =============================================================================
// Per-Message Pipeline
// =============================================================================

func TestProcessMessage_PersistsBeforeClassifying(t *testing.T) {
	repo := newFakeRepo()
	classifier := &fakeClassifier{repo: repo, category: domain.CategoryInterested}
	svc := newTestService(repo, classifier, nil, nil)

	email := &domain.Email{AccountID: "acc-1", UID: 7, Subject: "hi"}
	if ok := svc.processMessage(context.Background(), email); !ok {
		t.Fatal("processMessage returned false")
	}

	want := []string{"upsert", "classify", "patch"}
	if len(repo.ops) != len(want) {
		t.Fatalf("ops = %v, want %v", repo.ops, want)
	}
	for i, op := range want {
		if repo.ops[i] != op {
			t.Fatalf("ops = %v, want %v", repo.ops, want)
		}
	}
	if repo.patched["acc-1-7"] != domain.CategoryInterested {
		t.Errorf("patched category = %q", repo.patched["acc-1-7"])
	}
}

func TestProcessMessage_PersistFailureStopsPipeline(t *testing.T) {
	repo := newFakeRepo()
	repo.upsertErr = errors.New("mongo down")
	classifier := &fakeClassifier{repo: repo, category: domain.CategoryInterested}
	dispatcher := &fakeDispatcher{}
	realtime := &fakeRealtime{}
	svc := newTestService(repo, classifier, dispatcher, realtime)

	email := &domain.Email{AccountID: "acc-1", UID: 1}
	if ok := svc.processMessage(context.Background(), email); ok {
		t.Fatal("processMessage returned true despite persist failure")
	}

	for _, op := range repo.ops {
		if op == "classify" || op == "patch" {
			t.Fatalf("pipeline continued past persist failure: ops = %v", repo.ops)
		}
	}
	if len(dispatcher.dispatched) != 0 {
		t.Error("notification dispatched for unpersisted email")
	}
	if len(realtime.events) != 0 {
		t.Error("event broadcast for unpersisted email")
	}
}

func TestProcessMessage_NotifiesOnlyInterested(t *testing.T) {
	for _, category := range domain.Categories() {
		t.Run(string(category), func(t *testing.T) {
			repo := newFakeRepo()
			dispatcher := &fakeDispatcher{}
			realtime := &fakeRealtime{}
			svc := newTestService(repo, &fakeClassifier{category: category}, dispatcher, realtime)

			email := &domain.Email{AccountID: "acc-1", UID: 3}
			svc.processMessage(context.Background(), email)

			wantDispatched := 0
			if category == domain.CategoryInterested {
				wantDispatched = 1
			}
			if len(dispatcher.dispatched) != wantDispatched {
				t.Errorf("dispatched %d notifications, want %d", len(dispatcher.dispatched), wantDispatched)
			}

			if got := len(realtime.byType(domain.EventNewEmail)); got != 1 {
				t.Errorf("broadcast %d new-email events, want 1", got)
			}
		})
	}
}

func TestProcessMessage_ClassifierErrorDefaultsToNotInterested(t *testing.T) {
	repo := newFakeRepo()
	classifier := &fakeClassifier{err: errors.New("llm timeout")}
	dispatcher := &fakeDispatcher{}
	svc := newTestService(repo, classifier, dispatcher, nil)

	email := &domain.Email{AccountID: "acc-1", UID: 9}
	if ok := svc.processMessage(context.Background(), email); !ok {
		t.Fatal("processMessage returned false")
	}

	if got := repo.patched["acc-1-9"]; got != domain.CategoryNotInterested {
		t.Errorf("patched category = %q, want %q", got, domain.CategoryNotInterested)
	}
	if len(dispatcher.dispatched) != 0 {
		t.Error("dispatched notification despite classification failure")
	}
}

// =============================================================================
// Backfill
// =============================================================================

func TestBackfill_ProcessesAllAndEmitsProgress(t *testing.T) {
	repo := newFakeRepo()
	realtime := &fakeRealtime{}
	svc := newTestService(repo, &fakeClassifier{category: domain.CategorySpam}, nil, realtime)

	conn := &fakeSession{
		backlog: []*domain.Email{
			{ID: "<a@x>", UID: 1, Subject: "a"},
			{ID: "<b@x>", UID: 2, Subject: "b"},
			{ID: "<c@x>", UID: 3, Subject: "c"},
		},
	}
	sess := &session{account: domain.Account{ID: "acc-1"}}

	if err := svc.backfill(context.Background(), sess, conn); err != nil {
		t.Fatalf("backfill() = %v", err)
	}

	if len(repo.upserted) != 3 {
		t.Fatalf("upserted %d emails, want 3", len(repo.upserted))
	}
	for _, email := range repo.upserted {
		if email.AccountID != "acc-1" {
			t.Errorf("email %s accountId = %q", email.ID, email.AccountID)
		}
		if email.Folder != "INBOX" {
			t.Errorf("email %s folder = %q", email.ID, email.Folder)
		}
	}

	progress := realtime.byType(domain.EventSyncProgress)
	if len(progress) != 3 {
		t.Fatalf("got %d progress events, want 3", len(progress))
	}
	last, ok := progress[2].Payload.(*domain.SyncProgress)
	if !ok {
		t.Fatalf("progress payload type %T", progress[2].Payload)
	}
	if last.Processed != 3 {
		t.Errorf("final progress processed = %d, want 3", last.Processed)
	}
}

// =============================================================================
// Live Watch
// =============================================================================

func TestWatch_FetchesOnlyNewestUnseen(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeClassifier{category: domain.CategorySpam}, nil, nil)

	conn := &fakeSession{
		wakeCount: 1,
		unseen:    [][]uint32{{5, 9, 2}},
		byUID: map[uint32]*domain.Email{
			9: {ID: "<new@x>", UID: 9, Subject: "newest"},
		},
	}
	sess := &session{account: domain.Account{ID: "acc-1"}}

	err := svc.watch(context.Background(), sess, conn)
	if err == nil {
		t.Fatal("watch() returned nil, want connection error")
	}

	if len(conn.fetched) != 1 || conn.fetched[0] != 9 {
		t.Fatalf("fetched UIDs = %v, want [9]", conn.fetched)
	}
	if len(repo.upserted) != 1 || repo.upserted[0].ID != "<new@x>" {
		t.Fatalf("upserted = %v", repo.upserted)
	}
}

func TestWatch_EmptyUnseenContinues(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeClassifier{category: domain.CategorySpam}, nil, nil)

	conn := &fakeSession{
		wakeCount: 2,
		unseen:    [][]uint32{{}},
	}
	sess := &session{account: domain.Account{ID: "acc-1"}}

	if err := svc.watch(context.Background(), sess, conn); err == nil {
		t.Fatal("watch() returned nil, want connection error")
	}
	if len(repo.upserted) != 0 {
		t.Errorf("upserted %d emails, want 0", len(repo.upserted))
	}
}

// =============================================================================
// Registry
// =============================================================================

func TestRegistry_OpenCloseLifecycle(t *testing.T) {
	repo := newFakeRepo()
	conn := &fakeSession{}
	svc := NewService(
		&fakeDialer{session: conn},
		repo,
		&fakeClassifier{category: domain.CategorySpam},
		nil,
		nil,
		passthroughDecrypt,
		Config{WatchRetry: 10 * time.Millisecond},
	)

	account := &domain.Account{
		ID:       "acc-1",
		Email:    "a@example.com",
		IMAPHost: "imap.example.com",
		IMAPPort: 993,
		IMAPUser: "a@example.com",
		Password: "secret",
	}

	if err := svc.Open(context.Background(), account); err != nil {
		t.Fatalf("Open() = %v", err)
	}
	if !svc.IsConnected("acc-1") {
		t.Fatal("IsConnected = false after Open")
	}
	if ids := svc.ActiveAccountIDs(); len(ids) != 1 || ids[0] != "acc-1" {
		t.Fatalf("ActiveAccountIDs = %v", ids)
	}

	svc.Close("acc-1")
	if svc.IsConnected("acc-1") {
		t.Fatal("IsConnected = true after Close")
	}
}

func TestRegistry_DecryptFailureRejectsOpen(t *testing.T) {
	svc := NewService(
		&fakeDialer{},
		newFakeRepo(),
		&fakeClassifier{},
		nil,
		nil,
		func(string) (string, error) { return "", errors.New("bad key") },
		Config{},
	)

	account := &domain.Account{ID: "acc-1", Password: "garbage"}
	if err := svc.Open(context.Background(), account); err == nil {
		t.Fatal("Open() accepted undecryptable password")
	}
	if svc.IsConnected("acc-1") {
		t.Error("session registered despite decrypt failure")
	}
}
