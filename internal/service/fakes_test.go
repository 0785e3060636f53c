package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx/types"

	"github.com/onurcolak/digest-scheduler/internal/domain"
	"github.com/onurcolak/digest-scheduler/internal/repository"
)

//
// Test fakes shared by the service tests.
//

type sentMessage struct {
	to   string
	text string
}

type fakeTransport struct {
	self    string
	selfErr error
	sendErr error
	chats   []domain.TransportChat
	listErr error

	logoutErr error

	sent           []sentMessage
	selfCalls      int
	logoutCalls    int
	reconnectCalls int
}

func (t *fakeTransport) SendMessage(ctx context.Context, to, text string) error {
	if t.sendErr != nil {
		return t.sendErr
	}
	t.sent = append(t.sent, sentMessage{to: to, text: text})
	return nil
}

func (t *fakeTransport) ListChats(ctx context.Context) ([]domain.TransportChat, error) {
	return t.chats, t.listErr
}

func (t *fakeTransport) SelfID(ctx context.Context) (string, error) {
	t.selfCalls++
	return t.self, t.selfErr
}

func (t *fakeTransport) Logout(ctx context.Context) error {
	t.logoutCalls++
	return t.logoutErr
}

func (t *fakeTransport) Reconnect(ctx context.Context) error {
	t.reconnectCalls++
	return nil
}

type fakeGenerator struct {
	text   string
	failOn map[string]bool
	calls  []string
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt, credential string) (string, error) {
	g.calls = append(g.calls, credential)
	if g.failOn[credential] {
		return "", fmt.Errorf("quota exceeded on attempt %d", len(g.calls))
	}
	return g.text, nil
}

type fakeMessages struct {
	window []domain.Message
	err    error

	filtered   []domain.Message
	lastFilter domain.MessageFilter

	upserted []domain.Message
}

func (m *fakeMessages) ListFiltered(ctx context.Context, f domain.MessageFilter) ([]domain.Message, error) {
	m.lastFilter = f
	return m.filtered, m.err
}

func (m *fakeMessages) ListWindow(ctx context.Context, start, end time.Time) ([]domain.Message, error) {
	return m.window, m.err
}

func (m *fakeMessages) Upsert(ctx context.Context, msg domain.Message) error {
	m.upserted = append(m.upserted, msg)
	return nil
}

func (m *fakeMessages) List(ctx context.Context, chatID string, page, pageSize int) ([]domain.Message, int64, error) {
	return m.upserted, int64(len(m.upserted)), nil
}

type fakeChats struct {
	names   map[string]string
	nameErr error

	upserted    []domain.Chat
	replaced    []domain.Chat
	replacedFor string
}

func (c *fakeChats) NameMap(ctx context.Context) (map[string]string, error) {
	return c.names, c.nameErr
}

func (c *fakeChats) Upsert(ctx context.Context, chat domain.Chat) error {
	c.upserted = append(c.upserted, chat)
	return nil
}

func (c *fakeChats) ReplaceForOwner(ctx context.Context, ownerID string, chats []domain.Chat) error {
	c.replacedFor = ownerID
	c.replaced = chats
	return nil
}

func (c *fakeChats) ListByOwner(ctx context.Context, ownerID string) ([]domain.Chat, error) {
	return c.replaced, nil
}

type fakeReports struct {
	createErr error
	created   []domain.ReportRecord
}

func (r *fakeReports) Create(ctx context.Context, rec *domain.ReportRecord) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.created = append(r.created, *rec)
	return nil
}

func (r *fakeReports) List(ctx context.Context, ownerID string, page, pageSize int) ([]domain.ReportRecord, int64, error) {
	return r.created, int64(len(r.created)), nil
}

type fakeQueue struct {
	mu       sync.Mutex
	commands []*domain.Command
	claimed  map[string]bool
	staleN   int64
	staleAt  time.Time
	listErr  error
}

func (q *fakeQueue) add(cmdType domain.CommandType, payload string) *domain.Command {
	cmd := &domain.Command{
		ID:      fmt.Sprintf("cmd-%d", len(q.commands)+1),
		Type:    cmdType,
		Payload: types.JSONText(payload),
		Status:  domain.CommandPending,
	}
	q.commands = append(q.commands, cmd)
	return cmd
}

func (q *fakeQueue) find(id string) *domain.Command {
	for _, c := range q.commands {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (q *fakeQueue) Create(ctx context.Context, cmdType domain.CommandType, payload json.RawMessage) (*domain.Command, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.add(cmdType, string(payload)), nil
}

func (q *fakeQueue) ListPending(ctx context.Context) ([]domain.Command, error) {
	if q.listErr != nil {
		return nil, q.listErr
	}
	var out []domain.Command
	for _, c := range q.commands {
		if c.Status == domain.CommandPending {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (q *fakeQueue) MarkProcessing(ctx context.Context, id string) error {
	if q.claimed[id] {
		return repository.ErrAlreadyClaimed
	}
	c := q.find(id)
	if c == nil || c.Status != domain.CommandPending {
		return repository.ErrAlreadyClaimed
	}
	c.Status = domain.CommandProcessing
	return nil
}

func (q *fakeQueue) MarkCompleted(ctx context.Context, id string) error {
	q.find(id).Status = domain.CommandCompleted
	return nil
}

func (q *fakeQueue) MarkFailed(ctx context.Context, id, message string) error {
	c := q.find(id)
	c.Status = domain.CommandFailed
	c.Error = &message
	return nil
}

func (q *fakeQueue) FailStale(ctx context.Context, olderThan time.Time, message string) (int64, error) {
	q.staleAt = olderThan
	return q.staleN, nil
}

func (q *fakeQueue) GetByID(ctx context.Context, id string) (*domain.Command, error) {
	if c := q.find(id); c != nil {
		return c, nil
	}
	return nil, repository.ErrNotFound
}

func (q *fakeQueue) List(ctx context.Context, status *domain.CommandStatus, page, pageSize int) ([]domain.Command, int64, error) {
	var out []domain.Command
	for _, c := range q.commands {
		if status == nil || c.Status == *status {
			out = append(out, *c)
		}
	}
	return out, int64(len(out)), nil
}

type fakeStatus struct {
	current *domain.SystemStatus
	getErr  error
	sets    []domain.ConnectionStatus
	lastQR  *string
}

func (s *fakeStatus) Get(ctx context.Context, id string) (*domain.SystemStatus, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	if s.current == nil {
		return nil, repository.ErrNotFound
	}
	return s.current, nil
}

func (s *fakeStatus) Set(ctx context.Context, id string, status domain.ConnectionStatus, qrPayload *string) error {
	s.sets = append(s.sets, status)
	s.lastQR = qrPayload
	s.current = &domain.SystemStatus{ID: id, Status: status, QRPayload: qrPayload}
	return nil
}

type fakeSchedules struct {
	active []domain.Schedule
}

func (s *fakeSchedules) ListActive(ctx context.Context) ([]domain.Schedule, error) {
	return s.active, nil
}

func (s *fakeSchedules) GetActiveByID(ctx context.Context, id string) (*domain.Schedule, error) {
	for _, sched := range s.active {
		if sched.ID == id {
			return &sched, nil
		}
	}
	return nil, fmt.Errorf("schedule %s: %w", id, repository.ErrNotFound)
}

type fakeReportRunner struct {
	failFor map[string]error
	targets []domain.Target
	windows []domain.Window
}

func (r *fakeReportRunner) GenerateAndDeliver(ctx context.Context, target domain.Target, window domain.Window) (domain.ReportOutcome, error) {
	r.targets = append(r.targets, target)
	r.windows = append(r.windows, window)
	if err := r.failFor[target.ID]; err != nil {
		return "", err
	}
	return domain.ReportSent, nil
}

type fakeSyncer struct {
	calls int
	err   error
}

func (s *fakeSyncer) SyncChats(ctx context.Context) (int, error) {
	s.calls++
	return 3, s.err
}
