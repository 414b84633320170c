package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"LookupBot/internal/domain"
)

type fakeSource struct {
	name  string
	mu    sync.Mutex
	calls int
	fetch func(ctx context.Context, call int, term string) (*domain.SourceResult, error)
}

func (s *fakeSource) Name() string { return s.name }

func (s *fakeSource) Fetch(ctx context.Context, term string) (*domain.SourceResult, error) {
	s.mu.Lock()
	s.calls++
	call := s.calls
	s.mu.Unlock()
	return s.fetch(ctx, call, term)
}

func (s *fakeSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func missingSource(name string) *fakeSource {
	return &fakeSource{name: name, fetch: func(context.Context, int, string) (*domain.SourceResult, error) {
		return nil, domain.ErrNoResult
	}}
}

func failingSource(name string) *fakeSource {
	return &fakeSource{name: name, fetch: func(context.Context, int, string) (*domain.SourceResult, error) {
		return nil, errors.New("unexpected status 503")
	}}
}

func foundSource(name, body string) *fakeSource {
	return &fakeSource{name: name, fetch: func(_ context.Context, _ int, term string) (*domain.SourceResult, error) {
		return &domain.SourceResult{Title: term, Body: body, Source: name, Label: name}, nil
	}}
}

// fakeEncyclopedia serves pages keyed by the lower-cased query.
type fakeEncyclopedia struct {
	mu      sync.Mutex
	pages   map[string]domain.Page
	queries []string
}

func (e *fakeEncyclopedia) Name() string { return "wikipedia_ru" }

func (e *fakeEncyclopedia) Page(_ context.Context, query string) (*domain.Page, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.queries = append(e.queries, query)
	page, ok := e.pages[strings.ToLower(query)]
	if !ok {
		return nil, domain.ErrNoResult
	}
	page.Source = "wikipedia_ru"
	return &page, nil
}

type sentMessage struct {
	ChatID   int64
	Text     string
	Keyboard domain.Keyboard
}

type editedMessage struct {
	MessageID int64
	Text      string
}

type fakeMessenger struct {
	mu      sync.Mutex
	nextID  int64
	sent    []sentMessage
	edits   []editedMessage
	typing  int
	editErr error
}

func (m *fakeMessenger) Send(_ context.Context, chatID int64, text string, keyboard domain.Keyboard) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.sent = append(m.sent, sentMessage{ChatID: chatID, Text: text, Keyboard: keyboard})
	return m.nextID, nil
}

func (m *fakeMessenger) Edit(_ context.Context, _ int64, messageID int64, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.editErr != nil {
		return m.editErr
	}
	m.edits = append(m.edits, editedMessage{MessageID: messageID, Text: text})
	return nil
}

func (m *fakeMessenger) Typing(context.Context, int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.typing++
	return nil
}

func (m *fakeMessenger) Sent() []sentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMessage(nil), m.sent...)
}

func (m *fakeMessenger) Edits() []editedMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]editedMessage(nil), m.edits...)
}

func (m *fakeMessenger) LastEdit() string {
	edits := m.Edits()
	if len(edits) == 0 {
		return ""
	}
	return edits[len(edits)-1].Text
}

func (m *fakeMessenger) LastSent() sentMessage {
	sent := m.Sent()
	if len(sent) == 0 {
		return sentMessage{}
	}
	return sent[len(sent)-1]
}

type recordedQuery struct {
	UserID int64
	Text   string
	Kind   domain.IntentKind
}

type fakeRepository struct {
	mu      sync.Mutex
	users   []domain.User
	queries []recordedQuery
	results []domain.ResultRecord
	history []domain.QueryRecord
	stats   domain.UserStats
	err     error
}

func (r *fakeRepository) UpsertUser(_ context.Context, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append(r.users, user)
	return r.err
}

func (r *fakeRepository) RecordQuery(_ context.Context, userID int64, text string, kind domain.IntentKind) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	r.queries = append(r.queries, recordedQuery{UserID: userID, Text: text, Kind: kind})
	return int64(len(r.queries)), nil
}

func (r *fakeRepository) RecordResult(_ context.Context, result domain.ResultRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result)
	return r.err
}

func (r *fakeRepository) History(context.Context, int64, int) ([]domain.QueryRecord, error) {
	return r.history, r.err
}

func (r *fakeRepository) Stats(context.Context, int64) (domain.UserStats, error) {
	return r.stats, r.err
}

type countingMetrics struct {
	mu        sync.Mutex
	lookups   []string
	queries   []domain.IntentKind
	timeouts  int
	durations int
}

func (m *countingMetrics) SourceLookup(source, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups = append(m.lookups, source+":"+outcome)
}

func (m *countingMetrics) Query(kind domain.IntentKind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, kind)
}

func (m *countingMetrics) FastPathTimeout() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeouts++
}

func (m *countingMetrics) AnswerDuration(domain.IntentKind, time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.durations++
}

type fakeChat struct {
	reply    string
	err      error
	received [][]domain.ChatMessage
}

func (c *fakeChat) Complete(_ context.Context, messages []domain.ChatMessage) (string, error) {
	c.received = append(c.received, append([]domain.ChatMessage(nil), messages...))
	return c.reply, c.err
}

func noSleep(_ context.Context, _ time.Duration) error { return nil }
