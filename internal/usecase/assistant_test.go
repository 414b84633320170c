package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LookupBot/internal/domain"
	"LookupBot/internal/session"
)

func TestAssistantSendsHistoryWithSystemPrompt(t *testing.T) {
	t.Parallel()

	store, err := session.NewStore(session.Policy{MaxSessions: 10, MaxMessages: 10})
	require.NoError(t, err)
	chat := &fakeChat{reply: "Go is a language."}
	a := NewAssistant(chat, store, "  Be brief.  ")

	_, err = a.Ask(context.Background(), 1, "What is Go?")
	require.NoError(t, err)
	chat.reply = "Since 2009."
	reply, err := a.Ask(context.Background(), 1, " Since when? ")
	require.NoError(t, err)

	assert.Equal(t, "Since 2009.", reply)
	require.Len(t, chat.received, 2)
	assert.Equal(t, []domain.ChatMessage{
		{Role: domain.RoleSystem, Text: "Be brief."},
		{Role: domain.RoleUser, Text: "What is Go?"},
		{Role: domain.RoleAssistant, Text: "Go is a language."},
		{Role: domain.RoleUser, Text: "Since when?"},
	}, chat.received[1])
	assert.Len(t, store.History(1), 4)
	assert.Nil(t, store.History(2))
}

func TestAssistantFailureKeepsSession(t *testing.T) {
	t.Parallel()

	store, err := session.NewStore(session.Policy{MaxSessions: 10})
	require.NoError(t, err)
	a := NewAssistant(&fakeChat{err: errors.New("rate limited")}, store, "")

	_, err = a.Ask(context.Background(), 1, "hello")

	assert.ErrorContains(t, err, "rate limited")
	assert.Nil(t, store.History(1))
}

func TestAssistantNotConfigured(t *testing.T) {
	t.Parallel()

	_, err := NewAssistant(nil, nil, "").Ask(context.Background(), 1, "hello")
	assert.Error(t, err)
}

type fakeScheduler struct {
	mu      sync.Mutex
	job     func(time.Time)
	stopped bool
}

func (s *fakeScheduler) Start(_ context.Context, job func(time.Time)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.job = job
	return nil
}

func (s *fakeScheduler) Stop(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	return nil
}

func TestJanitorEvictsIdleSessions(t *testing.T) {
	t.Parallel()

	store, err := session.NewStore(session.Policy{MaxSessions: 10, TTL: time.Minute})
	require.NoError(t, err)
	store.Append(1, domain.ChatMessage{Role: domain.RoleUser, Text: "hi"})

	driver := &fakeScheduler{}
	j := NewJanitor(driver, store, nil)
	require.NoError(t, j.Start(context.Background()))
	require.NotNil(t, driver.job)

	driver.job(time.Now())
	assert.Equal(t, 1, store.Len())

	driver.job(time.Now().Add(2 * time.Minute))
	assert.Zero(t, store.Len())

	require.NoError(t, j.Stop(context.Background()))
	assert.True(t, driver.stopped)
}

func TestJanitorWithoutDriver(t *testing.T) {
	t.Parallel()

	j := NewJanitor(nil, nil, nil)
	assert.NoError(t, j.Start(context.Background()))
	assert.NoError(t, j.Stop(context.Background()))
}
