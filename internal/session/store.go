package session

import (
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"LookupBot/internal/domain"
	"LookupBot/internal/ports"
)

// Policy bounds the memory used by assistant conversations.
type Policy struct {
	MaxSessions int
	MaxMessages int
	TTL         time.Duration
}

type conversation struct {
	messages []domain.ChatMessage
	touched  time.Time
}

// Store keeps one conversation per user. The least recently used one is dropped when
// MaxSessions is reached, the oldest turns when MaxMessages is reached, and idle ones after TTL.
type Store struct {
	mu          sync.Mutex
	cache       *lru.Cache[int64, *conversation]
	maxMessages int
	ttl         time.Duration
	now         func() time.Time
}

var _ ports.SessionStore = (*Store)(nil)

// NewStore creates a store with the provided policy.
func NewStore(p Policy) (*Store, error) {
	if p.MaxSessions <= 0 {
		return nil, fmt.Errorf("session store: max sessions must be positive, got %d", p.MaxSessions)
	}
	cache, err := lru.New[int64, *conversation](p.MaxSessions)
	if err != nil {
		return nil, fmt.Errorf("session store: %w", err)
	}
	return &Store{
		cache:       cache,
		maxMessages: p.MaxMessages,
		ttl:         p.TTL,
		now:         time.Now,
	}, nil
}

// History returns a copy of the user's conversation. Expired conversations are dropped.
func (s *Store) History(userID int64) []domain.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.cache.Get(userID)
	if !ok {
		return nil
	}
	if s.expired(conv, s.now()) {
		s.cache.Remove(userID)
		return nil
	}
	out := make([]domain.ChatMessage, len(conv.messages))
	copy(out, conv.messages)
	return out
}

// Append adds turns to the user's conversation, keeping at most MaxMessages of the newest.
func (s *Store) Append(userID int64, messages ...domain.ChatMessage) {
	if len(messages) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	conv, ok := s.cache.Get(userID)
	if !ok || s.expired(conv, now) {
		conv = &conversation{}
	}
	conv.messages = append(conv.messages, messages...)
	if s.maxMessages > 0 && len(conv.messages) > s.maxMessages {
		conv.messages = append([]domain.ChatMessage(nil), conv.messages[len(conv.messages)-s.maxMessages:]...)
	}
	conv.touched = now
	s.cache.Add(userID, conv)
}

// Clear forgets the user's conversation.
func (s *Store) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Remove(userID)
}

// EvictExpired drops every conversation idle for at least TTL and returns how many were dropped.
func (s *Store) EvictExpired(now time.Time) int {
	if s.ttl <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for _, key := range s.cache.Keys() {
		conv, ok := s.cache.Peek(key)
		if ok && s.expired(conv, now) {
			s.cache.Remove(key)
			evicted++
		}
	}
	return evicted
}

// Len reports the number of live conversations.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Len()
}

func (s *Store) expired(conv *conversation, now time.Time) bool {
	return s.ttl > 0 && now.Sub(conv.touched) >= s.ttl
}
