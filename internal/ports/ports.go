package ports

import (
	"context"
	"time"

	"LookupBot/internal/domain"
)

// Source looks a single term up in one knowledge source.
// Absence is reported as an error; callers treat every error as "nothing found".
type Source interface {
	Name() string
	Fetch(ctx context.Context, term string) (*domain.SourceResult, error)
}

// Encyclopedia exposes raw pages for strategies that post-process the extract themselves.
type Encyclopedia interface {
	Name() string
	Page(ctx context.Context, query string) (*domain.Page, error)
}

// Repository persists users, their queries and the results found for them.
type Repository interface {
	UpsertUser(ctx context.Context, user domain.User) error
	RecordQuery(ctx context.Context, userID int64, text string, kind domain.IntentKind) (int64, error)
	RecordResult(ctx context.Context, result domain.ResultRecord) error
	History(ctx context.Context, userID int64, limit int) ([]domain.QueryRecord, error)
	Stats(ctx context.Context, userID int64) (domain.UserStats, error)
}

// Messenger delivers outbound text through the chat transport.
type Messenger interface {
	Send(ctx context.Context, chatID int64, text string, keyboard domain.Keyboard) (int64, error)
	Edit(ctx context.Context, chatID, messageID int64, text string) error
	Typing(ctx context.Context, chatID int64) error
}

// ChatClient completes a conversation with a remote language model.
type ChatClient interface {
	Complete(ctx context.Context, messages []domain.ChatMessage) (string, error)
}

// SessionStore keeps per-user assistant conversations.
type SessionStore interface {
	History(userID int64) []domain.ChatMessage
	Append(userID int64, messages ...domain.ChatMessage)
	Clear(userID int64)
	EvictExpired(now time.Time) int
}

// Metrics records lookup outcomes.
type Metrics interface {
	SourceLookup(source, outcome string)
	Query(kind domain.IntentKind)
	FastPathTimeout()
	AnswerDuration(kind domain.IntentKind, d time.Duration)
}

// Scheduler controls when periodic jobs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
