package domain

import "time"

// User is a chat participant as seen by the transport.
type User struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
}

// QueryRecord is a persisted search query.
type QueryRecord struct {
	ID          int64
	UserID      int64
	Text        string
	Kind        IntentKind
	ResultCount int
	CreatedAt   time.Time
}

// ResultRecord is one persisted successful fetch for a query.
type ResultRecord struct {
	QueryID int64
	Source  string
	Title   string
	Summary string
	URL     string
}

// UserStats aggregates a user's activity.
type UserStats struct {
	TotalSearches int
	ByKind        map[IntentKind]int
	FirstSearch   *time.Time
}
