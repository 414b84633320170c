package usecase

import (
	"context"
	"fmt"
	"strings"

	"LookupBot/internal/domain"
	"LookupBot/internal/ports"
)

// Assistant keeps a per-user conversation with a remote language model.
type Assistant struct {
	client       ports.ChatClient
	sessions     ports.SessionStore
	systemPrompt string
}

// NewAssistant wires the chat client with the session store.
func NewAssistant(client ports.ChatClient, sessions ports.SessionStore, systemPrompt string) *Assistant {
	return &Assistant{
		client:       client,
		sessions:     sessions,
		systemPrompt: strings.TrimSpace(systemPrompt),
	}
}

// Ask sends the question along with the user's earlier turns and remembers the exchange.
// A failed completion leaves the session untouched.
func (a *Assistant) Ask(ctx context.Context, userID int64, question string) (string, error) {
	if a.client == nil || a.sessions == nil {
		return "", fmt.Errorf("assistant is not configured")
	}

	history := a.sessions.History(userID)
	messages := make([]domain.ChatMessage, 0, len(history)+2)
	if a.systemPrompt != "" {
		messages = append(messages, domain.ChatMessage{Role: domain.RoleSystem, Text: a.systemPrompt})
	}
	messages = append(messages, history...)
	question = strings.TrimSpace(question)
	messages = append(messages, domain.ChatMessage{Role: domain.RoleUser, Text: question})

	reply, err := a.client.Complete(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("complete conversation: %w", err)
	}

	a.sessions.Append(userID,
		domain.ChatMessage{Role: domain.RoleUser, Text: question},
		domain.ChatMessage{Role: domain.RoleAssistant, Text: reply},
	)
	return reply, nil
}

// Clear forgets the user's conversation.
func (a *Assistant) Clear(userID int64) {
	if a.sessions != nil {
		a.sessions.Clear(userID)
	}
}
