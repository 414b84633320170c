package domain

// Message is an inbound text message from the chat transport.
type Message struct {
	ChatID    int64
	MessageID int64
	Text      string
	From      User
}

// Keyboard is a reply keyboard laid out as rows of button captions.
type Keyboard [][]string

// ChatRole identifies the author of an assistant conversation turn.
type ChatRole string

const (
	RoleSystem    ChatRole = "system"
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ChatMessage is one turn of an assistant conversation.
type ChatMessage struct {
	Role ChatRole
	Text string
}
