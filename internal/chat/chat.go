// Package chat holds the conversation domain: chats, their messages, and
// the PostgreSQL store behind them.
//
// Messages are immutable. Only the orchestrator writes them: the user echo
// before any model work, and the sanitized step output after the stream
// completes. Content is stored as the JSON form of []*ai.Part, so tool
// requests and responses survive round trips through history.
package chat

import (
	"errors"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/google/uuid"
)

var (
	// ErrNotFound indicates the chat does not exist.
	ErrNotFound = errors.New("chat not found")

	// ErrForbidden indicates the caller does not own the chat.
	ErrForbidden = errors.New("chat access forbidden")
)

// Visibility controls who can read a chat.
type Visibility string

const (
	VisibilityPrivate Visibility = "private"
	VisibilityPublic  Visibility = "public"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Chat is one conversation.
type Chat struct {
	ID         uuid.UUID
	UserID     string
	Title      string
	Visibility Visibility
	CreatedAt  time.Time
}

// Message is one entry in a chat. Content carries the full part list of
// the underlying model message, including tool requests and responses.
type Message struct {
	ID        uuid.UUID
	ChatID    uuid.UUID
	Role      Role
	Content   []*ai.Part
	CreatedAt time.Time
}

// Text returns the concatenated text parts of the message.
func (m *Message) Text() string {
	var out string
	for _, part := range m.Content {
		if part != nil && part.IsText() {
			out += part.Text
		}
	}
	return out
}
