package tools

import (
	"context"

	"github.com/google/uuid"
)

// Turn identifies the conversation turn a tool call belongs to.
// Document tools read it to tie created artifacts to the chat and its
// owner.
type Turn struct {
	ChatID uuid.UUID
	UserID string
}

// turnKey is an unexported context key.
type turnKey struct{}

// ContextWithTurn stores the turn identity in the context. The
// orchestrator injects it before dispatching tool calls.
func ContextWithTurn(ctx context.Context, t Turn) context.Context {
	return context.WithValue(ctx, turnKey{}, t)
}

// TurnFromContext retrieves the turn identity. The zero Turn means no
// turn was attached.
func TurnFromContext(ctx context.Context) Turn {
	t, _ := ctx.Value(turnKey{}).(Turn)
	return t
}
