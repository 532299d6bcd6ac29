package artifact

import (
	"context"
	"fmt"

	"github.com/easel-ai/easel/internal/stream"
)

// CreateRequest is the input to Handler.Create.
type CreateRequest struct {
	Title string
	Kind  Kind

	// Seed is caller-provided initial content. When set, the handler
	// must emit it as a single content delta and return it unchanged
	// without calling the model.
	Seed string

	// Metadata is forwarded to the stream before content when present.
	Metadata map[string]any
}

// Handler builds document content of one kind, forwarding construction
// progress to the sink as content deltas.
type Handler interface {
	// Create produces the initial content for a new document.
	Create(ctx context.Context, req CreateRequest, sink stream.Sink) (string, error)

	// Update produces the next version's content from the current
	// document and an instruction.
	Update(ctx context.Context, doc *Document, instruction string, sink stream.Sink) (string, error)
}

// Registry maps kinds to handlers. Immutable after construction; lookup
// of an unregistered kind is an expected outcome, not a bug.
type Registry struct {
	handlers map[Kind]Handler
}

// NewRegistry builds a registry from the given handlers.
func NewRegistry(handlers map[Kind]Handler) *Registry {
	owned := make(map[Kind]Handler, len(handlers))
	for k, h := range handlers {
		owned[k] = h
	}
	return &Registry{handlers: owned}
}

// Handler returns the handler for kind, or ErrUnsupportedKind.
func (r *Registry) Handler(kind Kind) (Handler, error) {
	h, ok := r.handlers[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, kind)
	}
	return h, nil
}

// Kinds returns the registered kinds.
func (r *Registry) Kinds() []Kind {
	kinds := make([]Kind, 0, len(r.handlers))
	for k := range r.handlers {
		kinds = append(kinds, k)
	}
	return kinds
}
