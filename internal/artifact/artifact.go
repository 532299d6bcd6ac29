// Package artifact holds documents built by the agent's tools: typed,
// versioned content constructed while the conversation streams.
//
// A document is an append-only version sequence. Creation writes version
// 1; every update inserts the next version. Construction progress is
// observable on the stream through an event envelope per artifact:
// id, title, kind, clear, content deltas, then exactly one finish.
package artifact

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound indicates the document does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrUnsupportedKind indicates no handler is registered for the kind.
	ErrUnsupportedKind = errors.New("unsupported document kind")
)

// Kind identifies a document type. All four kinds are valid stored
// values; only kinds with a registered handler can be built by tools.
type Kind string

const (
	KindText  Kind = "text"
	KindCode  Kind = "code"
	KindImage Kind = "image"
	KindSheet Kind = "sheet"
)

// ValidKind reports whether k is one of the enumerated kinds.
func ValidKind(k Kind) bool {
	switch k {
	case KindText, KindCode, KindImage, KindSheet:
		return true
	}
	return false
}

// Document is one version of an artifact.
type Document struct {
	ID        uuid.UUID
	Version   int
	Title     string
	Kind      Kind
	Content   string
	Metadata  map[string]any
	ChatID    uuid.UUID
	UserID    string
	CreatedAt time.Time
}
