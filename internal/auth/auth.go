// Package auth defines the session boundary. The identity system itself
// is an external collaborator; this package only resolves an incoming
// request to a session or fails with ErrNoSession.
package auth

import (
	"errors"
	"net/http"
	"strings"
)

// ErrNoSession indicates the request carries no valid session.
var ErrNoSession = errors.New("no session")

// Session identifies the authenticated caller of a request.
type Session struct {
	UserID string
}

// Provider resolves a request to a session.
type Provider interface {
	// Session returns the caller's session, or ErrNoSession when the
	// request is unauthenticated.
	Session(r *http.Request) (*Session, error)
}

// Static is a Provider backed by a fixed token→user mapping from
// configuration. Tokens arrive as "Authorization: Bearer <token>".
type Static struct {
	tokens map[string]string
}

// NewStatic builds a provider over the given token→user-id map.
func NewStatic(tokens map[string]string) *Static {
	owned := make(map[string]string, len(tokens))
	for tok, user := range tokens {
		owned[tok] = user
	}
	return &Static{tokens: owned}
}

// Session implements Provider.
func (s *Static) Session(r *http.Request) (*Session, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return nil, ErrNoSession
	}
	user, ok := s.tokens[token]
	if !ok {
		return nil, ErrNoSession
	}
	return &Session{UserID: user}, nil
}
