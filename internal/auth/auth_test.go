package auth

import (
	"errors"
	"net/http/httptest"
	"testing"
)

func TestStaticSession(t *testing.T) {
	t.Parallel()

	provider := NewStatic(map[string]string{
		"tok-alice": "user-alice",
		"tok-bob":   "user-bob",
	})

	tests := []struct {
		name     string
		header   string
		wantUser string
		wantErr  error
	}{
		{name: "valid token", header: "Bearer tok-alice", wantUser: "user-alice"},
		{name: "second user", header: "Bearer tok-bob", wantUser: "user-bob"},
		{name: "unknown token", header: "Bearer tok-mallory", wantErr: ErrNoSession},
		{name: "missing header", header: "", wantErr: ErrNoSession},
		{name: "wrong scheme", header: "Basic dG9rLWFsaWNl", wantErr: ErrNoSession},
		{name: "empty bearer", header: "Bearer ", wantErr: ErrNoSession},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}

			sess, err := provider.Session(r)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Session() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Session() error = %v", err)
			}
			if sess.UserID != tt.wantUser {
				t.Errorf("UserID = %q, want %q", sess.UserID, tt.wantUser)
			}
		})
	}
}
