package extract

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/easel-ai/easel/internal/log"
)

func TestRemoteExtract(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/extract" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q, want bearer token", got)
		}

		var req struct {
			URLs   []string `json:"urls"`
			Prompt string   `json:"prompt"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if len(req.URLs) != 1 || req.URLs[0] != "https://example.com/team" {
			t.Errorf("unexpected urls %v", req.URLs)
		}

		json.NewEncoder(w).Encode(ExtractResult{
			Success:  true,
			DataType: DataTypeTeamMember,
			Items: []map[string]any{
				{"firstName": "Ada", "lastName": "Lovelace"},
			},
		})
	}))
	defer server.Close()

	r, err := NewRemote(server.URL, "test-key", time.Second, log.NewNop())
	if err != nil {
		t.Fatalf("NewRemote() error = %v", err)
	}

	result, err := r.Extract(t.Context(), []string{"https://example.com/team"}, "extract the team", DataTypeTeamMember)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !result.Success {
		t.Errorf("Success = false, want true")
	}
	if len(result.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(result.Items))
	}
	if result.Items[0]["firstName"] != "Ada" {
		t.Errorf("firstName = %v, want Ada", result.Items[0]["firstName"])
	}
}

func TestRemoteExtractStructuredFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ExtractResult{
			Success: false,
			Error:   "page could not be rendered",
		})
	}))
	defer server.Close()

	r, err := NewRemote(server.URL, "test-key", time.Second, log.NewNop())
	if err != nil {
		t.Fatalf("NewRemote() error = %v", err)
	}

	result, err := r.Extract(t.Context(), []string{"https://example.com"}, "", "")
	if err != nil {
		t.Fatalf("Extract() error = %v, structured failures must not be transport errors", err)
	}
	if result.Success {
		t.Error("Success = true, want false")
	}
	if result.Error != "page could not be rendered" {
		t.Errorf("Error = %q, want upstream message", result.Error)
	}
}

func TestRemoteExtractServerError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer server.Close()

	r, err := NewRemote(server.URL, "test-key", time.Second, log.NewNop())
	if err != nil {
		t.Fatalf("NewRemote() error = %v", err)
	}

	if _, err := r.Extract(t.Context(), []string{"https://example.com"}, "", ""); err == nil {
		t.Error("Extract() error = nil, want error on HTTP 500")
	}
}

func TestRemoteMapURL(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/map" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(MapResult{
			Success: true,
			Links:   []string{"https://example.com/", "https://example.com/about"},
		})
	}))
	defer server.Close()

	r, err := NewRemote(server.URL, "test-key", time.Second, log.NewNop())
	if err != nil {
		t.Fatalf("NewRemote() error = %v", err)
	}

	result, err := r.MapURL(t.Context(), "https://example.com")
	if err != nil {
		t.Fatalf("MapURL() error = %v", err)
	}
	if !result.Success {
		t.Error("Success = false, want true")
	}
	if len(result.Links) != 2 {
		t.Errorf("got %d links, want 2", len(result.Links))
	}
}

func TestNewRemoteValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewRemote("", "key", time.Second, log.NewNop()); err == nil {
		t.Error("NewRemote() with empty base URL should fail")
	}
	if _, err := NewRemote("https://api.example.com", "", time.Second, log.NewNop()); err == nil {
		t.Error("NewRemote() with empty API key should fail")
	}
}
