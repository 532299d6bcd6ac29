package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/firebase/genkit/go/ai"
	"github.com/google/uuid"
	"go.uber.org/goleak"

	"github.com/easel-ai/easel/internal/agent"
	"github.com/easel-ai/easel/internal/auth"
	"github.com/easel-ai/easel/internal/chat"
	"github.com/easel-ai/easel/internal/log"
	"github.com/easel-ai/easel/internal/testutil"
	"github.com/easel-ai/easel/internal/tools"
)

// memChatStore is an in-memory chat store satisfying both the
// orchestrator's and the handler's store interfaces.
type memChatStore struct {
	mu       sync.Mutex
	chats    map[uuid.UUID]*chat.Chat
	messages map[uuid.UUID][]*chat.Message
}

func newMemChatStore() *memChatStore {
	return &memChatStore{
		chats:    make(map[uuid.UUID]*chat.Chat),
		messages: make(map[uuid.UUID][]*chat.Message),
	}
}

func (s *memChatStore) Get(_ context.Context, id uuid.UUID) (*chat.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.chats[id]
	if !ok {
		return nil, chat.ErrNotFound
	}
	return c, nil
}

func (s *memChatStore) Create(_ context.Context, c *chat.Chat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.chats[c.ID]; !ok {
		s.chats[c.ID] = c
	}
	return nil
}

func (s *memChatStore) AddMessages(_ context.Context, chatID uuid.UUID, msgs []*chat.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[chatID] = append(s.messages[chatID], msgs...)
	return nil
}

func (s *memChatStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.chats[id]; !ok {
		return chat.ErrNotFound
	}
	delete(s.chats, id)
	delete(s.messages, id)
	return nil
}

func (s *memChatStore) saved(chatID uuid.UUID) []*chat.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*chat.Message(nil), s.messages[chatID]...)
}

// TestChatEndToEnd drives a full turn through the HTTP handler with a
// real orchestrator: the scripted model requests a scrape, the tool
// runs against a scripted extractor, and a second step streams the
// answer.
func TestChatEndToEnd(t *testing.T) {
	defer goleak.VerifyNone(t)

	models := &testutil.FakeModel{
		Completion: "Acme team",
		Steps: []testutil.ScriptedStep{
			{
				ToolRequests: []*ai.ToolRequest{{
					Name:  "scrapeUrl",
					Ref:   "call-1",
					Input: map[string]any{"url": "https://acme.test/about", "dataType": "team-member"},
				}},
			},
			{Chunks: []string{"Found 2 ", "team members."}},
		},
	}
	extractor := &testutil.FakeExtractor{ExtractRes: testutil.ScriptedTeamMembers(2)}

	ext, err := tools.NewExtractionTools(extractor, log.NewNop())
	if err != nil {
		t.Fatalf("extraction toolset: %v", err)
	}
	ts, err := ext.Tools()
	if err != nil {
		t.Fatalf("extraction tools: %v", err)
	}
	registry, err := tools.NewRegistry(ts...)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}

	store := newMemChatStore()
	orch, err := agent.New(agent.Config{
		Models:       models,
		Chats:        store,
		Tools:        registry,
		Logger:       log.NewNop(),
		DefaultModel: "googleai/gemini-2.5-flash",
	})
	if err != nil {
		t.Fatalf("orchestrator: %v", err)
	}

	srv, err := NewServer(ServerConfig{
		Logger:    log.NewNop(),
		Auth:      auth.NewStatic(map[string]string{"tok-alice": "user-alice"}),
		Runner:    orch,
		Chats:     store,
		Documents: &fakeDocuments{},
		Scraped:   &fakeScraped{},
		DB:        &fakePinger{},
		RateBurst: 1000,
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}

	chatID := uuid.New()
	body := `{
		"id": "` + chatID.String() + `",
		"messages": [{"role": "user", "content": "Who works at acme.test?"}],
		"selectedModel": "chat-model"
	}`

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer tok-alice")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	events := testutil.ParseSSEEvents(t, w.Body.String())
	if len(events) == 0 {
		t.Fatal("no SSE events")
	}

	if events[0].Type != "metadata" {
		t.Errorf("first event type = %q, want metadata", events[0].Type)
	}
	if !strings.Contains(events[0].Data, "Acme team") {
		t.Errorf("metadata missing title: %s", events[0].Data)
	}

	var sawCall, sawResult bool
	var text strings.Builder
	for _, ev := range events {
		switch ev.Type {
		case "tool-call":
			sawCall = true
			if !strings.Contains(ev.Data, "scrapeUrl") || !strings.Contains(ev.Data, "call-1") {
				t.Errorf("tool-call payload = %s", ev.Data)
			}
		case "tool-result":
			sawResult = true
			if !strings.Contains(ev.Data, "team-member") {
				t.Errorf("tool-result payload = %s", ev.Data)
			}
		case "text-delta":
			var delta string
			if err := json.Unmarshal([]byte(ev.Data), &delta); err != nil {
				t.Fatalf("decoding text delta %q: %v", ev.Data, err)
			}
			text.WriteString(delta)
		case "error":
			t.Errorf("unexpected error event: %s", ev.Data)
		}
	}
	if !sawCall || !sawResult {
		t.Errorf("tool events: call=%v result=%v", sawCall, sawResult)
	}
	if got := text.String(); got != "Found 2 team members." {
		t.Errorf("streamed text = %q", got)
	}

	if c, err := store.Get(context.Background(), chatID); err != nil {
		t.Errorf("chat not created: %v", err)
	} else if c.Title != "Acme team" {
		t.Errorf("chat title = %q", c.Title)
	}

	msgs := store.saved(chatID)
	if len(msgs) != 4 {
		t.Fatalf("saved %d messages, want 4", len(msgs))
	}
	if msgs[0].Role != chat.RoleUser {
		t.Errorf("first message role = %q", msgs[0].Role)
	}
	if msgs[2].Role != chat.RoleTool {
		t.Errorf("third message role = %q", msgs[2].Role)
	}
	if got := msgs[3].Text(); got != "Found 2 team members." {
		t.Errorf("final message text = %q", got)
	}
	if models.StepCalls != 2 {
		t.Errorf("model steps = %d, want 2", models.StepCalls)
	}
}
