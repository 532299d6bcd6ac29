package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/google/uuid"

	"github.com/easel-ai/easel/internal/agent"
	"github.com/easel-ai/easel/internal/auth"
	"github.com/easel-ai/easel/internal/chat"
	"github.com/easel-ai/easel/internal/log"
	"github.com/easel-ai/easel/internal/stream"
)

// Runner executes conversation turns. *agent.Orchestrator satisfies it.
type Runner interface {
	Run(ctx context.Context, turn agent.Turn, sink stream.Sink) error
}

// ChatStore is the chat persistence capability the handlers need.
// *chat.Store satisfies it.
type ChatStore interface {
	Get(ctx context.Context, id uuid.UUID) (*chat.Chat, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type chatHandler struct {
	runner        Runner
	chats         ChatStore
	auth          auth.Provider
	logger        log.Logger
	streamTimeout time.Duration
}

// chatRequest is the POST /api/chat body.
type chatRequest struct {
	ID            string        `json:"id"`
	Messages      []chatMessage `json:"messages"`
	SelectedModel string        `json:"selectedModel"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// send runs one conversation turn and streams the response as SSE.
// Errors before the first stream write map to a status code; after
// that the stream itself carries one opaque error event.
func (h *chatHandler) send(w http.ResponseWriter, r *http.Request) {
	session, err := h.auth.Session(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required", h.logger)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "malformed request body", h.logger)
		return
	}

	chatID, err := uuid.Parse(req.ID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "chat id must be a UUID", h.logger)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.streamTimeout)
	defer cancel()

	sink := &lazySSE{w: w}
	err = h.runner.Run(ctx, agent.Turn{
		ChatID:        chatID,
		UserID:        session.UserID,
		Messages:      toModelMessages(req.Messages),
		SelectedModel: req.SelectedModel,
	}, sink)

	if err == nil {
		return
	}
	if sink.started {
		// The stream already carried the opaque error event.
		h.logger.Error("chat turn failed mid-stream", "chat_id", chatID, "error", err)
		return
	}

	switch {
	case errors.Is(err, agent.ErrNoUserMessage):
		writeError(w, http.StatusBadRequest, "no_user_message", "no user message to respond to", h.logger)
	case errors.Is(err, chat.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", "chat belongs to another user", h.logger)
	default:
		h.logger.Error("chat turn failed", "chat_id", chatID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error", h.logger)
	}
}

// delete removes a chat and its messages.
func (h *chatHandler) delete(w http.ResponseWriter, r *http.Request) {
	session, err := h.auth.Session(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required", h.logger)
		return
	}

	id, err := uuid.Parse(r.URL.Query().Get("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "chat not found", h.logger)
		return
	}

	c, err := h.chats.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, chat.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "chat not found", h.logger)
			return
		}
		h.logger.Error("get chat for deletion", "chat_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error", h.logger)
		return
	}

	if c.UserID != session.UserID {
		writeError(w, http.StatusUnauthorized, "not_owner", "chat belongs to another user", h.logger)
		return
	}

	if err := h.chats.Delete(r.Context(), id); err != nil {
		if errors.Is(err, chat.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "chat not found", h.logger)
			return
		}
		h.logger.Error("delete chat", "chat_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"id": id.String(), "deleted": true}, h.logger)
}

// toModelMessages converts the wire messages to model messages. Roles
// outside user/assistant are dropped; the client has no business
// submitting tool or system messages.
func toModelMessages(msgs []chatMessage) []*ai.Message {
	out := make([]*ai.Message, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case "user":
			out = append(out, ai.NewUserTextMessage(m.Content))
		case "assistant", "model":
			out = append(out, ai.NewModelTextMessage(m.Content))
		}
	}
	return out
}

// lazySSE defers SSE header commitment until the first event. Turns
// that fail preflight never start a stream, so the handler can still
// answer with a plain status code.
type lazySSE struct {
	w       http.ResponseWriter
	sse     *stream.SSEWriter
	started bool
}

func (l *lazySSE) Write(ctx context.Context, ev stream.Event) error {
	if l.sse == nil {
		sse, err := stream.NewSSEWriter(l.w)
		if err != nil {
			return err
		}
		l.sse = sse
	}
	l.started = true
	return l.sse.Write(ctx, ev)
}
