package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/easel-ai/easel/internal/artifact"
	"github.com/easel-ai/easel/internal/auth"
	"github.com/easel-ai/easel/internal/log"
)

// DocumentStore is the document read capability. *artifact.Store
// satisfies it.
type DocumentStore interface {
	Versions(ctx context.Context, id uuid.UUID) ([]*artifact.Document, error)
}

type documentHandler struct {
	documents DocumentStore
	auth      auth.Provider
	logger    log.Logger
}

// documentVersion is one version in the GET /api/document response.
type documentVersion struct {
	ID        string         `json:"id"`
	Version   int            `json:"version"`
	Title     string         `json:"title"`
	Kind      string         `json:"kind"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// get returns every version of a document, oldest first.
func (h *documentHandler) get(w http.ResponseWriter, r *http.Request) {
	session, err := h.auth.Session(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required", h.logger)
		return
	}

	id, err := uuid.Parse(r.URL.Query().Get("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "document id must be a UUID", h.logger)
		return
	}

	versions, err := h.documents.Versions(r.Context(), id)
	if errors.Is(err, artifact.ErrNotFound) || (err == nil && len(versions) == 0) {
		writeError(w, http.StatusNotFound, "not_found", "document not found", h.logger)
		return
	}
	if err != nil {
		h.logger.Error("load document versions", "document_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error", h.logger)
		return
	}
	if versions[0].UserID != session.UserID {
		writeError(w, http.StatusUnauthorized, "not_owner", "document belongs to another user", h.logger)
		return
	}

	out := make([]documentVersion, 0, len(versions))
	for _, v := range versions {
		out = append(out, documentVersion{
			ID:        v.ID.String(),
			Version:   v.Version,
			Title:     v.Title,
			Kind:      string(v.Kind),
			Content:   v.Content,
			Metadata:  v.Metadata,
			CreatedAt: v.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out, h.logger)
}
