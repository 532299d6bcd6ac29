package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/easel-ai/easel/internal/auth"
	"github.com/easel-ai/easel/internal/extract"
	"github.com/easel-ai/easel/internal/log"
)

// ScrapedStore is the scraped-record persistence capability.
// *extract.Store satisfies it.
type ScrapedStore interface {
	SaveTeamMembers(ctx context.Context, members []extract.TeamMember) (int64, error)
	SaveDeals(ctx context.Context, deals []extract.Deal) (int64, error)
}

type scrapedHandler struct {
	scraped ScrapedStore
	auth    auth.Provider
	logger  log.Logger
}

// scrapedRequest is the POST /api/scraped-data body. Data holds the
// records in the shape matching DataType.
type scrapedRequest struct {
	DataType string          `json:"dataType"`
	Data     json.RawMessage `json:"data"`
}

// save persists extracted records. Duplicates on the natural key are
// silently ignored; the response reports how many rows actually
// landed.
func (h *scrapedHandler) save(w http.ResponseWriter, r *http.Request) {
	session, err := h.auth.Session(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required", h.logger)
		return
	}

	var req scrapedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "malformed request body", h.logger)
		return
	}

	var inserted int64
	switch req.DataType {
	case extract.DataTypeTeamMember:
		var members []extract.TeamMember
		if err := json.Unmarshal(req.Data, &members); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_data", "data does not match team-member shape", h.logger)
			return
		}
		inserted, err = h.scraped.SaveTeamMembers(r.Context(), members)
	case extract.DataTypeDeal:
		var deals []extract.Deal
		if err := json.Unmarshal(req.Data, &deals); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_data", "data does not match deal shape", h.logger)
			return
		}
		inserted, err = h.scraped.SaveDeals(r.Context(), deals)
	default:
		writeError(w, http.StatusBadRequest, "invalid_data_type", "dataType must be team-member or deal", h.logger)
		return
	}

	if err != nil {
		h.logger.Error("save scraped data",
			"data_type", req.DataType, "user_id", session.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error", h.logger)
		return
	}

	h.logger.Info("saved scraped data",
		"data_type", req.DataType, "inserted", inserted, "user_id", session.UserID)
	writeJSON(w, http.StatusOK, map[string]any{
		"dataType": req.DataType,
		"inserted": inserted,
	}, h.logger)
}
