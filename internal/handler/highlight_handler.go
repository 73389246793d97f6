package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"highlight-saver/internal/domain"
	apperrors "highlight-saver/pkg/errors"

	"github.com/gorilla/mux"
)

// HighlightHandler handles highlight-related HTTP requests.
type HighlightHandler struct {
	broker domain.StorageBroker
	logger domain.Logger
	now    func() time.Time
}

func NewHighlightHandler(broker domain.StorageBroker, logger domain.Logger) *HighlightHandler {
	return &HighlightHandler{
		broker: broker,
		logger: logger,
		now:    time.Now,
	}
}

type createHighlightRequest struct {
	ID        string `json:"id,omitempty"`
	Text      string `json:"text"`
	URL       string `json:"url"`
	Title     string `json:"title"`
	Context   string `json:"context"`
	Timestamp string `json:"timestamp,omitempty"`
}

type listHighlightsResponse struct {
	Highlights domain.Collection `json:"highlights"`
	Count      int               `json:"count"`
	Total      int               `json:"total"`
}

// ListHighlights handles GET /highlights?q=...
func (h *HighlightHandler) ListHighlights(w http.ResponseWriter, r *http.Request) {
	all, err := h.broker.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list highlights", err)
		writeAppError(w, err)
		return
	}

	filtered := all.Filter(r.URL.Query().Get("q"))
	if filtered == nil {
		filtered = domain.Collection{}
	}
	writeJSON(w, http.StatusOK, listHighlightsResponse{
		Highlights: filtered,
		Count:      len(filtered),
		Total:      len(all),
	})
}

// CreateHighlight handles POST /highlights
func (h *HighlightHandler) CreateHighlight(w http.ResponseWriter, r *http.Request) {
	var req createHighlightRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	highlight := domain.NewHighlight(strings.TrimSpace(req.Text), req.URL, req.Title, req.Context, h.now())
	if req.ID != "" {
		highlight.ID = req.ID
	}
	if req.Timestamp != "" {
		highlight.Timestamp = req.Timestamp
	}

	if err := h.broker.Add(r.Context(), *highlight); err != nil {
		h.logger.Error("Failed to create highlight", err, "url", req.URL)
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, highlight)
}

// DeleteHighlight handles DELETE /highlights/{id}. Unknown ids succeed.
func (h *HighlightHandler) DeleteHighlight(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		writeError(w, http.StatusBadRequest, "Highlight ID is required")
		return
	}

	if err := h.broker.Delete(r.Context(), id); err != nil {
		h.logger.Error("Failed to delete highlight", err, "id", id)
		writeAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ClearHighlights handles DELETE /highlights?confirm=true
func (h *HighlightHandler) ClearHighlights(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		writeAppError(w, apperrors.NewValidationError("Confirmation required to delete all highlights",
			domain.ErrConfirmationRequired.Error()))
		return
	}

	if err := h.broker.Clear(r.Context()); err != nil {
		if errors.Is(err, domain.ErrBrokerClosed) {
			h.logger.Warn("Clear requested after shutdown")
		} else {
			h.logger.Error("Failed to clear highlights", err)
		}
		writeAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
