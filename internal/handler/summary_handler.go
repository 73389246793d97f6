package handler

import (
	"net/http"

	"highlight-saver/internal/domain"
	apperrors "highlight-saver/pkg/errors"
)

// SummaryHandler summarizes stored highlights with the stored API key.
type SummaryHandler struct {
	broker     domain.StorageBroker
	summarizer domain.Summarizer
	logger     domain.Logger
}

func NewSummaryHandler(broker domain.StorageBroker, summarizer domain.Summarizer, logger domain.Logger) *SummaryHandler {
	return &SummaryHandler{
		broker:     broker,
		summarizer: summarizer,
		logger:     logger,
	}
}

type summaryRequest struct {
	IDs []string `json:"ids"`
}

type summaryResponse struct {
	Summary string `json:"summary"`
	HTML    string `json:"html"`
	Count   int    `json:"count"`
}

// Summarize handles POST /summaries. An empty ids list summarizes everything.
func (h *SummaryHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	var req summaryRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	ctx := r.Context()
	all, err := h.broker.List(ctx)
	if err != nil {
		writeAppError(w, err)
		return
	}

	targets := all
	if len(req.IDs) > 0 {
		targets = make(domain.Collection, 0, len(req.IDs))
		for _, id := range req.IDs {
			hl, ok := all.Find(id)
			if !ok {
				writeAppError(w, apperrors.NewNotFoundError("Highlight not found: "+id))
				return
			}
			targets = append(targets, hl)
		}
	}

	apiKey, err := h.broker.GetAPIKey(ctx)
	if err != nil {
		writeAppError(w, err)
		return
	}

	summary, err := h.summarizer.Summarize(ctx, apiKey, targets)
	if err != nil {
		h.logger.Error("Failed to summarize highlights", err, "count", len(targets))
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summaryResponse{
		Summary: summary.Raw,
		HTML:    summary.HTML,
		Count:   summary.Count,
	})
}
