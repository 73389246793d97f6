package handler

import (
	"net/http"

	"highlight-saver/internal/domain"
	"highlight-saver/internal/service"
	apperrors "highlight-saver/pkg/errors"

	"github.com/gorilla/mux"
)

// CaptureHandler drives selection capture: one-shot saves and the per-tab
// Save popup.
type CaptureHandler struct {
	capture *service.CaptureService
	popups  *service.PopupRegistry
	logger  domain.Logger
}

func NewCaptureHandler(capture *service.CaptureService, popups *service.PopupRegistry, logger domain.Logger) *CaptureHandler {
	return &CaptureHandler{
		capture: capture,
		popups:  popups,
		logger:  logger,
	}
}

type captureResponse struct {
	Highlight  *domain.Highlight `json:"highlight,omitempty"`
	MarkedHTML string            `json:"markedHtml,omitempty"`
	Toast      domain.Toast      `json:"toast"`
	Popup      domain.PopupView  `json:"popup"`
	Error      string            `json:"error,omitempty"`
}

type dismissRequest struct {
	Reason domain.DismissReason `json:"reason"`
}

func toCaptureResponse(result *domain.CaptureResult, err error) captureResponse {
	resp := captureResponse{}
	if result != nil {
		resp.Highlight = result.Highlight
		resp.MarkedHTML = result.MarkedHTML
		resp.Toast = result.Toast
		resp.Popup = result.Popup
	}
	if err != nil {
		resp.Error = apperrors.UserMessage(err)
	}
	return resp
}

// Capture handles POST /capture: validate, extract context, save.
func (h *CaptureHandler) Capture(w http.ResponseWriter, r *http.Request) {
	var sel domain.Selection
	if err := decodeJSON(w, r, &sel); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.capture.Save(r.Context(), sel)
	if err != nil {
		writeJSON(w, apperrors.GetStatusCode(err), toCaptureResponse(result, err))
		return
	}
	writeJSON(w, http.StatusCreated, toCaptureResponse(result, nil))
}

// Select handles POST /tabs/{tab}/selection
func (h *CaptureHandler) Select(w http.ResponseWriter, r *http.Request) {
	var sel domain.Selection
	if err := decodeJSON(w, r, &sel); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	view := h.popups.Get(mux.Vars(r)["tab"]).Select(sel)
	writeJSON(w, http.StatusOK, view)
}

// Dismiss handles POST /tabs/{tab}/dismiss
func (h *CaptureHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	req := dismissRequest{Reason: domain.DismissCancel}
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}
	switch req.Reason {
	case domain.DismissOutsideClick, domain.DismissEscape, domain.DismissCancel:
	default:
		writeError(w, http.StatusBadRequest, "Unsupported dismiss reason")
		return
	}

	view := h.popups.Get(mux.Vars(r)["tab"]).Dismiss(req.Reason)
	writeJSON(w, http.StatusOK, view)
}

// Save handles POST /tabs/{tab}/save
func (h *CaptureHandler) Save(w http.ResponseWriter, r *http.Request) {
	tab := mux.Vars(r)["tab"]
	result, err := h.popups.Get(tab).Save(r.Context())
	if err != nil {
		h.logger.Warn("Popup save failed", "tab", tab, "error", err.Error())
		writeJSON(w, apperrors.GetStatusCode(err), toCaptureResponse(result, err))
		return
	}
	writeJSON(w, http.StatusCreated, toCaptureResponse(result, nil))
}

// Popup handles GET /tabs/{tab}/popup
func (h *CaptureHandler) Popup(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.popups.Get(mux.Vars(r)["tab"]).View())
}

// CloseTab handles DELETE /tabs/{tab}
func (h *CaptureHandler) CloseTab(w http.ResponseWriter, r *http.Request) {
	h.popups.Forget(mux.Vars(r)["tab"])
	w.WriteHeader(http.StatusNoContent)
}
