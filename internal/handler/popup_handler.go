package handler

import (
	"bytes"
	"net/http"
	"strings"
	"time"

	"highlight-saver/internal/domain"
	"highlight-saver/internal/popup"
	"highlight-saver/internal/service"

	"github.com/gorilla/mux"
)

// PopupHandler serves the highlight list as a server-rendered page. Every
// request reloads state from the broker, applies the query and the requested
// action through popup.Reduce, then renders the resulting view.
type PopupHandler struct {
	popups   *service.PopupService
	logger   domain.Logger
	location *time.Location
}

func NewPopupHandler(popups *service.PopupService, logger domain.Logger) *PopupHandler {
	return &PopupHandler{
		popups:   popups,
		logger:   logger,
		location: time.Local,
	}
}

// load builds the state for r: stored data plus search, expanded rows and panel.
func (h *PopupHandler) load(r *http.Request) popup.State {
	state := popup.Reduce(popup.Initial(), h.popups.Load(r.Context()))

	// Form merges the query string with posted fields, so actions keep the
	// search term and expanded rows.
	if err := r.ParseForm(); err != nil {
		h.logger.Warn("Malformed popup form", "error", err.Error())
	}
	q := r.Form
	if term := q.Get("q"); term != "" {
		state = popup.Reduce(state, popup.SearchChanged{Term: term})
	}
	for _, id := range q["expand"] {
		if !state.Expanded[id] {
			state = popup.Reduce(state, popup.ToggleExpanded{ID: id})
		}
	}
	if q.Get("panel") == "key" {
		open := true
		state = popup.Reduce(state, popup.APIKeyPanelToggled{Open: &open})
	}
	return state
}

func (h *PopupHandler) render(w http.ResponseWriter, state popup.State) {
	var buf bytes.Buffer
	if err := popup.Render(&buf, popup.View(state, h.location)); err != nil {
		h.logger.Error("Failed to render popup", err)
		http.Error(w, "Failed to render popup", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// Page handles GET /popup
func (h *PopupHandler) Page(w http.ResponseWriter, r *http.Request) {
	h.render(w, h.load(r))
}

// Delete handles POST /popup/highlights/{id}/delete
func (h *PopupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	state := h.load(r)
	state = popup.Reduce(state, h.popups.Delete(r.Context(), mux.Vars(r)["id"]))
	h.render(w, state)
}

// Clear handles POST /popup/clear. Without confirm=yes it only asks.
func (h *PopupHandler) Clear(w http.ResponseWriter, r *http.Request) {
	state := h.load(r)
	confirmed := r.PostFormValue("confirm") == "yes"
	state = popup.Reduce(state, h.popups.Clear(r.Context(), confirmed))
	h.render(w, state)
}

// SaveAPIKey handles POST /popup/api-key
func (h *PopupHandler) SaveAPIKey(w http.ResponseWriter, r *http.Request) {
	state := h.load(r)
	key := strings.TrimSpace(r.PostFormValue("apiKey"))
	state = popup.Reduce(state, h.popups.SaveAPIKey(r.Context(), key))
	h.render(w, state)
}

// Summarize handles POST /popup/summarize. A form id summarizes one row.
func (h *PopupHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	state := h.load(r)
	id := r.PostFormValue("id")
	state = popup.Reduce(state, popup.SummarizeStarted{ID: id})
	state = popup.Reduce(state, h.popups.Summarize(r.Context(), state, id))
	h.render(w, state)
}
