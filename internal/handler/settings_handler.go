package handler

import (
	"net/http"

	"highlight-saver/internal/domain"
)

// SettingsHandler reads and writes the Gemini API key.
type SettingsHandler struct {
	broker domain.StorageBroker
	logger domain.Logger
}

func NewSettingsHandler(broker domain.StorageBroker, logger domain.Logger) *SettingsHandler {
	return &SettingsHandler{broker: broker, logger: logger}
}

type apiKeyPayload struct {
	APIKey     string `json:"apiKey"`
	Configured bool   `json:"configured"`
}

// GetAPIKey handles GET /settings/api-key
func (h *SettingsHandler) GetAPIKey(w http.ResponseWriter, r *http.Request) {
	key, err := h.broker.GetAPIKey(r.Context())
	if err != nil {
		h.logger.Error("Failed to read API key", err)
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, apiKeyPayload{APIKey: key, Configured: key != ""})
}

// UpdateAPIKey handles PUT /settings/api-key. An empty key clears it.
func (h *SettingsHandler) UpdateAPIKey(w http.ResponseWriter, r *http.Request) {
	var req apiKeyPayload
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.broker.SetAPIKey(r.Context(), req.APIKey); err != nil {
		h.logger.Error("Failed to save API key", err)
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, apiKeyPayload{APIKey: req.APIKey, Configured: req.APIKey != ""})
}
