package handler

import (
	"net/http"

	"highlight-saver/internal/domain"
	apperrors "highlight-saver/pkg/errors"
)

// MessagingHandler exposes the extension message channel over HTTP.
type MessagingHandler struct {
	messenger domain.Messenger
	logger    domain.Logger
}

func NewMessagingHandler(messenger domain.Messenger, logger domain.Logger) *MessagingHandler {
	return &MessagingHandler{messenger: messenger, logger: logger}
}

// Send handles POST /messages. The body is always a MessageResponse; the
// status code mirrors the failure kind.
func (h *MessagingHandler) Send(w http.ResponseWriter, r *http.Request) {
	var msg domain.Message
	if err := decodeJSON(w, r, &msg); err != nil {
		writeJSON(w, http.StatusBadRequest, domain.MessageResponse{Error: "Invalid request body"})
		return
	}

	resp, err := h.messenger.Send(r.Context(), msg)
	if err != nil {
		h.logger.Error("Message failed", err, "action", msg.Action)
		if resp == nil {
			resp = &domain.MessageResponse{Error: apperrors.UserMessage(err)}
		}
		writeJSON(w, apperrors.GetStatusCode(err), resp)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
