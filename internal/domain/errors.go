package domain

import "errors"

// Domain errors
var (
	ErrHighlightNotFound    = errors.New("highlight not found")
	ErrEmptySelection       = errors.New("no text selected")
	ErrSelectionTooLong     = errors.New("selection is too long")
	ErrAPIKeyRequired       = errors.New("api key required")
	ErrNoHighlights         = errors.New("no highlights to summarize")
	ErrConfirmationRequired = errors.New("confirmation required")
	ErrBrokerClosed         = errors.New("storage broker is closed")
	ErrPopupNotShowing      = errors.New("popup is not showing")
)

// ValidationError represents a validation error with field and message information.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}
