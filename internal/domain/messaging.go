package domain

import "fmt"

// Action names a request kind on the extension messaging channel.
type Action string

const (
	ActionGetHighlights   Action = "getHighlights"
	ActionSaveHighlight   Action = "saveHighlight"
	ActionDeleteHighlight Action = "deleteHighlight"
	ActionClearHighlights Action = "clearHighlights"
	ActionGetAPIKey       Action = "getApiKey"
	ActionSetAPIKey       Action = "setApiKey"
)

// Message is a request sent from page or popup code to the storage broker.
// Only the payload field matching Action is read.
type Message struct {
	Action      Action     `json:"action"`
	Highlight   *Highlight `json:"highlight,omitempty"`
	HighlightID string     `json:"highlightId,omitempty"`
	APIKey      *string    `json:"apiKey,omitempty"`
}

// Validate checks that the payload required by Action is present.
func (m Message) Validate() error {
	switch m.Action {
	case ActionGetHighlights, ActionClearHighlights, ActionGetAPIKey:
		return nil
	case ActionSaveHighlight:
		if m.Highlight == nil {
			return &ValidationError{Field: "highlight", Message: "is required"}
		}
		return m.Highlight.Validate()
	case ActionDeleteHighlight:
		if m.HighlightID == "" {
			return &ValidationError{Field: "highlightId", Message: "is required"}
		}
		return nil
	case ActionSetAPIKey:
		if m.APIKey == nil {
			return &ValidationError{Field: "apiKey", Message: "is required"}
		}
		return nil
	case "":
		return &ValidationError{Field: "action", Message: "is required"}
	default:
		return &ValidationError{Field: "action", Message: fmt.Sprintf("unknown action %q", m.Action)}
	}
}

// MessageResponse is the broker's reply. Mutations set Success and Error;
// reads fill Highlights or APIKey.
type MessageResponse struct {
	Success    bool       `json:"success"`
	Error      string     `json:"error,omitempty"`
	Highlights Collection `json:"highlights,omitempty"`
	APIKey     *string    `json:"apiKey,omitempty"`
}
