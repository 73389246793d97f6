package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// MaxSelectionLength is the exclusive upper bound on a trimmed selection.
	MaxSelectionLength = 1000
	// ContextRadius is how many characters are kept on each side of the match.
	ContextRadius = 50
	// ContextFallbackLength is used when the selection is not found in its block.
	ContextFallbackLength = 100
	// SnippetLength is the collapsed row length in the highlight list.
	SnippetLength = 150
)

// Storage keys, shared with the browser extension's local storage layout.
const (
	HighlightsKey = "highlights"
	APIKeyKey     = "geminiApiKey"
)

// Highlight represents a saved excerpt of a web page.
type Highlight struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	URL       string `json:"url"`
	Title     string `json:"title"`
	Timestamp string `json:"timestamp"`
	Context   string `json:"context"`
}

// NewHighlightID returns a unique, time-ordered identifier.
func NewHighlightID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// NewHighlight builds a highlight for text captured at now.
func NewHighlight(text, url, title, context string, now time.Time) *Highlight {
	return &Highlight{
		ID:        NewHighlightID(),
		Text:      text,
		URL:       url,
		Title:     title,
		Timestamp: now.UTC().Format(time.RFC3339Nano),
		Context:   context,
	}
}

// Validate checks the invariants a stored highlight must satisfy.
func (h *Highlight) Validate() error {
	if h == nil {
		return &ValidationError{Message: "highlight is required"}
	}
	if h.ID == "" {
		return &ValidationError{Field: "id", Message: "is required"}
	}
	n := len([]rune(strings.TrimSpace(h.Text)))
	if n == 0 {
		return &ValidationError{Field: "text", Message: "is required"}
	}
	if n >= MaxSelectionLength {
		return &ValidationError{Field: "text", Message: "must be shorter than 1000 characters"}
	}
	return nil
}

// CapturedAt parses Timestamp. The zero time is returned for malformed values.
func (h *Highlight) CapturedAt() time.Time {
	t, err := time.Parse(time.RFC3339Nano, h.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Collection is the ordered, newest-first list of highlights.
type Collection []Highlight

// Prepend returns a new collection with h in front.
func (c Collection) Prepend(h Highlight) Collection {
	out := make(Collection, 0, len(c)+1)
	out = append(out, h)
	return append(out, c...)
}

// Without returns the collection minus the entry with the given id, preserving order.
func (c Collection) Without(id string) Collection {
	out := make(Collection, 0, len(c))
	for _, h := range c {
		if h.ID != id {
			out = append(out, h)
		}
	}
	return out
}

// Contains reports whether an entry with id exists.
func (c Collection) Contains(id string) bool {
	for _, h := range c {
		if h.ID == id {
			return true
		}
	}
	return false
}

// Find returns the entry with the given id.
func (c Collection) Find(id string) (Highlight, bool) {
	for _, h := range c {
		if h.ID == id {
			return h, true
		}
	}
	return Highlight{}, false
}

// Filter returns the entries whose text, title or url contain term, ignoring case.
// An empty term matches everything.
func (c Collection) Filter(term string) Collection {
	if term == "" {
		return c
	}
	needle := strings.ToLower(term)
	out := make(Collection, 0, len(c))
	for _, h := range c {
		if strings.Contains(strings.ToLower(h.Text), needle) ||
			strings.Contains(strings.ToLower(h.Title), needle) ||
			strings.Contains(strings.ToLower(h.URL), needle) {
			out = append(out, h)
		}
	}
	return out
}
