// Package popup holds the highlight list UI as data: a State, the Actions that
// change it, a pure Reduce function and a pure View projection. Renderers (the
// HTML page and the terminal UI) only ever draw a ViewModel.
package popup

import (
	"highlight-saver/internal/domain"
)

// State is everything the list UI shows.
type State struct {
	Highlights domain.Collection
	APIKey     string
	SearchTerm string
	Expanded   map[string]bool

	Loading bool
	Error   string

	// Summarizing is set while a "summarize all" request is in flight.
	Summarizing bool
	// SummarizingIDs are rows with a single-item summary in flight.
	SummarizingIDs map[string]bool

	APIKeyPanelOpen bool
	ConfirmingClear bool

	SummaryOpen  bool
	SummaryHTML  string
	SummaryRaw   string
	SummaryError string
}

// Initial is the state before anything is loaded.
func Initial() State {
	return State{
		Loading:        true,
		Expanded:       map[string]bool{},
		SummarizingIDs: map[string]bool{},
	}
}

// Filtered returns the highlights matching the search term.
func (s State) Filtered() domain.Collection {
	return s.Highlights.Filter(s.SearchTerm)
}

// Busy reports whether any summary request is in flight.
func (s State) Busy() bool {
	return s.Summarizing || len(s.SummarizingIDs) > 0
}

func (s State) clone() State {
	out := s
	out.Expanded = make(map[string]bool, len(s.Expanded))
	for k, v := range s.Expanded {
		out.Expanded[k] = v
	}
	out.SummarizingIDs = make(map[string]bool, len(s.SummarizingIDs))
	for k, v := range s.SummarizingIDs {
		out.SummarizingIDs[k] = v
	}
	return out
}
