package popup

import (
	"fmt"
	"net/url"
	"time"

	"highlight-saver/internal/domain"
)

// EmptyKind says which empty state to show.
type EmptyKind string

const (
	EmptyNone         EmptyKind = ""
	EmptyNoHighlights EmptyKind = "no_highlights"
	EmptyNoMatches    EmptyKind = "no_matches"
)

const (
	summarizeAllLabel  = "🤖 Summarize All"
	summarizeOneLabel  = "🤖 Summarize"
	summarizingLabel   = "⏳ Summarizing..."
	timestampLayout    = "Jan 2, 2006 15:04"
	truncationEllipsis = "..."
)

// Row is one rendered highlight.
type Row struct {
	ID       string
	Text     string
	Date     string
	Domain   string
	URL      string
	Title    string
	Context  string
	Expanded bool
	// ToggleURL reopens the page with this row expanded or collapsed.
	ToggleURL string

	SummarizeLabel string
	Busy           bool
}

// ViewModel is a renderer-agnostic projection of State.
type ViewModel struct {
	Header      string
	Count       int
	ShowSearch  bool
	ShowActions bool
	SearchTerm  string
	Loading     bool
	Error       string

	// ExpandedIDs and PageURL carry the search term and expanded rows across
	// page loads.
	ExpandedIDs []string
	PageURL     string
	KeyPanelURL string

	Empty        EmptyKind
	EmptyTitle   string
	EmptyMessage string
	Rows         []Row

	SummarizeAllLabel    string
	SummarizeAllDisabled bool

	APIKeyPanelOpen bool
	APIKey          string
	ConfirmingClear bool

	SummaryOpen  bool
	SummaryHTML  string
	SummaryRaw   string
	SummaryError string
}

// View projects s for display. Timestamps are shown in loc; nil means local time.
func View(s State, loc *time.Location) ViewModel {
	if loc == nil {
		loc = time.Local
	}
	count := len(s.Highlights)
	vm := ViewModel{
		Header:          HeaderText(count),
		Count:           count,
		ShowSearch:      count > 0,
		ShowActions:     count > 0,
		SearchTerm:      s.SearchTerm,
		Loading:         s.Loading,
		Error:           s.Error,
		APIKeyPanelOpen: s.APIKeyPanelOpen,
		APIKey:          s.APIKey,
		ConfirmingClear: s.ConfirmingClear,
		SummaryOpen:     s.SummaryOpen,
		SummaryHTML:     s.SummaryHTML,
		SummaryRaw:      s.SummaryRaw,
		SummaryError:    s.SummaryError,
		ExpandedIDs:     expandedIDs(s),

		SummarizeAllLabel:    summarizeAllLabel,
		SummarizeAllDisabled: s.Summarizing,
	}
	vm.PageURL = PageURL(s.SearchTerm, vm.ExpandedIDs, nil)
	vm.KeyPanelURL = PageURL(s.SearchTerm, vm.ExpandedIDs, url.Values{"panel": {"key"}})
	if s.Summarizing {
		vm.SummarizeAllLabel = summarizingLabel
	}
	if s.Loading {
		return vm
	}

	filtered := s.Filtered()
	if len(filtered) == 0 {
		if count == 0 {
			vm.Empty = EmptyNoHighlights
			vm.EmptyTitle = "No highlights yet"
			vm.EmptyMessage = `Select text on any webpage and click "Save Highlight" to get started!`
		} else {
			vm.Empty = EmptyNoMatches
			vm.EmptyTitle = "No matches found"
			vm.EmptyMessage = "Try a different search term."
		}
		return vm
	}

	vm.Rows = make([]Row, 0, len(filtered))
	for _, h := range filtered {
		row := rowFor(s, h, loc)
		row.ToggleURL = PageURL(s.SearchTerm, toggled(vm.ExpandedIDs, h.ID), nil)
		vm.Rows = append(vm.Rows, row)
	}
	return vm
}

// expandedIDs lists the expanded highlights in collection order.
func expandedIDs(s State) []string {
	var ids []string
	for _, h := range s.Highlights {
		if s.Expanded[h.ID] {
			ids = append(ids, h.ID)
		}
	}
	return ids
}

// toggled returns ids with id removed if present, appended otherwise.
func toggled(ids []string, id string) []string {
	out := make([]string, 0, len(ids)+1)
	found := false
	for _, v := range ids {
		if v == id {
			found = true
			continue
		}
		out = append(out, v)
	}
	if !found {
		out = append(out, id)
	}
	return out
}

// PageURL is the popup page address for a search term and expanded rows.
func PageURL(term string, expanded []string, extra url.Values) string {
	q := url.Values{}
	if term != "" {
		q.Set("q", term)
	}
	for _, id := range expanded {
		q.Add("expand", id)
	}
	for k, vs := range extra {
		q[k] = append(q[k], vs...)
	}
	if len(q) == 0 {
		return "/popup"
	}
	return "/popup?" + q.Encode()
}

func rowFor(s State, h domain.Highlight, loc *time.Location) Row {
	expanded := s.Expanded[h.ID]
	row := Row{
		ID:             h.ID,
		Date:           FormatTimestamp(h.Timestamp, loc),
		Domain:         Hostname(h.URL),
		URL:            h.URL,
		Expanded:       expanded,
		SummarizeLabel: summarizeOneLabel,
	}
	if expanded {
		row.Text = h.Text
		row.Title = h.Title
		row.Context = h.Context
	} else {
		row.Text = Truncate(h.Text, domain.SnippetLength)
	}
	if s.SummarizingIDs[h.ID] {
		row.Busy = true
		row.SummarizeLabel = summarizingLabel
	}
	return row
}

// HeaderText is "1 highlight" or "N highlights".
func HeaderText(n int) string {
	if n == 1 {
		return "1 highlight"
	}
	return fmt.Sprintf("%d highlights", n)
}

// Truncate shortens text to max characters plus an ellipsis.
func Truncate(text string, max int) string {
	r := []rune(text)
	if len(r) <= max {
		return text
	}
	return string(r[:max]) + truncationEllipsis
}

// FormatTimestamp renders an ISO-8601 timestamp; unparseable input is returned as is.
func FormatTimestamp(ts string, loc *time.Location) string {
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return ts
	}
	return t.In(loc).Format(timestampLayout)
}

// Hostname extracts the domain shown on each row.
func Hostname(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
