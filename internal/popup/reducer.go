package popup

import "highlight-saver/internal/domain"

// Action is a state transition. The set is closed: only types in this file
// implement it.
type Action interface {
	isAction()
}

type (
	// Loaded replaces the collection and key after a fetch.
	Loaded struct {
		Highlights domain.Collection
		APIKey     string
	}
	// LoadFailed ends loading with an inline error.
	LoadFailed struct{ Message string }

	SearchChanged  struct{ Term string }
	ToggleExpanded struct{ ID string }

	HighlightDeleted struct{ ID string }
	// ClearRequested asks for confirmation before clearing.
	ClearRequested struct{}
	ClearCanceled  struct{}
	Cleared        struct{}

	// APIKeyPanelToggled opens or closes the key panel; nil flips it.
	APIKeyPanelToggled struct{ Open *bool }
	APIKeySaved        struct{ Key string }
	// APIKeyMissing is raised when a summary is requested without a key.
	APIKeyMissing struct{}

	// SummarizeStarted marks a request in flight; an empty ID means all.
	SummarizeStarted   struct{ ID string }
	SummarizeSucceeded struct {
		ID      string
		Summary domain.Summary
	}
	SummarizeFailed struct {
		ID      string
		Message string
	}
	SummaryClosed struct{}

	// OperationFailed shows a storage error without changing data.
	OperationFailed struct{ Message string }
	ErrorDismissed  struct{}
)

func (Loaded) isAction()             {}
func (LoadFailed) isAction()         {}
func (SearchChanged) isAction()      {}
func (ToggleExpanded) isAction()     {}
func (HighlightDeleted) isAction()   {}
func (ClearRequested) isAction()     {}
func (ClearCanceled) isAction()      {}
func (Cleared) isAction()            {}
func (APIKeyPanelToggled) isAction() {}
func (APIKeySaved) isAction()        {}
func (APIKeyMissing) isAction()      {}
func (SummarizeStarted) isAction()   {}
func (SummarizeSucceeded) isAction() {}
func (SummarizeFailed) isAction()    {}
func (SummaryClosed) isAction()      {}
func (OperationFailed) isAction()    {}
func (ErrorDismissed) isAction()     {}

// Reduce returns the state after applying a. s is not modified.
func Reduce(s State, a Action) State {
	next := s.clone()

	switch a := a.(type) {
	case Loaded:
		next.Loading = false
		next.Error = ""
		next.Highlights = a.Highlights
		if next.Highlights == nil {
			next.Highlights = domain.Collection{}
		}
		next.APIKey = a.APIKey
		pruneExpanded(&next)

	case LoadFailed:
		next.Loading = false
		next.Error = a.Message

	case SearchChanged:
		next.SearchTerm = a.Term

	case ToggleExpanded:
		if next.Expanded[a.ID] {
			delete(next.Expanded, a.ID)
		} else if next.Highlights.Contains(a.ID) {
			next.Expanded[a.ID] = true
		}

	case HighlightDeleted:
		next.Highlights = next.Highlights.Without(a.ID)
		delete(next.Expanded, a.ID)
		delete(next.SummarizingIDs, a.ID)

	case ClearRequested:
		if len(next.Highlights) > 0 {
			next.ConfirmingClear = true
		}

	case ClearCanceled:
		next.ConfirmingClear = false

	case Cleared:
		next.ConfirmingClear = false
		next.Highlights = domain.Collection{}
		next.Expanded = map[string]bool{}
		next.SummarizingIDs = map[string]bool{}

	case APIKeyPanelToggled:
		if a.Open == nil {
			next.APIKeyPanelOpen = !next.APIKeyPanelOpen
		} else {
			next.APIKeyPanelOpen = *a.Open
		}

	case APIKeySaved:
		next.APIKey = a.Key
		next.APIKeyPanelOpen = false

	case APIKeyMissing:
		next.APIKeyPanelOpen = true
		next.Summarizing = false
		next.SummarizingIDs = map[string]bool{}

	case SummarizeStarted:
		if a.ID == "" {
			next.Summarizing = true
		} else {
			next.SummarizingIDs[a.ID] = true
		}

	case SummarizeSucceeded:
		finishSummary(&next, a.ID)
		next.SummaryOpen = true
		next.SummaryHTML = a.Summary.HTML
		next.SummaryRaw = a.Summary.Raw
		next.SummaryError = ""

	case SummarizeFailed:
		finishSummary(&next, a.ID)
		next.SummaryOpen = true
		next.SummaryHTML = ""
		next.SummaryRaw = ""
		next.SummaryError = a.Message

	case SummaryClosed:
		next.SummaryOpen = false

	case OperationFailed:
		next.Error = a.Message
		next.ConfirmingClear = false

	case ErrorDismissed:
		next.Error = ""
	}

	return next
}

func finishSummary(s *State, id string) {
	if id == "" {
		s.Summarizing = false
	} else {
		delete(s.SummarizingIDs, id)
	}
}

func pruneExpanded(s *State) {
	for id := range s.Expanded {
		if !s.Highlights.Contains(id) {
			delete(s.Expanded, id)
		}
	}
}
