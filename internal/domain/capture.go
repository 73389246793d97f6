package domain

import "time"

const (
	PopupAutoDismiss  = 10 * time.Second
	ErrorRetryDelay   = 2 * time.Second
	SuccessToastTTL   = 3 * time.Second
	ErrorToastTTL     = 5 * time.Second
	popupWidthReserve = 200
	popupLift         = 60
	popupMinTop       = 10
)

// Selection is a text-selection event reported by the page.
type Selection struct {
	Text      string `json:"text"`
	PageURL   string `json:"url"`
	PageTitle string `json:"title"`
	// HTML is a snapshot of the page (or of the selection's containing block).
	HTML           string `json:"html,omitempty"`
	PointerX       int    `json:"x"`
	PointerY       int    `json:"y"`
	ViewportWidth  int    `json:"viewportWidth"`
	ViewportHeight int    `json:"viewportHeight"`
}

// Anchor returns where the Save popup is drawn, clamped to the viewport.
func (s Selection) Anchor() (left, top int) {
	left = s.PointerX
	if s.ViewportWidth > 0 && left > s.ViewportWidth-popupWidthReserve {
		left = s.ViewportWidth - popupWidthReserve
	}
	top = s.PointerY - popupLift
	if top < popupMinTop {
		top = popupMinTop
	}
	return left, top
}

// PopupPhase is the state of the Save popup.
type PopupPhase string

const (
	PopupHidden  PopupPhase = "hidden"
	PopupShowing PopupPhase = "showing"
	PopupSaving  PopupPhase = "saving"
	PopupFailed  PopupPhase = "failed"
)

// DismissReason says why the popup was hidden.
type DismissReason string

const (
	DismissOutsideClick DismissReason = "outside_click"
	DismissEscape       DismissReason = "escape"
	DismissTimeout      DismissReason = "timeout"
	DismissCancel       DismissReason = "cancel"
	DismissSaved        DismissReason = "saved"
	DismissReplaced     DismissReason = "replaced"
	DismissInvalid      DismissReason = "invalid_selection"
)

// PopupView is what the page needs to draw the Save popup.
type PopupView struct {
	Phase       PopupPhase `json:"phase"`
	Left        int        `json:"left"`
	Top         int        `json:"top"`
	ButtonLabel string     `json:"buttonLabel"`
	Disabled    bool       `json:"disabled"`
	Text        string     `json:"text,omitempty"`
}

// ToastKind distinguishes success and error toasts.
type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
)

// Toast is a transient message shown on the page.
type Toast struct {
	Kind    ToastKind     `json:"kind"`
	Message string        `json:"message"`
	TTL     time.Duration `json:"ttl"`
}

// CaptureResult is returned after a save attempt.
type CaptureResult struct {
	Highlight  *Highlight `json:"highlight,omitempty"`
	MarkedHTML string     `json:"markedHtml,omitempty"`
	Toast      Toast      `json:"toast"`
	Popup      PopupView  `json:"popup"`
}
