package service

import (
	"context"
	"sync"
	"time"

	"highlight-saver/internal/domain"
	apperrors "highlight-saver/pkg/errors"
)

const (
	labelSave   = "💾 Save Highlight"
	labelSaving = "💾 Saving..."
	labelError  = "❌ Error"
)

// SavePopup is the Save widget shown next to a selection in one tab.
// It moves Hidden -> Showing -> (Saving -> Hidden | Failed -> Showing) and
// hides itself after the auto-dismiss delay.
type SavePopup struct {
	capture *CaptureService

	autoDismiss time.Duration
	retryDelay  time.Duration

	mu         sync.Mutex
	phase      domain.PopupPhase
	selection  domain.Selection
	generation uint64
	dismissed  domain.DismissReason
	timers     []*time.Timer
}

// PopupOption customizes a SavePopup.
type PopupOption func(*SavePopup)

// WithPopupTimings overrides the auto-dismiss and error re-enable delays.
func WithPopupTimings(autoDismiss, retryDelay time.Duration) PopupOption {
	return func(p *SavePopup) {
		p.autoDismiss = autoDismiss
		p.retryDelay = retryDelay
	}
}

func NewSavePopup(capture *CaptureService, opts ...PopupOption) *SavePopup {
	p := &SavePopup{
		capture:     capture,
		autoDismiss: domain.PopupAutoDismiss,
		retryDelay:  domain.ErrorRetryDelay,
		phase:       domain.PopupHidden,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Select handles a selection event. Valid selections replace any popup that
// is already showing; invalid ones hide it.
func (p *SavePopup) Select(sel domain.Selection) domain.PopupView {
	p.mu.Lock()
	defer p.mu.Unlock()

	text, err := NormalizeSelection(sel.Text)
	if err != nil {
		p.hideLocked(domain.DismissInvalid)
		return p.viewLocked()
	}

	if p.phase != domain.PopupHidden {
		p.hideLocked(domain.DismissReplaced)
	}

	sel.Text = text
	p.selection = sel
	p.phase = domain.PopupShowing
	p.dismissed = ""
	p.generation++

	gen := p.generation
	p.timers = append(p.timers, time.AfterFunc(p.autoDismiss, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.generation == gen && p.phase != domain.PopupHidden {
			p.hideLocked(domain.DismissTimeout)
		}
	}))
	return p.viewLocked()
}

// Dismiss hides the popup: pointer-down outside it, Escape, or Cancel.
func (p *SavePopup) Dismiss(reason domain.DismissReason) domain.PopupView {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.phase != domain.PopupHidden {
		p.hideLocked(reason)
	}
	return p.viewLocked()
}

// Save persists the current selection. The button is disabled while the
// request runs; on failure it shows an error and is re-enabled after the
// retry delay.
func (p *SavePopup) Save(ctx context.Context) (*domain.CaptureResult, error) {
	p.mu.Lock()
	if p.phase != domain.PopupShowing {
		view := p.viewLocked()
		p.mu.Unlock()
		return &domain.CaptureResult{
			Toast: errorToast("No text selected. Please select some text first."),
			Popup: view,
		}, apperrors.NewValidationError("Nothing to save", domain.ErrPopupNotShowing.Error())
	}
	p.phase = domain.PopupSaving
	sel := p.selection
	gen := p.generation
	p.mu.Unlock()

	result, err := p.capture.Save(ctx, sel)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.generation == gen && p.phase == domain.PopupSaving {
		if err != nil {
			p.phase = domain.PopupFailed
			p.timers = append(p.timers, time.AfterFunc(p.retryDelay, func() {
				p.mu.Lock()
				defer p.mu.Unlock()
				if p.generation == gen && p.phase == domain.PopupFailed {
					p.phase = domain.PopupShowing
				}
			}))
		} else {
			p.hideLocked(domain.DismissSaved)
		}
	}
	result.Popup = p.viewLocked()
	return result, err
}

// View returns the current popup state.
func (p *SavePopup) View() domain.PopupView {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.viewLocked()
}

// LastDismissReason reports why the popup was last hidden.
func (p *SavePopup) LastDismissReason() domain.DismissReason {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dismissed
}

// Close stops pending timers.
func (p *SavePopup) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopTimersLocked()
}

func (p *SavePopup) hideLocked(reason domain.DismissReason) {
	p.stopTimersLocked()
	p.phase = domain.PopupHidden
	p.selection = domain.Selection{}
	p.dismissed = reason
	p.generation++
}

func (p *SavePopup) stopTimersLocked() {
	for _, t := range p.timers {
		t.Stop()
	}
	p.timers = nil
}

func (p *SavePopup) viewLocked() domain.PopupView {
	view := domain.PopupView{Phase: p.phase}
	switch p.phase {
	case domain.PopupHidden:
		return view
	case domain.PopupShowing:
		view.ButtonLabel = labelSave
	case domain.PopupSaving:
		view.ButtonLabel = labelSaving
		view.Disabled = true
	case domain.PopupFailed:
		view.ButtonLabel = labelError
		view.Disabled = true
	}
	view.Left, view.Top = p.selection.Anchor()
	view.Text = p.selection.Text
	return view
}

// PopupRegistry keeps one SavePopup per browser tab.
type PopupRegistry struct {
	capture *CaptureService
	opts    []PopupOption

	mu     sync.Mutex
	popups map[string]*SavePopup
}

func NewPopupRegistry(capture *CaptureService, opts ...PopupOption) *PopupRegistry {
	return &PopupRegistry{
		capture: capture,
		opts:    opts,
		popups:  make(map[string]*SavePopup),
	}
}

// Get returns the popup for tab, creating it on first use.
func (r *PopupRegistry) Get(tab string) *SavePopup {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.popups[tab]
	if !ok {
		p = NewSavePopup(r.capture, r.opts...)
		r.popups[tab] = p
	}
	return p
}

// Forget drops a tab's popup, e.g. when the tab navigates away.
func (r *PopupRegistry) Forget(tab string) {
	r.mu.Lock()
	p, ok := r.popups[tab]
	delete(r.popups, tab)
	r.mu.Unlock()
	if ok {
		p.Close()
	}
}

// Close stops every popup's timers.
func (r *PopupRegistry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for tab, p := range r.popups {
		p.Close()
		delete(r.popups, tab)
	}
}
