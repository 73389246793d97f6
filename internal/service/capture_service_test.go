package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"highlight-saver/internal/domain"
	apperrors "highlight-saver/pkg/errors"
)

type MockMessenger struct {
	resp *domain.MessageResponse
	err  error
	sent []domain.Message
}

func (m *MockMessenger) Send(ctx context.Context, msg domain.Message) (*domain.MessageResponse, error) {
	m.sent = append(m.sent, msg)
	return m.resp, m.err
}

const articleHTML = `<html><head><title>Cats</title></head><body>
<nav>Home | About</nav>
<article>
  <p>Intro paragraph about pets in general and why people keep them around the house.</p>
  <p>Many people agree that cats are mammals with soft fur, sharp claws and a strong independent streak that owners love.</p>
</article>
</body></html>`

func TestNormalizeSelection(t *testing.T) {
	if got, err := NormalizeSelection("  hello world \n"); err != nil || got != "hello world" {
		t.Fatalf("expected trimmed text, got %q (%v)", got, err)
	}
	if _, err := NormalizeSelection("   "); !errors.Is(err, domain.ErrEmptySelection) {
		t.Fatalf("expected ErrEmptySelection, got %v", err)
	}
	if _, err := NormalizeSelection(strings.Repeat("a", 1000)); !errors.Is(err, domain.ErrSelectionTooLong) {
		t.Fatalf("expected ErrSelectionTooLong, got %v", err)
	}
	if _, err := NormalizeSelection(strings.Repeat("a", 999)); err != nil {
		t.Fatalf("expected 999 characters to be accepted, got %v", err)
	}
}

func TestExtractContext(t *testing.T) {
	ctx := ExtractContext(articleHTML, "cats are mammals")

	if !strings.Contains(ctx, "cats are mammals") {
		t.Fatalf("expected context to contain the selection, got %q", ctx)
	}
	if strings.Contains(ctx, "Intro paragraph") {
		t.Fatalf("expected context from the containing paragraph only, got %q", ctx)
	}
	want := "Many people agree that cats are mammals with soft fur, sharp claws and a strong independe"
	if ctx != want {
		t.Fatalf("unexpected context:\n got %q\nwant %q", ctx, want)
	}
}

func TestExtractContext_FirstMatchWins(t *testing.T) {
	page := `<body><p>echo one. ` + strings.Repeat("x", 60) + ` echo two.</p></body>`
	ctx := ExtractContext(page, "echo")
	if !strings.HasPrefix(ctx, "echo one.") {
		t.Fatalf("expected context around the first occurrence, got %q", ctx)
	}
}

func TestExtractContext_Fallbacks(t *testing.T) {
	if got := ExtractContext("", "anything"); got != "" {
		t.Fatalf("expected empty context without html, got %q", got)
	}

	page := `<body><p>` + strings.Repeat("word ", 40) + `</p></body>`
	got := ExtractContext(page, "not on the page")
	if len([]rune(got)) != domain.ContextFallbackLength {
		t.Fatalf("expected %d fallback characters, got %d", domain.ContextFallbackLength, len([]rune(got)))
	}
}

func TestExtractContext_SpansInlineElements(t *testing.T) {
	page := `<body><div><p>The <b>quick</b> brown fox</p></div></body>`
	if got := ExtractContext(page, "quick brown"); got != "The quick brown fox" {
		t.Fatalf("expected paragraph text as context, got %q", got)
	}
}

const scriptedHTML = `<html><body>
<script>var greeting = "hello world"; track();</script>
<style>.x:after { content: "hello world"; }</style>
<p>Some intro text. hello world is what every program prints first.</p>
</body></html>`

func TestExtractContext_SkipsScriptsAndStyles(t *testing.T) {
	ctx := ExtractContext(scriptedHTML, "hello world")
	want := "Some intro text. hello world is what every program prints first."
	if ctx != want {
		t.Fatalf("unexpected context:\n got %q\nwant %q", ctx, want)
	}

	onlyScript := `<body><script>var greeting = "hello world";</script><p>Nothing else here.</p></body>`
	if got := ExtractContext(onlyScript, "hello world"); strings.Contains(got, "greeting") {
		t.Fatalf("expected script source to be excluded, got %q", got)
	}
}

func TestMarkSelection_SkipsScripts(t *testing.T) {
	out, ok := MarkSelection(scriptedHTML, "hello world")
	if !ok {
		t.Fatalf("expected selection to be marked")
	}
	if !strings.Contains(out, `var greeting = "hello world"; track();`) {
		t.Fatalf("expected script to be left untouched, got %s", out)
	}
	if !strings.Contains(out, `Some intro text. <span class="highlight-saver-highlighted">hello world</span> is what`) {
		t.Fatalf("expected span inside the paragraph, got %s", out)
	}

	if _, ok := MarkSelection(`<body><script>var s = "hello world";</script></body>`, "hello world"); ok {
		t.Fatalf("expected text only found in a script not to be marked")
	}
}

func TestMarkSelection(t *testing.T) {
	out, ok := MarkSelection(articleHTML, "cats are mammals")
	if !ok {
		t.Fatalf("expected selection to be marked")
	}
	if !strings.Contains(out, `agree that <span class="highlight-saver-highlighted">cats are mammals</span> with soft fur`) {
		t.Fatalf("expected span around selection, got %s", out)
	}

	if _, ok := MarkSelection(`<body><p>The <b>quick</b> brown fox</p></body>`, "quick brown"); ok {
		t.Fatalf("expected selection across elements not to be marked")
	}
}

func TestCaptureService_Save(t *testing.T) {
	messenger := &MockMessenger{resp: &domain.MessageResponse{Success: true}}
	svc := NewCaptureService(messenger, NewMockLogger())
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) }

	result, err := svc.Save(context.Background(), domain.Selection{
		Text:      "  cats are mammals  ",
		PageURL:   "https://example.com/cats",
		PageTitle: "Cats",
		HTML:      articleHTML,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(messenger.sent) != 1 || messenger.sent[0].Action != domain.ActionSaveHighlight {
		t.Fatalf("expected one saveHighlight message, got %+v", messenger.sent)
	}
	h := messenger.sent[0].Highlight
	if h.Text != "cats are mammals" {
		t.Fatalf("expected trimmed text, got %q", h.Text)
	}
	if h.URL != "https://example.com/cats" || h.Title != "Cats" {
		t.Fatalf("unexpected page metadata %+v", h)
	}
	if h.Timestamp != "2024-03-01T10:00:00Z" {
		t.Fatalf("unexpected timestamp %s", h.Timestamp)
	}
	if h.Context == "" {
		t.Fatalf("expected context to be captured")
	}
	if result.Toast.Kind != domain.ToastSuccess || result.Toast.TTL != domain.SuccessToastTTL {
		t.Fatalf("unexpected toast %+v", result.Toast)
	}
	if !strings.Contains(result.MarkedHTML, "highlight-saver-highlighted") {
		t.Fatalf("expected marked html")
	}
}

func TestArticleTitle(t *testing.T) {
	para := "<p>" + strings.Repeat("Cats are curious animals that enjoy quiet company, warm places and long naps in the sun. ", 4) + "</p>"
	page := "<html><head><title>Why Cats Make Good Companions</title></head><body><article>" +
		para + para + para + "</article></body></html>"

	if got := ArticleTitle(page, "https://example.com/cats"); got != "Why Cats Make Good Companions" {
		t.Fatalf("unexpected title %q", got)
	}

	svc := NewCaptureService(&MockMessenger{}, NewMockLogger())
	h, err := svc.Build(domain.Selection{Text: "long naps", PageURL: "not a url", HTML: page})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if h.Title != "Why Cats Make Good Companions" {
		t.Fatalf("expected title from snapshot, got %q", h.Title)
	}
}

func TestCaptureService_SaveFailures(t *testing.T) {
	svc := NewCaptureService(&MockMessenger{resp: &domain.MessageResponse{Success: true}}, NewMockLogger())
	result, err := svc.Save(context.Background(), domain.Selection{Text: "  "})
	if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if result.Toast.Kind != domain.ToastError || !strings.Contains(result.Toast.Message, "No text selected") {
		t.Fatalf("unexpected toast %+v", result.Toast)
	}

	result, err = svc.Save(context.Background(), domain.Selection{Text: strings.Repeat("a", domain.MaxSelectionLength)})
	if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if apperrors.UserMessage(err) != "Selection is too long" {
		t.Fatalf("unexpected message %q", apperrors.UserMessage(err))
	}
	if !strings.Contains(result.Toast.Message, "Selection is too long") || strings.Contains(result.Toast.Message, "No text selected") {
		t.Fatalf("unexpected toast %q", result.Toast.Message)
	}

	noChannel := NewCaptureService(nil, NewMockLogger())
	if _, err := noChannel.Save(context.Background(), domain.Selection{Text: "x"}); !apperrors.IsType(err, apperrors.ErrorTypeMessaging) {
		t.Fatalf("expected messaging error, got %v", err)
	}

	rejected := NewCaptureService(&MockMessenger{resp: &domain.MessageResponse{Success: false, Error: "quota exceeded"}}, NewMockLogger())
	result, err = rejected.Save(context.Background(), domain.Selection{Text: "x"})
	if !apperrors.IsType(err, apperrors.ErrorTypeStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if result.Toast.Message != "❌ Error saving highlight: quota exceeded" {
		t.Fatalf("unexpected toast %q", result.Toast.Message)
	}
	if result.Toast.TTL != domain.ErrorToastTTL {
		t.Fatalf("expected error toast ttl")
	}
}

func TestSavePopup_ShowAndDismiss(t *testing.T) {
	popup := NewSavePopup(NewCaptureService(nil, NewMockLogger()))
	defer popup.Close()

	view := popup.Select(domain.Selection{Text: " hello ", PointerX: 950, PointerY: 200, ViewportWidth: 1000})
	if view.Phase != domain.PopupShowing {
		t.Fatalf("expected showing, got %s", view.Phase)
	}
	if view.Left != 800 || view.Top != 140 {
		t.Fatalf("expected clamped anchor, got (%d,%d)", view.Left, view.Top)
	}
	if view.Text != "hello" || view.ButtonLabel != labelSave || view.Disabled {
		t.Fatalf("unexpected view %+v", view)
	}

	for _, reason := range []domain.DismissReason{domain.DismissEscape, domain.DismissOutsideClick, domain.DismissCancel} {
		popup.Select(domain.Selection{Text: "hello"})
		if v := popup.Dismiss(reason); v.Phase != domain.PopupHidden {
			t.Fatalf("%s: expected hidden, got %s", reason, v.Phase)
		}
		if popup.LastDismissReason() != reason {
			t.Fatalf("expected reason %s, got %s", reason, popup.LastDismissReason())
		}
	}
}

func TestSavePopup_InvalidSelectionHides(t *testing.T) {
	popup := NewSavePopup(NewCaptureService(nil, NewMockLogger()))
	defer popup.Close()

	popup.Select(domain.Selection{Text: "hello"})
	if v := popup.Select(domain.Selection{Text: strings.Repeat("a", 1200)}); v.Phase != domain.PopupHidden {
		t.Fatalf("expected hidden for long selection, got %s", v.Phase)
	}
	if v := popup.Select(domain.Selection{Text: ""}); v.Phase != domain.PopupHidden {
		t.Fatalf("expected hidden for empty selection, got %s", v.Phase)
	}
}

func TestSavePopup_AutoDismiss(t *testing.T) {
	popup := NewSavePopup(NewCaptureService(nil, NewMockLogger()), WithPopupTimings(20*time.Millisecond, time.Second))
	defer popup.Close()

	popup.Select(domain.Selection{Text: "hello"})

	deadline := time.Now().Add(2 * time.Second)
	for popup.View().Phase != domain.PopupHidden {
		if time.Now().After(deadline) {
			t.Fatalf("expected popup to auto-dismiss")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if popup.LastDismissReason() != domain.DismissTimeout {
		t.Fatalf("expected timeout reason, got %s", popup.LastDismissReason())
	}
}

func TestSavePopup_SaveSuccessHides(t *testing.T) {
	messenger := &MockMessenger{resp: &domain.MessageResponse{Success: true}}
	popup := NewSavePopup(NewCaptureService(messenger, NewMockLogger()))
	defer popup.Close()

	popup.Select(domain.Selection{Text: "hello", PageURL: "https://example.com"})
	result, err := popup.Save(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Popup.Phase != domain.PopupHidden || popup.LastDismissReason() != domain.DismissSaved {
		t.Fatalf("expected popup hidden after save, got %+v", result.Popup)
	}
	if len(messenger.sent) != 1 {
		t.Fatalf("expected one message, got %d", len(messenger.sent))
	}
}

func TestSavePopup_SaveFailureReenables(t *testing.T) {
	messenger := &MockMessenger{err: apperrors.NewStorageError("Failed to save highlights", nil)}
	popup := NewSavePopup(NewCaptureService(messenger, NewMockLogger()), WithPopupTimings(time.Minute, 20*time.Millisecond))
	defer popup.Close()

	popup.Select(domain.Selection{Text: "hello"})
	result, err := popup.Save(context.Background())
	if err == nil {
		t.Fatalf("expected error")
	}
	if result.Popup.Phase != domain.PopupFailed || !result.Popup.Disabled || result.Popup.ButtonLabel != labelError {
		t.Fatalf("expected failed disabled popup, got %+v", result.Popup)
	}
	if result.Toast.Kind != domain.ToastError {
		t.Fatalf("expected error toast")
	}

	if _, err := popup.Save(context.Background()); err == nil {
		t.Fatalf("expected save to be rejected while the button is disabled")
	}

	deadline := time.Now().Add(2 * time.Second)
	for popup.View().Phase != domain.PopupShowing {
		if time.Now().After(deadline) {
			t.Fatalf("expected save button to be re-enabled")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if v := popup.View(); v.Disabled || v.ButtonLabel != labelSave {
		t.Fatalf("expected enabled save button, got %+v", v)
	}
}

func TestSavePopup_SaveWhenHidden(t *testing.T) {
	popup := NewSavePopup(NewCaptureService(&MockMessenger{}, NewMockLogger()))
	defer popup.Close()

	if _, err := popup.Save(context.Background()); !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		t.Fatalf("expected validation error when hidden, got %v", err)
	}
}

func TestPopupRegistry(t *testing.T) {
	reg := NewPopupRegistry(NewCaptureService(nil, NewMockLogger()))
	defer reg.Close()

	a := reg.Get("tab-1")
	if reg.Get("tab-1") != a {
		t.Fatalf("expected same popup for the same tab")
	}
	if reg.Get("tab-2") == a {
		t.Fatalf("expected separate popups per tab")
	}
	reg.Forget("tab-1")
	if reg.Get("tab-1") == a {
		t.Fatalf("expected a new popup after forget")
	}
}
