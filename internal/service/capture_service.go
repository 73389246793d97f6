package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"highlight-saver/internal/domain"
	apperrors "highlight-saver/pkg/errors"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

const highlightClass = "highlight-saver-highlighted"

// hiddenElements hold text a user cannot select.
const hiddenElements = "script,style,noscript,template"

// CaptureService turns a page selection into a stored highlight.
type CaptureService struct {
	messenger domain.Messenger
	logger    domain.Logger
	now       func() time.Time
}

func NewCaptureService(messenger domain.Messenger, logger domain.Logger) *CaptureService {
	return &CaptureService{
		messenger: messenger,
		logger:    logger,
		now:       time.Now,
	}
}

// NormalizeSelection trims text and enforces the (0, 1000) length window.
func NormalizeSelection(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	n := utf8.RuneCountInString(trimmed)
	if n == 0 {
		return "", domain.ErrEmptySelection
	}
	if n >= domain.MaxSelectionLength {
		return "", domain.ErrSelectionTooLong
	}
	return trimmed, nil
}

// Build validates the selection and computes its context. A missing page
// title is taken from the snapshot's article title.
func (s *CaptureService) Build(sel domain.Selection) (*domain.Highlight, error) {
	text, err := NormalizeSelection(sel.Text)
	if err != nil {
		return nil, err
	}
	title := sel.PageTitle
	if title == "" && sel.HTML != "" {
		title = ArticleTitle(sel.HTML, sel.PageURL)
	}
	return domain.NewHighlight(text, sel.PageURL, title, ExtractContext(sel.HTML, text), s.now()), nil
}

// ArticleTitle extracts the readable title of a page snapshot, or "".
func ArticleTitle(pageHTML, pageURL string) string {
	base, err := url.Parse(pageURL)
	if err != nil || base.Scheme == "" {
		base = &url.URL{Scheme: "https", Host: "localhost"}
	}
	article, err := readability.FromReader(strings.NewReader(pageHTML), base)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(article.Title)
}

// Save builds the highlight, sends it to the storage broker and, on success,
// returns the snapshot with the selection wrapped in a highlight span.
// Failures are reported through the returned toast as well as the error.
func (s *CaptureService) Save(ctx context.Context, sel domain.Selection) (*domain.CaptureResult, error) {
	highlight, err := s.Build(sel)
	if err != nil {
		message, toast := "No text selected", "No text selected. Please select some text first."
		if errors.Is(err, domain.ErrSelectionTooLong) {
			message, toast = "Selection is too long", "Selection is too long. Please select fewer than 1000 characters."
		}
		return &domain.CaptureResult{
			Toast: errorToast(toast),
		}, apperrors.NewValidationError(message, err.Error())
	}

	if s.messenger == nil {
		msgErr := apperrors.NewMessagingError("Extension runtime not available", nil)
		return &domain.CaptureResult{Toast: errorToast("Error saving highlight: " + msgErr.Message)}, msgErr
	}

	resp, err := s.messenger.Send(ctx, domain.Message{
		Action:    domain.ActionSaveHighlight,
		Highlight: highlight,
	})
	if err == nil && (resp == nil || !resp.Success) {
		reason := "Failed to save highlight"
		if resp != nil && resp.Error != "" {
			reason = resp.Error
		}
		err = apperrors.NewStorageError(reason, nil)
	}
	if err != nil {
		s.logger.Error("Failed to save highlight", err, "url", sel.PageURL)
		return &domain.CaptureResult{
			Highlight: highlight,
			Toast:     errorToast("Error saving highlight: " + apperrors.UserMessage(err)),
		}, err
	}

	marked := sel.HTML
	if sel.HTML != "" {
		if out, ok := MarkSelection(sel.HTML, highlight.Text); ok {
			marked = out
		}
	}

	return &domain.CaptureResult{
		Highlight:  highlight,
		MarkedHTML: marked,
		Toast: domain.Toast{
			Kind:    domain.ToastSuccess,
			Message: "✓ Highlight saved!",
			TTL:     domain.SuccessToastTTL,
		},
	}, nil
}

func errorToast(message string) domain.Toast {
	return domain.Toast{Kind: domain.ToastError, Message: "❌ " + message, TTL: domain.ErrorToastTTL}
}

// ExtractContext returns up to ContextRadius characters either side of the
// first occurrence of selected inside its nearest containing element. When the
// page does not contain the selection, the first ContextFallbackLength
// characters of the body are returned. Only the first match is considered, so
// a repeated phrase takes its context from the earliest occurrence.
func ExtractContext(pageHTML, selected string) string {
	if strings.TrimSpace(pageHTML) == "" || selected == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return ""
	}

	block := nearestContainingBlock(doc, selected)
	full := []rune(collapseSpaces(visibleText(block)))
	needle := []rune(collapseSpaces(selected))

	idx := runeIndex(full, needle)
	if idx < 0 {
		if len(full) > domain.ContextFallbackLength {
			return string(full[:domain.ContextFallbackLength])
		}
		return string(full)
	}

	start := idx - domain.ContextRadius
	if start < 0 {
		start = 0
	}
	end := idx + len(needle) + domain.ContextRadius
	if end > len(full) {
		end = len(full)
	}
	return string(full[start:end])
}

// nearestContainingBlock walks down from <body>, always taking the first child
// whose text contains selected. The result is the deepest such element, or
// body when no child qualifies.
func nearestContainingBlock(doc *goquery.Document, selected string) *goquery.Selection {
	needle := collapseSpaces(selected)
	current := doc.Find("body").First()
	if current.Length() == 0 {
		current = doc.Selection
	}
	for {
		next := current.Children().Not(hiddenElements).FilterFunction(func(_ int, child *goquery.Selection) bool {
			return strings.Contains(collapseSpaces(visibleText(child)), needle)
		}).First()
		if next.Length() == 0 {
			return current
		}
		current = next
	}
}

// visibleText is the text of sel without script, style and similar elements.
func visibleText(sel *goquery.Selection) string {
	if sel.Find(hiddenElements).Length() == 0 {
		return sel.Text()
	}
	clone := sel.Clone()
	clone.Find(hiddenElements).Remove()
	return clone.Text()
}

// MarkSelection wraps the first occurrence of selected in a highlight span.
// It only succeeds when the occurrence lies inside a single text node, the
// same restriction a DOM range has when surrounding its contents.
func MarkSelection(pageHTML, selected string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return pageHTML, false
	}

	block := nearestContainingBlock(doc, selected)
	var target *html.Node
	var offset int
	for _, root := range block.Nodes {
		target, offset = findTextNode(root, selected)
		if target != nil {
			break
		}
	}
	if target == nil {
		return pageHTML, false
	}

	before := target.Data[:offset]
	after := target.Data[offset+len(selected):]

	span := &html.Node{
		Type: html.ElementNode,
		Data: "span",
		Attr: []html.Attribute{{Key: "class", Val: highlightClass}},
	}
	span.AppendChild(&html.Node{Type: html.TextNode, Data: selected})

	parent := target.Parent
	if before != "" {
		parent.InsertBefore(&html.Node{Type: html.TextNode, Data: before}, target)
	}
	parent.InsertBefore(span, target)
	if after != "" {
		parent.InsertBefore(&html.Node{Type: html.TextNode, Data: after}, target)
	}
	parent.RemoveChild(target)

	out, err := doc.Html()
	if err != nil {
		return pageHTML, false
	}
	return out, true
}

func findTextNode(n *html.Node, selected string) (*html.Node, int) {
	if n.Type == html.TextNode {
		if i := strings.Index(n.Data, selected); i >= 0 {
			return n, i
		}
		return nil, -1
	}
	if n.Type == html.ElementNode && isHiddenElement(n.Data) {
		return nil, -1
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found, i := findTextNode(c, selected); found != nil {
			return found, i
		}
	}
	return nil, -1
}

func isHiddenElement(tag string) bool {
	switch tag {
	case "script", "style", "noscript", "template":
		return true
	}
	return false
}

// collapseSpaces approximates rendered text: runs of whitespace become one space.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func runeIndex(haystack, needle []rune) int {
	if len(needle) == 0 {
		return 0
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
