package service

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"regexp"
	"strings"
	"time"

	"highlight-saver/internal/domain"
	apperrors "highlight-saver/pkg/errors"
)

const (
	singlePromptTemplate = "Summarize this highlight in 2-3 concise sentences, focusing on the key information:\n\n%s"
	multiPromptTemplate  = "Create numbered individual summaries for each highlight. " +
		"For each person or topic mentioned, write a number followed by their name and a colon, then 2-3 concise sentences about them. " +
		"Format like \"1. Name: summary sentences\" and \"2. Name: summary sentences\". " +
		"Do not use bullet points or complex structures:\n\n%s"
)

// BuildPrompt quotes each highlight with its source title and picks the
// single or multi template.
func BuildPrompt(highlights []domain.Highlight) string {
	parts := make([]string, 0, len(highlights))
	for _, h := range highlights {
		parts = append(parts, fmt.Sprintf("\"%s\" (from %s)", h.Text, h.Title))
	}
	joined := strings.Join(parts, "\n\n")
	if len(highlights) == 1 {
		return fmt.Sprintf(singlePromptTemplate, joined)
	}
	return fmt.Sprintf(multiPromptTemplate, joined)
}

// GenerationConfigFor returns the output budget for n highlights.
func GenerationConfigFor(n int) domain.GenerationConfig {
	maxTokens := domain.MultiHighlightMaxTokens
	if n == 1 {
		maxTokens = domain.SingleHighlightMaxTokens
	}
	return domain.GenerationConfig{
		MaxOutputTokens: maxTokens,
		Temperature:     domain.SummaryTemperature,
	}
}

var (
	reBold   = regexp.MustCompile(`\*\*(.*?)\*\*`)
	reItalic = regexp.MustCompile(`\*(.*?)\*`)
)

// FormatSummary converts the model's light markdown into display markup.
// The text is HTML-escaped first so model output cannot inject tags.
func FormatSummary(raw string) string {
	s := html.EscapeString(strings.ReplaceAll(raw, "\r\n", "\n"))
	s = reBold.ReplaceAllString(s, "<strong>$1</strong>")
	s = reItalic.ReplaceAllString(s, "<em>$1</em>")
	s = strings.ReplaceAll(s, "\n\n", "</p><p>")
	s = strings.ReplaceAll(s, "\n", "<br>")
	return "<p>" + s + "</p>"
}

// SummarizeService checks preconditions, builds the prompt and formats the reply.
type SummarizeService struct {
	generator domain.Generator
	logger    domain.Logger
	timeout   time.Duration
}

func NewSummarizeService(generator domain.Generator, logger domain.Logger, timeout time.Duration) *SummarizeService {
	return &SummarizeService{
		generator: generator,
		logger:    logger,
		timeout:   timeout,
	}
}

// Summarize never calls the generator when apiKey is empty. Failures are
// reported with a generic message and are not retried.
func (s *SummarizeService) Summarize(ctx context.Context, apiKey string, highlights []domain.Highlight) (*domain.Summary, error) {
	if apiKey == "" {
		return nil, preconditionError("Please set your Gemini API key first", domain.ErrAPIKeyRequired)
	}
	if len(highlights) == 0 {
		return nil, preconditionError("No highlights to summarize", domain.ErrNoHighlights)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	req := domain.GenerationRequest{
		Prompt: BuildPrompt(highlights),
		Config: GenerationConfigFor(len(highlights)),
	}

	start := time.Now()
	raw, err := s.generator.Generate(ctx, apiKey, req)
	if err != nil {
		s.logger.Error("Summary generation failed", err, "highlights", len(highlights))
		return nil, apperrors.NewSummarizeError(domain.SummarizeFailedMessage, err)
	}

	s.logger.Info("Summary generated",
		"highlights", len(highlights),
		"max_tokens", req.Config.MaxOutputTokens,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &domain.Summary{
		Raw:   raw,
		HTML:  FormatSummary(raw),
		Count: len(highlights),
	}, nil
}

func preconditionError(message string, cause error) *apperrors.AppError {
	return &apperrors.AppError{
		Type:       apperrors.ErrorTypeSummarize,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Cause:      cause,
	}
}

var _ domain.Summarizer = (*SummarizeService)(nil)
