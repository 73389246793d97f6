package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"highlight-saver/internal/domain"

	"github.com/tidwall/gjson"
)

const (
	generatedTextPath = "candidates.0.content.parts.0.text"
	maxResponseBytes  = 1 << 20
)

// GeminiClient calls the generateContent endpoint with the API key as a query
// credential.
type GeminiClient struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

func NewGeminiClient(baseURL, model string, timeout time.Duration) *GeminiClient {
	return &GeminiClient{
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type generatePart struct {
	Text string `json:"text"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type generateContentRequest struct {
	Contents         []generateContent       `json:"contents"`
	GenerationConfig domain.GenerationConfig `json:"generationConfig"`
}

func (c *GeminiClient) endpoint(apiKey string) string {
	q := url.Values{}
	q.Set("key", apiKey)
	return fmt.Sprintf("%s/models/%s:generateContent?%s", c.baseURL, url.PathEscape(c.model), q.Encode())
}

// Generate returns the first candidate's text. Non-2xx statuses and bodies
// without the text path are errors.
func (c *GeminiClient) Generate(ctx context.Context, apiKey string, req domain.GenerationRequest) (string, error) {
	body, err := json.Marshal(generateContentRequest{
		Contents:         []generateContent{{Parts: []generatePart{{Text: req.Prompt}}}},
		GenerationConfig: req.Config,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(apiKey), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		// url.Error embeds the full URL, which carries the key.
		if uerr, ok := err.(*url.Error); ok {
			return "", fmt.Errorf("request failed: %w", uerr.Err)
		}
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("API request failed: %d", resp.StatusCode)
	}

	text := gjson.GetBytes(data, generatedTextPath)
	if !text.Exists() || text.Type != gjson.String {
		return "", fmt.Errorf("malformed response: missing %s", generatedTextPath)
	}
	return text.String(), nil
}

var _ domain.Generator = (*GeminiClient)(nil)
