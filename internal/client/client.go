// Package client talks to a running highlight-saver server. It speaks the same
// typed message contract as the extension, so anything written against
// domain.Messenger or domain.StorageBroker can run remotely.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"highlight-saver/internal/domain"
	apperrors "highlight-saver/pkg/errors"
)

const (
	DefaultBaseURL = "http://localhost:8080"
	maxResponse    = 4 << 20
)

// Client is an HTTP client for the highlight-saver API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithToken sets the X-Extension-Token header on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send posts msg to the messaging endpoint. Like the in-process messenger it
// always returns a response; err is set whenever Success is false.
func (c *Client) Send(ctx context.Context, msg domain.Message) (*domain.MessageResponse, error) {
	var resp domain.MessageResponse
	status, err := c.doJSON(ctx, http.MethodPost, "/api/v1/messages", msg, &resp)
	if err != nil {
		return &domain.MessageResponse{Error: apperrors.UserMessage(err)}, err
	}
	if status >= 300 || !resp.Success {
		if resp.Error == "" {
			resp.Error = http.StatusText(status)
		}
		resp.Success = false
		return &resp, errorFromStatus(status, resp.Error)
	}
	return &resp, nil
}

// List returns the collection, newest first.
func (c *Client) List(ctx context.Context) (domain.Collection, error) {
	resp, err := c.Send(ctx, domain.Message{Action: domain.ActionGetHighlights})
	if err != nil {
		return nil, err
	}
	if resp.Highlights == nil {
		return domain.Collection{}, nil
	}
	return resp.Highlights, nil
}

func (c *Client) Add(ctx context.Context, h domain.Highlight) error {
	_, err := c.Send(ctx, domain.Message{Action: domain.ActionSaveHighlight, Highlight: &h})
	return err
}

func (c *Client) Delete(ctx context.Context, id string) error {
	_, err := c.Send(ctx, domain.Message{Action: domain.ActionDeleteHighlight, HighlightID: id})
	return err
}

func (c *Client) Clear(ctx context.Context) error {
	_, err := c.Send(ctx, domain.Message{Action: domain.ActionClearHighlights})
	return err
}

func (c *Client) GetAPIKey(ctx context.Context) (string, error) {
	resp, err := c.Send(ctx, domain.Message{Action: domain.ActionGetAPIKey})
	if err != nil {
		return "", err
	}
	if resp.APIKey == nil {
		return "", nil
	}
	return *resp.APIKey, nil
}

func (c *Client) SetAPIKey(ctx context.Context, key string) error {
	_, err := c.Send(ctx, domain.Message{Action: domain.ActionSetAPIKey, APIKey: &key})
	return err
}

type summaryRequest struct {
	IDs []string `json:"ids"`
}

type summaryResponse struct {
	Summary string `json:"summary"`
	HTML    string `json:"html"`
	Count   int    `json:"count"`
	Error   string `json:"error"`
}

// SummarizeIDs asks the server to summarize the given highlights with its
// stored key. No ids means the whole collection.
func (c *Client) SummarizeIDs(ctx context.Context, ids []string) (*domain.Summary, error) {
	var resp summaryResponse
	status, err := c.doJSON(ctx, http.MethodPost, "/api/v1/summaries", summaryRequest{IDs: ids}, &resp)
	if err != nil {
		return nil, err
	}
	if status >= 300 {
		return nil, errorFromStatus(status, resp.Error)
	}
	return &domain.Summary{Raw: resp.Summary, HTML: resp.HTML, Count: resp.Count}, nil
}

// Summarizer adapts SummarizeIDs to domain.Summarizer. The server uses its
// stored key, so the apiKey argument is ignored.
func (c *Client) Summarizer() domain.Summarizer {
	return remoteSummarizer{c}
}

type remoteSummarizer struct{ c *Client }

func (r remoteSummarizer) Summarize(ctx context.Context, _ string, highlights []domain.Highlight) (*domain.Summary, error) {
	ids := make([]string, 0, len(highlights))
	for _, h := range highlights {
		ids = append(ids, h.ID)
	}
	return r.c.SummarizeIDs(ctx, ids)
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out interface{}) (int, error) {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return 0, apperrors.NewInternalError("Failed to encode request", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, apperrors.NewInternalError("Failed to build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("X-Extension-Token", c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return 0, apperrors.NewMessagingError("Could not reach the highlight service", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponse))
	if err != nil {
		return resp.StatusCode, apperrors.NewNetworkError("Failed to read response", err)
	}
	if len(data) > 0 && out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, apperrors.NewNetworkError(
				fmt.Sprintf("Unexpected response (status %d)", resp.StatusCode), err)
		}
	}
	return resp.StatusCode, nil
}

func errorFromStatus(status int, message string) error {
	if message == "" {
		message = http.StatusText(status)
	}
	switch status {
	case http.StatusBadRequest:
		return apperrors.NewValidationError(message)
	case http.StatusUnauthorized:
		return apperrors.NewUnauthorizedError(message)
	case http.StatusNotFound:
		return apperrors.NewNotFoundError(message)
	case http.StatusBadGateway:
		return apperrors.NewSummarizeError(message, nil)
	case http.StatusServiceUnavailable:
		return apperrors.NewMessagingError(message, nil)
	default:
		return apperrors.NewStorageError(message, nil)
	}
}

var (
	_ domain.Messenger     = (*Client)(nil)
	_ domain.StorageBroker = (*Client)(nil)
)
