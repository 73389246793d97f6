package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"highlight-saver/internal/domain"
	"highlight-saver/internal/handler"
	"highlight-saver/internal/repository"
	"highlight-saver/internal/service"
	"highlight-saver/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

type stubGenerator struct{}

func (stubGenerator) Generate(ctx context.Context, apiKey string, req domain.GenerationRequest) (string, error) {
	return "Two pages about animals.", nil
}

func newTestServer(t *testing.T) string {
	t.Helper()
	log := logger.NewNopLogger()

	broker := service.NewStorageBroker(repository.NewMemoryKVStore(), log)
	t.Cleanup(func() { broker.Close() })

	messenger := service.NewBrokerMessenger(broker, log)
	summarizer := service.NewSummarizeService(stubGenerator{}, log, time.Second)
	capture := service.NewCaptureService(messenger, log)
	registry := service.NewPopupRegistry(capture)
	t.Cleanup(registry.Close)

	router := handler.NewRouter(handler.Handlers{
		Messaging:  handler.NewMessagingHandler(messenger, log),
		Highlights: handler.NewHighlightHandler(broker, log),
		Settings:   handler.NewSettingsHandler(broker, log),
		Summaries:  handler.NewSummaryHandler(broker, summarizer, log),
		Capture:    handler.NewCaptureHandler(capture, registry, log),
		Popup:      handler.NewPopupHandler(service.NewPopupService(broker, summarizer, log), log),
	}, nil)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv.URL
}

func run(t *testing.T, server string, args ...string) (string, error) {
	t.Helper()
	app := newApp()
	var out bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &out
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	err := app.Run(append([]string{"highlightctl", "--server", server}, args...))
	return out.String(), err
}

func TestCLI_AddListDelete(t *testing.T) {
	server := newTestServer(t)

	out, err := run(t, server, "add", "--text", "  Cats are mammals ", "--url", "https://en.wikipedia.org/wiki/Cat", "--title", "Cat")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved ")

	_, err = run(t, server, "add", "--text", "Dogs bark", "--url", "https://dogs.example.com/", "--title", "Dogs")
	require.NoError(t, err)

	out, err = run(t, server, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Cats are mammals")
	assert.Contains(t, out, "Dogs bark")
	assert.Contains(t, out, "2 highlights")

	out, err = run(t, server, "list", "--site", "*.wikipedia.org")
	require.NoError(t, err)
	assert.Contains(t, out, "Cats are mammals")
	assert.NotContains(t, out, "Dogs bark")
	assert.Contains(t, out, "1 highlight")

	out, err = run(t, server, "list", "--search", "zebra")
	require.NoError(t, err)
	assert.Contains(t, out, "No highlights found")

	_, err = run(t, server, "clear")
	require.Error(t, err)

	out, err = run(t, server, "clear", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "All highlights deleted")
}

func TestCLI_KeyAndSummarize(t *testing.T) {
	server := newTestServer(t)

	out, err := run(t, server, "key", "get")
	require.NoError(t, err)
	assert.Contains(t, out, "No API key configured")

	_, err = run(t, server, "add", "--text", "Cats purr", "--url", "https://cats.test/")
	require.NoError(t, err)

	_, err = run(t, server, "summarize")
	require.Error(t, err)
	assert.Equal(t, "Please set your Gemini API key first", errorText(err))

	_, err = run(t, server, "key", "set", "secret-1234")
	require.NoError(t, err)

	out, err = run(t, server, "key", "get")
	require.NoError(t, err)
	assert.Contains(t, out, "*******1234")

	out, err = run(t, server, "summarize")
	require.NoError(t, err)
	assert.Contains(t, out, "Summary of 1 highlight")
	assert.Contains(t, out, "Two pages about animals.")
}

func TestWriteExport(t *testing.T) {
	list := domain.Collection{
		{ID: "1", Text: "Cats", URL: "https://cats.test/", Title: "Cats", Timestamp: "2024-03-01T10:00:00Z"},
	}

	var buf bytes.Buffer
	require.NoError(t, writeExport(&buf, list, "json"))
	var items []ExportItem
	require.NoError(t, json.Unmarshal(buf.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "Cats", items[0].Text)

	buf.Reset()
	require.NoError(t, writeExport(&buf, list, "yaml"))
	assert.Contains(t, buf.String(), "url: https://cats.test/")
	assert.NotContains(t, buf.String(), "context:")
	items = nil
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &items))
	assert.Equal(t, "1", items[0].ID)

	assert.Error(t, writeExport(&buf, list, "csv"))
}

func TestCLI_ExportFormats(t *testing.T) {
	server := newTestServer(t)
	_, err := run(t, server, "add", "--text", "Cats purr", "--url", "https://cats.test/")
	require.NoError(t, err)

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.csv")
	_, err = run(t, server, "export", "--format", "csv", "--out", bad)
	require.Error(t, err)
	_, statErr := os.Stat(bad)
	assert.True(t, os.IsNotExist(statErr), "no file should be created for an unknown format")

	good := filepath.Join(dir, "highlights.yaml")
	out, err := run(t, server, "export", "--format", "yml", "--out", good)
	require.NoError(t, err)
	assert.Contains(t, out, "exported 1 highlights to")
	data, err := os.ReadFile(good)
	require.NoError(t, err)
	assert.Contains(t, string(data), "text: Cats purr")
}

func TestFilterSite(t *testing.T) {
	list := domain.Collection{
		{ID: "1", URL: "https://en.wikipedia.org/wiki/Cat"},
		{ID: "2", URL: "https://wikipedia.org/"},
		{ID: "3", URL: "not a url"},
	}

	got, err := filterSite(list, "*.wikipedia.org")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)

	got, err = filterSite(list, "{wikipedia.org,*.wikipedia.org}")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = filterSite(list, "[")
	assert.Error(t, err)
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "***", maskKey("abc"))
	assert.Equal(t, "****5678", maskKey("12345678"))
}
