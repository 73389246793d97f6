package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"highlight-saver/internal/client"
	"highlight-saver/internal/domain"
	"highlight-saver/internal/popup"
	"highlight-saver/internal/service"
	"highlight-saver/internal/tui"
	"highlight-saver/pkg/logger"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gobwas/glob"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// ExportItem is the on-disk shape of an exported highlight.
type ExportItem struct {
	ID        string `json:"id" yaml:"id"`
	Text      string `json:"text" yaml:"text"`
	URL       string `json:"url" yaml:"url"`
	Title     string `json:"title" yaml:"title"`
	Timestamp string `json:"timestamp" yaml:"timestamp"`
	Context   string `json:"context,omitempty" yaml:"context,omitempty"`
}

func newClient(c *cli.Context) *client.Client {
	var opts []client.Option
	if token := c.String("token"); token != "" {
		opts = append(opts, client.WithToken(token))
	}
	return client.New(c.String("server"), opts...)
}

func ListAction(c *cli.Context) error {
	list, err := newClient(c).List(c.Context)
	if err != nil {
		return err
	}

	list = list.Filter(c.String("search"))
	if site := c.String("site"); site != "" {
		list, err = filterSite(list, site)
		if err != nil {
			return err
		}
	}

	out := c.App.Writer
	if len(list) == 0 {
		fmt.Fprintln(out, "No highlights found")
		return nil
	}
	for _, h := range list {
		fmt.Fprintf(out, "%s  %s  %s\n", h.ID, popup.FormatTimestamp(h.Timestamp, time.Local), popup.Hostname(h.URL))
		fmt.Fprintf(out, "    %s\n", popup.Truncate(h.Text, domain.SnippetLength))
	}
	fmt.Fprintf(out, "\n%s\n", popup.HeaderText(len(list)))
	return nil
}

// filterSite keeps highlights whose page hostname matches pattern.
func filterSite(list domain.Collection, pattern string) (domain.Collection, error) {
	g, err := glob.Compile(strings.ToLower(pattern), '.')
	if err != nil {
		return nil, fmt.Errorf("invalid site pattern '%s': %w", pattern, err)
	}
	out := make(domain.Collection, 0, len(list))
	for _, h := range list {
		if g.Match(strings.ToLower(popup.Hostname(h.URL))) {
			out = append(out, h)
		}
	}
	return out, nil
}

func AddAction(c *cli.Context) error {
	h := domain.NewHighlight(
		strings.TrimSpace(c.String("text")),
		c.String("url"),
		c.String("title"),
		c.String("context"),
		time.Now(),
	)
	if err := h.Validate(); err != nil {
		return err
	}
	if err := newClient(c).Add(c.Context, *h); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, "Saved", h.ID)
	return nil
}

func DeleteAction(c *cli.Context) error {
	id := c.Args().First()
	if id == "" {
		return cli.Exit("usage: highlightctl delete <id>", 2)
	}
	if err := newClient(c).Delete(c.Context, id); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, "Deleted", id)
	return nil
}

func ClearAction(c *cli.Context) error {
	if !c.Bool("yes") {
		return cli.Exit("refusing to delete all highlights without --yes", 2)
	}
	if err := newClient(c).Clear(c.Context); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, "All highlights deleted")
	return nil
}

func KeyGetAction(c *cli.Context) error {
	key, err := newClient(c).GetAPIKey(c.Context)
	if err != nil {
		return err
	}
	if key == "" {
		fmt.Fprintln(c.App.Writer, "No API key configured")
		return nil
	}
	fmt.Fprintln(c.App.Writer, maskKey(key))
	return nil
}

func KeySetAction(c *cli.Context) error {
	key := strings.TrimSpace(c.Args().First())
	if key == "" {
		return cli.Exit("usage: highlightctl key set <key>", 2)
	}
	if err := newClient(c).SetAPIKey(c.Context, key); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, "API key saved")
	return nil
}

// maskKey shows only the last four characters of key.
func maskKey(key string) string {
	r := []rune(key)
	if len(r) <= 4 {
		return strings.Repeat("*", len(r))
	}
	return strings.Repeat("*", len(r)-4) + string(r[len(r)-4:])
}

func SummarizeAction(c *cli.Context) error {
	summary, err := newClient(c).SummarizeIDs(c.Context, c.StringSlice("id"))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Summary of %s\n\n%s\n", popup.HeaderText(summary.Count), summary.Raw)
	return nil
}

func ExportAction(c *cli.Context) error {
	format, err := exportFormat(c.String("format"))
	if err != nil {
		return err
	}
	list, err := newClient(c).List(c.Context)
	if err != nil {
		return err
	}

	var w io.Writer = c.App.Writer
	if path := c.String("out"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}

	if err := writeExport(w, list, format); err != nil {
		return err
	}
	if c.String("out") != "" {
		fmt.Fprintln(c.App.Writer, "exported", len(list), "highlights to", c.String("out"))
	}
	return nil
}

// exportFormat normalizes format to "json" or "yaml".
func exportFormat(format string) (string, error) {
	switch strings.ToLower(format) {
	case "json", "":
		return "json", nil
	case "yaml", "yml":
		return "yaml", nil
	default:
		return "", fmt.Errorf("unknown export format %q (want json or yaml)", format)
	}
}

func writeExport(w io.Writer, list domain.Collection, format string) error {
	format, err := exportFormat(format)
	if err != nil {
		return err
	}

	items := make([]ExportItem, 0, len(list))
	for _, h := range list {
		items = append(items, ExportItem(h))
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	default:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(items); err != nil {
			return err
		}
		return enc.Close()
	}
}

func BrowseAction(c *cli.Context) error {
	remote := newClient(c)
	effects := service.NewPopupService(remote, remote.Summarizer(), logger.NewNopLogger())

	p := tea.NewProgram(tui.New(c.Context, effects), tea.WithAltScreen(), tea.WithContext(c.Context))
	_, err := p.Run()
	return err
}
