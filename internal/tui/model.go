// Package tui renders the highlight list in a terminal. It is a second
// renderer over the same popup.State and popup.Reduce the HTML page uses.
package tui

import (
	"context"
	"time"

	"highlight-saver/internal/popup"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Effects performs the side effects of the list. *service.PopupService
// satisfies it.
type Effects interface {
	Load(ctx context.Context) popup.Action
	Delete(ctx context.Context, id string) popup.Action
	Clear(ctx context.Context, confirmed bool) popup.Action
	SaveAPIKey(ctx context.Context, key string) popup.Action
	Summarize(ctx context.Context, state popup.State, id string) popup.Action
}

type mode int

const (
	modeBrowse mode = iota
	modeSearch
	modeKey
)

// actionMsg carries the outcome of an effect back into Update.
type actionMsg struct{ action popup.Action }

// Model is the bubbletea model for the highlight list.
type Model struct {
	ctx     context.Context
	effects Effects

	state  popup.State
	cursor int
	mode   mode
	status string

	search   textinput.Model
	keyInput textinput.Model

	width    int
	height   int
	location *time.Location
	copy     func(string) error
}

func New(ctx context.Context, effects Effects) Model {
	search := textinput.New()
	search.Placeholder = "Search highlights..."
	search.Prompt = "/ "

	keyInput := textinput.New()
	keyInput.Placeholder = "Gemini API key"
	keyInput.Prompt = "key: "
	keyInput.EchoMode = textinput.EchoPassword

	return Model{
		ctx:      ctx,
		effects:  effects,
		state:    popup.Initial(),
		search:   search,
		keyInput: keyInput,
		location: time.Local,
		copy:     clipboard.WriteAll,
	}
}

// State exposes the current popup state.
func (m Model) State() popup.State {
	return m.state
}

func (m Model) Init() tea.Cmd {
	return m.run(func(ctx context.Context) popup.Action {
		return m.effects.Load(ctx)
	})
}

func (m Model) run(fn func(ctx context.Context) popup.Action) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return actionMsg{action: fn(ctx)}
	}
}

func (m Model) apply(a popup.Action) Model {
	m.state = popup.Reduce(m.state, a)
	if rows := len(popup.View(m.state, m.location).Rows); m.cursor >= rows {
		m.cursor = rows - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	switch a := a.(type) {
	case popup.OperationFailed:
		m.status = a.Message
	case popup.APIKeyMissing:
		m.mode = modeKey
		m.keyInput.SetValue(m.state.APIKey)
		m.keyInput.Focus()
		m.status = "Please set your Gemini API key first"
	case popup.APIKeySaved:
		m.status = "API key saved"
	case popup.Cleared:
		m.status = "All highlights deleted"
	}
	return m
}

// selectedID is the id under the cursor, or "".
func (m Model) selectedID() string {
	rows := popup.View(m.state, m.location).Rows
	if m.cursor < 0 || m.cursor >= len(rows) {
		return ""
	}
	return rows[m.cursor].ID
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case actionMsg:
		return m.apply(msg.action), nil

	case tea.KeyMsg:
		switch m.mode {
		case modeSearch:
			return m.updateSearch(msg)
		case modeKey:
			return m.updateKey(msg)
		default:
			return m.updateBrowse(msg)
		}
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.mode = modeBrowse
		m.search.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m = m.apply(popup.SearchChanged{Term: m.search.Value()})
	m.cursor = 0
	return m, cmd
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		key := m.keyInput.Value()
		m.mode = modeBrowse
		m.keyInput.Blur()
		return m, m.run(func(ctx context.Context) popup.Action {
			return m.effects.SaveAPIKey(ctx, key)
		})
	case "esc":
		m.mode = modeBrowse
		m.keyInput.Blur()
		closed := false
		return m.apply(popup.APIKeyPanelToggled{Open: &closed}), nil
	}
	var cmd tea.Cmd
	m.keyInput, cmd = m.keyInput.Update(msg)
	return m, cmd
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// Any key other than a second C cancels a pending clear.
	if m.state.ConfirmingClear && key != "C" {
		m = m.apply(popup.ClearCanceled{})
		m.status = ""
	}

	switch key {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "esc":
		if m.state.SummaryOpen {
			return m.apply(popup.SummaryClosed{}), nil
		}
		if m.state.Error != "" {
			return m.apply(popup.ErrorDismissed{}), nil
		}
		return m, tea.Quit

	case "up":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case "down":
		if m.cursor < len(popup.View(m.state, m.location).Rows)-1 {
			m.cursor++
		}
		return m, nil

	case "/":
		if len(m.state.Highlights) == 0 {
			return m, nil
		}
		m.mode = modeSearch
		cmd := m.search.Focus()
		return m, cmd

	case "enter":
		if id := m.selectedID(); id != "" {
			return m.apply(popup.ToggleExpanded{ID: id}), nil
		}
		return m, nil

	case "d":
		id := m.selectedID()
		if id == "" {
			return m, nil
		}
		return m, m.run(func(ctx context.Context) popup.Action {
			return m.effects.Delete(ctx, id)
		})

	case "s":
		id := m.selectedID()
		if id == "" || m.state.SummarizingIDs[id] {
			return m, nil
		}
		return m.summarize(id)

	case "S":
		if m.state.Summarizing || len(m.state.Highlights) == 0 {
			return m, nil
		}
		return m.summarize("")

	case "k":
		m.mode = modeKey
		m.keyInput.SetValue(m.state.APIKey)
		open := true
		m = m.apply(popup.APIKeyPanelToggled{Open: &open})
		cmd := m.keyInput.Focus()
		return m, cmd

	case "C":
		if m.state.ConfirmingClear {
			return m, m.run(func(ctx context.Context) popup.Action {
				return m.effects.Clear(ctx, true)
			})
		}
		m = m.apply(m.effects.Clear(m.ctx, false))
		if m.state.ConfirmingClear {
			m.status = "Press C again to delete all highlights"
		}
		return m, nil

	case "y":
		return m.copySelected(false), nil

	case "u":
		return m.copySelected(true), nil
	}
	return m, nil
}

func (m Model) summarize(id string) (tea.Model, tea.Cmd) {
	if m.state.APIKey == "" {
		return m.apply(popup.APIKeyMissing{}), textinput.Blink
	}
	m = m.apply(popup.SummarizeStarted{ID: id})
	state := m.state
	return m, m.run(func(ctx context.Context) popup.Action {
		return m.effects.Summarize(ctx, state, id)
	})
}

// copySelected puts the selected highlight's text, or its page URL, on the
// clipboard.
func (m Model) copySelected(url bool) Model {
	h, ok := m.state.Highlights.Find(m.selectedID())
	if !ok {
		return m
	}
	value, what := h.Text, "text"
	if url {
		value, what = h.URL, "link"
	}
	if err := m.copy(value); err != nil {
		m.status = "Clipboard unavailable: " + err.Error()
		return m
	}
	m.status = "Copied " + what
	return m
}
