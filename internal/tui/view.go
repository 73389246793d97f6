package tui

import (
	"fmt"
	"strings"

	"highlight-saver/internal/popup"

	"github.com/charmbracelet/lipgloss"
)

const helpText = "↑/↓ move · enter expand · / search · d delete · s summarize · S summarize all · k key · y copy · u copy link · C clear · q quit"

func (m Model) View() string {
	vm := popup.View(m.state, m.location)
	var b strings.Builder

	b.WriteString(titleStyle.Render("Highlight Saver"))
	b.WriteString("  ")
	b.WriteString(countStyle.Render(vm.Header))
	b.WriteString("\n\n")

	if vm.ShowSearch && (m.mode == modeSearch || vm.SearchTerm != "") {
		b.WriteString(m.search.View())
		b.WriteString("\n\n")
	}

	if vm.APIKeyPanelOpen {
		b.WriteString(m.keyInput.View())
		b.WriteString("\n\n")
	}

	if vm.Error != "" {
		b.WriteString(errorStyle.Render(vm.Error))
		b.WriteString("\n\n")
	}

	if vm.SummaryOpen {
		b.WriteString(m.renderSummary(vm))
		b.WriteString("\n\n")
	}

	switch {
	case vm.Loading:
		b.WriteString(metaStyle.Render("Loading..."))
		b.WriteString("\n")
	case vm.Empty != popup.EmptyNone:
		b.WriteString(lipgloss.NewStyle().Bold(true).Render(vm.EmptyTitle))
		b.WriteString("\n")
		b.WriteString(metaStyle.Render(vm.EmptyMessage))
		b.WriteString("\n")
	default:
		for i, row := range vm.Rows {
			b.WriteString(m.renderRow(row, i == m.cursor))
			b.WriteString("\n")
		}
	}

	if vm.ShowActions {
		b.WriteString("\n")
		b.WriteString(countStyle.Render(vm.SummarizeAllLabel))
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(m.status)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(helpText))
	return b.String()
}

func (m Model) renderRow(row popup.Row, selected bool) string {
	lines := []string{row.Text}
	if row.Expanded {
		if row.Title != "" {
			lines = append(lines, "Title: "+row.Title)
		}
		if row.Context != "" {
			lines = append(lines, "Context: "+row.Context)
		}
		lines = append(lines, row.URL)
	}
	meta := fmt.Sprintf("%s · %s", row.Date, row.Domain)
	if row.Busy {
		meta += " · " + row.SummarizeLabel
	}
	lines = append(lines, metaStyle.Render(meta))

	content := strings.Join(lines, "\n")
	if m.width > 4 {
		content = lipgloss.NewStyle().Width(m.width - 4).Render(content)
	}
	if selected {
		return selectedStyle.Render(content)
	}
	return rowStyle.Render(content)
}

func (m Model) renderSummary(vm popup.ViewModel) string {
	body := vm.SummaryRaw
	if vm.SummaryError != "" {
		body = errorStyle.Render(vm.SummaryError)
	}
	return summaryStyle.Render("Summary\n\n" + body)
}
