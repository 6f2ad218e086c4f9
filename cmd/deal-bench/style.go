package main

import (
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	labelStyle   = lipgloss.NewStyle().Width(18).Foreground(lipgloss.Color("245"))
	sectionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
)

// field renders one aligned "label value" line.
func field(label, value string) string {
	return labelStyle.Render(label) + " " + value
}

// stateStyle colours a session state.
func stateStyle(state string) lipgloss.Style {
	switch state {
	case "completed":
		return okStyle
	case "failed", "timeout":
		return errorStyle
	case "cancelled":
		return warnStyle
	default:
		return mutedStyle
	}
}

// renderMarkdown renders a Markdown document for the terminal, falling
// back to the raw text.
func renderMarkdown(md string) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return md
	}
	out, err := renderer.Render(md)
	if err != nil {
		return md
	}
	return out
}
