// Package styles holds the lipgloss palette and boxed output used by the CLI.
package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Colors
var (
	Primary      = lipgloss.Color("#7C3AED") // Purple
	Success      = lipgloss.Color("#10B981") // Green
	Warning      = lipgloss.Color("#F59E0B") // Amber
	Error        = lipgloss.Color("#EF4444") // Red
	Border       = lipgloss.Color("#4B5563") // Light gray
	TextMuted    = lipgloss.Color("#9CA3AF") // Gray
	TextDim      = lipgloss.Color("#6B7280") // Darker gray
	SpotifyGreen = lipgloss.Color("#1DB954")
)

// Text styles
var (
	Title = lipgloss.NewStyle().Bold(true)

	Label = lipgloss.NewStyle().
		Foreground(TextDim)

	Highlight = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary)

	Muted = lipgloss.NewStyle().
		Foreground(TextMuted)

	Good = lipgloss.NewStyle().
		Foreground(SpotifyGreen)

	Warn = lipgloss.NewStyle().
		Foreground(Warning)

	Bad = lipgloss.NewStyle().
		Bold(true).
		Foreground(Error)
)

// BoxStyle is a rounded border with extra room on the right.
var BoxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(SpotifyGreen).
	PaddingRight(6)

// Field is one labelled line in a Box.
type Field struct {
	Label string
	Value string
}

// Box renders fields as "Label: value" lines inside a rounded border.
// Fields with an empty value are skipped.
func Box(fields ...Field) string {
	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.Value == "" {
			continue
		}
		lines = append(lines, Label.Render(f.Label+":")+" "+f.Value)
	}
	return BoxStyle.Render(strings.Join(lines, "\n"))
}

// Text renders a block of free text inside the same border as Box.
func Text(title, body string) string {
	if title != "" {
		body = Title.Render(title) + "\n\n" + body
	}
	return BoxStyle.Render(body)
}
