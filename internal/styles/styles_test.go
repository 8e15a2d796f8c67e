package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func TestBox(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	out := Box(
		Field{Label: "Artist", Value: "Rick Astley"},
		Field{Label: "Album", Value: ""},
		Field{Label: "Title", Value: "Never Gonna Give You Up"},
	)

	assert.Contains(t, out, "Artist: Rick Astley")
	assert.Contains(t, out, "Title: Never Gonna Give You Up")
	assert.NotContains(t, out, "Album")
	assert.Contains(t, out, "╭")
	assert.Contains(t, out, "╯")
}

func TestText(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	out := Text("Lyrics", "line one\nline two")
	assert.Contains(t, out, "Lyrics")
	assert.Contains(t, out, "line two")
}
