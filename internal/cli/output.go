package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/tessro/spotify-cli/internal/styles"
)

// Table provides a simple table formatter.
type Table struct {
	w *tabwriter.Writer
}

// NewTableWriter creates a table writing to out.
func NewTableWriter(out io.Writer, headers ...string) *Table {
	t := &Table{w: tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)}
	if len(headers) > 0 {
		_, _ = t.w.Write([]byte(strings.Join(headers, "\t") + "\n"))
	}
	return t
}

// Row adds a row to the table.
func (t *Table) Row(values ...string) {
	_, _ = t.w.Write([]byte(strings.Join(values, "\t") + "\n"))
}

// Flush writes the table output.
func (t *Table) Flush() {
	_ = t.w.Flush()
}

// printJSON writes v to stdout as a single JSON document.
func printJSON(v any) error {
	return json.NewEncoder(os.Stdout).Encode(v)
}

// success prints a green confirmation, or {"status": status} with --json.
func success(status, message string) error {
	if JSONOutput() {
		return printJSON(map[string]string{"status": status})
	}
	fmt.Println(styles.Good.Render(message))
	return nil
}

// failure prints a red notice for outcomes that are reported but are not
// errors, like nothing playing.
func failure(status, message string) error {
	if JSONOutput() {
		return printJSON(map[string]string{"status": status})
	}
	fmt.Println(styles.Bad.Render(message))
	return nil
}

// FormatDuration formats a duration in milliseconds as m:ss or h:mm:ss.
func FormatDuration(ms int) string {
	seconds := ms / 1000
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// TruncateString truncates a string to maxLen runes, adding "..." if truncated.
func TruncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
