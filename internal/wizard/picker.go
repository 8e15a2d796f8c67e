package wizard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Item is one choice in a picker.
type Item struct {
	Title  string
	Detail string
}

type pickerKeys struct {
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding
	Select key.Binding
	Quit   key.Binding
}

var defaultPickerKeys = pickerKeys{
	Up:     key.NewBinding(key.WithKeys("up", "ctrl+p"), key.WithHelp("↑", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "ctrl+n"), key.WithHelp("↓", "down")),
	Top:    key.NewBinding(key.WithKeys("home"), key.WithHelp("home", "first")),
	Bottom: key.NewBinding(key.WithKeys("end"), key.WithHelp("end", "last")),
	Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	Quit:   key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "cancel")),
}

var (
	pickerTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#1DB954"))

	pickerItemStyle = lipgloss.NewStyle().
			PaddingLeft(2)

	pickerSelectedStyle = lipgloss.NewStyle().
				PaddingLeft(2).
				Background(lipgloss.Color("237"))

	pickerDetailStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("243"))
)

// PickerModel is a bubbletea list with a type-to-filter input.
type PickerModel struct {
	title    string
	items    []Item
	visible  []int
	cursor   int
	selected int
	filter   textinput.Model
	keys     pickerKeys
}

// NewPickerModel creates a picker over items.
func NewPickerModel(title string, items []Item) PickerModel {
	ti := textinput.New()
	ti.Placeholder = "type to filter"
	ti.Prompt = "/ "
	ti.Focus()

	m := PickerModel{
		title:    title,
		items:    items,
		selected: -1,
		filter:   ti,
		keys:     defaultPickerKeys,
	}
	m.applyFilter()
	return m
}

// Init initializes the model.
func (m PickerModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages.
func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Select):
			if len(m.visible) > 0 {
				m.selected = m.visible[m.cursor]
				return m, tea.Quit
			}
			return m, nil
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.visible)-1 {
				m.cursor++
			}
			return m, nil
		case key.Matches(msg, m.keys.Top):
			m.cursor = 0
			return m, nil
		case key.Matches(msg, m.keys.Bottom):
			if len(m.visible) > 0 {
				m.cursor = len(m.visible) - 1
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	before := m.filter.Value()
	m.filter, cmd = m.filter.Update(msg)
	if m.filter.Value() != before {
		m.applyFilter()
	}
	return m, cmd
}

func (m *PickerModel) applyFilter() {
	q := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	visible := make([]int, 0, len(m.items))
	for i, it := range m.items {
		if q == "" || strings.Contains(strings.ToLower(it.Title+" "+it.Detail), q) {
			visible = append(visible, i)
		}
	}
	m.visible = visible
	if m.cursor >= len(m.visible) {
		m.cursor = max(len(m.visible)-1, 0)
	}
}

// View renders the model.
func (m PickerModel) View() string {
	var b strings.Builder

	b.WriteString(pickerTitleStyle.Render(m.title))
	b.WriteString("\n\n")
	b.WriteString(m.filter.View())
	b.WriteString("\n\n")

	if len(m.visible) == 0 {
		b.WriteString(pickerDetailStyle.Render("No matches"))
		b.WriteString("\n")
	}
	for i, idx := range m.visible {
		it := m.items[idx]
		line := it.Title
		if it.Detail != "" {
			line += " " + pickerDetailStyle.Render(it.Detail)
		}
		if i == m.cursor {
			b.WriteString(pickerSelectedStyle.Render("▸ " + line))
		} else {
			b.WriteString(pickerItemStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(pickerDetailStyle.Render(fmt.Sprintf("%d/%d • ↑/↓ navigate • enter select • esc cancel", len(m.visible), len(m.items))))

	return b.String()
}

// Selected returns the index of the chosen item, or -1 if cancelled.
func (m PickerModel) Selected() int {
	return m.selected
}

// RunPicker shows items and returns the chosen index, or -1 if the user
// cancelled.
func RunPicker(title string, items []Item) (int, error) {
	p := tea.NewProgram(NewPickerModel(title, items), tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return -1, err
	}
	return finalModel.(PickerModel).Selected(), nil
}
