package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Item is one selectable provider.
type Item struct {
	Name        string
	Description string
}

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	Confirm key.Binding
	Quit    key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Toggle, k.Confirm, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var defaultKeys = keyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Toggle:  key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "toggle")),
	Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply")),
	Quit:    key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "cancel")),
}

// SelectModel is a bubbletea model that lets the user pick providers to
// apply. Space toggles, enter confirms, q cancels.
type SelectModel struct {
	title    string
	items    []Item
	cursor   int
	selected map[int]bool
	keys     keyMap
	help     help.Model
	done     bool
	canceled bool
}

// NewSelectModel creates a multi-select over the given items.
func NewSelectModel(title string, items []Item) SelectModel {
	return SelectModel{
		title:    title,
		items:    items,
		selected: make(map[int]bool),
		keys:     defaultKeys,
		help:     help.New(),
	}
}

func (m SelectModel) Init() tea.Cmd { return nil }

func (m SelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, m.keys.Toggle):
		m.selected[m.cursor] = !m.selected[m.cursor]
	case key.Matches(keyMsg, m.keys.Confirm):
		m.done = true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Quit):
		m.canceled = true
		return m, tea.Quit
	}
	return m, nil
}

func (m SelectModel) View() string {
	if m.done || m.canceled {
		return ""
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render(m.title) + "\n\n")

	for i, item := range m.items {
		cursor := "  "
		if i == m.cursor {
			cursor = cursorStyle.Render("> ")
		}
		mark := "[ ]"
		if m.selected[i] {
			mark = selectedStyle.Render("[x]")
		}
		line := fmt.Sprintf("%s%s %s  %s", cursor, mark, item.Name, descStyle.Render(item.Description))
		b.WriteString(line + "\n")
	}

	b.WriteString("\n" + m.help.View(m.keys) + "\n")
	return b.String()
}

// Chosen returns the selected item names in display order.
func (m SelectModel) Chosen() []string {
	var names []string
	for i, item := range m.items {
		if m.selected[i] {
			names = append(names, item.Name)
		}
	}
	return names
}

// Canceled reports whether the user backed out without confirming.
func (m SelectModel) Canceled() bool { return m.canceled }

// Select runs the picker and returns the chosen provider names. A nil slice
// with a nil error means the user canceled or picked nothing.
func Select(out io.Writer, title string, items []Item) ([]string, error) {
	p := tea.NewProgram(NewSelectModel(title, items), tea.WithOutput(out))
	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}
	m, ok := finalModel.(SelectModel)
	if !ok || m.Canceled() {
		return nil, nil
	}
	return m.Chosen(), nil
}
