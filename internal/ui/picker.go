package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// pickerItem is one selectable row in the picker.
type pickerItem struct {
	ID    string
	Label string
	Desc  string
}

func (i pickerItem) Title() string       { return i.Label }
func (i pickerItem) Description() string { return i.Desc }
func (i pickerItem) FilterValue() string { return i.Label + " " + i.Desc }

// pickerModel is a filterable list: a text input narrows the candidates by
// substring, enter selects, esc cancels (treated as skip by the caller).
type pickerModel struct {
	title    string
	input    textinput.Model
	list     list.Model
	allItems []pickerItem

	selected  *pickerItem
	cancelled bool
	aborted   bool
}

func newPicker(title string, items []pickerItem) pickerModel {
	inp := textinput.New()
	inp.Placeholder = "filter"
	inp.Focus()
	inp.Prompt = "> "
	litems := make([]list.Item, 0, len(items))
	for _, it := range items {
		litems = append(litems, it)
	}
	lst := list.New(litems, list.NewDefaultDelegate(), 40, 12)
	lst.SetShowStatusBar(false)
	lst.SetFilteringEnabled(false)
	lst.SetShowHelp(false)
	lst.SetShowTitle(false)
	return pickerModel{title: title, input: inp, list: lst, allItems: items}
}

func (m pickerModel) Init() tea.Cmd { return textinput.Blink }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter":
			if it, ok := m.list.SelectedItem().(pickerItem); ok {
				m.selected = &it
			}
			return m, tea.Quit
		case "esc":
			m.cancelled = true
			return m, tea.Quit
		case "ctrl+c":
			m.aborted = true
			return m, tea.Quit
		}
	}
	var cmd1 tea.Cmd
	m.input, cmd1 = m.input.Update(msg)
	m.refreshFiltered()
	var cmd2 tea.Cmd
	m.list, cmd2 = m.list.Update(msg)
	return m, tea.Batch(cmd1, cmd2)
}

func (m *pickerModel) refreshFiltered() {
	q := strings.ToLower(strings.TrimSpace(m.input.Value()))
	items := make([]list.Item, 0, len(m.allItems))
	for _, it := range m.allItems {
		h := strings.ToLower(it.Label + " " + it.Desc)
		if q == "" || strings.Contains(h, q) {
			items = append(items, it)
		}
	}
	_ = m.list.SetItems(items)
}

func (m pickerModel) View() string {
	return styleHeader.Render(m.title) + "\n" + m.input.View() + "\n" + m.list.View()
}

// noteModel is a one-line free-text prompt. Enter accepts (possibly empty),
// esc keeps the suggested default.
type noteModel struct {
	prompt  string
	input   textinput.Model
	done    bool
	aborted bool
}

func newNote(prompt, initial string) noteModel {
	inp := textinput.New()
	inp.SetValue(initial)
	inp.Focus()
	inp.Prompt = "> "
	return noteModel{prompt: prompt, input: inp}
}

func (m noteModel) Init() tea.Cmd { return textinput.Blink }

func (m noteModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter", "esc":
			m.done = true
			return m, tea.Quit
		case "ctrl+c":
			m.aborted = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m noteModel) View() string {
	if m.done {
		return ""
	}
	return styleHeader.Render(m.prompt) + "\n" + m.input.View()
}
