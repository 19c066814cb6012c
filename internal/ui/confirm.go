package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// confirmModel is a blocking yes/no prompt. Enter and y accept, n and esc
// decline, ctrl+c aborts the whole run.
type confirmModel struct {
	prompt  string
	body    string
	answer  bool
	aborted bool
	done    bool
}

func newConfirm(prompt, body string) confirmModel {
	return confirmModel{prompt: prompt, body: body}
}

func (m confirmModel) Init() tea.Cmd { return nil }

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "y", "Y", "enter":
		m.answer = true
		m.done = true
		return m, tea.Quit
	case "n", "N", "esc":
		m.done = true
		return m, tea.Quit
	case "ctrl+c":
		m.aborted = true
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m confirmModel) View() string {
	if m.done {
		return ""
	}
	out := ""
	if m.body != "" {
		out += m.body + "\n"
	}
	out += styleHeader.Render(m.prompt) + styleMuted.Render(" [y/n] ")
	return out
}
