package ui

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// PromptModel shows alerts and confirmations one at a time. Prompts that
// arrive while one is showing wait in order.
type PromptModel struct {
	queue         []promptMsg
	width, height int
}

func (m PromptModel) IsVisible() bool {
	return len(m.queue) > 0
}

// Push queues a prompt.
func (m PromptModel) Push(p promptMsg) PromptModel {
	m.queue = append(m.queue, p)
	return m
}

func (m PromptModel) SetSize(w, h int) PromptModel {
	m.width = w
	m.height = h
	return m
}

// Update answers the prompt on top. Alerts close on enter or esc;
// confirmations take y or n, with esc meaning no.
func (m PromptModel) Update(msg tea.Msg) (PromptModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || len(m.queue) == 0 {
		return m, nil
	}
	top := m.queue[0]

	var answer, done bool
	switch key.String() {
	case "enter":
		answer, done = !top.confirm, !top.confirm
	case "y":
		answer, done = true, top.confirm
	case "n", "esc":
		answer, done = false, true
	}
	if !done {
		return m, nil
	}

	m.queue = m.queue[1:]
	top.reply <- answer
	return m, nil
}

// Abandon closes every queued prompt without an answer.
func (m PromptModel) Abandon() PromptModel {
	for _, p := range m.queue {
		close(p.reply)
	}
	m.queue = nil
	return m
}

func (m PromptModel) View() string {
	if len(m.queue) == 0 {
		return ""
	}
	top := m.queue[0]

	var b strings.Builder
	b.WriteString(top.text)
	b.WriteString("\n\n")
	hint := "Enter to dismiss"
	if top.confirm {
		hint = "y: yes · n: no"
	}
	b.WriteString(lipgloss.NewStyle().Foreground(dimColor).Render(hint))

	width := 50
	if m.width > 0 && m.width-4 < width {
		width = m.width - 4
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(warnColor).
		Padding(1, 2).
		Width(width).
		Render(b.String())
}

// BoxOffset returns the (x, y) that centers the dialog.
func (m PromptModel) BoxOffset() (int, int) {
	return centerOffset(m.View(), m.width, m.height)
}
