package ui

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// InputModel is the single-line message composer.
type InputModel struct {
	input   textinput.Model
	focused bool
	width   int
	height  int
}

func NewInputModel() InputModel {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a message..."
	ti.CharLimit = 4096
	return InputModel{input: ti}
}

func (m InputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m InputModel) Update(msg tea.Msg) (InputModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		m.input.Reset()
		return m, func() tea.Msg { return sendMessageMsg{text: text} }
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m InputModel) View() string {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Width(m.width).
		Height(m.height)
	style = applyBorderColor(style, m.focused)
	return style.Render(m.input.View())
}

func (m InputModel) SetSize(w, h int) InputModel {
	m.width = w
	m.height = h
	inner := w - 4 - len(m.input.Prompt)
	if inner < 1 {
		inner = 1
	}
	m.input.SetWidth(inner)
	return m
}

func (m InputModel) SetFocused(f bool) InputModel {
	m.focused = f
	if f {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
	return m
}
