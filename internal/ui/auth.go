package ui

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/danhigham/tgshell/internal/domain"
)

// AuthModel is the login screen. It follows the authorization phase held
// in the store and asks for whatever the phase waits for.
type AuthModel struct {
	phase         domain.AuthPhase
	input         textinput.Model
	width, height int
}

func NewAuthModel() AuthModel {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 64
	return AuthModel{input: ti}
}

// takesInput reports whether phase waits for a value from the user.
func takesInput(phase domain.AuthPhase) bool {
	switch phase {
	case domain.AuthPhaseWaitPhoneNumber, domain.AuthPhaseWaitCode, domain.AuthPhaseWaitPassword:
		return true
	}
	return false
}

// SetPhase switches the prompt. The field is cleared on every change.
func (m AuthModel) SetPhase(phase domain.AuthPhase) AuthModel {
	if phase == m.phase {
		return m
	}
	m.phase = phase
	m.input.Reset()
	m.input.EchoMode = textinput.EchoNormal
	switch phase {
	case domain.AuthPhaseWaitPhoneNumber:
		m.input.Placeholder = "+1 555 0100"
	case domain.AuthPhaseWaitCode:
		m.input.Placeholder = "12345"
	case domain.AuthPhaseWaitPassword:
		m.input.Placeholder = "password"
		m.input.EchoMode = textinput.EchoPassword
	}
	if takesInput(phase) {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
	return m
}

func (m AuthModel) SetSize(w, h int) AuthModel {
	m.width = w
	m.height = h
	m.input.SetWidth(30)
	return m
}

func (m AuthModel) Update(msg tea.Msg) (AuthModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter":
			value := strings.TrimSpace(m.input.Value())
			if value == "" || !takesInput(m.phase) {
				return m, nil
			}
			phase := m.phase
			m.input.Reset()
			return m, func() tea.Msg { return authSubmitMsg{phase: phase, value: value} }
		case "ctrl+p":
			if m.phase == domain.AuthPhaseWaitCode || m.phase == domain.AuthPhaseWaitPassword {
				return m, func() tea.Msg { return changePhoneMsg{} }
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m AuthModel) title() string {
	switch m.phase {
	case domain.AuthPhaseWaitPhoneNumber:
		return "Enter Phone Number"
	case domain.AuthPhaseWaitCode:
		return "Enter Verification Code"
	case domain.AuthPhaseWaitPassword:
		return "Enter 2FA Password"
	case domain.AuthPhaseLoggingOut:
		return "Logging out..."
	case domain.AuthPhaseClosing, domain.AuthPhaseClosed:
		return "Session closed"
	default:
		return "Connecting..."
	}
}

func (m AuthModel) View() string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(highlightColor).Render(m.title()))
	if takesInput(m.phase) {
		b.WriteString("\n\n")
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		hint := "Enter to submit"
		if m.phase != domain.AuthPhaseWaitPhoneNumber {
			hint += " · Ctrl+P to use another number"
		}
		b.WriteString(lipgloss.NewStyle().Foreground(dimColor).Render(hint))
	} else {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().Foreground(dimColor).Render(m.phase.String()))
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForegroundBlend(rainbowBlend...).
		Padding(1, 3).
		Width(50).
		Render(b.String())

	if m.width == 0 || m.height == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
