package ui

import (
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/danhigham/tgshell/internal/domain"
)

var (
	// Dark gray background matching the lipgloss example
	statusBarBg = lipgloss.Color("#353533")
	// Bright magenta for the status pill and time highlight
	statusPillBg    = lipgloss.Color("#FF5FAF")
	statusPillBgOff = lipgloss.Color("#6C5098")
	// Teal/cyan for the time pill
	statusTimeBg = lipgloss.Color("#6124DF")
)

type statusModel struct {
	text      string
	connected bool
	errText   string
	chatTitle string
	hint      string
	width     int
}

func newStatusModel() statusModel {
	return statusModel{
		text:      domain.AuthPhaseUnknown.String(),
		hint:      "? help",
		connected: false,
	}
}

// SetPhase shows the authorization phase in the pill.
func (m statusModel) SetPhase(phase domain.AuthPhase) statusModel {
	m.text = phase.String()
	m.connected = phase == domain.AuthPhaseReady
	return m
}

// SetError shows a transient failure next to the chat title. An empty
// string clears it.
func (m statusModel) SetError(text string) statusModel {
	m.errText = text
	return m
}

// SetWidth sets the full terminal width for the status bar.
func (m statusModel) SetWidth(w int) statusModel {
	m.width = w
	return m
}

// SetChatTitle updates the active chat name shown on the left.
func (m statusModel) SetChatTitle(title string) statusModel {
	m.chatTitle = title
	return m
}

// View renders a full-width status bar:
// [PHASE pill] [chat title] ... [hint pill] [time pill]
func (m statusModel) View() string {
	// Connection status pill
	pillBg := statusPillBgOff
	if m.connected {
		pillBg = statusPillBg
	}
	pillStyle := lipgloss.NewStyle().
		Background(pillBg).
		Foreground(lipgloss.Color("#FFFFFF")).
		Bold(true).
		Padding(0, 1)
	pill := pillStyle.Render(strings.ToUpper(m.text))

	// Chat title
	titleStyle := lipgloss.NewStyle().
		Background(statusBarBg).
		Foreground(lipgloss.Color("#FFFFFF")).
		Bold(true).
		Padding(0, 1)
	title := titleStyle.Render(m.chatTitle)
	if m.errText != "" {
		title += titleStyle.Foreground(warnColor).Bold(false).Render(m.errText)
	}

	// Current time pill
	timeStyle := lipgloss.NewStyle().
		Background(statusTimeBg).
		Foreground(lipgloss.Color("#FFFFFF")).
		Bold(true).
		Padding(0, 1)
	timePill := timeStyle.Render(time.Now().Format("15:04"))

	// Key hint in medium purple, distinct from the bar background
	hintStyle := lipgloss.NewStyle().
		Background(lipgloss.Color("#7B5EA7")).
		Foreground(lipgloss.Color("#FFFFFF")).
		Bold(true).
		Padding(0, 1)
	hintPill := hintStyle.Render(m.hint)

	// Left side: status + title
	left := pill + title

	// Right side: hint + time
	right := hintPill + timePill

	// Fill gap between left and right
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	filler := lipgloss.NewStyle().
		Background(statusBarBg).
		Render(strings.Repeat(" ", gap))

	barStyle := lipgloss.NewStyle().
		Background(statusBarBg).
		Width(m.width)

	return barStyle.Render(left + filler + right)
}
