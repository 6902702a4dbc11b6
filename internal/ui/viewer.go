package ui

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/glamour"

	"github.com/danhigham/tgshell/internal/domain"
)

// ViewerModel is the full-screen overlay that shows one message rendered
// through glamour.
type ViewerModel struct {
	content       domain.MediaViewerContent
	viewport      viewport.Model
	width, height int
}

func NewViewerModel() ViewerModel {
	return ViewerModel{viewport: viewport.New()}
}

// Show renders msg into the viewer.
func (m ViewerModel) Show(content domain.MediaViewerContent, msg domain.Message) ViewerModel {
	m.content = content

	var b strings.Builder
	name := msg.SenderName
	if msg.Out {
		name = "You"
	}
	fmt.Fprintf(&b, "**%s** · %s\n\n", name, msg.Timestamp.Format("January 2, 2006 15:04"))
	b.WriteString(msg.Text)

	text := b.String()
	wrap := m.viewport.Width() - 2
	if wrap < 10 {
		wrap = 10
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(wrap),
	)
	if err == nil {
		if out, err := r.Render(text); err == nil {
			text = out
		}
	}
	m.viewport.SetContent(text)
	m.viewport.GotoTop()
	return m
}

// Content returns what the viewer shows.
func (m ViewerModel) Content() domain.MediaViewerContent {
	return m.content
}

func (m ViewerModel) Update(msg tea.Msg) (ViewerModel, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m ViewerModel) SetSize(w, h int) ViewerModel {
	m.width = w
	m.height = h
	vpW := w - 8
	vpH := h - 6
	if vpW < 1 {
		vpW = 1
	}
	if vpH < 1 {
		vpH = 1
	}
	m.viewport.SetWidth(vpW)
	m.viewport.SetHeight(vpH)
	return m
}

func (m ViewerModel) View() string {
	hint := lipgloss.NewStyle().Foreground(dimColor).Render("Esc to close")
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForegroundBlend(rainbowBlend...).
		Padding(0, 1).
		Render(m.viewport.View() + "\n" + hint)
}

func (m ViewerModel) BoxOffset() (int, int) {
	return centerOffset(m.View(), m.width, m.height)
}
