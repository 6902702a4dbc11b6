package ui

import (
	"fmt"
	"io"
	"strings"

	"charm.land/bubbles/v2/list"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/danhigham/tgshell/internal/domain"
)

const detailsWidth = 30

type personItem struct {
	userID int64
	name   string
}

func (i personItem) FilterValue() string { return i.name }

type personDelegate struct{}

func (personDelegate) Height() int                             { return 1 }
func (personDelegate) Spacing() int                            { return 0 }
func (personDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (personDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	p, ok := item.(personItem)
	if !ok {
		return
	}
	style := lipgloss.NewStyle().MaxWidth(m.Width() - 2)
	cursor := "  "
	if index == m.Index() {
		cursor = "> "
		style = style.Foreground(lipgloss.Color("170")).Bold(true)
	}
	fmt.Fprint(w, cursor+style.Render(p.name))
}

// ChatDetailsModel is the side column describing the selected chat and the
// people who wrote in it.
type ChatDetailsModel struct {
	chat    domain.ChatInfo
	people  list.Model
	focused bool
	width   int
	height  int
}

func NewChatDetailsModel() ChatDetailsModel {
	l := list.New(nil, personDelegate{}, 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	return ChatDetailsModel{people: l}
}

// SetChat shows chat and the distinct senders of msgs, newest first.
func (m ChatDetailsModel) SetChat(chat domain.ChatInfo, msgs []domain.Message) ChatDetailsModel {
	m.chat = chat
	seen := make(map[int64]bool)
	var items []list.Item
	for i := len(msgs) - 1; i >= 0; i-- {
		msg := msgs[i]
		if msg.Out || msg.SenderID == 0 || seen[msg.SenderID] {
			continue
		}
		seen[msg.SenderID] = true
		name := msg.SenderName
		if name == "" {
			name = fmt.Sprintf("User %d", msg.SenderID)
		}
		items = append(items, personItem{userID: msg.SenderID, name: name})
	}
	m.people.SetItems(items)
	return m
}

func (m ChatDetailsModel) Update(msg tea.Msg) (ChatDetailsModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		if p, ok := m.people.SelectedItem().(personItem); ok {
			return m, func() tea.Msg { return UserSelectedMsg{UserID: p.userID} }
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.people, cmd = m.people.Update(msg)
	return m, cmd
}

func (m ChatDetailsModel) header() string {
	var b strings.Builder
	title := m.chat.Title
	if title == "" {
		title = "No chat selected"
	}
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(highlightColor).Render(title))
	b.WriteString("\n")
	kind := "Group"
	if m.chat.Private {
		kind = "Private chat"
	}
	dim := lipgloss.NewStyle().Foreground(dimColor)
	if m.chat.ID != 0 {
		b.WriteString(dim.Render(fmt.Sprintf("%s · id %d", kind, m.chat.ID)))
		b.WriteString("\n")
		if m.chat.UnreadCount > 0 {
			b.WriteString(dim.Render(fmt.Sprintf("%d unread", m.chat.UnreadCount)))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(dim.Render("People"))
	return b.String()
}

func (m ChatDetailsModel) View() string {
	header := m.header()
	contentH := m.height - 2
	if contentH < 0 {
		contentH = 0
	}
	content := truncateHeight(header+"\n"+m.people.View(), contentH)

	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Width(m.width).
		Height(m.height)
	style = applyBorderColor(style, m.focused)
	return style.Render(content)
}

func (m ChatDetailsModel) SetSize(w, h int) ChatDetailsModel {
	m.width = w
	m.height = h
	innerW := w - 2
	innerH := h - 2 - lipgloss.Height(m.header()) - 1
	if innerW < 1 {
		innerW = 1
	}
	if innerH < 1 {
		innerH = 1
	}
	m.people.SetSize(innerW, innerH)
	return m
}

func (m ChatDetailsModel) SetFocused(f bool) ChatDetailsModel {
	m.focused = f
	return m
}
