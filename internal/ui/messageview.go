package ui

import (
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/glamour"

	"github.com/danhigham/tgshell/internal/domain"
)

// MessageViewModel shows the transcript of the active chat. It follows
// new messages while scrolled to the bottom and asks for older history
// when scrolled to the top.
type MessageViewModel struct {
	viewport   viewport.Model
	markdown   *glamour.TermRenderer
	focused    bool
	width      int
	height     int
	typingUser string
	messages   []domain.Message
	loading    bool
	hasMore    bool
}

func NewMessageViewModel() MessageViewModel {
	return MessageViewModel{viewport: viewport.New()}
}

func (m MessageViewModel) Update(msg tea.Msg) (MessageViewModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "j":
			m.viewport.ScrollDown(1)
			return m, nil
		case "k":
			m.viewport.ScrollUp(1)
			return m, m.olderHistory()
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, tea.Batch(cmd, m.olderHistory())
}

// olderHistory requests the page before the first cached message once the
// top is reached.
func (m MessageViewModel) olderHistory() tea.Cmd {
	if m.viewport.YOffset() != 0 || m.loading || !m.hasMore || len(m.messages) == 0 {
		return nil
	}
	chatID := m.messages[0].ChatID
	return func() tea.Msg {
		return LoadOlderHistoryMsg{ChatID: chatID}
	}
}

func (m MessageViewModel) View() string {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Width(m.width).
		Height(m.height)
	style = applyBorderColor(style, m.focused)
	return style.Render(truncateHeight(m.viewport.View(), max(m.height-2, 0)))
}

func (m MessageViewModel) SetSize(w, h int) MessageViewModel {
	m.width = w
	m.height = h
	m.viewport.SetWidth(max(w-2, 1))
	m.viewport.SetHeight(max(h-2, 1))

	m.markdown = newMarkdownRenderer(m.viewport.Width() - 2)
	return m.render(m.viewport.AtBottom())
}

func (m MessageViewModel) SetFocused(f bool) MessageViewModel {
	m.focused = f
	return m
}

func (m MessageViewModel) SetTypingUser(name string) MessageViewModel {
	m.typingUser = name
	return m
}

// SetMessages replaces the transcript. Switching chats resets paging and
// jumps to the newest message; otherwise the view keeps its position
// unless it was already following the bottom.
func (m MessageViewModel) SetMessages(msgs []domain.Message) MessageViewModel {
	follow := m.viewport.AtBottom()
	if chatOf(msgs) != chatOf(m.messages) {
		m.hasMore = true
		m.loading = false
		follow = true
	}
	m.messages = msgs
	return m.render(follow)
}

// PrependMessages adds a page of older messages above the transcript and
// keeps the lines that were on screen in place.
func (m MessageViewModel) PrependMessages(msgs []domain.Message) MessageViewModel {
	m.loading = false
	m.hasMore = len(msgs) > 0
	if !m.hasMore {
		return m
	}

	before := m.viewport.TotalLineCount()
	offset := m.viewport.YOffset()
	m.messages = append(msgs, m.messages...)
	m = m.render(false)
	m.viewport.SetYOffset(offset + max(m.viewport.TotalLineCount()-before, 0))
	return m
}

func (m MessageViewModel) ScrollToBottom() MessageViewModel {
	m.viewport.GotoBottom()
	return m
}

// Latest returns the most recent message.
func (m MessageViewModel) Latest() (domain.Message, bool) {
	if len(m.messages) == 0 {
		return domain.Message{}, false
	}
	return m.messages[len(m.messages)-1], true
}

// LatestIncoming returns the most recent message someone else sent.
func (m MessageViewModel) LatestIncoming() (domain.Message, bool) {
	for i := len(m.messages) - 1; i >= 0; i-- {
		if !m.messages[i].Out && m.messages[i].SenderID != 0 {
			return m.messages[i], true
		}
	}
	return domain.Message{}, false
}

func (m MessageViewModel) SetLoading(v bool) MessageViewModel {
	m.loading = v
	return m
}

func (m MessageViewModel) render(follow bool) MessageViewModel {
	t := transcript{markdown: m.markdown}
	content := t.render(m.messages, m.typingUser)
	m.viewport.SetContent(lipgloss.NewStyle().Width(m.viewport.Width()).Render(content))
	if follow {
		m.viewport.GotoBottom()
	}
	return m
}

func chatOf(msgs []domain.Message) int64 {
	if len(msgs) == 0 {
		return 0
	}
	return msgs[0].ChatID
}
