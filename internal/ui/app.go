package ui

import (
	"context"
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/danhigham/tgshell/internal/core"
	"github.com/danhigham/tgshell/internal/domain"
	"github.com/danhigham/tgshell/internal/state"
	"github.com/danhigham/tgshell/internal/telegram"
)

type focusTarget int

const (
	focusChatList focusTarget = iota
	focusMessages
	focusDetails
	focusInput
	focusCount
)

const chatListWidth = 36

// inputRenderedHeight is the total height of the input box (1 inner + 2 border).
const inputRenderedHeight = 3

// statusBarHeight is the single status row under the main view.
const statusBarHeight = 1

const (
	defaultHistoryLimit = 50
	selectUserTimeout   = 30 * time.Second
)

// AuthSubmitter receives login values typed by the user.
type AuthSubmitter interface {
	Submit(phase domain.AuthPhase, value string) bool
}

// Options wires the presentation layer to the session.
type Options struct {
	Store  *state.Store
	Client telegram.Client
	Bridge *core.ChatBridge
	// Auth is optional; without it login values are dropped.
	Auth AuthSubmitter
	// ChangePhone restarts login with another number. Optional.
	ChangePhone  func()
	HistoryLimit int
	Logger       *zap.Logger
}

// Model is the root Bubble Tea model.
type Model struct {
	chatList    ChatListModel
	messageView MessageViewModel
	input       InputModel
	details     ChatDetailsModel
	auth        AuthModel
	status      statusModel
	splash      SplashModel
	help        HelpModel
	prompt      PromptModel
	viewer      ViewerModel

	store        *state.Store
	client       telegram.Client
	bridge       *core.ChatBridge
	authFlow     AuthSubmitter
	changePhone  func()
	historyLimit int
	logger       *zap.Logger

	view       core.View
	shownChat  int64
	viewerOpen bool

	focus  focusTarget
	width  int
	height int
}

// NewModel creates the root model with all sub-components.
func NewModel(opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := opts.HistoryLimit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	m := Model{
		chatList:     NewChatListModel(),
		messageView:  NewMessageViewModel(),
		input:        NewInputModel(),
		details:      NewChatDetailsModel(),
		auth:         NewAuthModel(),
		status:       newStatusModel(),
		splash:       NewSplashModel(),
		help:         NewHelpModel(),
		viewer:       NewViewerModel(),
		store:        opts.Store,
		client:       opts.Client,
		bridge:       opts.Bridge,
		authFlow:     opts.Auth,
		changePhone:  opts.ChangePhone,
		historyLimit: limit,
		logger:       logger,
		view:         core.SelectView(domain.AuthPhaseUnknown, false, false),
		focus:        focusChatList,
	}
	return m.updateFocus()
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.input.Init(),
		tea.Tick(3*time.Second, func(time.Time) tea.Msg { return SplashDoneMsg{} }),
		StoreUpdatedCmd,
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m = m.distributeSize()
		return m, nil

	case StoreUpdatedMsg:
		var cmd tea.Cmd
		m, cmd = m.refreshFromStore()
		if cmd != nil {
			return m, cmd
		}
		// Auto-select the first chat once the session is ready.
		if m.view.Kind == domain.ViewMain && m.store.GetActiveChat() == 0 {
			chats := m.store.GetChatList()
			if len(chats) > 0 {
				return m, func() tea.Msg {
					return ChatSelectedMsg{ChatID: chats[0].ID}
				}
			}
		}
		return m, nil

	case ChatSelectedMsg:
		m.bridge.SelectChat(msg.ChatID)
		m.focus = focusInput
		m = m.updateFocus()
		return m, nil

	case UserSelectedMsg:
		bridge := m.bridge
		userID := msg.UserID
		return m, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), selectUserTimeout)
			defer cancel()
			return userSelectedResultMsg{userID: userID, err: bridge.SelectUser(ctx, userID)}
		}

	case userSelectedResultMsg:
		if msg.err != nil {
			m.logger.Warn("Failed to open private chat", zap.Int64("user_id", msg.userID), zap.Error(msg.err))
			m.status = m.status.SetError(fmt.Sprintf("Cannot open chat: %v", msg.err))
			return m, nil
		}
		m.status = m.status.SetError("")
		m.focus = focusInput
		m = m.updateFocus()
		return m, nil

	case HistoryLoadedMsg:
		m.store.SetMessages(msg.ChatID, msg.Messages)
		if m.store.GetActiveChat() == msg.ChatID {
			m.messageView = m.messageView.SetMessages(msg.Messages)
			if n := len(msg.Messages); n > 0 {
				return m, m.markRead(msg.ChatID, msg.Messages[n-1].ID)
			}
		}
		return m, nil

	case LoadOlderHistoryMsg:
		if m.store.GetActiveChat() != msg.ChatID {
			return m, nil
		}
		oldestID := m.store.GetOldestMessageID(msg.ChatID)
		if oldestID == 0 {
			return m, nil
		}
		m.messageView = m.messageView.SetLoading(true)
		chatID := msg.ChatID
		client := m.client
		limit := m.historyLimit
		cmds = append(cmds, func() tea.Msg {
			history, err := client.GetHistory(context.Background(), chatID, limit, oldestID)
			if err != nil {
				return SendErrorMsg{Err: err}
			}
			return OlderHistoryLoadedMsg{ChatID: chatID, Messages: history}
		})
		return m, tea.Batch(cmds...)

	case OlderHistoryLoadedMsg:
		m.store.PrependMessages(msg.ChatID, msg.Messages)
		if m.store.GetActiveChat() == msg.ChatID {
			m.messageView = m.messageView.PrependMessages(msg.Messages)
		}
		return m, nil

	case sendMessageMsg:
		chatID := m.store.GetActiveChat()
		if chatID == 0 {
			return m, nil
		}
		client := m.client
		text := msg.text
		cmds = append(cmds, func() tea.Msg {
			err := client.SendMessage(context.Background(), chatID, text)
			if err != nil {
				return SendErrorMsg{Err: err}
			}
			return nil
		})
		return m, tea.Batch(cmds...)

	case authSubmitMsg:
		if m.authFlow == nil || !m.authFlow.Submit(msg.phase, msg.value) {
			m.status = m.status.SetError("Login is not waiting for that value")
			return m, nil
		}
		m.status = m.status.SetError("")
		return m, nil

	case changePhoneMsg:
		if m.changePhone != nil {
			m.changePhone()
		}
		return m, nil

	case scrollToBottomMsg:
		m.messageView = m.messageView.ScrollToBottom()
		return m, nil

	case promptMsg:
		m.prompt = m.prompt.Push(msg)
		return m, nil

	case SplashDoneMsg:
		m.splash = m.splash.TimerDone()
		return m, nil

	case SendErrorMsg:
		m.logger.Warn("Request failed", zap.Error(msg.Err))
		m.status = m.status.SetError(fmt.Sprintf("Send error: %v", msg.Err))
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		m.prompt = m.prompt.Abandon()
		return m, tea.Quit
	}

	if m.splash.IsVisible() {
		return m, nil
	}

	if m.prompt.IsVisible() {
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd
	}

	if m.help.IsVisible() {
		switch key {
		case "?", "f1", "esc":
			m.help = m.help.Toggle()
		}
		return m, nil
	}

	if m.viewerOpen {
		switch key {
		case "esc", "q":
			m.store.CloseViewer()
			return m, nil
		}
		var cmd tea.Cmd
		m.viewer, cmd = m.viewer.Update(msg)
		return m, cmd
	}

	switch m.view.Kind {
	case domain.ViewInactive:
		if key == "q" {
			return m, tea.Quit
		}
		return m, nil
	case domain.ViewAuthentication:
		var cmd tea.Cmd
		m.auth, cmd = m.auth.Update(msg)
		return m, cmd
	}

	switch key {
	case "q":
		if m.focus != focusInput {
			return m, tea.Quit
		}
	case "?":
		if m.focus != focusInput {
			m.help = m.help.Toggle()
			return m, nil
		}
	case "f1":
		m.help = m.help.Toggle()
		return m, nil
	case "ctrl+o":
		m.store.ToggleChatDetails()
		return m, nil
	case "tab":
		m.focus = m.nextFocus(1)
		m = m.updateFocus()
		return m, nil
	case "shift+tab":
		m.focus = m.nextFocus(-1)
		m = m.updateFocus()
		return m, nil
	case "esc":
		m.focus = focusChatList
		m = m.updateFocus()
		return m, nil
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusChatList:
		m.chatList, cmd = m.chatList.Update(msg)
	case focusMessages:
		switch key {
		case "v":
			if latest, ok := m.messageView.Latest(); ok {
				m.store.OpenViewer(domain.MediaViewerContent{ChatID: latest.ChatID, MessageID: latest.ID})
			}
			return m, nil
		case "u":
			if latest, ok := m.messageView.LatestIncoming(); ok {
				userID := latest.SenderID
				return m, func() tea.Msg { return UserSelectedMsg{UserID: userID} }
			}
			return m, nil
		}
		m.messageView, cmd = m.messageView.Update(msg)
	case focusDetails:
		m.details, cmd = m.details.Update(msg)
	case focusInput:
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

// nextFocus steps through the panes, skipping the details column when it
// is hidden.
func (m Model) nextFocus(step int) focusTarget {
	f := m.focus
	for {
		f = (f + focusTarget(step) + focusCount) % focusCount
		if f != focusDetails || m.view.ChatDetails {
			return f
		}
	}
}

func (m Model) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	var base string
	switch m.view.Kind {
	case domain.ViewInactive:
		base = m.inactiveView()
	case domain.ViewAuthentication:
		base = m.auth.View()
	default:
		base = m.mainView()
	}

	layers := []*lipgloss.Layer{lipgloss.NewLayer(base)}
	z := 1
	overlay := func(view string, x, y int) {
		layers = append(layers, lipgloss.NewLayer(view).X(x).Y(y).Z(z))
		z++
	}
	if m.viewerOpen {
		x, y := m.viewer.BoxOffset()
		overlay(m.viewer.View(), x, y)
	}
	if m.help.IsVisible() {
		x, y := m.help.BoxOffset()
		overlay(m.help.View(), x, y)
	}
	if m.prompt.IsVisible() {
		x, y := m.prompt.BoxOffset()
		overlay(m.prompt.View(), x, y)
	}
	if m.splash.IsVisible() {
		x, y := m.splash.BoxOffset()
		overlay(m.splash.View(), x, y)
	}

	if len(layers) == 1 {
		v.SetContent(base)
		return v
	}
	v.SetContent(lipgloss.NewCompositor(layers...).Render())
	return v
}

func (m Model) mainView() string {
	messagesView := m.messageView.View()
	inputView := m.input.View()
	rightPane := lipgloss.JoinVertical(lipgloss.Left, messagesView, inputView)

	columns := []string{m.chatList.View(), rightPane}
	if m.view.ChatDetails {
		columns = append(columns, m.details.View())
	}
	full := lipgloss.JoinHorizontal(lipgloss.Top, columns...)
	full = lipgloss.JoinVertical(lipgloss.Left, full, m.status.View())

	// Clamp to terminal dimensions
	return lipgloss.NewStyle().
		MaxWidth(m.width).
		MaxHeight(m.height).
		Render(full)
}

func (m Model) inactiveView() string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(warnColor).
		Padding(1, 3).
		Render("This account is in use in another session.\n\n" +
			lipgloss.NewStyle().Foreground(dimColor).Render("Close the other session and restart. Press q to quit."))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m Model) distributeSize() Model {
	contentHeight := m.height - statusBarHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	// Chat list: fixed width, full height
	clWidth := chatListWidth
	if clWidth > m.width {
		clWidth = m.width
	}
	m.chatList = m.chatList.SetSize(clWidth, contentHeight)

	dWidth := 0
	if m.view.ChatDetails {
		dWidth = detailsWidth
		if clWidth+dWidth > m.width {
			dWidth = 0
		}
	}
	m.details = m.details.SetSize(dWidth, contentHeight)

	// Middle pane: remaining width
	rightWidth := m.width - clWidth - dWidth
	if rightWidth < 1 {
		rightWidth = 1
	}

	// Input gets fixed height, messages get the rest
	messagesHeight := contentHeight - inputRenderedHeight
	if messagesHeight < 1 {
		messagesHeight = 1
	}

	m.messageView = m.messageView.SetSize(rightWidth, messagesHeight)
	m.input = m.input.SetSize(rightWidth, inputRenderedHeight)
	m.status = m.status.SetWidth(m.width)

	m.auth = m.auth.SetSize(m.width, m.height)
	m.splash = m.splash.SetSize(m.width, m.height)
	m.help = m.help.SetSize(m.width, m.height)
	m.prompt = m.prompt.SetSize(m.width, m.height)
	m.viewer = m.viewer.SetSize(m.width, m.height)

	return m
}

func (m Model) updateFocus() Model {
	m.chatList = m.chatList.SetFocused(m.focus == focusChatList)
	m.messageView = m.messageView.SetFocused(m.focus == focusMessages)
	m.details = m.details.SetFocused(m.focus == focusDetails)
	m.input = m.input.SetFocused(m.focus == focusInput)
	return m
}

// refreshFromStore copies store state into the sub-models. It returns a
// command to load history when a chat without cached messages was opened.
func (m Model) refreshFromStore() (Model, tea.Cmd) {
	phase := m.store.AuthPhase()
	inactive := m.store.Inactive()
	m.status = m.status.SetPhase(phase)
	m.auth = m.auth.SetPhase(phase)
	if phase.Interactive() || inactive || phase == domain.AuthPhaseClosed {
		m.splash = m.splash.ConnReady()
	}

	view := core.SelectView(phase, inactive, m.store.ChatDetailsVisible())
	resized := view.ChatDetails != m.view.ChatDetails
	m.view = view
	if resized {
		if !view.ChatDetails && m.focus == focusDetails {
			m.focus = focusChatList
			m = m.updateFocus()
		}
		m = m.distributeSize()
	}

	activeChat := m.store.GetActiveChat()
	m.chatList = m.chatList.WithItems(m.store.GetChatList(), activeChat)

	var cmd tea.Cmd
	if activeChat != 0 {
		msgs := m.store.GetMessages(activeChat)
		m.messageView = m.messageView.SetTypingUser(m.store.GetTypingUser(activeChat))
		m.messageView = m.messageView.SetMessages(msgs)

		chat, _ := m.store.GetChat(activeChat)
		m.details = m.details.SetChat(chat, msgs)

		if activeChat != m.shownChat {
			m.shownChat = activeChat
			m.chatList = m.chatList.Reveal(activeChat)
			m.status = m.status.SetChatTitle(chat.Title)
			if len(msgs) == 0 {
				cmd = m.loadHistory(activeChat)
			} else {
				cmd = m.markRead(activeChat, msgs[len(msgs)-1].ID)
			}
		}
	}

	content, open := m.store.Viewer()
	if open && (!m.viewerOpen || content != m.viewer.Content()) {
		if msg, ok := m.store.GetMessage(content.ChatID, content.MessageID); ok {
			m.viewer = m.viewer.Show(content, msg)
		} else {
			open = false
			m.store.CloseViewer()
		}
	}
	m.viewerOpen = open

	return m, cmd
}

func (m Model) loadHistory(chatID int64) tea.Cmd {
	client := m.client
	limit := m.historyLimit
	return func() tea.Msg {
		history, err := client.GetHistory(context.Background(), chatID, limit, 0)
		if err != nil {
			return SendErrorMsg{Err: err}
		}
		return HistoryLoadedMsg{ChatID: chatID, Messages: history}
	}
}

func (m Model) markRead(chatID int64, maxID int) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		if err := client.MarkAsRead(context.Background(), chatID, maxID); err != nil {
			return SendErrorMsg{Err: err}
		}
		return nil
	}
}

// App wraps the Bubble Tea program for external use. It is the session's
// Prompter and Scroller.
type App struct {
	program *tea.Program
}

// NewApp creates a new App ready to Run.
func NewApp(opts Options) *App {
	model := NewModel(opts)
	p := tea.NewProgram(model)
	return &App{program: p}
}

// Run starts the Bubble Tea event loop (blocks until quit).
func (a *App) Run() error {
	_, err := a.program.Run()
	return err
}

// Send sends a message into the Bubble Tea event loop from external goroutines.
func (a *App) Send(msg tea.Msg) {
	go a.program.Send(msg)
}

// DrawFunc returns a function suitable for state.Store that triggers a re-render.
func (a *App) DrawFunc() func() {
	return func() {
		a.Send(StoreUpdatedMsg{})
	}
}

// Alert shows message until the user dismisses it.
func (a *App) Alert(ctx context.Context, message string) error {
	_, err := a.ask(ctx, message, false)
	return err
}

// Confirm asks a yes/no question.
func (a *App) Confirm(ctx context.Context, message string) (bool, error) {
	return a.ask(ctx, message, true)
}

func (a *App) ask(ctx context.Context, message string, confirm bool) (bool, error) {
	reply := make(chan bool, 1)
	// Sent inline so prompts reach the queue in the order they were asked.
	a.program.Send(promptMsg{text: message, confirm: confirm, reply: reply})
	select {
	case answer, ok := <-reply:
		if !ok {
			return false, core.ErrPromptDismissed
		}
		return answer, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Restarter wraps next so the terminal leaves raw mode and the alternate
// screen before the process is replaced.
func (a *App) Restarter(next core.Restarter) core.Restarter {
	return releasingRestarter{release: a.program.ReleaseTerminal, next: next}
}

// ScrollToBottom implements core.Scroller.
func (a *App) ScrollToBottom() {
	a.Send(scrollToBottomMsg{})
}
