package ui

import (
	tea "charm.land/bubbletea/v2"

	"github.com/danhigham/tgshell/internal/domain"
)

// StoreUpdatedMsg signals that the store state has changed.
type StoreUpdatedMsg struct{}

// ChatSelectedMsg is emitted when the user picks a chat.
type ChatSelectedMsg struct {
	ChatID int64
}

// UserSelectedMsg is emitted when the user picks a person to talk to.
type UserSelectedMsg struct {
	UserID int64
}

// userSelectedResultMsg carries the outcome of opening a private chat.
type userSelectedResultMsg struct {
	userID int64
	err    error
}

// HistoryLoadedMsg delivers fetched history for a chat.
type HistoryLoadedMsg struct {
	ChatID   int64
	Messages []domain.Message
}

// sendMessageMsg is emitted when the user presses Enter in the input.
type sendMessageMsg struct {
	text string
}

// authSubmitMsg is emitted when the user submits a login value.
type authSubmitMsg struct {
	phase domain.AuthPhase
	value string
}

// changePhoneMsg asks to restart login with another phone number.
type changePhoneMsg struct{}

// SendErrorMsg reports a failed send attempt.
type SendErrorMsg struct {
	Err error
}

// LoadOlderHistoryMsg is emitted when the user scrolls to the top of messages.
type LoadOlderHistoryMsg struct {
	ChatID int64
}

// OlderHistoryLoadedMsg delivers older history fetched asynchronously.
type OlderHistoryLoadedMsg struct {
	ChatID   int64
	Messages []domain.Message
}

// SplashDoneMsg signals that the splash screen timeout has elapsed.
type SplashDoneMsg struct{}

// scrollToBottomMsg moves the message view to the latest message.
type scrollToBottomMsg struct{}

// promptMsg queues an alert or confirmation dialog. The answer is sent
// on reply once the user dismisses it.
type promptMsg struct {
	text    string
	confirm bool
	reply   chan bool
}

// StoreUpdatedCmd returns a command that emits StoreUpdatedMsg.
func StoreUpdatedCmd() tea.Msg {
	return StoreUpdatedMsg{}
}
