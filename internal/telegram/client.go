package telegram

import (
	"context"

	"github.com/danhigham/tgshell/internal/domain"
)

// EventHandler receives chat data from the Telegram client.
type EventHandler interface {
	OnNewMessage(msg domain.Message)
	OnChatListUpdate(chats []domain.ChatInfo)
	OnChatAdded(chat domain.ChatInfo)
	OnMessageRead(chatID int64, maxID int)
	OnUserStatus(userID int64, online bool)
	OnUserTyping(chatID int64, userName string)
	OnUserTypingStop(chatID int64)
}

// Client is the chat data surface the presentation layer uses.
type Client interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	GetHistory(ctx context.Context, chatID int64, limit int, offsetID int) ([]domain.Message, error)
	GetDialogs(ctx context.Context) ([]domain.ChatInfo, error)
	MarkAsRead(ctx context.Context, chatID int64, maxID int) error
}
