package core

import (
	"context"
	"sync"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/danhigham/tgshell/internal/update"
)

// ErrNoResponseID is returned when createPrivateChat answers without a chat id.
var ErrNoResponseID = errors.New("response has no chat id")

// ChatBridge turns chat and user selection intents into selection changes.
type ChatBridge struct {
	store  SelectionStore
	cmd    Commander
	logger *zap.Logger

	mu       sync.Mutex
	scroller Scroller
}

func NewChatBridge(store SelectionStore, cmd Commander, logger *zap.Logger) *ChatBridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatBridge{store: store, cmd: cmd, logger: logger}
}

// SetScroller installs the detail view to scroll on reselection.
func (b *ChatBridge) SetScroller(s Scroller) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.scroller = s
}

// SelectChat selects chatID. Selecting the chat that is already selected
// scrolls its detail view to the latest message instead.
func (b *ChatBridge) SelectChat(chatID int64) {
	if b.store.GetActiveChat() != chatID {
		b.store.SetActiveChat(chatID)
		return
	}

	b.mu.Lock()
	s := b.scroller
	b.mu.Unlock()
	if s != nil {
		s.ScrollToBottom()
	}
}

// SelectUser opens the private chat with userID, creating it if needed.
// Selection changes only after the backend answered with the chat.
func (b *ChatBridge) SelectUser(ctx context.Context, userID int64) error {
	if userID == 0 {
		return nil
	}

	resp, err := b.cmd.Send(ctx, update.CreatePrivateChat{UserID: userID, Force: true})
	if err != nil {
		b.logger.Warn("Failed to create private chat", zap.Int64("user_id", userID), zap.Error(err))
		return errors.Wrap(err, "create private chat")
	}
	if resp.ID == 0 {
		return ErrNoResponseID
	}

	b.SelectChat(resp.ID)
	return nil
}
