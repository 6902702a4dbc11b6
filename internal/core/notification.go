package core

import (
	"context"

	"go.uber.org/zap"

	"github.com/danhigham/tgshell/internal/update"
)

// NotificationAuthKeyDropDuplicate asks the user whether to end a session
// the backend considers duplicated.
const NotificationAuthKeyDropDuplicate = "AUTH_KEY_DROP_DUPLICATE"

// NoticeHandler presents service notifications.
type NoticeHandler struct {
	cmd      Commander
	prompter Prompter
	tasks    *Tasks
	logger   *zap.Logger
}

func NewNoticeHandler(cmd Commander, prompter Prompter, tasks *Tasks, logger *zap.Logger) *NoticeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoticeHandler{cmd: cmd, prompter: prompter, tasks: tasks, logger: logger}
}

// OnServiceNotification shows the text of content to the user. Content
// without text is dropped. For AUTH_KEY_DROP_DUPLICATE the user is asked
// to confirm and the session is logged out only on a yes.
func (h *NoticeHandler) OnServiceNotification(ctx context.Context, kind string, content update.MessageContent) {
	text := update.Text(content)
	if text == "" {
		h.logger.Debug("Ignoring service notification without text",
			zap.String("type", kind),
			zap.String("content", contentType(content)),
		)
		return
	}

	switch kind {
	case NotificationAuthKeyDropDuplicate:
		h.tasks.GoInOrder(func() error {
			ok, err := h.prompter.Confirm(ctx, text)
			if err != nil {
				h.logger.Warn("Confirmation failed", zap.String("type", kind), zap.Error(err))
				return nil
			}
			if !ok {
				return nil
			}
			h.tasks.Go(func() error {
				if err := h.cmd.LogOut(ctx); err != nil {
					h.logger.Error("Failed to log out", zap.Error(err))
				}
				return nil
			})
			return nil
		})
	default:
		h.tasks.GoInOrder(func() error {
			if err := h.prompter.Alert(ctx, text); err != nil {
				h.logger.Warn("Alert failed", zap.String("type", kind), zap.Error(err))
			}
			return nil
		})
	}
}

func contentType(c update.MessageContent) string {
	if c == nil {
		return ""
	}
	return c.ContentType()
}
