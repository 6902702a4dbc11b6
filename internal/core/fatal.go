package core

import (
	"context"

	"go.uber.org/zap"
)

// FatalMessage is shown before the process restarts.
const FatalMessage = "Oops! Something went wrong. We need to restart the app."

// FatalHandler restarts the process after a fatal backend error.
type FatalHandler struct {
	prompter  Prompter
	restarter Restarter
	tasks     *Tasks
	logger    *zap.Logger
}

func NewFatalHandler(prompter Prompter, restarter Restarter, tasks *Tasks, logger *zap.Logger) *FatalHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FatalHandler{prompter: prompter, restarter: restarter, tasks: tasks, logger: logger}
}

// OnFatalError shows a notice, then restarts. The restart happens even
// when the notice cannot be shown or is dismissed, unless ctx is done.
func (h *FatalHandler) OnFatalError(ctx context.Context, reason string) {
	h.logger.Error("Fatal backend error", zap.String("reason", reason))

	h.tasks.GoInOrder(func() error {
		err := h.prompter.Alert(ctx, FatalMessage)
		if ctx.Err() != nil {
			h.logger.Info("Shutting down, restart skipped")
			return nil
		}
		if err != nil {
			h.logger.Warn("Fatal notice failed", zap.Error(err))
		}
		h.restarter.Restart()
		return nil
	})
}
