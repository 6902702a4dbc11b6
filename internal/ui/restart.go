package ui

import (
	"github.com/danhigham/tgshell/internal/core"
)

type releasingRestarter struct {
	release func() error
	next    core.Restarter
}

// Restart restores the terminal, then hands over to next. A failed
// release does not stop the restart.
func (r releasingRestarter) Restart() {
	if r.release != nil {
		_ = r.release()
	}
	r.next.Restart()
}
