// Package restart replaces the running process with a fresh copy of itself.
package restart

import (
	"os"
	"syscall"

	"go.uber.org/zap"
)

// Exec restarts by re-executing the current binary with the same
// arguments and environment.
type Exec struct {
	Logger *zap.Logger
	// Exit is called when exec fails. Defaults to os.Exit.
	Exit func(code int)

	exec       func(argv0 string, argv []string, envv []string) error
	executable func() (string, error)
}

// Restart does not return on success.
func (e Exec) Restart() {
	logger := e.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	executable := e.executable
	if executable == nil {
		executable = os.Executable
	}
	execFn := e.exec
	if execFn == nil {
		execFn = syscall.Exec
	}
	exit := e.Exit
	if exit == nil {
		exit = os.Exit
	}

	path, err := executable()
	if err != nil {
		logger.Error("Failed to locate executable", zap.Error(err))
		exit(1)
		return
	}

	logger.Info("Restarting", zap.String("path", path), zap.Strings("args", os.Args[1:]))
	_ = logger.Sync()

	if err := execFn(path, os.Args, os.Environ()); err != nil {
		logger.Error("Failed to restart", zap.Error(err))
		exit(1)
	}
}
