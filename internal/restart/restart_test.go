package restart

import (
	"errors"
	"os"
	"testing"
)

func TestExec_Restart(t *testing.T) {
	var gotPath string
	var gotArgs []string
	e := Exec{
		executable: func() (string, error) { return "/bin/tgshell", nil },
		exec: func(argv0 string, argv []string, envv []string) error {
			gotPath, gotArgs = argv0, argv
			return nil
		},
		Exit: func(int) { t.Error("exit called on successful exec") },
	}

	e.Restart()

	if gotPath != "/bin/tgshell" {
		t.Errorf("path = %q, want %q", gotPath, "/bin/tgshell")
	}
	if len(gotArgs) != len(os.Args) {
		t.Errorf("args = %v, want %v", gotArgs, os.Args)
	}
}

func TestExec_RestartFailureExits(t *testing.T) {
	tests := []struct {
		name       string
		executable func() (string, error)
		exec       func(string, []string, []string) error
	}{
		{
			name:       "no executable",
			executable: func() (string, error) { return "", errors.New("gone") },
			exec:       func(string, []string, []string) error { return nil },
		},
		{
			name:       "exec fails",
			executable: func() (string, error) { return "/bin/tgshell", nil },
			exec:       func(string, []string, []string) error { return errors.New("denied") },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := -1
			e := Exec{executable: tt.executable, exec: tt.exec, Exit: func(c int) { code = c }}
			e.Restart()
			if code != 1 {
				t.Errorf("exit code = %d, want 1", code)
			}
		})
	}
}
