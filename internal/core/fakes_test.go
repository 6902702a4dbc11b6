package core_test

import (
	"context"
	"sync"

	"github.com/danhigham/tgshell/internal/domain"
	"github.com/danhigham/tgshell/internal/events"
	"github.com/danhigham/tgshell/internal/update"
)

// fakeSource records commands and answers them with respond.
type fakeSource struct {
	*events.Bus

	mu       sync.Mutex
	commands []update.Command
	logOuts  int
	respond  func(update.Command) (update.Response, error)
	onLogOut func()
}

func newFakeSource() *fakeSource {
	return &fakeSource{Bus: events.NewBus()}
}

func (s *fakeSource) Send(_ context.Context, cmd update.Command) (update.Response, error) {
	s.mu.Lock()
	s.commands = append(s.commands, cmd)
	respond := s.respond
	s.mu.Unlock()
	if respond != nil {
		return respond(cmd)
	}
	return update.Ok, nil
}

func (s *fakeSource) LogOut(context.Context) error {
	s.mu.Lock()
	s.logOuts++
	onLogOut := s.onLogOut
	s.mu.Unlock()
	if onLogOut != nil {
		onLogOut()
	}
	return nil
}

func (s *fakeSource) Commands() []update.Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]update.Command(nil), s.commands...)
}

func (s *fakeSource) LogOuts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logOuts
}

// onlineCount counts setOption online=true commands.
func (s *fakeSource) onlineCount() int {
	n := 0
	for _, c := range s.Commands() {
		if c == update.SetOnline(true) {
			n++
		}
	}
	return n
}

// fakePrompter answers confirmations with confirm and records prompts.
// A non-nil wait runs before a prompt is recorded, standing in for the
// user taking time to answer.
type fakePrompter struct {
	mu       sync.Mutex
	confirm  bool
	err      error
	wait     func(ctx context.Context, msg string)
	alerts   []string
	confirms []string
	shown    []string
}

func (p *fakePrompter) Alert(ctx context.Context, msg string) error {
	if p.wait != nil {
		p.wait(ctx, msg)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alerts = append(p.alerts, msg)
	p.shown = append(p.shown, msg)
	return p.err
}

func (p *fakePrompter) Confirm(ctx context.Context, msg string) (bool, error) {
	if p.wait != nil {
		p.wait(ctx, msg)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.confirms = append(p.confirms, msg)
	p.shown = append(p.shown, msg)
	return p.confirm, p.err
}

// Shown lists alerts and confirmations in the order they completed.
func (p *fakePrompter) Shown() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.shown...)
}

func (p *fakePrompter) Alerts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.alerts...)
}

func (p *fakePrompter) Confirms() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.confirms...)
}

type fakeRestarter struct {
	mu       sync.Mutex
	restarts int
}

func (r *fakeRestarter) Restart() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.restarts++
}

func (r *fakeRestarter) Restarts() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.restarts
}

type fakeScroller struct{ scrolls int }

func (s *fakeScroller) ScrollToBottom() { s.scrolls++ }

type fakeRegistrar struct{ phases []domain.AuthPhase }

func (r *fakeRegistrar) RegisterInteractive(p domain.AuthPhase) { r.phases = append(r.phases, p) }

func authUpdate(p domain.AuthPhase) update.AuthorizationState {
	return update.AuthorizationState{Phase: p}
}

func messageText(text string) update.MessageText {
	return update.MessageText{Text: update.FormattedText{Text: text}}
}
