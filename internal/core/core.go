// Package core drives the session: it classifies updates from the backend,
// runs the authorization state machine, reacts to service notifications and
// fatal errors, and bridges chat selection intents from the presentation
// layer to backend commands.
//
// All state lives in the injected store; core only decides what to write
// and which commands to issue.
package core

import (
	"context"
	"sync"

	"github.com/go-faster/errors"
	"golang.org/x/sync/errgroup"

	"github.com/danhigham/tgshell/internal/domain"
	"github.com/danhigham/tgshell/internal/events"
	"github.com/danhigham/tgshell/internal/update"
)

// Commander issues commands to the backend.
type Commander interface {
	Send(ctx context.Context, cmd update.Command) (update.Response, error)
	LogOut(ctx context.Context) error
}

// Source is the backend engine as seen by the dispatcher.
type Source interface {
	Commander
	Subscribe(topic events.Topic, h events.Handler) (release func())
}

// ErrPromptDismissed is returned by a Prompter that closed without an
// answer because the presentation is going away.
var ErrPromptDismissed = errors.New("prompt dismissed")

// Prompter presents messages to the user. Both calls return once the user
// dismissed or answered the prompt, or ctx is done.
type Prompter interface {
	Alert(ctx context.Context, message string) error
	Confirm(ctx context.Context, message string) (bool, error)
}

// Restarter replaces the running process with a fresh one.
type Restarter interface {
	Restart()
}

// Scroller moves the chat detail view to its most recent position.
type Scroller interface {
	ScrollToBottom()
}

// Registrar is told when the session enters an interactive phase.
type Registrar interface {
	RegisterInteractive(phase domain.AuthPhase)
}

type nopRegistrar struct{}

func (nopRegistrar) RegisterInteractive(domain.AuthPhase) {}

// PhaseStore holds the authorization phase.
type PhaseStore interface {
	AuthPhase() domain.AuthPhase
	SetAuthPhase(domain.AuthPhase)
}

// SelectionStore holds the selected chat.
type SelectionStore interface {
	GetActiveChat() int64
	SetActiveChat(int64)
}

// Store is the state the dispatcher writes.
type Store interface {
	PhaseStore
	SetInactive()
}

// Tasks tracks follow-up work handlers start outside the dispatch loop,
// such as outbound commands and prompts that wait for the user.
type Tasks struct {
	g errgroup.Group

	mu   sync.Mutex
	last chan struct{}
}

// Go runs fn on its own goroutine.
func (t *Tasks) Go(fn func() error) {
	t.g.Go(fn)
}

// GoInOrder runs fn after every fn previously passed to GoInOrder has
// returned. Prompts go through it so the user sees them in the order
// they were raised.
func (t *Tasks) GoInOrder(fn func() error) {
	t.mu.Lock()
	prev := t.last
	done := make(chan struct{})
	t.last = done
	t.mu.Unlock()

	t.g.Go(func() error {
		defer close(done)
		if prev != nil {
			<-prev
		}
		return fn()
	})
}

// Wait blocks until every started task returned.
func (t *Tasks) Wait() error {
	return t.g.Wait()
}
