package core

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/danhigham/tgshell/internal/events"
	"github.com/danhigham/tgshell/internal/update"
)

const defaultMailboxSize = 256

// Config wires a Dispatcher to its collaborators.
type Config struct {
	Store     Store
	Source    Source
	Prompter  Prompter
	Restarter Restarter
	// Registrar is optional.
	Registrar   Registrar
	Logger      *zap.Logger
	MailboxSize int
}

// Dispatcher is the single consumer of a Source. Events are queued in
// delivery order and handled one at a time on the goroutine running Run.
type Dispatcher struct {
	store  Store
	source Source
	logger *zap.Logger

	auth    *AuthMachine
	notices *NoticeHandler
	fatal   *FatalHandler
	tasks   *Tasks

	inbox    chan update.Event
	stopped  chan struct{}
	stopOnce sync.Once
}

func NewDispatcher(cfg Config) *Dispatcher {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	size := cfg.MailboxSize
	if size <= 0 {
		size = defaultMailboxSize
	}

	tasks := &Tasks{}
	d := &Dispatcher{
		store:   cfg.Store,
		source:  cfg.Source,
		logger:  logger.Named("dispatcher"),
		auth:    NewAuthMachine(cfg.Store, cfg.Source, tasks, logger.Named("auth")),
		notices: NewNoticeHandler(cfg.Source, cfg.Prompter, tasks, logger.Named("notify")),
		fatal:   NewFatalHandler(cfg.Prompter, cfg.Restarter, tasks, logger.Named("fatal")),
		tasks:   tasks,
		inbox:   make(chan update.Event, size),
		stopped: make(chan struct{}),
	}
	d.auth.SetRegistrar(cfg.Registrar)
	return d
}

// Auth returns the authorization state machine.
func (d *Dispatcher) Auth() *AuthMachine {
	return d.auth
}

// Attach subscribes to the source. The returned func releases both
// subscriptions.
func (d *Dispatcher) Attach() (release func()) {
	releaseUpdates := d.source.Subscribe(events.TopicUpdate, d.enqueue)
	releaseInactive := d.source.Subscribe(events.TopicAppInactive, d.enqueue)
	return func() {
		releaseUpdates()
		releaseInactive()
	}
}

// enqueue blocks until the event is queued so that nothing is dropped.
func (d *Dispatcher) enqueue(ev update.Event) {
	select {
	case d.inbox <- ev:
	case <-d.stopped:
		d.logger.Debug("Dropping event after stop", zap.String("type", ev.TypeName()))
	}
}

// Run handles queued events until ctx is done, then waits for the tasks
// handlers started. Events published once ctx is done are dropped, so a
// task that publishes while finishing cannot block the wait.
func (d *Dispatcher) Run(ctx context.Context) error {
	stop := func() { d.stopOnce.Do(func() { close(d.stopped) }) }
	defer stop()

	for {
		select {
		case <-ctx.Done():
			stop()
			_ = d.tasks.Wait()
			return ctx.Err()
		case ev := <-d.inbox:
			d.Dispatch(ctx, ev)
		}
	}
}

// Dispatch routes one event to its handler. Unrecognized events are
// ignored.
func (d *Dispatcher) Dispatch(ctx context.Context, ev update.Event) {
	switch ev := ev.(type) {
	case update.AuthorizationState:
		d.auth.OnAuthorizationUpdate(ctx, ev.Phase)
	case update.ServiceNotification:
		d.notices.OnServiceNotification(ctx, ev.Type, ev.Content)
	case update.FatalError:
		d.fatal.OnFatalError(ctx, ev.Error)
	case update.AppInactive:
		d.logger.Info("Session taken over by another client")
		d.store.SetInactive()
	default:
		if ev != nil {
			d.logger.Debug("Ignoring update", zap.String("type", ev.TypeName()))
		}
	}
}

// Wait blocks until handler tasks finished.
func (d *Dispatcher) Wait() error {
	return d.tasks.Wait()
}
