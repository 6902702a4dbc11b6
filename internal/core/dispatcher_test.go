package core_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/danhigham/tgshell/internal/core"
	"github.com/danhigham/tgshell/internal/domain"
	"github.com/danhigham/tgshell/internal/events"
	"github.com/danhigham/tgshell/internal/state"
	"github.com/danhigham/tgshell/internal/update"
)

type dispatcherFixture struct {
	store     *state.Store
	source    *fakeSource
	prompter  *fakePrompter
	restarter *fakeRestarter
	d         *core.Dispatcher
}

func newDispatcherFixture() *dispatcherFixture {
	f := &dispatcherFixture{
		store:     state.New(nil),
		source:    newFakeSource(),
		prompter:  &fakePrompter{confirm: true},
		restarter: &fakeRestarter{},
	}
	f.d = core.NewDispatcher(core.Config{
		Store:     f.store,
		Source:    f.source,
		Prompter:  f.prompter,
		Restarter: f.restarter,
	})
	return f
}

func TestDispatcher_Routes(t *testing.T) {
	f := newDispatcherFixture()
	ctx := context.Background()

	f.d.Dispatch(ctx, authUpdate(domain.AuthPhaseReady))
	f.d.Dispatch(ctx, update.ServiceNotification{Type: "MOTD", Content: messageText("hi")})
	f.d.Dispatch(ctx, update.ServiceNotification{Type: core.NotificationAuthKeyDropDuplicate, Content: messageText("dup")})
	f.d.Dispatch(ctx, update.FatalError{Error: "x"})
	require.NoError(t, f.d.Wait())

	require.Equal(t, domain.AuthPhaseReady, f.store.AuthPhase())
	require.Equal(t, 1, f.source.onlineCount())
	require.ElementsMatch(t, []string{"hi", core.FatalMessage}, f.prompter.Alerts())
	require.Equal(t, []string{"dup"}, f.prompter.Confirms())
	require.Equal(t, 1, f.source.LogOuts())
	require.Equal(t, 1, f.restarter.Restarts())
}

func TestDispatcher_UnknownIsNoop(t *testing.T) {
	f := newDispatcherFixture()
	ctx := context.Background()

	f.d.Dispatch(ctx, update.Unknown{Type: "updateNewChat"})
	f.d.Dispatch(ctx, nil)
	require.NoError(t, f.d.Wait())

	require.Equal(t, domain.AuthPhaseUnknown, f.store.AuthPhase())
	require.False(t, f.store.Inactive())
	require.Empty(t, f.source.Commands())
	require.Empty(t, f.prompter.Alerts())
	require.Zero(t, f.restarter.Restarts())
}

func TestDispatcher_AppInactive(t *testing.T) {
	f := newDispatcherFixture()

	f.d.Dispatch(context.Background(), update.AppInactive{})
	require.True(t, f.store.Inactive())
	require.Equal(t, domain.ViewInactive,
		core.SelectView(f.store.AuthPhase(), f.store.Inactive(), f.store.ChatDetailsVisible()).Kind)
}

func TestDispatcher_RunPreservesOrder(t *testing.T) {
	f := newDispatcherFixture()
	release := f.d.Attach()
	require.Equal(t, 1, f.source.Len(events.TopicUpdate))
	require.Equal(t, 1, f.source.Len(events.TopicAppInactive))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.d.Run(ctx) }()

	phases := []domain.AuthPhase{
		domain.AuthPhaseWaitPhoneNumber,
		domain.AuthPhaseWaitCode,
		domain.AuthPhaseReady,
		domain.AuthPhaseReady,
		domain.AuthPhaseLoggingOut,
		domain.AuthPhaseReady,
		domain.AuthPhaseClosed,
	}
	for _, p := range phases {
		f.source.Publish(events.TopicUpdate, authUpdate(p))
	}
	f.source.Publish(events.TopicUpdate, update.Unknown{Type: "updateOption"})

	require.Eventually(t, func() bool {
		return f.store.AuthPhase() == domain.AuthPhaseClosed && f.source.onlineCount() == 2
	}, 2*time.Second, 5*time.Millisecond)

	f.source.Publish(events.TopicAppInactive, update.AppInactive{})
	require.Eventually(t, f.store.Inactive, 2*time.Second, 5*time.Millisecond)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	release()
	release()
	require.Zero(t, f.source.Len(events.TopicUpdate))
	require.Zero(t, f.source.Len(events.TopicAppInactive))
}

func TestDispatcher_EnqueueAfterStopDoesNotBlock(t *testing.T) {
	store := state.New(nil)
	src := newFakeSource()
	d := core.NewDispatcher(core.Config{
		Store:       store,
		Source:      src,
		Prompter:    &fakePrompter{},
		Restarter:   &fakeRestarter{},
		MailboxSize: 1,
	})
	d.Attach()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, d.Run(ctx), context.Canceled)

	published := make(chan struct{})
	go func() {
		for i := 0; i < 3; i++ {
			src.Publish(events.TopicUpdate, authUpdate(domain.AuthPhaseReady))
		}
		close(published)
	}()
	select {
	case <-published:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked after the dispatcher stopped")
	}
}

func TestDispatcher_RunReturnsWhileTaskPublishes(t *testing.T) {
	store := state.New(nil)
	src := newFakeSource()
	asked := make(chan struct{})
	p := &fakePrompter{
		confirm: true,
		wait: func(ctx context.Context, _ string) {
			close(asked)
			<-ctx.Done()
		},
	}
	src.onLogOut = func() {
		src.Publish(events.TopicUpdate, authUpdate(domain.AuthPhaseLoggingOut))
		src.Publish(events.TopicUpdate, authUpdate(domain.AuthPhaseClosed))
	}
	d := core.NewDispatcher(core.Config{
		Store:       store,
		Source:      src,
		Prompter:    p,
		Restarter:   &fakeRestarter{},
		MailboxSize: 1,
	})
	d.Attach()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	src.Publish(events.TopicUpdate, update.ServiceNotification{
		Type:    core.NotificationAuthKeyDropDuplicate,
		Content: messageText("dup"),
	})
	<-asked
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	require.Equal(t, 1, src.LogOuts())
}
