package core_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/danhigham/tgshell/internal/core"
	"github.com/danhigham/tgshell/internal/domain"
	"github.com/danhigham/tgshell/internal/state"
	"github.com/danhigham/tgshell/internal/update"
)

func TestAuthMachine_LastWriteWins(t *testing.T) {
	store := state.New(nil)
	tasks := &core.Tasks{}
	m := core.NewAuthMachine(store, newFakeSource(), tasks, nil)

	seq := []domain.AuthPhase{
		domain.AuthPhaseWaitTdlibParameters,
		domain.AuthPhaseReady,
		domain.AuthPhaseWaitCode,
		domain.AuthPhaseClosed,
		domain.AuthPhaseWaitPhoneNumber,
		domain.AuthPhaseUnknown,
		domain.AuthPhaseLoggingOut,
	}
	for _, p := range seq {
		m.OnAuthorizationUpdate(context.Background(), p)
		require.Equal(t, p, store.AuthPhase())
		require.Equal(t, p, m.Phase())
	}
	require.NoError(t, tasks.Wait())
}

func TestAuthMachine_OnlineOncePerReadyEntry(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource()
	tasks := &core.Tasks{}
	m := core.NewAuthMachine(state.New(nil), src, tasks, nil)

	m.OnAuthorizationUpdate(ctx, domain.AuthPhaseReady)
	m.OnAuthorizationUpdate(ctx, domain.AuthPhaseReady)
	require.NoError(t, tasks.Wait())
	require.Equal(t, 1, src.onlineCount(), "duplicate Ready must not resend")

	m.OnAuthorizationUpdate(ctx, domain.AuthPhaseWaitPassword)
	m.OnAuthorizationUpdate(ctx, domain.AuthPhaseReady)
	require.NoError(t, tasks.Wait())
	require.Equal(t, 2, src.onlineCount(), "re-entering Ready sends again")

	require.Equal(t, []update.Command{update.SetOnline(true), update.SetOnline(true)}, src.Commands())
}

func TestAuthMachine_OnlineFailureIsSwallowed(t *testing.T) {
	src := newFakeSource()
	src.respond = func(update.Command) (update.Response, error) {
		return update.Response{}, errors.New("network down")
	}
	store := state.New(nil)
	tasks := &core.Tasks{}
	m := core.NewAuthMachine(store, src, tasks, nil)

	m.OnAuthorizationUpdate(context.Background(), domain.AuthPhaseReady)
	require.NoError(t, tasks.Wait())
	require.Equal(t, domain.AuthPhaseReady, store.AuthPhase())
}

func TestAuthMachine_RegistersInteractivePhases(t *testing.T) {
	reg := &fakeRegistrar{}
	tasks := &core.Tasks{}
	m := core.NewAuthMachine(state.New(nil), newFakeSource(), tasks, nil)
	m.SetRegistrar(reg)

	for _, p := range []domain.AuthPhase{
		domain.AuthPhaseWaitTdlibParameters,
		domain.AuthPhaseWaitPhoneNumber,
		domain.AuthPhaseWaitCode,
		domain.AuthPhaseWaitPassword,
		domain.AuthPhaseReady,
		domain.AuthPhaseClosing,
	} {
		m.OnAuthorizationUpdate(context.Background(), p)
	}
	require.NoError(t, tasks.Wait())
	require.Equal(t, []domain.AuthPhase{
		domain.AuthPhaseWaitPhoneNumber,
		domain.AuthPhaseWaitCode,
		domain.AuthPhaseWaitPassword,
		domain.AuthPhaseReady,
	}, reg.phases)
}

func TestAuthMachine_ChangePhone(t *testing.T) {
	store := state.New(nil)
	src := newFakeSource()
	tasks := &core.Tasks{}
	m := core.NewAuthMachine(store, src, tasks, nil)

	m.OnAuthorizationUpdate(context.Background(), domain.AuthPhaseWaitCode)
	m.ChangePhone()
	require.Equal(t, domain.AuthPhaseWaitPhoneNumber, store.AuthPhase())
	require.NoError(t, tasks.Wait())
	require.Empty(t, src.Commands())
}
