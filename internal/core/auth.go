package core

import (
	"context"

	"go.uber.org/zap"

	"github.com/danhigham/tgshell/internal/domain"
	"github.com/danhigham/tgshell/internal/update"
)

// AuthMachine tracks the authorization phase reported by the backend. The
// backend owns the lifecycle: any phase may follow any phase.
type AuthMachine struct {
	store     PhaseStore
	cmd       Commander
	registrar Registrar
	tasks     *Tasks
	logger    *zap.Logger
}

func NewAuthMachine(store PhaseStore, cmd Commander, tasks *Tasks, logger *zap.Logger) *AuthMachine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMachine{
		store:     store,
		cmd:       cmd,
		registrar: nopRegistrar{},
		tasks:     tasks,
		logger:    logger,
	}
}

// SetRegistrar installs the hook told about interactive phases.
func (m *AuthMachine) SetRegistrar(r Registrar) {
	if r == nil {
		r = nopRegistrar{}
	}
	m.registrar = r
}

// Phase returns the current phase.
func (m *AuthMachine) Phase() domain.AuthPhase {
	return m.store.AuthPhase()
}

// OnAuthorizationUpdate stores phase. Entering Ready from any other phase
// marks the session online; a repeated Ready report does not.
func (m *AuthMachine) OnAuthorizationUpdate(ctx context.Context, phase domain.AuthPhase) {
	prev := m.store.AuthPhase()
	m.store.SetAuthPhase(phase)

	m.logger.Debug("authorization phase",
		zap.Stringer("from", prev),
		zap.Stringer("to", phase),
	)

	if phase.Interactive() {
		m.registrar.RegisterInteractive(phase)
	}

	if phase == domain.AuthPhaseReady && prev != domain.AuthPhaseReady {
		m.goOnline(ctx)
	}
}

// ChangePhone returns to phone number entry so the user can restart login
// with another number.
func (m *AuthMachine) ChangePhone() {
	m.store.SetAuthPhase(domain.AuthPhaseWaitPhoneNumber)
}

func (m *AuthMachine) goOnline(ctx context.Context) {
	cmd := update.SetOnline(true)
	m.tasks.Go(func() error {
		if _, err := m.cmd.Send(ctx, cmd); err != nil {
			m.logger.Warn("Failed to set online", zap.Error(err))
		}
		return nil
	})
}
