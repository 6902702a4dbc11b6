package telegram

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"

	"github.com/danhigham/tgshell/internal/domain"
)

// ErrLoginRestarted aborts a pending code or password prompt after the user
// asked to enter another phone number.
var ErrLoginRestarted = errors.New("login restarted")

// TUIAuth implements gotd's auth.UserAuthenticator. Each prompt reports the
// matching authorization phase and waits for the UI to submit a value.
type TUIAuth struct {
	PhoneCh    chan string
	CodeCh     chan string
	PasswordCh chan string

	restart chan struct{}
	onPhase func(domain.AuthPhase)
}

func NewTUIAuth() *TUIAuth {
	return &TUIAuth{
		PhoneCh:    make(chan string, 1),
		CodeCh:     make(chan string, 1),
		PasswordCh: make(chan string, 1),
		restart:    make(chan struct{}, 1),
	}
}

// SetOnPhase installs the callback told which value is being waited for.
func (a *TUIAuth) SetOnPhase(fn func(domain.AuthPhase)) {
	a.onPhase = fn
}

// Submit hands a value for phase to the waiting flow. It never blocks and
// reports false if phase takes no input or a value is already pending.
func (a *TUIAuth) Submit(phase domain.AuthPhase, value string) bool {
	var ch chan string
	switch phase {
	case domain.AuthPhaseWaitPhoneNumber:
		ch = a.PhoneCh
	case domain.AuthPhaseWaitCode:
		ch = a.CodeCh
	case domain.AuthPhaseWaitPassword:
		ch = a.PasswordCh
	default:
		return false
	}
	select {
	case ch <- value:
		return true
	default:
		return false
	}
}

// RestartLogin abandons the code or password prompt in progress so the
// flow asks for a phone number again.
func (a *TUIAuth) RestartLogin() {
	select {
	case a.restart <- struct{}{}:
	default:
	}
}

func (a *TUIAuth) wait(ctx context.Context, phase domain.AuthPhase, ch chan string) (string, error) {
	if a.onPhase != nil {
		a.onPhase(phase)
	}
	select {
	case v := <-ch:
		return v, nil
	case <-a.restart:
		if phase == domain.AuthPhaseWaitPhoneNumber {
			return a.wait(ctx, phase, ch)
		}
		return "", ErrLoginRestarted
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (a *TUIAuth) Phone(ctx context.Context) (string, error) {
	return a.wait(ctx, domain.AuthPhaseWaitPhoneNumber, a.PhoneCh)
}

func (a *TUIAuth) Code(ctx context.Context, sentCode *tg.AuthSentCode) (string, error) {
	return a.wait(ctx, domain.AuthPhaseWaitCode, a.CodeCh)
}

func (a *TUIAuth) Password(ctx context.Context) (string, error) {
	return a.wait(ctx, domain.AuthPhaseWaitPassword, a.PasswordCh)
}

func (a *TUIAuth) AcceptTermsOfService(ctx context.Context, tos tg.HelpTermsOfService) error {
	return &auth.SignUpRequired{TermsOfService: tos}
}

func (a *TUIAuth) SignUp(ctx context.Context) (auth.UserInfo, error) {
	return auth.UserInfo{}, errors.New("sign up not supported")
}
