package telegram

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/danhigham/tgshell/internal/domain"
)

func TestTUIAuth_SubmitRoutesByPhase(t *testing.T) {
	a := NewTUIAuth()

	if !a.Submit(domain.AuthPhaseWaitPhoneNumber, "+100") {
		t.Fatal("phone submit rejected")
	}
	if !a.Submit(domain.AuthPhaseWaitCode, "12345") {
		t.Fatal("code submit rejected")
	}
	if !a.Submit(domain.AuthPhaseWaitPassword, "secret") {
		t.Fatal("password submit rejected")
	}
	if a.Submit(domain.AuthPhaseReady, "x") {
		t.Error("submit accepted for a phase without input")
	}
	if a.Submit(domain.AuthPhaseWaitCode, "67890") {
		t.Error("second pending code accepted")
	}

	ctx := context.Background()
	if v, _ := a.Phone(ctx); v != "+100" {
		t.Errorf("Phone() = %q, want %q", v, "+100")
	}
	if v, _ := a.Code(ctx, nil); v != "12345" {
		t.Errorf("Code() = %q, want %q", v, "12345")
	}
	if v, _ := a.Password(ctx); v != "secret" {
		t.Errorf("Password() = %q, want %q", v, "secret")
	}
}

func TestTUIAuth_ReportsPhase(t *testing.T) {
	a := NewTUIAuth()
	var phases []domain.AuthPhase
	a.SetOnPhase(func(p domain.AuthPhase) { phases = append(phases, p) })

	a.Submit(domain.AuthPhaseWaitCode, "1")
	if _, err := a.Code(context.Background(), nil); err != nil {
		t.Fatalf("Code() error: %v", err)
	}
	if len(phases) != 1 || phases[0] != domain.AuthPhaseWaitCode {
		t.Errorf("phases = %v, want [wait code]", phases)
	}
}

func TestTUIAuth_RestartLoginAbortsCode(t *testing.T) {
	a := NewTUIAuth()
	a.RestartLogin()

	_, err := a.Code(context.Background(), nil)
	if !errors.Is(err, ErrLoginRestarted) {
		t.Errorf("Code() error = %v, want ErrLoginRestarted", err)
	}
}

func TestTUIAuth_RestartLoginKeepsPhonePrompt(t *testing.T) {
	a := NewTUIAuth()
	a.RestartLogin()

	done := make(chan string, 1)
	go func() {
		v, _ := a.Phone(context.Background())
		done <- v
	}()

	time.Sleep(10 * time.Millisecond)
	a.Submit(domain.AuthPhaseWaitPhoneNumber, "+200")

	select {
	case v := <-done:
		if v != "+200" {
			t.Errorf("Phone() = %q, want %q", v, "+200")
		}
	case <-time.After(time.Second):
		t.Fatal("Phone() did not return")
	}
}

func TestTUIAuth_WaitHonoursContext(t *testing.T) {
	a := NewTUIAuth()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := a.Password(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Password() error = %v, want context.Canceled", err)
	}
}
