package ui

import (
	"testing"

	tea "charm.land/bubbletea/v2"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "esc":
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	}
	r := []rune(s)[0]
	return tea.KeyPressMsg{Code: r, Text: s}
}

func TestPromptModel_Confirm(t *testing.T) {
	tests := []struct {
		key  string
		want bool
		done bool
	}{
		{key: "y", want: true, done: true},
		{key: "n", want: false, done: true},
		{key: "esc", want: false, done: true},
		{key: "enter", done: false},
		{key: "x", done: false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			reply := make(chan bool, 1)
			m := PromptModel{}.Push(promptMsg{text: "Log out?", confirm: true, reply: reply})

			m, _ = m.Update(key(tt.key))

			if m.IsVisible() == tt.done {
				t.Fatalf("IsVisible() = %v after %q, want %v", m.IsVisible(), tt.key, !tt.done)
			}
			if !tt.done {
				return
			}
			if got := <-reply; got != tt.want {
				t.Errorf("answer = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPromptModel_AlertQueue(t *testing.T) {
	first := make(chan bool, 1)
	second := make(chan bool, 1)
	m := PromptModel{}.
		Push(promptMsg{text: "one", reply: first}).
		Push(promptMsg{text: "two", reply: second})

	m, _ = m.Update(key("y"))
	if len(m.queue) != 2 {
		t.Fatal("alert answered by y")
	}

	m, _ = m.Update(key("enter"))
	if len(m.queue) != 1 || m.queue[0].text != "two" {
		t.Fatalf("queue = %+v, want only the second alert", m.queue)
	}
	<-first

	m = m.Abandon()
	if m.IsVisible() {
		t.Error("prompt visible after Abandon")
	}
	if _, ok := <-second; ok {
		t.Error("abandoned prompt got an answer")
	}
}

func TestModel_NextFocusSkipsHiddenDetails(t *testing.T) {
	m := Model{focus: focusMessages}
	if got := m.nextFocus(1); got != focusInput {
		t.Errorf("nextFocus(1) = %v, want focusInput", got)
	}

	m.view.ChatDetails = true
	if got := m.nextFocus(1); got != focusDetails {
		t.Errorf("nextFocus(1) with details = %v, want focusDetails", got)
	}

	m.focus = focusChatList
	m.view.ChatDetails = false
	if got := m.nextFocus(-1); got != focusInput {
		t.Errorf("nextFocus(-1) = %v, want focusInput", got)
	}
}
