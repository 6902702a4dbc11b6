package ui

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/danhigham/tgshell/internal/domain"
)

func TestSenderLabel(t *testing.T) {
	tests := []struct {
		msg  domain.Message
		want string
	}{
		{domain.Message{SenderName: "Alice", SenderID: 1}, "Alice"},
		{domain.Message{Out: true}, "You"},
		{domain.Message{SenderID: 42}, "User 42"},
		{domain.Message{}, "Unknown"},
	}
	for _, tt := range tests {
		if got := senderLabel(tt.msg); got != tt.want {
			t.Errorf("senderLabel(%+v) = %q, want %q", tt.msg, got, tt.want)
		}
	}
}

func TestMessageViewModel_Latest(t *testing.T) {
	m := NewMessageViewModel()
	if _, ok := m.Latest(); ok {
		t.Fatal("Latest() on empty view reported a message")
	}

	m = m.SetMessages([]domain.Message{
		{ID: 1, SenderID: 7, SenderName: "Bob"},
		{ID: 2, SenderID: 9, Out: true},
	})

	latest, ok := m.Latest()
	if !ok || latest.ID != 2 {
		t.Errorf("Latest() = %+v, %v, want message 2", latest, ok)
	}
	incoming, ok := m.LatestIncoming()
	if !ok || incoming.SenderID != 7 {
		t.Errorf("LatestIncoming() = %+v, %v, want sender 7", incoming, ok)
	}
}

func TestMarkdownSegments(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"single line", "**hi**", []string{"**hi**"}},
		{"line breaks kept", "a\nb\n\nc", []string{"a", "b", "", "c"}},
		{
			name: "fence with blank line",
			text: "see:\n```\nx := 1\n\ny := 2\n```\nend",
			want: []string{"see:", "```\nx := 1\n\ny := 2\n```", "end"},
		},
		{"unclosed fence", "```go\nx", []string{"```go\nx"}},
		{
			name: "table",
			text: "| a | b |\n|---|---|\n| 1 | 2 |\nafter",
			want: []string{"| a | b |\n|---|---|\n| 1 | 2 |", "after"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := markdownSegments(tt.text); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("markdownSegments(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestTranscript_Render(t *testing.T) {
	day1 := time.Date(2024, 3, 1, 9, 30, 0, 0, time.Local)
	day2 := day1.Add(24 * time.Hour)
	out := ansi.Strip(transcript{}.render([]domain.Message{
		{SenderName: "Bob", Text: "hello", Timestamp: day1},
		{Out: true, Text: "line one\nline two", Timestamp: day1.Add(time.Minute)},
		{SenderID: 5, Text: "next day", Timestamp: day2},
	}, "Bob"))

	for _, want := range []string{
		"March 1, 2024", "March 2, 2024",
		"Bob: hello", "You:\nline one\nline two",
		"User 5: next day", "Bob is typing...",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("transcript missing %q:\n%s", want, out)
		}
	}
	if n := strings.Count(out, "─────"); n != 4 {
		t.Errorf("got %d separator rules, want 4 (two days)", n)
	}
}

func TestMessageViewModel_PrependKeepsPagingState(t *testing.T) {
	m := NewMessageViewModel().SetSize(40, 10)
	m = m.SetMessages([]domain.Message{{ID: 3, ChatID: 1, Text: "c"}})
	if !m.hasMore {
		t.Fatal("new chat should allow loading older history")
	}

	m = m.SetLoading(true).PrependMessages([]domain.Message{{ID: 1, ChatID: 1, Text: "a"}, {ID: 2, ChatID: 1, Text: "b"}})
	if m.loading || !m.hasMore || len(m.messages) != 3 || m.messages[0].ID != 1 {
		t.Fatalf("after prepend: loading=%v hasMore=%v messages=%+v", m.loading, m.hasMore, m.messages)
	}

	m = m.SetLoading(true).PrependMessages(nil)
	if m.loading || m.hasMore {
		t.Errorf("empty page should end paging: loading=%v hasMore=%v", m.loading, m.hasMore)
	}

	m = m.SetMessages([]domain.Message{{ID: 9, ChatID: 2, Text: "other"}})
	if !m.hasMore {
		t.Error("switching chats should reset paging")
	}
}
