package state_test

import (
	"testing"
	"time"

	"github.com/danhigham/tgshell/internal/domain"
	"github.com/danhigham/tgshell/internal/state"
)

func TestStore_OnNewMessage(t *testing.T) {
	s := state.New(nil) // nil drawFunc for testing

	msg := domain.Message{
		ID:         1,
		ChatID:     100,
		SenderName: "Alice",
		Text:       "Hello",
		Timestamp:  time.Now(),
	}

	s.OnNewMessage(msg)

	msgs := s.GetMessages(100)
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	if msgs[0].Text != "Hello" {
		t.Errorf("Text = %q, want %q", msgs[0].Text, "Hello")
	}
}

func TestStore_OnChatListUpdate(t *testing.T) {
	s := state.New(nil)

	chats := []domain.ChatInfo{
		{ID: 1, Title: "Alice", LastTime: time.Now()},
		{ID: 2, Title: "Bob", LastTime: time.Now().Add(-time.Hour)},
	}

	s.OnChatListUpdate(chats)

	got := s.GetChatList()
	if len(got) != 2 {
		t.Fatalf("got %d chats, want 2", len(got))
	}
	if got[0].Title != "Alice" {
		t.Errorf("first chat = %q, want Alice", got[0].Title)
	}
}

func TestStore_ActiveChat(t *testing.T) {
	s := state.New(nil)

	s.SetActiveChat(42)
	if s.GetActiveChat() != 42 {
		t.Errorf("ActiveChat = %d, want 42", s.GetActiveChat())
	}
}

func TestStore_OnNewMessage_UpdatesChatList(t *testing.T) {
	s := state.New(nil)

	chats := []domain.ChatInfo{
		{ID: 1, Title: "Alice", UnreadCount: 0},
		{ID: 2, Title: "Bob", UnreadCount: 0},
	}
	s.OnChatListUpdate(chats)

	msg := domain.Message{
		ID:         1,
		ChatID:     2,
		SenderName: "Bob",
		Text:       "Hey",
		Timestamp:  time.Now(),
	}
	s.OnNewMessage(msg)

	updated := s.GetChatList()
	// Bob's chat should now be first (most recent) and have unread=1
	if updated[0].ID != 2 {
		t.Errorf("first chat ID = %d, want 2 (Bob)", updated[0].ID)
	}
	if updated[0].UnreadCount != 1 {
		t.Errorf("UnreadCount = %d, want 1", updated[0].UnreadCount)
	}
}

func TestStore_MessageLimit(t *testing.T) {
	s := state.New(nil)

	for i := 0; i < 600; i++ {
		s.OnNewMessage(domain.Message{
			ID:     i,
			ChatID: 1,
			Text:   "msg",
		})
	}

	msgs := s.GetMessages(1)
	if len(msgs) > 500 {
		t.Errorf("messages = %d, want <= 500", len(msgs))
	}
}

func TestStore_TypingClearedByMessage(t *testing.T) {
	s := state.New(nil)

	s.OnUserTyping(5, "Carol")
	if got := s.GetTypingUser(5); got != "Carol" {
		t.Fatalf("GetTypingUser = %q, want Carol", got)
	}

	s.OnNewMessage(domain.Message{ID: 1, ChatID: 5, Text: "hi"})
	if got := s.GetTypingUser(5); got != "" {
		t.Errorf("GetTypingUser = %q, want empty", got)
	}
}

func TestStore_PrependMessages(t *testing.T) {
	s := state.New(nil)

	s.SetMessages(1, []domain.Message{{ID: 10, ChatID: 1}, {ID: 11, ChatID: 1}})
	s.PrependMessages(1, []domain.Message{{ID: 8, ChatID: 1}, {ID: 9, ChatID: 1}})

	msgs := s.GetMessages(1)
	if len(msgs) != 4 {
		t.Fatalf("got %d messages, want 4", len(msgs))
	}
	if s.GetOldestMessageID(1) != 8 {
		t.Errorf("GetOldestMessageID = %d, want 8", s.GetOldestMessageID(1))
	}
	if _, ok := s.GetMessage(1, 11); !ok {
		t.Error("GetMessage(1, 11) not found")
	}
}

func TestStore_InactiveIsLatched(t *testing.T) {
	draws := 0
	s := state.New(func() { draws++ })

	s.SetInactive()
	s.SetInactive()

	if !s.Inactive() {
		t.Fatal("Inactive() = false after SetInactive")
	}
	if draws != 1 {
		t.Errorf("draws = %d, want 1", draws)
	}
}

func TestStore_Viewer(t *testing.T) {
	s := state.New(nil)

	if _, ok := s.Viewer(); ok {
		t.Fatal("viewer open on a fresh store")
	}

	s.OpenViewer(domain.MediaViewerContent{ChatID: 1, MessageID: 2})
	s.OpenViewer(domain.MediaViewerContent{ChatID: 1, MessageID: 3})
	got, ok := s.Viewer()
	if !ok || got.MessageID != 3 {
		t.Errorf("Viewer() = %+v, %v; want message 3", got, ok)
	}

	s.CloseViewer()
	if _, ok := s.Viewer(); ok {
		t.Error("viewer still open after CloseViewer")
	}
}

func TestStore_ChatDetails(t *testing.T) {
	s := state.New(nil)

	s.ToggleChatDetails()
	if !s.ChatDetailsVisible() {
		t.Error("ChatDetailsVisible = false after toggle")
	}
	s.SetChatDetailsVisible(false)
	if s.ChatDetailsVisible() {
		t.Error("ChatDetailsVisible = true after hide")
	}
}

func TestStore_InitAndTeardown(t *testing.T) {
	draws := 0
	s := state.New(func() { draws++ })

	s.SetAuthPhase(domain.AuthPhaseReady)
	s.SetActiveChat(3)
	s.SetInactive()

	s.Teardown()
	if s.AuthPhase() != domain.AuthPhaseUnknown {
		t.Errorf("AuthPhase = %v, want unknown", s.AuthPhase())
	}
	if s.GetActiveChat() != 0 || s.Inactive() {
		t.Error("Teardown kept session state")
	}

	before := draws
	s.SetActiveChat(4)
	if draws != before {
		t.Error("draw func still attached after Teardown")
	}
}

func TestStore_OnChatAdded(t *testing.T) {
	s := state.New(nil)
	s.OnChatListUpdate([]domain.ChatInfo{{ID: 1, Title: "Alice", UnreadCount: 3, LastTime: time.Now()}})

	s.OnChatAdded(domain.ChatInfo{ID: 2, Title: "Bob", Private: true})
	if len(s.GetChatList()) != 2 {
		t.Fatalf("got %d chats, want 2", len(s.GetChatList()))
	}
	if c, ok := s.GetChat(2); !ok || !c.Private {
		t.Errorf("GetChat(2) = %+v, %v, want private chat", c, ok)
	}

	s.OnChatAdded(domain.ChatInfo{ID: 1, Title: "Alice Smith", Private: true})
	if len(s.GetChatList()) != 2 {
		t.Fatalf("re-adding a chat duplicated it")
	}
	c, _ := s.GetChat(1)
	if c.Title != "Alice Smith" {
		t.Errorf("Title = %q, want %q", c.Title, "Alice Smith")
	}
	if c.UnreadCount != 3 {
		t.Errorf("UnreadCount = %d, want 3", c.UnreadCount)
	}
}
