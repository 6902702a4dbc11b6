package state

import (
	"sort"
	"sync"

	"github.com/danhigham/tgshell/internal/domain"
)

const maxMessages = 500

// Store is the observable state holder shared by the dispatcher handlers
// and the presentation layer. Each slice has a single writer:
//
//   - auth phase: core.AuthMachine
//   - inactive flag: core.Dispatcher
//   - active chat: core.ChatBridge
//   - chat details visibility and viewer content: UI intents
//   - chats, messages and typing: the update source's chat data handler
//
// Every mutation calls the draw func so the presentation can re-render.
type Store struct {
	mu          sync.RWMutex
	chatList    []domain.ChatInfo
	messages    map[int64][]domain.Message
	typing      map[int64]string
	activeChat  int64
	authPhase   domain.AuthPhase
	inactive    bool
	chatDetails bool
	viewer      *domain.MediaViewerContent
	drawFunc    func()
}

func New(drawFunc func()) *Store {
	s := &Store{drawFunc: drawFunc}
	s.Init()
	return s
}

// Init resets the store to the state of a fresh session.
func (s *Store) Init() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chatList = nil
	s.messages = make(map[int64][]domain.Message)
	s.typing = make(map[int64]string)
	s.activeChat = 0
	s.authPhase = domain.AuthPhaseUnknown
	s.inactive = false
	s.chatDetails = false
	s.viewer = nil
}

// Teardown drops session data and detaches the draw func.
func (s *Store) Teardown() {
	s.mu.Lock()
	s.drawFunc = nil
	s.mu.Unlock()
	s.Init()
}

func (s *Store) SetDrawFunc(f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drawFunc = f
}

func (s *Store) draw() {
	if s.drawFunc != nil {
		s.drawFunc()
	}
}

func (s *Store) OnNewMessage(msg domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := s.messages[msg.ChatID]
	msgs = append(msgs, msg)
	if len(msgs) > maxMessages {
		msgs = msgs[len(msgs)-maxMessages:]
	}
	s.messages[msg.ChatID] = msgs
	delete(s.typing, msg.ChatID)

	for i, c := range s.chatList {
		if c.ID == msg.ChatID {
			if msg.ChatID != s.activeChat && !msg.Out {
				s.chatList[i].UnreadCount++
			}
			s.chatList[i].LastMessage = msg.Text
			s.chatList[i].LastTime = msg.Timestamp
			break
		}
	}
	s.sortChatList()
	s.draw()
}

func (s *Store) OnChatListUpdate(chats []domain.ChatInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.chatList = chats
	s.sortChatList()
	s.draw()
}

// OnChatAdded inserts a chat, or refreshes its title and peer if it is
// already listed.
func (s *Store) OnChatAdded(chat domain.ChatInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, c := range s.chatList {
		if c.ID == chat.ID {
			s.chatList[i].Title = chat.Title
			s.chatList[i].Peer = chat.Peer
			s.chatList[i].Private = chat.Private
			s.draw()
			return
		}
	}
	s.chatList = append(s.chatList, chat)
	s.sortChatList()
	s.draw()
}

func (s *Store) OnMessageRead(chatID int64, maxID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, c := range s.chatList {
		if c.ID == chatID {
			s.chatList[i].UnreadCount = 0
			break
		}
	}
	s.draw()
}

func (s *Store) OnUserStatus(userID int64, online bool) {}

func (s *Store) OnUserTyping(chatID int64, userName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.typing[chatID] = userName
	s.draw()
}

func (s *Store) OnUserTypingStop(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.typing, chatID)
	s.draw()
}

func (s *Store) GetTypingUser(chatID int64) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.typing[chatID]
}

func (s *Store) sortChatList() {
	sort.SliceStable(s.chatList, func(i, j int) bool {
		return s.chatList[i].LastTime.After(s.chatList[j].LastTime)
	})
}

func (s *Store) GetChatList() []domain.ChatInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ChatInfo, len(s.chatList))
	copy(out, s.chatList)
	return out
}

// GetChat returns the chat with the given ID from the chat list.
func (s *Store) GetChat(chatID int64) (domain.ChatInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.chatList {
		if c.ID == chatID {
			return c, true
		}
	}
	return domain.ChatInfo{}, false
}

func (s *Store) GetMessages(chatID int64) []domain.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := s.messages[chatID]
	out := make([]domain.Message, len(msgs))
	copy(out, msgs)
	return out
}

func (s *Store) SetMessages(chatID int64, msgs []domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[chatID] = msgs
	s.draw()
}

// PrependMessages adds older history in front of the cached messages.
func (s *Store) PrependMessages(chatID int64, msgs []domain.Message) {
	if len(msgs) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	merged := make([]domain.Message, 0, len(msgs)+len(s.messages[chatID]))
	merged = append(merged, msgs...)
	merged = append(merged, s.messages[chatID]...)
	s.messages[chatID] = merged
	s.draw()
}

// GetOldestMessageID returns the ID of the oldest cached message, or 0.
func (s *Store) GetOldestMessageID(chatID int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := s.messages[chatID]
	if len(msgs) == 0 {
		return 0
	}
	return msgs[0].ID
}

// GetMessage looks up a cached message.
func (s *Store) GetMessage(chatID int64, id int) (domain.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.messages[chatID] {
		if m.ID == id {
			return m, true
		}
	}
	return domain.Message{}, false
}

func (s *Store) SetActiveChat(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeChat = chatID
	s.draw()
}

func (s *Store) GetActiveChat() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeChat
}

// SetAuthPhase replaces the authorization phase. Only core.AuthMachine
// calls it.
func (s *Store) SetAuthPhase(phase domain.AuthPhase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authPhase = phase
	s.draw()
}

func (s *Store) AuthPhase() domain.AuthPhase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authPhase
}

// SetInactive latches the inactive flag. It cannot be cleared short of
// Init.
func (s *Store) SetInactive() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inactive {
		return
	}
	s.inactive = true
	s.draw()
}

func (s *Store) Inactive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inactive
}

func (s *Store) SetChatDetailsVisible(visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chatDetails = visible
	s.draw()
}

func (s *Store) ToggleChatDetails() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chatDetails = !s.chatDetails
	s.draw()
}

func (s *Store) ChatDetailsVisible() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chatDetails
}

// OpenViewer shows content in the viewer, replacing whatever it showed.
func (s *Store) OpenViewer(content domain.MediaViewerContent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewer = &content
	s.draw()
}

func (s *Store) CloseViewer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewer = nil
	s.draw()
}

// Viewer returns the viewer content and whether the viewer is open.
func (s *Store) Viewer() (domain.MediaViewerContent, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.viewer == nil {
		return domain.MediaViewerContent{}, false
	}
	return *s.viewer, true
}
