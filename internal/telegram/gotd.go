package telegram

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/telegram/message"
	"github.com/gotd/td/telegram/query/dialogs"
	"github.com/gotd/td/telegram/updates"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"

	"github.com/danhigham/tgshell/internal/domain"
	"github.com/danhigham/tgshell/internal/events"
	"github.com/danhigham/tgshell/internal/update"
)

var (
	// ErrNotConnected is returned by calls made before authorization completed.
	ErrNotConnected = errors.New("telegram client not connected")
	// ErrUnsupportedCommand is returned for commands gotd cannot serve.
	ErrUnsupportedCommand = errors.New("unsupported command")
)

// errAuthKeyDuplicated is what Telegram answers when the same session key
// is in use elsewhere.
const errAuthKeyDuplicated = "AUTH_KEY_DUPLICATED"

// GotdClient is the update source backed by gotd/td. It publishes
// authorization phases, service notifications, fatal errors and
// inactivity on its bus, and feeds chat data to its EventHandler.
type GotdClient struct {
	apiID      int
	apiHash    string
	sessionDir string
	handler    EventHandler
	authFlow   *TUIAuth
	logger     *zap.Logger
	bus        *events.Bus

	client *telegram.Client
	gaps   *updates.Manager

	peerCache    map[int64]tg.InputPeerClass
	nameCache    map[int64]string
	accessHashes map[int64]int64
	mu           sync.Mutex

	raw       *tg.Client
	sender    *message.Sender
	self      *tg.User
	loggedOut bool
}

func NewGotdClient(apiID int, apiHash, sessionDir string, handler EventHandler, authFlow *TUIAuth, logger *zap.Logger) *GotdClient {
	c := &GotdClient{
		apiID:        apiID,
		apiHash:      apiHash,
		sessionDir:   sessionDir,
		handler:      handler,
		authFlow:     authFlow,
		logger:       logger,
		bus:          events.NewBus(),
		peerCache:    make(map[int64]tg.InputPeerClass),
		nameCache:    make(map[int64]string),
		accessHashes: make(map[int64]int64),
	}
	authFlow.SetOnPhase(c.publishPhase)
	return c
}

// Subscribe implements core.Source.
func (c *GotdClient) Subscribe(topic events.Topic, h events.Handler) func() {
	return c.bus.Subscribe(topic, h)
}

func (c *GotdClient) publishPhase(phase domain.AuthPhase) {
	c.bus.Publish(events.TopicUpdate, update.AuthorizationState{Phase: phase})
}

func (c *GotdClient) sessionPath() string {
	return filepath.Join(c.sessionDir, "session.json")
}

// Run connects and processes updates until ctx is cancelled. A log out
// starts a fresh login. Errors other than cancellation are published as
// a fatal error, or as inactivity when the session key is used elsewhere.
func (c *GotdClient) Run(ctx context.Context) error {
	for {
		err := c.runOnce(ctx)
		if ctx.Err() != nil {
			c.publishPhase(domain.AuthPhaseClosing)
			c.publishPhase(domain.AuthPhaseClosed)
			return nil
		}
		if c.takeLoggedOut() {
			c.logger.Info("Logged out, starting a new login")
			continue
		}
		if errors.Is(err, ErrLoginRestarted) {
			c.logger.Info("Login restarted with another phone number")
			continue
		}
		if err == nil {
			c.publishPhase(domain.AuthPhaseClosed)
			return nil
		}
		if tgerr.Is(err, errAuthKeyDuplicated) {
			c.logger.Warn("Session is used by another client", zap.Error(err))
			c.bus.Publish(events.TopicAppInactive, update.AppInactive{})
			return err
		}
		c.bus.Publish(events.TopicUpdate, update.FatalError{Error: err.Error()})
		return err
	}
}

func (c *GotdClient) runOnce(ctx context.Context) error {
	c.publishPhase(domain.AuthPhaseWaitTdlibParameters)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	dispatcher := tg.NewUpdateDispatcher()

	dispatcher.OnNewMessage(func(ctx context.Context, e tg.Entities, update *tg.UpdateNewMessage) error {
		msg, ok := update.Message.(*tg.Message)
		if !ok {
			return nil
		}
		c.handler.OnNewMessage(c.convertMessage(msg, e.Users))
		return nil
	})

	dispatcher.OnNewChannelMessage(func(ctx context.Context, e tg.Entities, update *tg.UpdateNewChannelMessage) error {
		msg, ok := update.Message.(*tg.Message)
		if !ok {
			return nil
		}
		c.handler.OnNewMessage(c.convertMessage(msg, e.Users))
		return nil
	})

	dispatcher.OnUserTyping(func(ctx context.Context, e tg.Entities, update *tg.UpdateUserTyping) error {
		switch update.Action.(type) {
		case *tg.SendMessageTypingAction:
			c.handler.OnUserTyping(update.UserID, c.typingName(e, update.UserID))
		case *tg.SendMessageCancelAction:
			c.handler.OnUserTypingStop(update.UserID)
		}
		return nil
	})

	dispatcher.OnChatUserTyping(func(ctx context.Context, e tg.Entities, update *tg.UpdateChatUserTyping) error {
		switch update.Action.(type) {
		case *tg.SendMessageTypingAction:
			name := "Someone"
			if p, ok := update.FromID.(*tg.PeerUser); ok {
				name = c.typingName(e, p.UserID)
			}
			c.handler.OnUserTyping(update.ChatID, name)
		case *tg.SendMessageCancelAction:
			c.handler.OnUserTypingStop(update.ChatID)
		}
		return nil
	})

	dispatcher.OnUserStatus(func(ctx context.Context, e tg.Entities, update *tg.UpdateUserStatus) error {
		_, online := update.Status.(*tg.UserStatusOnline)
		c.handler.OnUserStatus(update.UserID, online)
		return nil
	})

	dispatcher.OnServiceNotification(func(ctx context.Context, e tg.Entities, u *tg.UpdateServiceNotification) error {
		c.bus.Publish(events.TopicUpdate, serviceNotification(u))
		return nil
	})

	c.gaps = updates.New(updates.Config{
		Handler: dispatcher,
		Logger:  c.logger.Named("gaps"),
	})

	c.client = telegram.NewClient(c.apiID, c.apiHash, telegram.Options{
		Logger:         c.logger,
		UpdateHandler:  c.gaps,
		SessionStorage: &session.FileStorage{Path: c.sessionPath()},
	})

	go func() {
		<-runCtx.Done()
		c.setConnected(nil, nil)
	}()

	return c.client.Run(runCtx, func(ctx context.Context) error {
		flow := auth.NewFlow(c.authFlow, auth.SendCodeOptions{})
		if err := c.client.Auth().IfNecessary(ctx, flow); err != nil {
			return errors.Wrap(err, "auth")
		}

		self, err := c.client.Self(ctx)
		if err != nil {
			return errors.Wrap(err, "get self")
		}
		c.setConnected(c.client.API(), self)
		c.publishPhase(domain.AuthPhaseReady)

		chatInfos, err := c.GetDialogs(ctx)
		if err != nil {
			c.logger.Warn("Failed to load initial dialogs", zap.Error(err))
		} else {
			c.handler.OnChatListUpdate(chatInfos)
		}

		go func() {
			// Stop this connection once the session is logged out.
			for c.connected() {
				select {
				case <-ctx.Done():
					return
				case <-time.After(time.Second):
				}
			}
			cancel()
		}()

		return c.gaps.Run(ctx, c.api(), self.ID, updates.AuthOptions{})
	})
}

func (c *GotdClient) setConnected(api *tg.Client, self *tg.User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.raw = api
	c.self = self
	if api != nil {
		c.sender = message.NewSender(api)
	} else {
		c.sender = nil
	}
}

func (c *GotdClient) connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.raw != nil
}

// api returns the raw API client, or nil before authorization.
func (c *GotdClient) api() *tg.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.raw
}

func (c *GotdClient) takeLoggedOut() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.loggedOut
	c.loggedOut = false
	return out
}

// Send implements core.Source.
func (c *GotdClient) Send(ctx context.Context, cmd update.Command) (update.Response, error) {
	c.logger.Debug("Sending command", zap.ByteString("command", update.Encode(cmd)))

	api := c.api()
	if api == nil {
		return update.Response{}, ErrNotConnected
	}

	switch cmd := cmd.(type) {
	case update.SetOption:
		v, ok := cmd.Value.(update.OptionBoolean)
		if cmd.Name != update.OptionOnline || !ok {
			return update.Response{}, errors.Wrapf(ErrUnsupportedCommand, "option %q", cmd.Name)
		}
		if _, err := api.AccountUpdateStatus(ctx, !v.Value); err != nil {
			return update.Response{}, errors.Wrap(err, "update status")
		}
		return update.Ok, nil
	case update.CreatePrivateChat:
		return c.createPrivateChat(ctx, api, cmd)
	case update.LogOut:
		return update.Ok, c.LogOut(ctx)
	default:
		return update.Response{}, errors.Wrap(ErrUnsupportedCommand, cmd.CommandType())
	}
}

// createPrivateChat resolves the one-to-one chat with a user. Private chat
// IDs are user IDs.
func (c *GotdClient) createPrivateChat(ctx context.Context, api *tg.Client, cmd update.CreatePrivateChat) (update.Response, error) {
	if _, ok := c.findPeer(cmd.UserID).(*tg.InputPeerUser); ok {
		return update.Response{Type: "chat", ID: cmd.UserID}, nil
	}
	if !cmd.Force {
		return update.Response{}, errors.Errorf("no private chat with user %d", cmd.UserID)
	}

	users, err := api.UsersGetUsers(ctx, []tg.InputUserClass{
		&tg.InputUser{UserID: cmd.UserID, AccessHash: c.findAccessHash(cmd.UserID)},
	})
	if err != nil {
		return update.Response{}, errors.Wrap(err, "get user")
	}
	for _, uc := range users {
		u, ok := uc.(*tg.User)
		if !ok || u.ID != cmd.UserID {
			continue
		}
		c.cacheUser(u)
		peer := &tg.InputPeerUser{UserID: u.ID, AccessHash: u.AccessHash}
		c.cachePeer(u.ID, peer)
		c.handler.OnChatAdded(domain.ChatInfo{
			ID:      u.ID,
			Title:   formatUserName(u),
			Private: true,
			Peer:    peer,
		})
		return update.Response{Type: "chat", ID: u.ID}, nil
	}
	return update.Response{}, errors.Errorf("user %d not found", cmd.UserID)
}

// LogOut implements core.Source. The session file is removed and the
// current connection stops; Run then starts a new login.
func (c *GotdClient) LogOut(ctx context.Context) error {
	api := c.api()
	if api == nil {
		return ErrNotConnected
	}

	c.publishPhase(domain.AuthPhaseLoggingOut)
	if _, err := api.AuthLogOut(ctx); err != nil {
		return errors.Wrap(err, "log out")
	}
	if err := os.Remove(c.sessionPath()); err != nil && !os.IsNotExist(err) {
		c.logger.Warn("Failed to remove session file", zap.Error(err))
	}

	c.mu.Lock()
	c.loggedOut = true
	c.mu.Unlock()
	c.setConnected(nil, nil)
	c.publishPhase(domain.AuthPhaseClosed)
	return nil
}

// SendMessage sends a text message to the given chat.
func (c *GotdClient) SendMessage(ctx context.Context, chatID int64, text string) error {
	peer := c.findPeer(chatID)
	if peer == nil {
		return errors.Errorf("unknown peer: %d", chatID)
	}
	c.mu.Lock()
	sender := c.sender
	c.mu.Unlock()
	if sender == nil {
		return ErrNotConnected
	}
	_, err := sender.To(peer).Text(ctx, text)
	return err
}

// GetHistory retrieves message history for a chat.
func (c *GotdClient) GetHistory(ctx context.Context, chatID int64, limit int, offsetID int) ([]domain.Message, error) {
	peer := c.findPeer(chatID)
	if peer == nil {
		return nil, errors.Errorf("unknown peer: %d", chatID)
	}
	api := c.api()
	if api == nil {
		return nil, ErrNotConnected
	}

	result, err := api.MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
		Peer:     peer,
		Limit:    limit,
		OffsetID: offsetID,
	})
	if err != nil {
		return nil, errors.Wrap(err, "get history")
	}

	return c.convertHistoryResult(result)
}

// GetDialogs retrieves the list of dialogs (chats).
func (c *GotdClient) GetDialogs(ctx context.Context) ([]domain.ChatInfo, error) {
	api := c.api()
	if api == nil {
		return nil, ErrNotConnected
	}
	iter := dialogs.NewQueryBuilder(api).GetDialogs().BatchSize(100).Iter()

	var result []domain.ChatInfo
	for iter.Next(ctx) {
		elem := iter.Value()

		peerID := peerIDFromInputPeer(elem.Peer)
		if peerID != 0 {
			c.cachePeer(peerID, elem.Peer)
		}

		info := domain.ChatInfo{
			ID:    peerID,
			Title: c.titleFromEntities(elem),
			Peer:  elem.Peer,
		}
		_, info.Private = elem.Peer.(*tg.InputPeerUser)
		if dlg, ok := elem.Dialog.(*tg.Dialog); ok {
			info.UnreadCount = dlg.UnreadCount
		}
		if msg, ok := elem.Last.(*tg.Message); ok {
			info.LastMessage = msg.Message
			info.LastTime = time.Unix(int64(msg.Date), 0)
		}
		result = append(result, info)
	}
	if err := iter.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate dialogs")
	}

	return result, nil
}

// MarkAsRead marks messages in a chat as read up to the given message ID.
func (c *GotdClient) MarkAsRead(ctx context.Context, chatID int64, maxID int) error {
	peer := c.findPeer(chatID)
	if peer == nil {
		return errors.Errorf("unknown peer: %d", chatID)
	}
	api := c.api()
	if api == nil {
		return ErrNotConnected
	}

	var err error
	switch p := peer.(type) {
	case *tg.InputPeerUser, *tg.InputPeerChat:
		_, err = api.MessagesReadHistory(ctx, &tg.MessagesReadHistoryRequest{Peer: p, MaxID: maxID})
	case *tg.InputPeerChannel:
		_, err = api.ChannelsReadHistory(ctx, &tg.ChannelsReadHistoryRequest{
			Channel: &tg.InputChannel{ChannelID: p.ChannelID, AccessHash: p.AccessHash},
			MaxID:   maxID,
		})
	default:
		return errors.Errorf("unsupported peer type for mark as read: %T", peer)
	}
	if err != nil {
		return errors.Wrap(err, "mark as read")
	}
	c.handler.OnMessageRead(chatID, maxID)
	return nil
}

func (c *GotdClient) findPeer(chatID int64) tg.InputPeerClass {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.peerCache[chatID]
}

func (c *GotdClient) cachePeer(chatID int64, peer tg.InputPeerClass) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.peerCache[chatID] = peer
}

// cacheUser remembers a user's display name and access hash.
func (c *GotdClient) cacheUser(u *tg.User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nameCache[u.ID] = formatUserName(u)
	if u.AccessHash != 0 {
		c.accessHashes[u.ID] = u.AccessHash
	}
}

func (c *GotdClient) findUserName(userID int64) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nameCache[userID]
}

func (c *GotdClient) findAccessHash(userID int64) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessHashes[userID]
}

func (c *GotdClient) typingName(e tg.Entities, userID int64) string {
	if name := c.findUserName(userID); name != "" {
		return name
	}
	if u, ok := e.Users[userID]; ok {
		c.cacheUser(u)
		return formatUserName(u)
	}
	return "Someone"
}

// convertMessage converts a tg.Message to a domain.Message.
func (c *GotdClient) convertMessage(msg *tg.Message, users map[int64]*tg.User) domain.Message {
	for _, u := range users {
		c.cacheUser(u)
	}

	var senderID int64
	switch p := msg.FromID.(type) {
	case *tg.PeerUser:
		senderID = p.UserID
	case *tg.PeerChat:
		senderID = p.ChatID
	case *tg.PeerChannel:
		senderID = p.ChannelID
	}

	var chatID int64
	switch p := msg.PeerID.(type) {
	case *tg.PeerUser:
		chatID = p.UserID
		// In DMs FromID is often nil.
		if senderID == 0 && !msg.Out {
			senderID = p.UserID
		}
	case *tg.PeerChat:
		chatID = p.ChatID
	case *tg.PeerChannel:
		chatID = p.ChannelID
	}

	c.mu.Lock()
	self := c.self
	c.mu.Unlock()
	if msg.Out && self != nil {
		senderID = self.ID
		c.cacheUser(self)
	}

	text := msg.Message
	hasMarkdown := len(msg.Entities) > 0
	if hasMarkdown {
		text = formattedText(msg.Message, msg.Entities).Markdown()
	}

	return domain.Message{
		ID:          msg.ID,
		ChatID:      chatID,
		SenderName:  c.findUserName(senderID),
		SenderID:    senderID,
		Text:        text,
		HasMarkdown: hasMarkdown,
		Timestamp:   time.Unix(int64(msg.Date), 0),
		Out:         msg.Out,
	}
}

// convertHistoryResult extracts messages from a MessagesMessagesClass response.
func (c *GotdClient) convertHistoryResult(result tg.MessagesMessagesClass) ([]domain.Message, error) {
	var messages []tg.MessageClass
	var users []tg.UserClass

	switch r := result.(type) {
	case *tg.MessagesMessages:
		messages, users = r.Messages, r.Users
	case *tg.MessagesMessagesSlice:
		messages, users = r.Messages, r.Users
	case *tg.MessagesChannelMessages:
		messages, users = r.Messages, r.Users
	default:
		return nil, errors.Errorf("unexpected messages type: %T", result)
	}

	userMap := usersToMap(users)

	// Oldest first.
	var out []domain.Message
	for i := len(messages) - 1; i >= 0; i-- {
		msg, ok := messages[i].(*tg.Message)
		if !ok {
			continue
		}
		out = append(out, c.convertMessage(msg, userMap))
	}
	return out, nil
}

func (c *GotdClient) titleFromEntities(elem dialogs.Elem) string {
	if elem.Peer == nil {
		return "Unknown"
	}

	entities := elem.Entities

	switch p := elem.Dialog.GetPeer().(type) {
	case *tg.PeerUser:
		if u, ok := entities.User(p.UserID); ok {
			c.cacheUser(u)
			return formatUserName(u)
		}
	case *tg.PeerChat:
		if ch, ok := entities.Chat(p.ChatID); ok {
			return ch.Title
		}
	case *tg.PeerChannel:
		if ch, ok := entities.Channel(p.ChannelID); ok {
			return ch.Title
		}
	}

	return "Unknown"
}

func peerIDFromInputPeer(peer tg.InputPeerClass) int64 {
	switch p := peer.(type) {
	case *tg.InputPeerUser:
		return p.UserID
	case *tg.InputPeerChat:
		return p.ChatID
	case *tg.InputPeerChannel:
		return p.ChannelID
	default:
		return 0
	}
}

func formatUserName(u *tg.User) string {
	if u.FirstName != "" && u.LastName != "" {
		return u.FirstName + " " + u.LastName
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	if u.Username != "" {
		return u.Username
	}
	return "Unknown"
}

func usersToMap(users []tg.UserClass) map[int64]*tg.User {
	m := make(map[int64]*tg.User, len(users))
	for _, u := range users {
		user, ok := u.(*tg.User)
		if !ok {
			continue
		}
		m[user.ID] = user
	}
	return m
}
