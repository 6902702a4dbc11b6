// Package replay is an update source that plays back a recorded stream of
// JSON updates, one object per line. It lets the shell run without a
// network connection.
package replay

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/danhigham/tgshell/internal/domain"
	"github.com/danhigham/tgshell/internal/events"
	"github.com/danhigham/tgshell/internal/update"
)

// ErrClosed is returned by commands sent after the session logged out.
var ErrClosed = errors.New("replay source closed")

// tagAppInactive marks a recorded line that stands for another client
// taking over the session.
const tagAppInactive = "appInactive"

const maxLineSize = 1 << 20

// ChatSink receives chat data the source synthesizes in answer to
// commands.
type ChatSink interface {
	OnChatAdded(chat domain.ChatInfo)
	OnNewMessage(msg domain.Message)
}

// Source replays updates read from r.
type Source struct {
	r      io.Reader
	delay  time.Duration
	sink   ChatSink
	logger *zap.Logger
	bus    *events.Bus

	mu     sync.Mutex
	closed bool
	nextID int
}

// NewSource creates a Source that waits delay between updates. sink may
// be nil.
func NewSource(r io.Reader, delay time.Duration, sink ChatSink, logger *zap.Logger) *Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{
		r:      r,
		delay:  delay,
		sink:   sink,
		logger: logger,
		bus:    events.NewBus(),
	}
}

// Subscribe implements core.Source.
func (s *Source) Subscribe(topic events.Topic, h events.Handler) func() {
	return s.bus.Subscribe(topic, h)
}

// Run publishes every decodable line in order. Undecodable lines are
// logged and skipped. Blank lines and lines starting with '#' are ignored.
func (s *Source) Run(ctx context.Context) error {
	sc := bufio.NewScanner(s.r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	line, published := 0, 0
	for sc.Scan() {
		line++
		data := bytes.TrimSpace(sc.Bytes())
		if len(data) == 0 || data[0] == '#' {
			continue
		}

		ev, err := update.Decode(data)
		if err != nil {
			s.logger.Warn("Skipping undecodable update", zap.Int("line", line), zap.Error(err))
			continue
		}

		if published > 0 && s.delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.delay):
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		s.publish(ev)
		published++
	}
	if err := sc.Err(); err != nil {
		return errors.Wrap(err, "read updates")
	}
	s.logger.Info("Replay finished", zap.Int("published", published))
	return nil
}

func (s *Source) publish(ev update.Event) {
	if u, ok := ev.(update.Unknown); ok && u.Type == tagAppInactive {
		s.bus.Publish(events.TopicAppInactive, update.AppInactive{})
		return
	}
	s.bus.Publish(events.TopicUpdate, ev)
}

func (s *Source) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Send implements core.Source. Commands are logged and answered
// synthetically.
func (s *Source) Send(ctx context.Context, cmd update.Command) (update.Response, error) {
	s.logger.Debug("Sending command", zap.ByteString("command", update.Encode(cmd)))
	if s.isClosed() {
		return update.Response{}, ErrClosed
	}

	switch cmd := cmd.(type) {
	case update.CreatePrivateChat:
		if s.sink != nil {
			s.sink.OnChatAdded(domain.ChatInfo{
				ID:      cmd.UserID,
				Title:   "User " + strconv.FormatInt(cmd.UserID, 10),
				Private: true,
			})
		}
		return update.Response{Type: "chat", ID: cmd.UserID}, nil
	case update.LogOut:
		return update.Ok, s.LogOut(ctx)
	default:
		return update.Ok, nil
	}
}

// LogOut implements core.Source.
func (s *Source) LogOut(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.closed = true
	s.mu.Unlock()

	s.bus.Publish(events.TopicUpdate, update.AuthorizationState{Phase: domain.AuthPhaseLoggingOut})
	s.bus.Publish(events.TopicUpdate, update.AuthorizationState{Phase: domain.AuthPhaseClosed})
	return nil
}

// SendMessage echoes text back as an outgoing message.
func (s *Source) SendMessage(ctx context.Context, chatID int64, text string) error {
	if s.isClosed() {
		return ErrClosed
	}
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.mu.Unlock()

	if s.sink != nil {
		s.sink.OnNewMessage(domain.Message{
			ID:        id,
			ChatID:    chatID,
			Text:      text,
			Timestamp: time.Now(),
			Out:       true,
		})
	}
	return nil
}

// GetHistory returns no history; replayed sessions only hold what was
// sent during the run.
func (s *Source) GetHistory(ctx context.Context, chatID int64, limit int, offsetID int) ([]domain.Message, error) {
	return nil, nil
}

func (s *Source) GetDialogs(ctx context.Context) ([]domain.ChatInfo, error) {
	return nil, nil
}

func (s *Source) MarkAsRead(ctx context.Context, chatID int64, maxID int) error {
	return nil
}
