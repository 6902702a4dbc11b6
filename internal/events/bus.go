// Package events is the publish/subscribe surface an update source exposes
// to its consumers.
package events

import (
	"sync"

	"github.com/danhigham/tgshell/internal/update"
)

// Topic names a stream of events.
type Topic int

const (
	// TopicUpdate carries every tagged update from the backend.
	TopicUpdate Topic = iota
	// TopicAppInactive carries update.AppInactive when another client
	// took over the session.
	TopicAppInactive
)

func (t Topic) String() string {
	switch t {
	case TopicUpdate:
		return "update"
	case TopicAppInactive:
		return "appInactive"
	default:
		return "unknown"
	}
}

// Handler receives published events.
type Handler func(update.Event)

// Bus fans events out to subscribers in subscription order.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[Topic][]subscription
}

type subscription struct {
	id uint64
	h  Handler
}

func NewBus() *Bus {
	return &Bus{subs: make(map[Topic][]subscription)}
}

// Subscribe registers h for topic. The returned release func removes the
// registration; calling it more than once is a no-op.
func (b *Bus) Subscribe(topic Topic, h Handler) (release func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs[topic] = append(b.subs[topic], subscription{id: id, h: h})

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(topic, id) })
	}
}

func (b *Bus) remove(topic Topic, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[topic]
	for i, s := range subs {
		if s.id == id {
			b.subs[topic] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Publish delivers ev to every current subscriber of topic on the
// calling goroutine.
func (b *Bus) Publish(topic Topic, ev update.Event) {
	b.mu.RLock()
	subs := b.subs[topic]
	b.mu.RUnlock()

	for _, s := range subs {
		s.h(ev)
	}
}

// Len reports the number of subscribers of topic.
func (b *Bus) Len(topic Topic) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}
