// Package live holds the ephemeral class state (stream URL, notification,
// scholarship notice, chat transcript) and fans out change events to every
// open event-stream connection.
package live

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// chatLimit caps the transcript; the oldest entries are evicted first.
const chatLimit = 100

// subscriberBuffer is how many undelivered events a subscriber may lag
// behind before further events are dropped for it.
const subscriberBuffer = 16

// Event is one serialized server-sent event.
type Event struct {
	Name string
	Data []byte
}

// ChatMessage is one transcript entry.
type ChatMessage struct {
	ID     string    `json:"id"`
	Author string    `json:"author"`
	Text   string    `json:"text"`
	SentAt time.Time `json:"sent_at"`
}

// State is the full snapshot new subscribers receive on connect.
type State struct {
	LiveURL      string        `json:"live_url"`
	Notification string        `json:"notification"`
	Scholarship  string        `json:"scholarship"`
	Chat         []ChatMessage `json:"chat"`
}

// Subscriber receives events on C until Close is called. C is never closed;
// a broadcast may still hold a reference to it after detach, so consumers
// select on Done instead.
type Subscriber struct {
	C    chan Event
	done chan struct{}
	hub  *Hub
	once sync.Once
}

// Done is closed once the subscriber has been detached.
func (s *Subscriber) Done() <-chan struct{} { return s.done }

// Close detaches the subscriber from the hub.
func (s *Subscriber) Close() {
	s.once.Do(func() { s.hub.unsubscribe(s) })
}

// Hub is the in-process fan-out point. All methods are safe for concurrent
// use; broadcasts snapshot the subscriber set under the lock and never block
// on a slow reader.
type Hub struct {
	mu     sync.Mutex
	logger *zap.Logger

	subs         map[*Subscriber]struct{}
	liveURL      string
	notification string
	scholarship  string
	chat         []ChatMessage
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger: logger,
		subs:   make(map[*Subscriber]struct{}),
	}
}

// Subscribe attaches a new connection and returns it together with the
// current state snapshot, so the caller can emit the snapshot before any
// incremental event.
func (h *Hub) Subscribe() (*Subscriber, State) {
	sub := &Subscriber{
		C:    make(chan Event, subscriberBuffer),
		done: make(chan struct{}),
		hub:  h,
	}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	snapshot := h.stateLocked()
	count := len(h.subs)
	h.mu.Unlock()

	h.logger.Debug("live subscriber attached", zap.Int("subscribers", count))
	return sub, snapshot
}

// Subscribers reports how many connections are currently attached.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// State returns the current snapshot.
func (h *Hub) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stateLocked()
}

// SetLive replaces the live-stream URL and broadcasts it.
func (h *Hub) SetLive(url string) {
	h.mu.Lock()
	h.liveURL = url
	subs := h.snapshotSubs()
	h.mu.Unlock()

	h.send(subs, "live", map[string]string{"url": url})
}

// SetNotification replaces the notification text and broadcasts it.
func (h *Hub) SetNotification(text string) {
	h.mu.Lock()
	h.notification = text
	subs := h.snapshotSubs()
	h.mu.Unlock()

	h.send(subs, "notification", map[string]string{"text": text})
}

// SetScholarship replaces the scholarship notice and broadcasts it.
func (h *Hub) SetScholarship(text string) {
	h.mu.Lock()
	h.scholarship = text
	subs := h.snapshotSubs()
	h.mu.Unlock()

	h.send(subs, "scholarship", map[string]string{"text": text})
}

// PostChat appends a message to the transcript, evicting the oldest entry
// past the cap, and broadcasts it.
func (h *Hub) PostChat(author, text string) ChatMessage {
	msg := ChatMessage{
		ID:     uuid.NewString(),
		Author: author,
		Text:   text,
		SentAt: time.Now(),
	}

	h.mu.Lock()
	h.chat = append(h.chat, msg)
	if len(h.chat) > chatLimit {
		h.chat = h.chat[len(h.chat)-chatLimit:]
	}
	subs := h.snapshotSubs()
	h.mu.Unlock()

	h.send(subs, "chat", msg)
	return msg
}

// SnapshotEvent serializes a state snapshot as the event new connections get
// first.
func SnapshotEvent(state State) Event {
	data, _ := json.Marshal(state)
	return Event{Name: "snapshot", Data: data}
}

func (h *Hub) stateLocked() State {
	chat := make([]ChatMessage, len(h.chat))
	copy(chat, h.chat)
	return State{
		LiveURL:      h.liveURL,
		Notification: h.notification,
		Scholarship:  h.scholarship,
		Chat:         chat,
	}
}

func (h *Hub) snapshotSubs() []*Subscriber {
	subs := make([]*Subscriber, 0, len(h.subs))
	for sub := range h.subs {
		subs = append(subs, sub)
	}
	return subs
}

// send serializes once and delivers to every subscriber captured before the
// state change was committed. A subscriber whose buffer is full misses the
// event instead of stalling everyone else.
func (h *Hub) send(subs []*Subscriber, name string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("event serialization failed", zap.String("event", name), zap.Error(err))
		return
	}

	event := Event{Name: name, Data: data}
	for _, sub := range subs {
		select {
		case sub.C <- event:
		default:
			h.logger.Warn("slow live subscriber dropped event", zap.String("event", name))
		}
	}
}

func (h *Hub) unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	delete(h.subs, sub)
	h.mu.Unlock()
	close(sub.done)
}
