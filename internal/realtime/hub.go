package realtime

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Event types pushed to a user's live connections.
const (
	EventPomodoroStarted   = "pomodoro_started"
	EventPomodoroCompleted = "pomodoro_completed"
	EventPomodoroStopped   = "pomodoro_stopped"
	EventSettingsUpdated   = "settings_updated"
)

type envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Conn is one registered websocket connection. The hub owns the outbox; the
// transport drains it and must stop when it closes.
type Conn struct {
	ID     string
	UserID string
	send   chan []byte
}

// Outbox returns the channel of marshaled frames for this connection. It is
// closed by the hub on Unregister or when the consumer falls too far behind.
func (c *Conn) Outbox() <-chan []byte { return c.send }

// Hub is a process-local registry of connections grouped into per-user rooms.
// It is created once at startup and torn down per connection on disconnect;
// there is no package-level state.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]*Conn
	users map[string]map[string]*Conn
	log   *logrus.Logger
}

func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		conns: make(map[string]*Conn),
		users: make(map[string]map[string]*Conn),
		log:   log,
	}
}

const outboxSize = 16

func (h *Hub) Register(userID string) *Conn {
	c := &Conn{
		ID:     uuid.NewString(),
		UserID: userID,
		send:   make(chan []byte, outboxSize),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.conns[c.ID] = c
	room := h.users[userID]
	if room == nil {
		room = make(map[string]*Conn)
		h.users[userID] = room
	}
	room[c.ID] = c
	return c
}

func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.drop(connID)
}

// drop requires h.mu held.
func (h *Hub) drop(connID string) {
	c, ok := h.conns[connID]
	if !ok {
		return
	}
	delete(h.conns, connID)
	if room, ok := h.users[c.UserID]; ok {
		delete(room, connID)
		if len(room) == 0 {
			delete(h.users, c.UserID)
		}
	}
	close(c.send)
}

// NotifyUser delivers an event to every live connection of the user. It is
// fire-and-forget: marshal or delivery problems are logged and swallowed so
// a broadcast can never fail the state transition that triggered it.
func (h *Hub) NotifyUser(userID, event string, payload any) {
	h.broadcast(userID, event, payload, "")
}

// NotifyOthers is NotifyUser minus the originating connection, used when the
// trigger itself arrived over a websocket.
func (h *Hub) NotifyOthers(userID, exceptConnID, event string, payload any) {
	h.broadcast(userID, event, payload, exceptConnID)
}

func (h *Hub) broadcast(userID, event string, payload any, except string) {
	frame, err := json.Marshal(envelope{Event: event, Data: payload})
	if err != nil {
		h.log.WithError(err).WithField("event", event).Warn("realtime marshal failed")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for id, c := range h.users[userID] {
		if id == except {
			continue
		}
		select {
		case c.send <- frame:
		default:
			// Consumer is not draining; disconnect it rather than block
			// or queue unboundedly.
			h.log.WithFields(logrus.Fields{
				"conn_id": id,
				"user_id": userID,
			}).Warn("realtime consumer too slow, dropping connection")
			h.drop(id)
		}
	}
}

// ConnCount reports live connections for the user.
func (h *Hub) ConnCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}
