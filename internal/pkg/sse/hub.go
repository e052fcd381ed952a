package sse

import (
	"log/slog"
	"sync"
)

// Event represents an SSE event to be sent to subscribers
type Event struct {
	UserID string
	Event  string
	Data   interface{}
}

type subscriber struct {
	userID string
	role   string
}

// Hub manages SSE subscribers and event broadcasting
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
	clients     map[chan Event]subscriber
	closed      bool
}

// NewHub creates a new SSE Hub instance
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan Event]struct{}),
		clients:     make(map[chan Event]subscriber),
	}
}

// Subscribe registers a connection for a user and returns its event channel
// and a cleanup function that must be called on disconnect.
func (h *Hub) Subscribe(userID string, role string) (chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, 10)
	if h.closed {
		close(ch)
		return ch, func() {}
	}

	if h.subscribers[userID] == nil {
		h.subscribers[userID] = make(map[chan Event]struct{})
	}
	h.subscribers[userID][ch] = struct{}{}
	h.clients[ch] = subscriber{userID: userID, role: role}

	slog.Info("Realtime client connected", "user_id", userID, "role", role, "connections", len(h.clients))

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if _, ok := h.clients[ch]; !ok {
				return
			}
			delete(h.subscribers[userID], ch)
			delete(h.clients, ch)
			close(ch)
			if len(h.subscribers[userID]) == 0 {
				delete(h.subscribers, userID)
			}
			slog.Info("Realtime client disconnected", "user_id", userID, "connections", len(h.clients))
		})
	}

	return ch, cleanup
}

// Publish sends an event to all connections of a specific user
func (h *Hub) Publish(userID string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	event.UserID = userID
	for ch := range h.subscribers[userID] {
		send(ch, event)
	}
}

// PublishToRoles sends an event to every connection whose role is in roles.
func (h *Hub) PublishToRoles(event Event, roles ...string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch, sub := range h.clients {
		for _, role := range roles {
			if sub.role == role {
				e := event
				e.UserID = sub.userID
				send(ch, e)
				break
			}
		}
	}
}

// Broadcast sends an event to every connection.
func (h *Hub) Broadcast(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch, sub := range h.clients {
		e := event
		e.UserID = sub.userID
		send(ch, e)
	}
}

// Close closes every subscriber channel so open streams end after draining
// their buffered events. Later subscriptions receive an already closed channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.clients {
		close(ch)
	}
	h.subscribers = make(map[string]map[chan Event]struct{})
	h.clients = make(map[chan Event]subscriber)
	slog.Info("Realtime hub closed")
}

// SubscriberCount returns the number of active subscribers for a user
func (h *Hub) SubscriberCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.subscribers[userID])
}

// TotalSubscribers returns the total number of active connections
func (h *Hub) TotalSubscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}

func send(ch chan Event, event Event) {
	select {
	case ch <- event:
	default:
		// Skip if channel is full (non-blocking to prevent deadlock)
	}
}
