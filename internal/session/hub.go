// Package session is the single observable "current session" store. Every
// view reads the session through a Manager and learns about changes from the
// Hub; no view keeps its own copy of the truth.
package session

import (
	"sync"

	"github.com/vindennt/quick-little-shop/internal/models"
	"github.com/vindennt/quick-little-shop/internal/telemetry"
)

// Event names mirror the hosted auth client's state-change events.
const (
	EventInitialSession = "INITIAL_SESSION"
	EventSignedIn       = "SIGNED_IN"
	EventSignedOut      = "SIGNED_OUT"
	EventTokenRefreshed = "TOKEN_REFRESHED"
)

// Notification is one state change for a browser. Session is nil when the
// browser has no session after the change.
type Notification struct {
	Event   string
	Session *models.Session
}

// Authenticated reports whether the browser holds a session after the change.
func (n Notification) Authenticated() bool {
	return n.Session != nil
}

// Subscription receives the notifications for one browser id. C is closed
// when the subscription is canceled or falls too far behind.
type Subscription struct {
	C <-chan Notification

	id    int
	sid   string
	messc chan Notification
	hub   *Hub
}

// Close unsubscribes. Safe to call more than once.
func (s *Subscription) Close() {
	s.hub.remove(s)
}

// Hub fans notifications out to the subscribers of each browser id.
type Hub struct {
	// Notifications beyond the buffer close the subscriber
	buffer int

	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]*Subscription
}

func NewHub() *Hub {
	return &Hub{
		buffer: 16,
		subs:   make(map[string]map[int]*Subscription),
	}
}

// Subscribe registers a listener for sid.
func (h *Hub) Subscribe(sid string) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	messc := make(chan Notification, h.buffer)
	s := &Subscription{
		C:     messc,
		id:    h.nextID,
		sid:   sid,
		messc: messc,
		hub:   h,
	}
	h.nextID++

	if h.subs[sid] == nil {
		h.subs[sid] = make(map[int]*Subscription)
	}
	h.subs[sid][s.id] = s
	return s
}

// Publish delivers n to every subscriber of sid without blocking. A
// subscriber whose buffer is full is closed.
func (h *Hub) Publish(sid string, n Notification) {
	h.publishExcept(sid, n, nil)
}

func (h *Hub) publishExcept(sid string, n Notification, skip *Subscription) {
	telemetry.SessionEvents.WithLabelValues(n.Event).Inc()

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, s := range h.subs[sid] {
		if s == skip {
			continue
		}
		select {
		case s.messc <- n:
		default:
			h.closeLocked(s)
		}
	}
}

// deliver sends n to one subscriber only.
func (h *Hub) deliver(s *Subscription, n Notification) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subs[s.sid][s.id]; !ok {
		return
	}
	select {
	case s.messc <- n:
	default:
		h.closeLocked(s)
	}
}

// SubscriberCount returns the number of live subscriptions for sid.
func (h *Hub) SubscriberCount(sid string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[sid])
}

func (h *Hub) remove(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closeLocked(s)
}

func (h *Hub) closeLocked(s *Subscription) {
	subs, ok := h.subs[s.sid]
	if !ok {
		return
	}
	if _, ok := subs[s.id]; !ok {
		return
	}
	delete(subs, s.id)
	if len(subs) == 0 {
		delete(h.subs, s.sid)
	}
	close(s.messc)
}
