package ws

import (
	"sync/atomic"
)

// Message types on the live channel.
const (
	TypeWelcome         = "WELCOME"
	TypeAuthStateChange = "AUTH_STATE_CHANGE"
	TypeItems           = "ITEMS"
	TypeError           = "ERROR"

	TypeSetCategory = "SET_CATEGORY"
)

type Welcome struct {
	Type string `json:"type"`
	ID   int64  `json:"id"`
}

type AuthStateChange struct {
	Type          string `json:"type"`
	Event         string `json:"event"`
	Authenticated bool   `json:"authenticated"`
	Greeting      string `json:"greeting,omitempty"`
}

// Items carries the rendered listing fragment for the current filter.
type Items struct {
	Type     string `json:"type"`
	Category string `json:"category"`
	HTML     string `json:"html"`
	Count    int    `json:"count"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ClientMessage is anything the browser sends.
type ClientMessage struct {
	Type     string `json:"type"`
	Category string `json:"category"`
}

var nextSubscriberID atomic.Int64

// Subscriber is one live connection: a unique id, its outbound queue and
// the callback that drops it when the queue overflows.
type Subscriber struct {
	id        int64
	sid       string
	messc     chan []byte
	closeSlow func()
}

func NewSubscriber(sid string, messc chan []byte, closeSlow func()) *Subscriber {
	return &Subscriber{
		id:        nextSubscriberID.Add(1),
		sid:       sid,
		messc:     messc,
		closeSlow: closeSlow,
	}
}

func (s *Subscriber) ID() int64 { return s.id }
