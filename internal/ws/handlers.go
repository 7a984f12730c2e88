package ws

import (
	"context"
	"encoding/json"

	"github.com/vindennt/quick-little-shop/internal/models"
	"github.com/vindennt/quick-little-shop/internal/session"
	"github.com/vindennt/quick-little-shop/internal/views/marketplace"
)

// enqueue hands msg to the writer. A full queue drops the connection.
func (ls *LiveServer) enqueue(s *Subscriber, v any) {
	msg, err := json.Marshal(v)
	if err != nil {
		ls.log.Error("marshal live message", "error", err)
		return
	}
	select {
	case s.messc <- msg:
	default:
		ls.log.Warn("live subscriber too slow, closing", "subscriber", s.ID())
		go s.closeSlow()
	}
}

func (ls *LiveServer) authStateMessage(n session.Notification) AuthStateChange {
	msg := AuthStateChange{
		Type:          TypeAuthStateChange,
		Event:         n.Event,
		Authenticated: n.Authenticated(),
	}
	if n.Session != nil {
		msg.Greeting = n.Session.User.DisplayName()
	}
	return msg
}

// itemsPusher renders every settled listing change onto the socket.
func (ls *LiveServer) itemsPusher(s *Subscriber) func(marketplace.Snapshot) {
	return func(snap marketplace.Snapshot) {
		if snap.Loading {
			return
		}
		html, err := ls.renderer.RenderItems(snap)
		if err != nil {
			ls.log.Error("render items fragment", "error", err)
			return
		}
		ls.enqueue(s, Items{
			Type:     TypeItems,
			Category: string(snap.Category),
			HTML:     html,
			Count:    len(snap.Cards),
		})
	}
}

// handleClientMessage applies one inbound message. Listing loads run in
// their own goroutine so a slow backend never blocks the reader; the
// listing keeps only the newest load's result.
func (ls *LiveServer) handleClientMessage(ctx context.Context, c *conn, data []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		ls.enqueue(c.sub, ErrorMessage{Type: TypeError, Message: "invalid message format"})
		return
	}

	switch msg.Type {
	case TypeSetCategory:
		category, err := models.ParseCategoryFilter(msg.Category)
		if err != nil {
			ls.enqueue(c.sub, ErrorMessage{Type: TypeError, Message: err.Error()})
			return
		}

		listing := c.listing(ls)
		token := ""
		if current, err := ls.sessions.Current(ctx, c.sub.sid); err == nil && current != nil {
			token = current.AccessToken
		}
		listing.SetToken(token)

		if !c.startLoad() {
			return
		}
		go func() {
			defer c.loads.Done()
			listing.LoadItems(ctx, category)
		}()
	default:
		ls.enqueue(c.sub, ErrorMessage{Type: TypeError, Message: "unknown message type " + msg.Type})
	}
}
