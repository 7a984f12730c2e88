// Package ws is the live channel. Each browser tab holds one WebSocket that
// receives session changes and listing updates and sends filter changes.
package ws

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"golang.org/x/time/rate"

	"github.com/vindennt/quick-little-shop/internal/logger"
	"github.com/vindennt/quick-little-shop/internal/models"
	"github.com/vindennt/quick-little-shop/internal/session"
	"github.com/vindennt/quick-little-shop/internal/telemetry"
	"github.com/vindennt/quick-little-shop/internal/views/marketplace"
)

type Sessions interface {
	Watch(ctx context.Context, sid string) (*session.Subscription, *models.Session, error)
	Current(ctx context.Context, sid string) (*models.Session, error)
}

// BrowserIDs reads the browser id cookie without issuing one.
type BrowserIDs interface {
	Peek(r *http.Request) string
}

type ItemsRenderer interface {
	RenderItems(snap marketplace.Snapshot) (string, error)
}

type Options struct {
	Sessions       Sessions
	Lister         marketplace.Lister
	BrowserIDs     BrowserIDs
	Renderer       ItemsRenderer
	OriginPatterns []string
	Log            logger.Logger
}

type LiveServer struct {
	// Messages beyond the queue drop the connection
	subscriberMessageBuffer int

	// Inbound messages per connection: 1 every 100ms, burst of 8
	readEvery time.Duration
	readBurst int

	writeTimeout time.Duration

	sessions       Sessions
	lister         marketplace.Lister
	browserIDs     BrowserIDs
	renderer       ItemsRenderer
	originPatterns []string
	log            logger.Logger

	subscribersMu sync.Mutex
	subscribers   map[int64]*Subscriber
}

func NewLiveServer(opts Options) *LiveServer {
	return &LiveServer{
		subscriberMessageBuffer: 16,
		readEvery:               100 * time.Millisecond,
		readBurst:               8,
		writeTimeout:            5 * time.Second,
		sessions:                opts.Sessions,
		lister:                  opts.Lister,
		browserIDs:              opts.BrowserIDs,
		renderer:                opts.Renderer,
		originPatterns:          opts.OriginPatterns,
		log:                     opts.Log,
		subscribers:             make(map[int64]*Subscriber),
	}
}

// conn is the per-socket state.
type conn struct {
	sub   *Subscriber
	loads sync.WaitGroup

	mu      sync.Mutex
	market  *marketplace.Marketplace
	closing bool
}

// startLoad registers a listing load. It reports false once drain has begun.
func (c *conn) startLoad() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closing {
		return false
	}
	c.loads.Add(1)
	return true
}

// drain stops new loads and waits for the running ones.
func (c *conn) drain() {
	c.mu.Lock()
	c.closing = true
	c.mu.Unlock()
	c.loads.Wait()
}

// listing returns the socket's marketplace, creating it on first use.
func (c *conn) listing(ls *LiveServer) *marketplace.Marketplace {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.market == nil {
		c.market = marketplace.New(ls.lister, "", ls.log)
		c.market.OnChange(ls.itemsPusher(c.sub))
	}
	return c.market
}

func (ls *LiveServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	err := ls.subscribe(w, r)
	if errors.Is(err, context.Canceled) {
		return
	}
	if websocket.CloseStatus(err) == websocket.StatusNormalClosure || websocket.CloseStatus(err) == websocket.StatusGoingAway {
		return
	}
	if err != nil {
		ls.log.WarnContext(r.Context(), "live connection ended", "error", err)
	}
}

func (ls *LiveServer) addSubscriber(s *Subscriber) {
	ls.subscribersMu.Lock()
	defer ls.subscribersMu.Unlock()
	ls.subscribers[s.ID()] = s
	telemetry.LiveConnections.Inc()
}

func (ls *LiveServer) removeSubscriber(s *Subscriber) {
	ls.subscribersMu.Lock()
	defer ls.subscribersMu.Unlock()
	if _, ok := ls.subscribers[s.ID()]; ok {
		delete(ls.subscribers, s.ID())
		telemetry.LiveConnections.Dec()
	}
}

func (ls *LiveServer) SubscriberCount() int {
	ls.subscribersMu.Lock()
	defer ls.subscribersMu.Unlock()
	return len(ls.subscribers)
}

func writeTimeout(ctx context.Context, timeout time.Duration, c *websocket.Conn, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.Write(ctx, websocket.MessageText, msg)
}

// subscribe upgrades the request and runs the socket until either side
// closes it. Session notifications and listing updates are queued on the
// subscriber and written by a single writer loop.
func (ls *LiveServer) subscribe(w http.ResponseWriter, r *http.Request) error {
	sid := ls.browserIDs.Peek(r)

	var mu sync.Mutex
	var wsConn *websocket.Conn
	var closed bool

	s := NewSubscriber(sid, make(chan []byte, ls.subscriberMessageBuffer), func() {
		mu.Lock()
		defer mu.Unlock()
		closed = true
		if wsConn != nil {
			wsConn.Close(websocket.StatusPolicyViolation, "connection too slow to keep up with messages")
		}
	})

	ls.addSubscriber(s)
	defer ls.removeSubscriber(s)

	accepted, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: ls.originPatterns,
	})
	if err != nil {
		return err
	}

	mu.Lock()
	if closed {
		mu.Unlock()
		return net.ErrClosed
	}
	wsConn = accepted
	mu.Unlock()
	defer wsConn.CloseNow()

	// Pending loads finish after cancel
	c := &conn{sub: s}
	defer c.drain()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	ls.enqueue(s, Welcome{Type: TypeWelcome, ID: s.ID()})

	// Anonymous sockets without a cookie still get listings
	if sid != "" {
		sessionSub, _, err := ls.sessions.Watch(ctx, sid)
		if err != nil {
			return err
		}
		defer sessionSub.Close()
		go func() {
			for n := range sessionSub.C {
				ls.enqueue(s, ls.authStateMessage(n))
			}
		}()
	}

	errc := make(chan error, 1)
	go func() {
		errc <- ls.readLoop(ctx, wsConn, c)
	}()

	for {
		select {
		case msg := <-s.messc:
			if err := writeTimeout(ctx, ls.writeTimeout, wsConn, msg); err != nil {
				return err
			}
		case err := <-errc:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (ls *LiveServer) readLoop(ctx context.Context, wsConn *websocket.Conn, c *conn) error {
	wsConn.SetReadLimit(8192)
	limiter := rate.NewLimiter(rate.Every(ls.readEvery), ls.readBurst)

	for {
		_, data, err := wsConn.Read(ctx)
		if err != nil {
			return err
		}
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		ls.handleClientMessage(ctx, c, data)
	}
}
