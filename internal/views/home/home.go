// Package home is the landing page: a welcome for signed-in users, a call to
// action for everyone else, and a backend connectivity probe.
package home

import (
	"context"
	"strconv"
	"sync"

	"github.com/vindennt/quick-little-shop/internal/logger"
	"github.com/vindennt/quick-little-shop/internal/models"
	"github.com/vindennt/quick-little-shop/internal/session"
)

type Branch string

const (
	BranchLoading      Branch = "loading"
	BranchWelcome      Branch = "welcome"
	BranchCallToAction Branch = "call-to-action"
)

type ProbeStatus string

const (
	ProbeTesting   ProbeStatus = "Testing"
	ProbeConnected ProbeStatus = "Connected"
	ProbeFailed    ProbeStatus = "Failed"
)

type Watcher interface {
	Watch(ctx context.Context, sid string) (*session.Subscription, *models.Session, error)
}

type Counter interface {
	CountItems(ctx context.Context) (int64, error)
}

type Snapshot struct {
	Branch     Branch
	User       *models.User
	Probe      ProbeStatus
	ItemCount  int64
	ProbeError string
}

// Label renders the probe line, e.g. "Connected (3 items)".
func (s Snapshot) Label() string {
	switch s.Probe {
	case ProbeConnected:
		if s.ItemCount == 1 {
			return "Connected (1 item)"
		}
		return "Connected (" + strconv.FormatInt(s.ItemCount, 10) + " items)"
	case ProbeFailed:
		return "Failed: " + s.ProbeError
	default:
		return "Testing..."
	}
}

type Home struct {
	sessions Watcher
	counter  Counter
	sid      string
	log      logger.Logger

	mu         sync.Mutex
	branch     Branch
	user       *models.User
	probe      ProbeStatus
	count      int64
	probeErr   string
	onChange   func(Snapshot)
	sub        *session.Subscription
	listenDone chan struct{}
}

func New(sessions Watcher, counter Counter, sid string, log logger.Logger) *Home {
	return &Home{
		sessions: sessions,
		counter:  counter,
		sid:      sid,
		log:      log,
		branch:   BranchLoading,
		probe:    ProbeTesting,
	}
}

func (h *Home) OnChange(fn func(Snapshot)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onChange = fn
}

// Mount picks the branch from the current session and follows changes.
func (h *Home) Mount(ctx context.Context) error {
	sub, current, err := h.sessions.Watch(ctx, h.sid)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.applyLocked(current)
	h.sub = sub
	h.listenDone = make(chan struct{})
	h.mu.Unlock()

	go h.listen(sub, h.listenDone)
	return nil
}

func (h *Home) Unmount() {
	h.mu.Lock()
	sub, done := h.sub, h.listenDone
	h.sub = nil
	h.mu.Unlock()

	if sub == nil {
		return
	}
	sub.Close()
	<-done
}

func (h *Home) listen(sub *session.Subscription, done chan struct{}) {
	defer close(done)
	for note := range sub.C {
		h.mu.Lock()
		h.applyLocked(note.Session)
		h.mu.Unlock()
		h.notify()
	}
}

func (h *Home) applyLocked(s *models.Session) {
	if s == nil {
		h.branch = BranchCallToAction
		h.user = nil
		return
	}
	u := s.User
	h.branch = BranchWelcome
	h.user = &u
}

// Probe counts the rows in items to show whether the backend is reachable.
func (h *Home) Probe(ctx context.Context) {
	h.mu.Lock()
	h.probe = ProbeTesting
	h.mu.Unlock()

	n, err := h.counter.CountItems(ctx)

	h.mu.Lock()
	if err != nil {
		h.probe = ProbeFailed
		h.probeErr = err.Error()
		h.log.WarnContext(ctx, "backend probe failed", "error", err)
	} else {
		h.probe = ProbeConnected
		h.count = n
		h.probeErr = ""
	}
	h.mu.Unlock()
	h.notify()
}

func (h *Home) notify() {
	h.mu.Lock()
	fn := h.onChange
	snap := h.snapshotLocked()
	h.mu.Unlock()
	if fn != nil {
		fn(snap)
	}
}

func (h *Home) Snapshot() Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snapshotLocked()
}

func (h *Home) snapshotLocked() Snapshot {
	snap := Snapshot{
		Branch:     h.branch,
		Probe:      h.probe,
		ItemCount:  h.count,
		ProbeError: h.probeErr,
	}
	if h.user != nil {
		u := *h.user
		snap.User = &u
	}
	return snap
}
