// Package navbar is the navigation bar and its sign-in / sign-up dialog.
package navbar

import (
	"context"
	"sync"

	"github.com/vindennt/quick-little-shop/internal/logger"
	"github.com/vindennt/quick-little-shop/internal/models"
	"github.com/vindennt/quick-little-shop/internal/session"
)

type AuthState int

const (
	StateUnknown AuthState = iota
	StateAuthenticated
	StateAnonymous
)

func (s AuthState) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

type DialogMode string

const (
	ModeLogin  DialogMode = "login"
	ModeSignup DialogMode = "signup"
)

// ParseMode maps a query value to a dialog mode. Anything but "signup" is login.
func ParseMode(s string) DialogMode {
	if s == string(ModeSignup) {
		return ModeSignup
	}
	return ModeLogin
}

// Sessions is the slice of session.Manager the navbar needs.
type Sessions interface {
	Watch(ctx context.Context, sid string) (*session.Subscription, *models.Session, error)
	SignIn(ctx context.Context, sid string, creds models.Credentials) (*models.Session, error)
	SignUp(ctx context.Context, sid string, creds models.Credentials) (*models.Session, error)
	SignOut(ctx context.Context, sid string) error
}

// Snapshot is what the template renders.
type Snapshot struct {
	State       AuthState
	User        *models.User
	Greeting    string
	DialogOpen  bool
	Mode        DialogMode
	DialogError string
	Submitting  bool
}

type Navbar struct {
	sessions Sessions
	sid      string
	log      logger.Logger

	mu         sync.Mutex
	state      AuthState
	user       *models.User
	dialogOpen bool
	mode       DialogMode
	dialogErr  string
	submitting bool
	onChange   func(Snapshot)
	sub        *session.Subscription
	listenDone chan struct{}
}

func New(sessions Sessions, sid string, log logger.Logger) *Navbar {
	return &Navbar{
		sessions: sessions,
		sid:      sid,
		log:      log,
		mode:     ModeLogin,
	}
}

// OnChange registers fn to run after every state change. fn runs without the
// navbar lock held.
func (n *Navbar) OnChange(fn func(Snapshot)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.onChange = fn
}

// Mount seeds the state from the current session and starts following
// session notifications until Unmount.
func (n *Navbar) Mount(ctx context.Context) error {
	sub, current, err := n.sessions.Watch(ctx, n.sid)
	if err != nil {
		return err
	}

	n.mu.Lock()
	n.applyLocked(current)
	n.sub = sub
	n.listenDone = make(chan struct{})
	n.mu.Unlock()

	go n.listen(sub, n.listenDone)
	return nil
}

func (n *Navbar) Unmount() {
	n.mu.Lock()
	sub, done := n.sub, n.listenDone
	n.sub = nil
	n.mu.Unlock()

	if sub == nil {
		return
	}
	sub.Close()
	<-done
}

func (n *Navbar) listen(sub *session.Subscription, done chan struct{}) {
	defer close(done)
	for note := range sub.C {
		n.mu.Lock()
		n.applyLocked(note.Session)
		if note.Event == session.EventSignedIn {
			n.dialogOpen = false
			n.dialogErr = ""
		}
		n.mu.Unlock()
		n.notify()
	}
}

// applyLocked overwrites the auth state; the latest notification wins.
func (n *Navbar) applyLocked(s *models.Session) {
	if s == nil {
		n.state = StateAnonymous
		n.user = nil
		return
	}
	u := s.User
	n.state = StateAuthenticated
	n.user = &u
}

func (n *Navbar) notify() {
	n.mu.Lock()
	fn := n.onChange
	snap := n.snapshotLocked()
	n.mu.Unlock()
	if fn != nil {
		fn(snap)
	}
}

func (n *Navbar) Snapshot() Snapshot {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.snapshotLocked()
}

func (n *Navbar) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:       n.state,
		DialogOpen:  n.dialogOpen,
		Mode:        n.mode,
		DialogError: n.dialogErr,
		Submitting:  n.submitting,
	}
	if n.user != nil {
		u := *n.user
		snap.User = &u
		snap.Greeting = u.DisplayName()
	}
	return snap
}

// OpenDialog shows the auth dialog in the given mode with no stale error.
func (n *Navbar) OpenDialog(mode DialogMode) {
	n.mu.Lock()
	n.dialogOpen = true
	n.mode = mode
	n.dialogErr = ""
	n.mu.Unlock()
	n.notify()
}

func (n *Navbar) CloseDialog() {
	n.mu.Lock()
	n.dialogOpen = false
	n.dialogErr = ""
	n.mu.Unlock()
	n.notify()
}

// Submit sends the dialog's credentials in its current mode. The dialog
// closes when the resulting SIGNED_IN notification arrives; a failure stays
// in the dialog and is returned.
func (n *Navbar) Submit(ctx context.Context, creds models.Credentials) error {
	n.mu.Lock()
	mode := n.mode
	n.submitting = true
	n.dialogErr = ""
	n.mu.Unlock()

	var err error
	if mode == ModeSignup {
		_, err = n.sessions.SignUp(ctx, n.sid, creds)
	} else {
		_, err = n.sessions.SignIn(ctx, n.sid, creds)
	}

	n.mu.Lock()
	n.submitting = false
	if err != nil {
		n.dialogOpen = true
		n.dialogErr = err.Error()
	}
	n.mu.Unlock()
	n.notify()

	if err != nil {
		n.log.InfoContext(ctx, "auth dialog submit failed", "mode", string(mode), "error", err)
	}
	return err
}

// SignOut asks the session store to end the session. The bar changes only
// when the SIGNED_OUT notification comes back.
func (n *Navbar) SignOut(ctx context.Context) error {
	return n.sessions.SignOut(ctx, n.sid)
}
