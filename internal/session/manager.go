package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vindennt/quick-little-shop/internal/backend"
	"github.com/vindennt/quick-little-shop/internal/logger"
	"github.com/vindennt/quick-little-shop/internal/models"
)

// Manager owns every browser's session. It is the only writer of the token
// store and the only publisher on the hub.
type Manager struct {
	auth   backend.Auth
	tokens TokenStore
	hub    *Hub
	log    logger.Logger
	now    func() time.Time
}

func NewManager(auth backend.Auth, tokens TokenStore, hub *Hub, log logger.Logger) *Manager {
	return &Manager{
		auth:   auth,
		tokens: tokens,
		hub:    hub,
		log:    log,
		now:    time.Now,
	}
}

func (m *Manager) Hub() *Hub {
	return m.hub
}

// Current returns the browser's session or nil when there is none. An
// expired access token is refreshed first; a failed refresh signs the
// browser out.
func (m *Manager) Current(ctx context.Context, sid string) (*models.Session, error) {
	s, n, err := m.load(ctx, sid)
	if err != nil {
		return nil, err
	}
	if n != nil {
		m.hub.Publish(sid, *n)
	}
	return s, nil
}

// load reads the stored session, refreshing it when expired. The returned
// notification describes a refresh outcome and is not yet published.
func (m *Manager) load(ctx context.Context, sid string) (*models.Session, *Notification, error) {
	if sid == "" {
		return nil, nil, nil
	}

	s, err := m.tokens.Get(ctx, sid)
	if errors.Is(err, ErrNoSession) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	if !s.Expired(m.now()) {
		return s, nil, nil
	}

	refreshed, err := m.auth.Refresh(ctx, s.RefreshToken)
	if err != nil {
		m.log.WarnContext(ctx, "session refresh failed", "sid", sid, "error", err)
		if delErr := m.tokens.Delete(ctx, sid); delErr != nil {
			return nil, nil, delErr
		}
		return nil, &Notification{Event: EventSignedOut}, nil
	}

	if err := m.tokens.Save(ctx, sid, refreshed); err != nil {
		return nil, nil, err
	}
	return refreshed, &Notification{Event: EventTokenRefreshed, Session: refreshed}, nil
}

// Watch subscribes to sid and returns the session at subscribe time. The
// first notification on the subscription is INITIAL_SESSION; a refresh done
// while reading it reaches the other subscribers only.
func (m *Manager) Watch(ctx context.Context, sid string) (*Subscription, *models.Session, error) {
	sub := m.hub.Subscribe(sid)

	s, n, err := m.load(ctx, sid)
	if err != nil {
		sub.Close()
		return nil, nil, err
	}
	m.hub.deliver(sub, Notification{Event: EventInitialSession, Session: s})
	if n != nil {
		m.hub.publishExcept(sid, *n, sub)
	}
	return sub, s, nil
}

func (m *Manager) SignIn(ctx context.Context, sid string, creds models.Credentials) (*models.Session, error) {
	s, err := m.auth.SignIn(ctx, creds)
	if err != nil {
		return nil, err
	}
	return s, m.establish(ctx, sid, s)
}

func (m *Manager) SignUp(ctx context.Context, sid string, creds models.Credentials) (*models.Session, error) {
	s, err := m.auth.SignUp(ctx, creds)
	if err != nil {
		return nil, err
	}
	return s, m.establish(ctx, sid, s)
}

func (m *Manager) establish(ctx context.Context, sid string, s *models.Session) error {
	if err := m.tokens.Save(ctx, sid, s); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	m.log.InfoContext(ctx, "signed in", "sid", sid, "user_id", s.User.ID)
	m.hub.Publish(sid, Notification{Event: EventSignedIn, Session: s})
	return nil
}

// SignOut revokes the session with the backend and forgets it locally. The
// local session is cleared even when revocation fails.
func (m *Manager) SignOut(ctx context.Context, sid string) error {
	s, err := m.tokens.Get(ctx, sid)
	if errors.Is(err, ErrNoSession) {
		return nil
	}
	if err != nil {
		return err
	}

	revokeErr := m.auth.SignOut(ctx, s.AccessToken)
	if revokeErr != nil {
		m.log.WarnContext(ctx, "backend sign out failed", "sid", sid, "error", revokeErr)
	}

	if err := m.tokens.Delete(ctx, sid); err != nil {
		return err
	}
	m.hub.Publish(sid, Notification{Event: EventSignedOut})
	return revokeErr
}
