package navbar

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vindennt/quick-little-shop/internal/backend/backendtest"
	"github.com/vindennt/quick-little-shop/internal/logger"
	"github.com/vindennt/quick-little-shop/internal/models"
	"github.com/vindennt/quick-little-shop/internal/session"
)

const sid = "browser-1"

func newManager(t *testing.T) (*session.Manager, *session.MemoryStore) {
	t.Helper()
	store := session.NewMemoryStore()
	return session.NewManager(backendtest.New(), store, session.NewHub(), logger.Discard()), store
}

func mount(t *testing.T, sessions Sessions) *Navbar {
	t.Helper()
	n := New(sessions, sid, logger.Discard())
	require.NoError(t, n.Mount(context.Background()))
	t.Cleanup(n.Unmount)
	return n
}

func eventually(t *testing.T, n *Navbar, cond func(Snapshot) bool) {
	t.Helper()
	require.Eventually(t, func() bool { return cond(n.Snapshot()) }, time.Second, 5*time.Millisecond)
}

func TestNavbar_UnknownUntilMounted(t *testing.T) {
	m, _ := newManager(t)
	n := New(m, sid, logger.Discard())
	assert.Equal(t, StateUnknown, n.Snapshot().State)

	require.NoError(t, n.Mount(context.Background()))
	defer n.Unmount()
	assert.Equal(t, StateAnonymous, n.Snapshot().State)
	assert.Nil(t, n.Snapshot().User)
}

func TestNavbar_MountWithExistingSession(t *testing.T) {
	m, store := newManager(t)
	require.NoError(t, store.Save(context.Background(), sid, backendtest.NewSession("ada@example.com", "")))

	n := mount(t, m)
	snap := n.Snapshot()
	assert.Equal(t, StateAuthenticated, snap.State)
	assert.Equal(t, "ada@example.com", snap.Greeting, "falls back to email")
}

func TestNavbar_SignInClosesDialogOnNotification(t *testing.T) {
	m, _ := newManager(t)
	n := mount(t, m)

	n.OpenDialog(ModeLogin)
	require.True(t, n.Snapshot().DialogOpen)

	err := n.Submit(context.Background(), models.Credentials{Email: "ada@example.com", Password: "password"})
	require.NoError(t, err)

	eventually(t, n, func(s Snapshot) bool {
		return s.State == StateAuthenticated && !s.DialogOpen
	})
	assert.Equal(t, "ada@example.com", n.Snapshot().User.Email)
}

func TestNavbar_SignInErrorStaysInDialog(t *testing.T) {
	m, _ := newManager(t)
	n := mount(t, m)
	n.OpenDialog(ModeLogin)

	err := n.Submit(context.Background(), models.Credentials{Email: "ada@example.com", Password: "nope"})
	require.Error(t, err)

	snap := n.Snapshot()
	assert.True(t, snap.DialogOpen)
	assert.Equal(t, "invalid login credentials", snap.DialogError)
	assert.Equal(t, StateAnonymous, snap.State)
	assert.False(t, snap.Submitting)

	// Reopening clears the old error
	n.OpenDialog(ModeSignup)
	assert.Empty(t, n.Snapshot().DialogError)
	assert.Equal(t, ModeSignup, n.Snapshot().Mode)
}

func TestNavbar_SignupUsesFullName(t *testing.T) {
	m, _ := newManager(t)
	n := mount(t, m)
	n.OpenDialog(ModeSignup)

	require.NoError(t, n.Submit(context.Background(), models.Credentials{
		Email: "ada@example.com", Password: "secret", FullName: "Ada Lovelace",
	}))

	eventually(t, n, func(s Snapshot) bool { return s.Greeting == "Ada Lovelace" })
}

func TestNavbar_SignOutWaitsForNotification(t *testing.T) {
	m, store := newManager(t)
	require.NoError(t, store.Save(context.Background(), sid, backendtest.NewSession("ada@example.com", "Ada")))

	n := mount(t, m)
	require.Equal(t, StateAuthenticated, n.Snapshot().State)

	require.NoError(t, n.SignOut(context.Background()))
	eventually(t, n, func(s Snapshot) bool { return s.State == StateAnonymous })
}

// quietSessions never publishes, so local state can only come from Mount.
type quietSessions struct {
	*session.Manager
	signOuts int
}

func (q *quietSessions) SignOut(ctx context.Context, sid string) error {
	q.signOuts++
	return nil
}

func TestNavbar_SignOutDoesNotTouchLocalState(t *testing.T) {
	m, store := newManager(t)
	require.NoError(t, store.Save(context.Background(), sid, backendtest.NewSession("ada@example.com", "Ada")))
	q := &quietSessions{Manager: m}

	n := mount(t, q)
	require.NoError(t, n.SignOut(context.Background()))
	assert.Equal(t, 1, q.signOuts)
	assert.Equal(t, StateAuthenticated, n.Snapshot().State)
}

func TestNavbar_FollowsChangesFromOtherViews(t *testing.T) {
	m, _ := newManager(t)
	a := mount(t, m)
	b := mount(t, m)

	done := make(chan struct{}, 4)
	b.OnChange(func(s Snapshot) {
		if s.State == StateAuthenticated {
			done <- struct{}{}
		}
	})

	_, err := m.SignIn(context.Background(), sid, models.Credentials{Email: "ada@example.com", Password: "password"})
	require.NoError(t, err)

	eventually(t, a, func(s Snapshot) bool { return s.State == StateAuthenticated })
	eventually(t, b, func(s Snapshot) bool { return s.State == StateAuthenticated })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("OnChange not called")
	}
}

func TestParseMode(t *testing.T) {
	assert.Equal(t, ModeSignup, ParseMode("signup"))
	assert.Equal(t, ModeLogin, ParseMode("login"))
	assert.Equal(t, ModeLogin, ParseMode(""))
}
