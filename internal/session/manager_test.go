package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vindennt/quick-little-shop/internal/backend/backendtest"
	"github.com/vindennt/quick-little-shop/internal/logger"
	"github.com/vindennt/quick-little-shop/internal/models"
)

func newTestManager(t *testing.T) (*Manager, *backendtest.Fake, *MemoryStore) {
	t.Helper()
	fake := backendtest.New()
	store := NewMemoryStore()
	return NewManager(fake, store, NewHub(), logger.Discard()), fake, store
}

func next(t *testing.T, sub *Subscription) Notification {
	t.Helper()
	select {
	case n, ok := <-sub.C:
		require.True(t, ok, "subscription closed")
		return n
	case <-time.After(time.Second):
		t.Fatal("no notification")
		return Notification{}
	}
}

func TestManager_CurrentWithoutSession(t *testing.T) {
	m, _, _ := newTestManager(t)

	s, err := m.Current(context.Background(), "sid")
	require.NoError(t, err)
	assert.Nil(t, s)

	s, err = m.Current(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestManager_SignInPublishesAndStores(t *testing.T) {
	m, _, store := newTestManager(t)
	ctx := context.Background()

	sub, initial, err := m.Watch(ctx, "sid")
	require.NoError(t, err)
	defer sub.Close()
	assert.Nil(t, initial)

	n := next(t, sub)
	assert.Equal(t, EventInitialSession, n.Event)
	assert.Nil(t, n.Session)

	s, err := m.SignIn(ctx, "sid", models.Credentials{Email: "ada@example.com", Password: "password"})
	require.NoError(t, err)

	n = next(t, sub)
	assert.Equal(t, EventSignedIn, n.Event)
	require.NotNil(t, n.Session)
	assert.Equal(t, "ada@example.com", n.Session.User.Email)

	stored, err := store.Get(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, s.AccessToken, stored.AccessToken)
}

func TestManager_SignInFailureChangesNothing(t *testing.T) {
	m, _, store := newTestManager(t)
	ctx := context.Background()
	sub := m.Hub().Subscribe("sid")
	defer sub.Close()

	_, err := m.SignIn(ctx, "sid", models.Credentials{Email: "ada@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, backendtest.ErrInvalidCredentials)

	_, err = store.Get(ctx, "sid")
	assert.ErrorIs(t, err, ErrNoSession)
	select {
	case n := <-sub.C:
		t.Fatalf("unexpected notification %v", n)
	default:
	}
}

func TestManager_SignOutClearsEvenWhenBackendFails(t *testing.T) {
	m, fake, store := newTestManager(t)
	ctx := context.Background()
	fake.SignOutFunc = func(context.Context, string) error { return errors.New("network down") }

	s, err := m.SignUp(ctx, "sid", models.Credentials{Email: "ada@example.com", Password: "pw", FullName: "Ada"})
	require.NoError(t, err)
	assert.Equal(t, "Ada", s.User.DisplayName())

	sub := m.Hub().Subscribe("sid")
	defer sub.Close()

	err = m.SignOut(ctx, "sid")
	assert.EqualError(t, err, "network down")
	assert.Equal(t, []string{s.AccessToken}, fake.SignOuts())

	n := next(t, sub)
	assert.Equal(t, EventSignedOut, n.Event)
	assert.Nil(t, n.Session)

	_, err = store.Get(ctx, "sid")
	assert.ErrorIs(t, err, ErrNoSession)

	// Signing out an anonymous browser is a no-op
	assert.NoError(t, m.SignOut(ctx, "sid"))
}

func TestManager_CurrentRefreshesExpiredToken(t *testing.T) {
	m, fake, store := newTestManager(t)
	ctx := context.Background()

	old := backendtest.NewSession("ada@example.com", "")
	old.ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, store.Save(ctx, "sid", old))

	sub := m.Hub().Subscribe("sid")
	defer sub.Close()

	s, err := m.Current(ctx, "sid")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, []string{old.RefreshToken}, fake.Refreshes())
	assert.True(t, s.ExpiresAt.After(time.Now()))

	n := next(t, sub)
	assert.Equal(t, EventTokenRefreshed, n.Event)
}

func TestManager_FailedRefreshSignsOut(t *testing.T) {
	m, fake, store := newTestManager(t)
	ctx := context.Background()
	fake.RefreshFunc = func(context.Context, string) (*models.Session, error) {
		return nil, errors.New("refresh token revoked")
	}

	old := backendtest.NewSession("ada@example.com", "")
	old.ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, store.Save(ctx, "sid", old))

	sub := m.Hub().Subscribe("sid")
	defer sub.Close()

	s, err := m.Current(ctx, "sid")
	require.NoError(t, err)
	assert.Nil(t, s)

	n := next(t, sub)
	assert.Equal(t, EventSignedOut, n.Event)
	_, err = store.Get(ctx, "sid")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestManager_WatchExpiredTokenStartsWithInitialSession(t *testing.T) {
	m, _, store := newTestManager(t)
	ctx := context.Background()

	old := backendtest.NewSession("ada@example.com", "")
	old.ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, store.Save(ctx, "sid", old))

	other := m.Hub().Subscribe("sid")
	defer other.Close()

	sub, s, err := m.Watch(ctx, "sid")
	require.NoError(t, err)
	defer sub.Close()
	require.NotNil(t, s)

	n := next(t, sub)
	assert.Equal(t, EventInitialSession, n.Event)
	assert.Equal(t, s, n.Session)
	select {
	case extra := <-sub.C:
		t.Fatalf("unexpected notification %s", extra.Event)
	default:
	}

	assert.Equal(t, EventTokenRefreshed, next(t, other).Event)
}
