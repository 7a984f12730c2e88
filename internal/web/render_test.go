package web

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vindennt/quick-little-shop/internal/models"
	"github.com/vindennt/quick-little-shop/internal/views/home"
	"github.com/vindennt/quick-little-shop/internal/views/navbar"
)

func TestHomeWelcomeUsesOwnUser(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	err = r.Page(rec, http.StatusOK, pageHome, PageData{
		Next:      "/",
		LoginURL:  "/?auth=login",
		SignupURL: "/?auth=signup",
		Nav:       navbar.Snapshot{State: navbar.StateAuthenticated, Greeting: "stale@example.com"},
		Home: home.Snapshot{
			Branch: home.BranchWelcome,
			User:   &models.User{Email: "ada@example.com", FullName: "Ada"},
		},
	})
	require.NoError(t, err)
	assert.Contains(t, rec.Body.String(), "Welcome back, Ada!")
}
