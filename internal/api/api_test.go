package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vindennt/quick-little-shop/internal/backend/backendtest"
	"github.com/vindennt/quick-little-shop/internal/logger"
	"github.com/vindennt/quick-little-shop/internal/models"
)

func newRouter(t *testing.T) (http.Handler, *backendtest.Fake) {
	t.Helper()
	fake := backendtest.New()
	r := chi.NewRouter()
	RegisterRoutes(r, fake, logger.Discard())
	return r, fake
}

func do(h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestSignin(t *testing.T) {
	h, _ := newRouter(t)

	rr := do(h, http.MethodPost, "/auth/signin", "", `{"email":"ada@example.com","password":"password"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp models.AuthResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "Signin successful", resp.Message)
	require.NotNil(t, resp.Session)
	assert.Equal(t, "ada@example.com", resp.Session.User.Email)
	assert.NotEmpty(t, resp.Session.AccessToken)

	rr = do(h, http.MethodPost, "/auth/signin", "", `{"email":"ada@example.com","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid login credentials")
}

func TestSignup_Validation(t *testing.T) {
	h, _ := newRouter(t)

	rr := do(h, http.MethodPost, "/auth/signup", "", `{"email":"not-an-email","password":"pw"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "Must be a valid email address")

	rr = do(h, http.MethodPost, "/auth/signup", "", `{`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(h, http.MethodPost, "/auth/signup", "", `{"email":"ada@example.com","password":"pw","full_name":"Ada"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"full_name":"Ada"`)
}

func TestListItems(t *testing.T) {
	h, fake := newRouter(t)
	fake.Seed(
		models.Item{Title: "Novel", Category: models.CategoryBooks, Status: models.ItemStatusActive},
		models.Item{Title: "Old", Category: models.CategoryBooks, Status: models.ItemStatusInactive},
		models.Item{Title: "Bike", Category: models.CategorySportsOutdoors, Status: models.ItemStatusActive},
	)

	rr := do(h, http.MethodGet, "/items?category=Books", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var items []models.Item
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&items))
	require.Len(t, items, 1)
	assert.Equal(t, "Novel", items[0].Title)

	rr = do(h, http.MethodGet, "/items", "", "")
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&items))
	assert.Len(t, items, 2)

	rr = do(h, http.MethodGet, "/items?category=Weapons", "", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	fake.ListFunc = func(context.Context, string, models.Category) ([]models.Item, error) {
		return nil, errors.New("boom")
	}
	rr = do(h, http.MethodGet, "/items", "", "")
	assert.Equal(t, http.StatusBadGateway, rr.Code)
}

func TestCreateItem_RequiresToken(t *testing.T) {
	h, fake := newRouter(t)

	rr := do(h, http.MethodPost, "/items", "", `{}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Empty(t, fake.Inserts())
}

func TestCreateItem(t *testing.T) {
	h, fake := newRouter(t)
	body := `{"title":"Bike","description":"Red mountain bike","price":150,"category":"Sports & Outdoors","condition":"Good","location":"Downtown"}`

	rr := do(h, http.MethodPost, "/items", "user-jwt", body)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	inserts := fake.Inserts()
	require.Len(t, inserts, 1)
	user, err := fake.GetUser(context.Background(), "user-jwt")
	require.NoError(t, err)
	assert.Equal(t, user.ID, inserts[0].UserID)
	assert.Equal(t, models.ItemStatusActive, inserts[0].Status)

	var created models.Item
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&created))
	assert.Equal(t, "Bike", created.Title)
}

func TestCreateItem_Invalid(t *testing.T) {
	h, fake := newRouter(t)

	rr := do(h, http.MethodPost, "/items", "user-jwt", `{"title":"Bike","description":"x","price":-5,"category":"Spaceships","condition":"Good"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "price")
	assert.Contains(t, rr.Body.String(), "category")
	assert.Empty(t, fake.Inserts())

	fake.CreateFunc = func(context.Context, string, models.NewItem) (*models.Item, error) {
		return nil, errors.New("(23514) new row violates check constraint")
	}
	rr = do(h, http.MethodPost, "/items", "user-jwt", `{"title":"Bike","description":"x","price":5,"category":"Art","condition":"Fair"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "new row violates check constraint")
}
