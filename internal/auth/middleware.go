package auth

import (
	"context"
	"net/http"

	"github.com/vindennt/quick-little-shop/internal/httpx"
	"github.com/vindennt/quick-little-shop/internal/models"
)

type contextKey string

const (
	userContextKey  contextKey = "user"
	tokenContextKey contextKey = "token"
)

// Middleware rejects requests without a bearer token the backend accepts.
// The user and the token are stored on the request context.
func (h *Handler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := httpx.BearerToken(r)
		if token == "" {
			httpx.JSONError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		// Validate token across Supabase
		user, err := h.auth.GetUser(r.Context(), token)
		if err != nil {
			httpx.JSONError(w, http.StatusUnauthorized, "Unauthorized: "+err.Error())
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), *user, token)))
	})
}

// WithUser returns a context carrying the authenticated user and token.
func WithUser(ctx context.Context, user models.User, token string) context.Context {
	ctx = context.WithValue(ctx, userContextKey, user)
	return context.WithValue(ctx, tokenContextKey, token)
}

func UserFromContext(ctx context.Context) (models.User, bool) {
	u, ok := ctx.Value(userContextKey).(models.User)
	return u, ok
}

func TokenFromContext(ctx context.Context) string {
	t, _ := ctx.Value(tokenContextKey).(string)
	return t
}
