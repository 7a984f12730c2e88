// Package api is the bearer-token JSON API over the same backend the pages use.
package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/vindennt/quick-little-shop/internal/auth"
	"github.com/vindennt/quick-little-shop/internal/backend"
	"github.com/vindennt/quick-little-shop/internal/logger"
)

// RegisterRoutes mounts the API on r:
//
//	POST /auth/signup
//	POST /auth/signin
//	GET  /items?category=
//	POST /items            (bearer token)
func RegisterRoutes(r chi.Router, b backend.Backend, log logger.Logger) {
	authHandler := auth.NewHandler(b, log)
	itemHandler := NewItemHandler(b, log)

	r.Post("/auth/signup", authHandler.Signup)
	r.Post("/auth/signin", authHandler.Signin)

	r.Get("/items", itemHandler.ListItems)
	r.With(authHandler.Middleware).Post("/items", itemHandler.CreateItem)
}
