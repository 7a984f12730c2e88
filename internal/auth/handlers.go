package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/vindennt/quick-little-shop/internal/httpx"
	"github.com/vindennt/quick-little-shop/internal/logger"
	"github.com/vindennt/quick-little-shop/internal/models"
	"github.com/vindennt/quick-little-shop/internal/validator"
)

// Authenticator is the part of the backend the JSON auth endpoints use.
type Authenticator interface {
	SignIn(ctx context.Context, creds models.Credentials) (*models.Session, error)
	SignUp(ctx context.Context, creds models.Credentials) (*models.Session, error)
	GetUser(ctx context.Context, token string) (*models.User, error)
}

// Handler serves the bearer-token auth API.
type Handler struct {
	auth Authenticator
	log  logger.Logger
}

func NewHandler(auth Authenticator, log logger.Logger) *Handler {
	return &Handler{auth: auth, log: log}
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	req, ok := validator.ValidateRequest[models.Credentials](w, r)
	if !ok {
		return
	}

	session, err := h.auth.SignUp(r.Context(), *req)
	if errors.Is(err, ErrConfirmationRequired) {
		httpx.JSON(w, http.StatusAccepted, models.AuthResponse{Message: err.Error()})
		return
	}
	if err != nil {
		h.log.InfoContext(r.Context(), "signup failed", "email", req.Email, "error", err)
		httpx.JSONError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	httpx.JSON(w, http.StatusOK, models.AuthResponse{
		Message: "Signup & signin successful",
		Session: session,
	})
}

func (h *Handler) Signin(w http.ResponseWriter, r *http.Request) {
	req, ok := validator.ValidateRequest[models.Credentials](w, r)
	if !ok {
		return
	}

	session, err := h.auth.SignIn(r.Context(), *req)
	if err != nil {
		h.log.InfoContext(r.Context(), "signin failed", "email", req.Email, "error", err)
		httpx.JSONError(w, http.StatusUnauthorized, "Signin failed: "+err.Error())
		return
	}

	httpx.JSON(w, http.StatusOK, models.AuthResponse{
		Message: "Signin successful",
		Session: session,
	})
}
