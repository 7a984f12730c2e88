// Package backend is the only boundary view code crosses to reach the hosted
// Supabase project. Swap Supabase for backendtest.Fake in tests.
package backend

import (
	"context"

	"github.com/vindennt/quick-little-shop/internal/auth"
	"github.com/vindennt/quick-little-shop/internal/config"
	"github.com/vindennt/quick-little-shop/internal/db"
	"github.com/vindennt/quick-little-shop/internal/models"
)

// Items is the data half of the backend.
type Items interface {
	ListActiveItems(ctx context.Context, token string, category models.Category) ([]models.Item, error)
	CreateItem(ctx context.Context, token string, item models.NewItem) (*models.Item, error)
	CountItems(ctx context.Context) (int64, error)
}

// Auth is the session half of the backend.
type Auth interface {
	SignIn(ctx context.Context, creds models.Credentials) (*models.Session, error)
	SignUp(ctx context.Context, creds models.Credentials) (*models.Session, error)
	SignOut(ctx context.Context, token string) error
	Refresh(ctx context.Context, refreshToken string) (*models.Session, error)
	GetUser(ctx context.Context, token string) (*models.User, error)
}

type Backend interface {
	Items
	Auth
}

// Supabase implements Backend with GoTrue and PostgREST.
type Supabase struct {
	auth *auth.Client
	db   *db.Client
}

// NewSupabase builds the process-wide backend handle. It never fails: a bad
// URL or key surfaces as an error from every call.
func NewSupabase(cfg *config.Config) *Supabase {
	return &Supabase{
		auth: auth.NewClient(cfg),
		db:   db.NewClient(cfg),
	}
}

func (s *Supabase) ListActiveItems(ctx context.Context, token string, category models.Category) ([]models.Item, error) {
	return s.db.ListActiveItems(ctx, token, category)
}

func (s *Supabase) CreateItem(ctx context.Context, token string, item models.NewItem) (*models.Item, error) {
	return s.db.CreateItem(ctx, token, item)
}

func (s *Supabase) CountItems(ctx context.Context) (int64, error) {
	return s.db.CountItems(ctx)
}

func (s *Supabase) SignIn(ctx context.Context, creds models.Credentials) (*models.Session, error) {
	return s.auth.SignIn(ctx, creds)
}

func (s *Supabase) SignUp(ctx context.Context, creds models.Credentials) (*models.Session, error) {
	return s.auth.SignUp(ctx, creds)
}

func (s *Supabase) SignOut(ctx context.Context, token string) error {
	return s.auth.SignOut(ctx, token)
}

func (s *Supabase) Refresh(ctx context.Context, refreshToken string) (*models.Session, error) {
	return s.auth.Refresh(ctx, refreshToken)
}

func (s *Supabase) GetUser(ctx context.Context, token string) (*models.User, error) {
	return s.auth.GetUser(ctx, token)
}

// Ping probes the data API; used by the health endpoint.
func (s *Supabase) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
