// Package backendtest provides an in-memory Backend for view and handler tests.
package backendtest

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vindennt/quick-little-shop/internal/models"
)

// ErrInvalidCredentials is what the default SignIn returns for a wrong password.
var ErrInvalidCredentials = errors.New("invalid login credentials")

// Fake records every call. Set a *Func field to override a method; otherwise
// the default behaves like a small, always-available backend.
type Fake struct {
	ListFunc    func(ctx context.Context, token string, category models.Category) ([]models.Item, error)
	CreateFunc  func(ctx context.Context, token string, item models.NewItem) (*models.Item, error)
	CountFunc   func(ctx context.Context) (int64, error)
	SignInFunc  func(ctx context.Context, creds models.Credentials) (*models.Session, error)
	SignUpFunc  func(ctx context.Context, creds models.Credentials) (*models.Session, error)
	SignOutFunc func(ctx context.Context, token string) error
	RefreshFunc func(ctx context.Context, refreshToken string) (*models.Session, error)
	UserFunc    func(ctx context.Context, token string) (*models.User, error)

	mu        sync.Mutex
	items     []models.Item
	inserts   []models.NewItem
	listCalls []models.Category
	signOuts  []string
	refreshes []string
}

func New() *Fake {
	return &Fake{}
}

// Seed replaces the stored listings the default ListFunc serves.
func (f *Fake) Seed(items ...models.Item) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append([]models.Item(nil), items...)
}

func (f *Fake) Inserts() []models.NewItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.NewItem(nil), f.inserts...)
}

func (f *Fake) ListCalls() []models.Category {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Category(nil), f.listCalls...)
}

func (f *Fake) SignOuts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.signOuts...)
}

func (f *Fake) Refreshes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.refreshes...)
}

func (f *Fake) ListActiveItems(ctx context.Context, token string, category models.Category) ([]models.Item, error) {
	f.mu.Lock()
	f.listCalls = append(f.listCalls, category)
	fn := f.ListFunc
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx, token, category)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Item, 0, len(f.items))
	// Stored newest first
	for _, it := range f.items {
		if it.Status != models.ItemStatusActive {
			continue
		}
		if category != models.CategoryAll && it.Category != category {
			continue
		}
		out = append(out, it)
	}
	return out, nil
}

func (f *Fake) CreateItem(ctx context.Context, token string, item models.NewItem) (*models.Item, error) {
	f.mu.Lock()
	f.inserts = append(f.inserts, item)
	fn := f.CreateFunc
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx, token, item)
	}

	created := models.Item{
		ID:          uuid.New(),
		UserID:      item.UserID,
		Title:       item.Title,
		Description: item.Description,
		Price:       item.Price,
		Category:    item.Category,
		Condition:   item.Condition,
		Location:    item.Location,
		Status:      item.Status,
		CreatedAt:   time.Now(),
	}
	f.mu.Lock()
	f.items = append([]models.Item{created}, f.items...)
	f.mu.Unlock()
	return &created, nil
}

func (f *Fake) CountItems(ctx context.Context) (int64, error) {
	if f.CountFunc != nil {
		return f.CountFunc(ctx)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.items)), nil
}

func (f *Fake) SignIn(ctx context.Context, creds models.Credentials) (*models.Session, error) {
	if f.SignInFunc != nil {
		return f.SignInFunc(ctx, creds)
	}
	if creds.Password != "password" {
		return nil, ErrInvalidCredentials
	}
	return NewSession(creds.Email, ""), nil
}

func (f *Fake) SignUp(ctx context.Context, creds models.Credentials) (*models.Session, error) {
	if f.SignUpFunc != nil {
		return f.SignUpFunc(ctx, creds)
	}
	return NewSession(creds.Email, creds.FullName), nil
}

func (f *Fake) SignOut(ctx context.Context, token string) error {
	f.mu.Lock()
	f.signOuts = append(f.signOuts, token)
	f.mu.Unlock()

	if f.SignOutFunc != nil {
		return f.SignOutFunc(ctx, token)
	}
	return nil
}

func (f *Fake) Refresh(ctx context.Context, refreshToken string) (*models.Session, error) {
	f.mu.Lock()
	f.refreshes = append(f.refreshes, refreshToken)
	f.mu.Unlock()

	if f.RefreshFunc != nil {
		return f.RefreshFunc(ctx, refreshToken)
	}
	s := NewSession("refreshed@example.com", "")
	s.RefreshToken = refreshToken
	return s, nil
}

func (f *Fake) GetUser(ctx context.Context, token string) (*models.User, error) {
	if f.UserFunc != nil {
		return f.UserFunc(ctx, token)
	}
	if token == "" {
		return nil, models.ErrNotAuthenticated
	}
	return &models.User{ID: uuid.NewSHA1(uuid.NameSpaceOID, []byte(token)), Email: "user@example.com"}, nil
}

// NewSession builds a session valid for an hour.
func NewSession(email, fullName string) *models.Session {
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte(email))
	return &models.Session{
		AccessToken:  "access-" + id.String(),
		RefreshToken: "refresh-" + id.String(),
		TokenType:    "bearer",
		ExpiresAt:    time.Now().Add(time.Hour),
		User: models.User{
			ID:       id,
			Email:    email,
			FullName: fullName,
		},
	}
}
