package backend

import (
	"context"
	"time"

	"github.com/vindennt/quick-little-shop/internal/models"
	"github.com/vindennt/quick-little-shop/internal/telemetry"
)

// Instrumented records call counts and latency for every backend operation.
type Instrumented struct {
	next Backend
}

func WithMetrics(next Backend) *Instrumented {
	return &Instrumented{next: next}
}

func observe(op string, start time.Time, err error) {
	telemetry.BackendLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
	result := "ok"
	if err != nil {
		result = "error"
	}
	telemetry.BackendRequests.WithLabelValues(op, result).Inc()
}

func (i *Instrumented) ListActiveItems(ctx context.Context, token string, category models.Category) ([]models.Item, error) {
	start := time.Now()
	items, err := i.next.ListActiveItems(ctx, token, category)
	observe("list_active_items", start, err)
	return items, err
}

func (i *Instrumented) CreateItem(ctx context.Context, token string, item models.NewItem) (*models.Item, error) {
	start := time.Now()
	created, err := i.next.CreateItem(ctx, token, item)
	observe("create_item", start, err)
	return created, err
}

func (i *Instrumented) CountItems(ctx context.Context) (int64, error) {
	start := time.Now()
	n, err := i.next.CountItems(ctx)
	observe("count_items", start, err)
	return n, err
}

func (i *Instrumented) SignIn(ctx context.Context, creds models.Credentials) (*models.Session, error) {
	start := time.Now()
	s, err := i.next.SignIn(ctx, creds)
	observe("sign_in", start, err)
	return s, err
}

func (i *Instrumented) SignUp(ctx context.Context, creds models.Credentials) (*models.Session, error) {
	start := time.Now()
	s, err := i.next.SignUp(ctx, creds)
	observe("sign_up", start, err)
	return s, err
}

func (i *Instrumented) SignOut(ctx context.Context, token string) error {
	start := time.Now()
	err := i.next.SignOut(ctx, token)
	observe("sign_out", start, err)
	return err
}

func (i *Instrumented) Refresh(ctx context.Context, refreshToken string) (*models.Session, error) {
	start := time.Now()
	s, err := i.next.Refresh(ctx, refreshToken)
	observe("refresh", start, err)
	return s, err
}

func (i *Instrumented) GetUser(ctx context.Context, token string) (*models.User, error) {
	start := time.Now()
	u, err := i.next.GetUser(ctx, token)
	observe("get_user", start, err)
	return u, err
}

// Ping checks the wrapped backend's data API through CountItems.
func (i *Instrumented) Ping(ctx context.Context) error {
	_, err := i.CountItems(ctx)
	return err
}
