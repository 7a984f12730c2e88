// Package marketplace is the listing page: a category filter over the active
// items, newest first.
package marketplace

import (
	"context"
	"errors"
	"sync"

	"github.com/vindennt/quick-little-shop/internal/logger"
	"github.com/vindennt/quick-little-shop/internal/models"
	"github.com/vindennt/quick-little-shop/internal/telemetry"
)

type Lister interface {
	ListActiveItems(ctx context.Context, token string, category models.Category) ([]models.Item, error)
}

// Filter is one entry of the category control.
type Filter struct {
	Value    string
	Label    string
	Selected bool
}

type Snapshot struct {
	Category     models.Category
	Filters      []Filter
	Cards        []Card
	Loading      bool
	EmptyMessage string
}

// Marketplace holds the listing for one page. Every load bumps a generation
// number and only the response to the newest load is applied.
type Marketplace struct {
	lister Lister
	token  string
	log    logger.Logger

	mu         sync.Mutex
	category   models.Category
	items      []models.Item
	loading    bool
	generation uint64
	onChange   func(Snapshot)
}

// New builds a listing read with token; an empty token reads as anon.
func New(lister Lister, token string, log logger.Logger) *Marketplace {
	return &Marketplace{
		lister:  lister,
		token:   token,
		log:     log,
		items:   []models.Item{},
		loading: true,
	}
}

func (m *Marketplace) OnChange(fn func(Snapshot)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = fn
}

// Mount performs the initial load for category.
func (m *Marketplace) Mount(ctx context.Context, category models.Category) {
	m.LoadItems(ctx, category)
}

// SetToken switches the credentials used by later loads.
func (m *Marketplace) SetToken(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
}

// LoadItems fetches the active items for category. Success replaces the
// whole listing. A failure keeps the previous listing and is only logged.
func (m *Marketplace) LoadItems(ctx context.Context, category models.Category) {
	m.mu.Lock()
	m.generation++
	gen := m.generation
	m.category = category
	m.loading = true
	token := m.token
	m.mu.Unlock()
	m.notify()

	items, err := m.lister.ListActiveItems(ctx, token, category)

	m.mu.Lock()
	if gen != m.generation {
		m.mu.Unlock()
		telemetry.StaleListingLoads.Inc()
		m.log.DebugContext(ctx, "dropped stale listing", "category", string(category), "generation", gen)
		return
	}
	m.loading = false
	if err == nil {
		m.items = items
	}
	m.mu.Unlock()

	switch {
	case errors.Is(err, context.Canceled):
		m.log.DebugContext(ctx, "listing load canceled", "category", string(category))
	case err != nil:
		telemetry.ListingLoadErrors.Inc()
		telemetry.CaptureError(ctx, err, map[string]string{"component": "marketplace", "category": category.Label()})
		m.log.ErrorContext(ctx, "error fetching items", "category", string(category), "error", err)
	}
	m.notify()
}

func (m *Marketplace) notify() {
	m.mu.Lock()
	fn := m.onChange
	snap := m.snapshotLocked()
	m.mu.Unlock()
	if fn != nil {
		fn(snap)
	}
}

func (m *Marketplace) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Marketplace) snapshotLocked() Snapshot {
	snap := Snapshot{
		Category: m.category,
		Filters:  Filters(m.category),
		Cards:    make([]Card, 0, len(m.items)),
		Loading:  m.loading,
	}
	for _, it := range m.items {
		snap.Cards = append(snap.Cards, NewCard(it))
	}
	if !m.loading && len(m.items) == 0 {
		snap.EmptyMessage = EmptyMessage(m.category)
	}
	return snap
}

// Filters lists "All" followed by every category, marking selected.
func Filters(selected models.Category) []Filter {
	out := make([]Filter, 0, len(models.Categories)+1)
	out = append(out, Filter{Value: "", Label: models.CategoryAll.Label(), Selected: selected == models.CategoryAll})
	for _, c := range models.Categories {
		out = append(out, Filter{Value: string(c), Label: c.Label(), Selected: c == selected})
	}
	return out
}
