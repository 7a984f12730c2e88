// Package sell is the create-listing form. It is only reachable with a
// session; anonymous visitors are sent home.
package sell

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/vindennt/quick-little-shop/internal/logger"
	"github.com/vindennt/quick-little-shop/internal/models"
	"github.com/vindennt/quick-little-shop/internal/validator"
)

const (
	SuccessMessage = "Item posted successfully! 🎉"
	HomePath       = "/"
	ListingPath    = "/marketplace"
)

// DefaultRedirectDelay is how long the success message stays up.
const DefaultRedirectDelay = 2 * time.Second

type Sessions interface {
	Current(ctx context.Context, sid string) (*models.Session, error)
}

type Creator interface {
	CreateItem(ctx context.Context, token string, item models.NewItem) (*models.Item, error)
}

// Form holds the raw field values as typed.
type Form struct {
	Title       string
	Description string
	Price       string
	Category    string
	Condition   string
	Location    string
}

// Result is the outcome of a submit.
type Result struct {
	Form          Form
	Message       string
	Success       bool
	RedirectTo    string
	RedirectAfter time.Duration
}

// InFlight tracks which browsers have a submit pending.
type InFlight struct {
	mu      sync.Mutex
	pending map[string]struct{}
}

func NewInFlight() *InFlight {
	return &InFlight{pending: make(map[string]struct{})}
}

func (f *InFlight) acquire(sid string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, busy := f.pending[sid]; busy {
		return false
	}
	f.pending[sid] = struct{}{}
	return true
}

func (f *InFlight) release(sid string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.pending, sid)
}

// Busy reports whether sid has a submit pending.
func (f *InFlight) Busy(sid string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, busy := f.pending[sid]
	return busy
}

type Deps struct {
	Sessions Sessions
	Items    Creator
	InFlight *InFlight
	Delay    time.Duration
	Log      logger.Logger
}

type Sell struct {
	deps Deps
	sid  string

	mu      sync.Mutex
	session *models.Session
	form    Form
}

func New(deps Deps, sid string) *Sell {
	if deps.InFlight == nil {
		deps.InFlight = NewInFlight()
	}
	if deps.Delay <= 0 {
		deps.Delay = DefaultRedirectDelay
	}
	return &Sell{deps: deps, sid: sid}
}

// Mount loads the session. Without one it returns the path to redirect to
// and the view does nothing else.
func (s *Sell) Mount(ctx context.Context) (redirect string, err error) {
	current, err := s.deps.Sessions.Current(ctx, s.sid)
	if err != nil {
		return "", err
	}
	if current == nil {
		return HomePath, nil
	}

	s.mu.Lock()
	s.session = current
	s.mu.Unlock()
	return "", nil
}

// User is the signed-in owner of new listings, nil before a successful Mount.
func (s *Sell) User() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	u := s.session.User
	return &u
}

func (s *Sell) Form() Form {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

// Submitting reports whether this browser has a submit pending.
func (s *Sell) Submitting() bool {
	return s.deps.InFlight.Busy(s.sid)
}

// Submit inserts a listing owned by the signed-in user. On success the form
// is cleared and the result carries a delayed redirect to the listing page.
// On failure the message is the backend's error text and the form is kept.
func (s *Sell) Submit(ctx context.Context, form Form) (Result, error) {
	s.mu.Lock()
	s.form = form
	sess := s.session
	s.mu.Unlock()

	if sess == nil {
		return Result{Form: form, RedirectTo: HomePath}, models.ErrNotAuthenticated
	}
	if !s.deps.InFlight.acquire(s.sid) {
		return Result{Form: form}, models.ErrSubmitInFlight
	}
	defer s.deps.InFlight.release(s.sid)

	item, err := newItem(sess.User, form)
	if err != nil {
		return Result{Form: form, Message: err.Error()}, err
	}

	if _, err := s.deps.Items.CreateItem(ctx, sess.AccessToken, item); err != nil {
		s.deps.Log.WarnContext(ctx, "create item failed", "user_id", sess.User.ID, "error", err)
		return Result{Form: form, Message: err.Error()}, err
	}

	s.mu.Lock()
	s.form = Form{}
	s.mu.Unlock()

	s.deps.Log.InfoContext(ctx, "item posted", "user_id", sess.User.ID, "category", item.Category)
	return Result{
		Message:       SuccessMessage,
		Success:       true,
		RedirectTo:    ListingPath,
		RedirectAfter: s.deps.Delay,
	}, nil
}

func newItem(owner models.User, form Form) (models.NewItem, error) {
	price, err := strconv.ParseFloat(strings.TrimSpace(form.Price), 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
		return models.NewItem{}, fmt.Errorf("%w: %q is not a number", models.ErrInvalidPrice, form.Price)
	}

	item := models.NewItem{
		UserID:      owner.ID,
		Title:       form.Title,
		Description: form.Description,
		Price:       price,
		Category:    models.Category(form.Category),
		Condition:   models.Condition(form.Condition),
		Location:    form.Location,
		Status:      models.ItemStatusActive,
	}
	if err := validator.Validate(&item); err != nil {
		return models.NewItem{}, errors.New(validator.Summary(err))
	}
	return item, nil
}
