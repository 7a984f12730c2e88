// Package web is the server-rendered front end: pages, auth form posts, the
// live socket endpoint and the operational endpoints.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vindennt/quick-little-shop/internal/api"
	"github.com/vindennt/quick-little-shop/internal/backend"
	"github.com/vindennt/quick-little-shop/internal/config"
	"github.com/vindennt/quick-little-shop/internal/httpx"
	"github.com/vindennt/quick-little-shop/internal/logger"
	"github.com/vindennt/quick-little-shop/internal/session"
	"github.com/vindennt/quick-little-shop/internal/telemetry"
	"github.com/vindennt/quick-little-shop/internal/views/sell"
)

type Deps struct {
	Config   *config.Config
	Backend  backend.Backend
	Sessions *session.Manager
	Cookies  *session.Cookies
	Renderer *Renderer
	Live     http.Handler
	InFlight *sell.InFlight
	Health   httpx.HealthChecks
	Log      logger.Logger
}

type Server struct {
	cfg      *config.Config
	backend  backend.Backend
	sessions *session.Manager
	cookies  *session.Cookies
	renderer *Renderer
	live     http.Handler
	inFlight *sell.InFlight
	health   httpx.HealthChecks
	log      logger.Logger
}

func NewServer(d Deps) *Server {
	if d.InFlight == nil {
		d.InFlight = sell.NewInFlight()
	}
	return &Server{
		cfg:      d.Config,
		backend:  d.Backend,
		sessions: d.Sessions,
		cookies:  d.Cookies,
		renderer: d.Renderer,
		live:     d.Live,
		inFlight: d.InFlight,
		health:   d.Health,
		log:      d.Log,
	}
}

// Routes builds the full router.
func (s *Server) Routes() http.Handler {
	r := httpx.NewRouter(
		httpx.ServerConfig{
			IsDevelopment:      s.cfg.Environment != config.EnvProduction,
			CORSAllowedOrigins: s.cfg.CORSAllowedOrigins,
		},
		logger.Middleware(s.log),
		logger.Recovery(s.log),
		telemetry.SentryMiddleware(),
	)

	r.Get("/health/ping", httpx.PingHandler)
	r.Get("/health", httpx.HealthHandler(s.health))
	r.Handle("/metrics", telemetry.MetricsHandler())
	r.Handle("/static/*", http.StripPrefix("/static/", staticFiles()))

	if s.live != nil {
		r.Get("/ws/live", s.live.ServeHTTP)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))
		api.RegisterRoutes(r, s.backend, s.log)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(30*time.Second), s.browser)

		r.Get("/", s.homePage)
		r.Get("/marketplace", s.marketplacePage)
		r.Get("/sell", s.sellPage)
		r.Post("/sell", s.sellSubmit)

		r.Post("/auth/signin", s.authSubmit)
		r.Post("/auth/signup", s.authSubmit)
		r.Post("/auth/signout", s.signOut)
	})

	return r
}

type browserKey struct{}

// browser makes sure every page request carries a browser id.
func (s *Server) browser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid, err := s.cookies.BrowserID(w, r)
		if err != nil {
			s.log.ErrorContext(r.Context(), "browser cookie", "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), browserKey{}, sid)))
	})
}

func browserID(r *http.Request) string {
	sid, _ := r.Context().Value(browserKey{}).(string)
	return sid
}
