package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vindennt/quick-little-shop/internal/backend"
	"github.com/vindennt/quick-little-shop/internal/config"
	"github.com/vindennt/quick-little-shop/internal/httpx"
	"github.com/vindennt/quick-little-shop/internal/logger"
	"github.com/vindennt/quick-little-shop/internal/session"
	"github.com/vindennt/quick-little-shop/internal/telemetry"
	"github.com/vindennt/quick-little-shop/internal/views/sell"
	"github.com/vindennt/quick-little-shop/internal/web"
	"github.com/vindennt/quick-little-shop/internal/ws"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}
	if err := config.ValidateForProduction(cfg); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logg := logger.New(cfg.LogLevel).With("service", cfg.ServiceName, "version", cfg.ServiceVersion)
	logg.Info("starting quick-little-shop", "env", cfg.Environment, "port", cfg.Port)

	if err := run(cfg, logg); err != nil {
		logg.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// redisPinger adapts a go-redis client to httpx.HealthChecker.
type redisPinger struct{ client *redis.Client }

func (p redisPinger) Ping(ctx context.Context) error { return p.client.Ping(ctx).Err() }

// run wires the app, serves until SIGINT/SIGTERM or a serve error, then
// shuts down within 10 seconds.
func run(cfg *config.Config, logg logger.Logger) error {
	if err := telemetry.SetupSentry(cfg); err != nil {
		logg.Warn("sentry disabled", "error", err)
	}
	defer telemetry.SentryFlush()

	supabase := backend.NewSupabase(cfg)
	b := backend.WithMetrics(supabase)

	var tokens session.TokenStore = session.NewMemoryStore()
	health := httpx.HealthChecks{Backend: supabase}
	if cfg.RedisURL != "" {
		rdb, err := session.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()
		tokens = session.NewRedisStore(rdb, session.DefaultTokenTTL)
		health.Redis = redisPinger{client: rdb}
		logg.Info("sessions stored in redis")
	}

	sessions := session.NewManager(b, tokens, session.NewHub(), logg)
	cookies := session.NewCookies(
		[]byte(cfg.SessionAuthKey),
		[]byte(cfg.SessionEncryptionKey),
		cfg.Environment == config.EnvProduction,
	)

	renderer, err := web.NewRenderer()
	if err != nil {
		return err
	}

	live := ws.NewLiveServer(ws.Options{
		Sessions:       sessions,
		Lister:         b,
		BrowserIDs:     cookies,
		Renderer:       renderer,
		OriginPatterns: originPatterns(cfg.CORSAllowedOrigins),
		Log:            logg,
	})

	srv := web.NewServer(web.Deps{
		Config:   cfg,
		Backend:  b,
		Sessions: sessions,
		Cookies:  cookies,
		Renderer: renderer,
		Live:     live,
		InFlight: sell.NewInFlight(),
		Health:   health,
		Log:      logg,
	})

	addr := fmt.Sprintf(":%s", cfg.Port)
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s := httpx.NewServer(addr, srv.Routes())
	s.ErrorLog = log.New(logWriter{logg}, "", 0)
	logg.Info("listening", "addr", l.Addr().String())

	errc := make(chan error, 1)
	go func() {
		errc <- s.Serve(l)
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errc:
		logg.Error("failed to serve", "error", err)
	case sig := <-sigs:
		logg.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.Shutdown(ctx)
}

// originPatterns turns the CORS list into WebSocket origin patterns. "*"
// keeps the same-origin default.
func originPatterns(allowed string) []string {
	var out []string
	for _, o := range httpx.ParseOrigins(allowed) {
		if o == "*" {
			continue
		}
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			out = append(out, u.Host)
		} else {
			out = append(out, o)
		}
	}
	return out
}

type logWriter struct{ log logger.Logger }

func (w logWriter) Write(p []byte) (int, error) {
	w.log.Warn("http server", "message", string(p))
	return len(p), nil
}
