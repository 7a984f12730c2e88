package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/joho/godotenv"
)

// Environment name constants used in the ENVIRONMENT config field.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTesting     = "testing"
)

type Config struct {
	Port string `conf:"default:8080,env:PORT"`

	// Supabase. A missing URL or key is not rejected here; every backend call
	// fails instead.
	SupabaseURL        string `conf:"env:SUPABASE_URL"`
	SupabaseAnonKey    string `conf:"env:SUPABASE_ANON_KEY,noprint"`
	SupabaseProjectRef string `conf:"env:SUPABASE_PROJECT_REF"`

	// Session cookie and optional server-side token storage
	SessionAuthKey       string `conf:"default:dev-auth-key-0123456789abcdefghi,env:SESSION_AUTH_KEY,noprint"`
	SessionEncryptionKey string `conf:"default:dev-enc-key-0123456789abcdefghij,env:SESSION_ENCRYPTION_KEY,noprint"`
	RedisURL             string `conf:"env:REDIS_URL"`

	LogLevel           string `conf:"default:info,env:LOG_LEVEL"`
	Environment        string `conf:"default:development,enum:development|testing|production,env:ENVIRONMENT"`
	CORSAllowedOrigins string `conf:"default:*,env:CORS_ALLOWED_ORIGINS"`
	ServiceName        string `conf:"default:quick-little-shop,env:SERVICE_NAME"`
	ServiceVersion     string `conf:"default:dev,env:SERVICE_VERSION"`
	SentryDSN          string `conf:"env:SENTRY_DSN,noprint"`

	// How long the sell page shows its success message before moving on
	SellRedirectDelay time.Duration `conf:"default:2s,env:SELL_REDIRECT_DELAY"`
}

func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if _, err := conf.Parse("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.SupabaseAnonKey == "" {
		cfg.SupabaseAnonKey = os.Getenv("SUPABASE_KEY")
	}
	cfg.SupabaseURL = strings.TrimRight(cfg.SupabaseURL, "/")
	if cfg.SupabaseProjectRef == "" {
		cfg.SupabaseProjectRef = ProjectRef(cfg.SupabaseURL)
	}

	return &cfg, nil
}

// ProjectRef extracts the project reference from a hosted Supabase URL
// (https://<ref>.supabase.co). Other URLs are returned unchanged.
func ProjectRef(supabaseURL string) string {
	ref := strings.TrimPrefix(supabaseURL, "https://")
	ref = strings.TrimPrefix(ref, "http://")
	if idx := strings.Index(ref, ".supabase.co"); idx != -1 {
		return ref[:idx]
	}
	return supabaseURL
}

// ValidateForProduction enforces session key requirements when
// ENVIRONMENT=production. No-ops for other environments.
func ValidateForProduction(cfg *Config) error {
	if cfg.Environment != EnvProduction {
		return nil
	}

	var errs []string

	if len(cfg.SessionAuthKey) < 32 {
		errs = append(errs, fmt.Sprintf("SESSION_AUTH_KEY must be at least 32 bytes (got %d)", len(cfg.SessionAuthKey)))
	}
	switch len(cfg.SessionEncryptionKey) {
	case 16, 24, 32:
	default:
		errs = append(errs, fmt.Sprintf("SESSION_ENCRYPTION_KEY must be 16, 24 or 32 bytes (got %d)", len(cfg.SessionEncryptionKey)))
	}
	if cfg.LogLevel == "debug" {
		errs = append(errs, "LOG_LEVEL must not be 'debug' in production")
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("production config validation failed: %s", strings.Join(errs, "; "))
}
