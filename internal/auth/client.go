package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/gotrue-go/types"

	"github.com/vindennt/quick-little-shop/internal/config"
	"github.com/vindennt/quick-little-shop/internal/models"
)

// ErrConfirmationRequired is returned by SignUp when the project requires the
// user to confirm their email before a session is issued.
var ErrConfirmationRequired = errors.New("check your email to confirm your account")

// Client wraps the GoTrue client for the shop's session operations.
// gotrue-go has no context support, so ctx is only checked before each call.
type Client struct {
	AuthClient gotrue.Client
	now        func() time.Time
}

func NewClient(cfg *config.Config) *Client {
	client := gotrue.New(
		cfg.SupabaseProjectRef,
		cfg.SupabaseAnonKey,
	)
	// Self-hosted and local projects are not under supabase.co
	if cfg.SupabaseURL != "" && !strings.Contains(cfg.SupabaseURL, ".supabase.co") {
		client = client.WithCustomGoTrueURL(cfg.SupabaseURL + "/auth/v1")
	}
	client = client.WithClient(http.Client{Timeout: 10 * time.Second})

	return &Client{
		AuthClient: client,
		now:        time.Now,
	}
}

func (c *Client) SignUp(ctx context.Context, creds models.Credentials) (*models.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := types.SignupRequest{
		Email:    creds.Email,
		Password: creds.Password,
	}
	if creds.FullName != "" {
		req.Data = map[string]interface{}{"full_name": creds.FullName}
	}

	res, err := c.AuthClient.Signup(req)
	if err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}
	// Without autoconfirm only the user comes back
	if res.AccessToken == "" {
		return nil, ErrConfirmationRequired
	}

	return c.toSession(res.Session), nil
}

func (c *Client) SignIn(ctx context.Context, creds models.Credentials) (*models.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := c.AuthClient.SignInWithEmailPassword(creds.Email, creds.Password)
	if err != nil {
		return nil, fmt.Errorf("signin: %w", err)
	}

	return c.toSession(res.Session), nil
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*models.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := c.AuthClient.RefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}

	return c.toSession(res.Session), nil
}

// GetUser validates token against GoTrue and returns its user.
func (c *Client) GetUser(ctx context.Context, token string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := c.AuthClient.WithToken(token).GetUser()
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	user := toUser(res.User)
	return &user, nil
}

func (c *Client) SignOut(ctx context.Context, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := c.AuthClient.WithToken(token).Logout(); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (c *Client) toSession(s types.Session) *models.Session {
	expiresAt := time.Unix(s.ExpiresAt, 0)
	if s.ExpiresAt == 0 && s.ExpiresIn > 0 {
		expiresAt = c.now().Add(time.Duration(s.ExpiresIn) * time.Second)
	}

	return &models.Session{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    s.TokenType,
		ExpiresAt:    expiresAt,
		User:         toUser(s.User),
	}
}

func toUser(u types.User) models.User {
	user := models.User{
		ID:        u.ID,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
	if name, ok := u.UserMetadata["full_name"].(string); ok {
		user.FullName = name
	}
	return user
}
