package db

import (
	"github.com/supabase-community/postgrest-go"

	"github.com/vindennt/quick-little-shop/internal/config"
)

// Client issues PostgREST requests against the project's REST endpoint.
// Each call builds a fresh request client carrying the caller's bearer.
type Client struct {
	restURL string
	anonKey string
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		restURL: cfg.SupabaseURL + "/rest/v1",
		anonKey: cfg.SupabaseAnonKey,
	}
}

// table starts a query on name authorized by bearer. The anon key always
// travels as the apikey header.
func (c *Client) table(name, bearer string) *postgrest.QueryBuilder {
	rest := postgrest.NewClient(c.restURL, "", map[string]string{"apikey": c.anonKey})
	rest.SetAuthToken(bearer)
	return rest.From(name)
}

// bearer picks the user's access token, or the anon key for visitors so
// row-level security sees the anon role.
func (c *Client) bearer(token string) string {
	if token == "" {
		return c.anonKey
	}
	return token
}
