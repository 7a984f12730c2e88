package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/supabase-community/postgrest-go"

	"github.com/vindennt/quick-little-shop/internal/models"
)

const (
	itemsTable = "items"
	// Listing rows embed the owner's profile summary.
	itemColumns = "*, profiles(full_name, email)"
)

// ErrEmptyInsert is returned when PostgREST accepts an insert but returns no row.
var ErrEmptyInsert = errors.New("insert returned no rows")

// ListActiveItems returns active items, newest first, optionally restricted to
// one category. There is no limit; the whole active set is returned.
func (c *Client) ListActiveItems(ctx context.Context, token string, category models.Category) ([]models.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	query := c.table(itemsTable, c.bearer(token)).
		Select(itemColumns, "", false).
		Eq("status", models.ItemStatusActive)

	if category != models.CategoryAll {
		query = query.Eq("category", string(category))
	}

	query = query.Order("created_at", &postgrest.OrderOpts{Ascending: false})

	resp, _, err := query.Execute()
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	items := make([]models.Item, 0)
	if err := json.Unmarshal(resp, &items); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	return items, nil
}

// CreateItem inserts one row and returns it as stored.
func (c *Client) CreateItem(ctx context.Context, token string, item models.NewItem) (*models.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, _, err := c.table(itemsTable, c.bearer(token)).
		Insert(item, false, "", "representation", "").
		Execute()
	if err != nil {
		return nil, err
	}

	var items []models.Item
	if err := json.Unmarshal(resp, &items); err != nil {
		return nil, fmt.Errorf("decode inserted item: %w", err)
	}
	if len(items) == 0 {
		return nil, ErrEmptyInsert
	}
	return &items[0], nil
}

// CountItems returns the exact number of rows in items visible to the anon
// role. It doubles as the connectivity probe.
func (c *Client) CountItems(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	_, count, err := c.table(itemsTable, c.anonKey).
		Select("id", "exact", true).
		Execute()
	if err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return count, nil
}

// Ping satisfies the health checker interface.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.CountItems(ctx)
	return err
}
