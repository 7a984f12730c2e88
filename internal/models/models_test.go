package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategorySymbol_FallbackForUnmapped(t *testing.T) {
	assert.Equal(t, "📚", CategoryBooks.Symbol())
	assert.Equal(t, "⚽", CategorySportsOutdoors.Symbol())
	assert.Equal(t, "📦", Category("Spaceships").Symbol())
	assert.Equal(t, "📦", CategoryAll.Symbol())
}

func TestCategories_AllValidAndMapped(t *testing.T) {
	require.Len(t, Categories, 12)
	for _, c := range Categories {
		assert.True(t, c.Valid(), c)
		assert.NotEmpty(t, c.Symbol())
	}
	assert.False(t, CategoryAll.Valid())
}

func TestParseCategoryFilter(t *testing.T) {
	c, err := ParseCategoryFilter("")
	require.NoError(t, err)
	assert.Equal(t, CategoryAll, c)

	c, err = ParseCategoryFilter("All")
	require.NoError(t, err)
	assert.Equal(t, CategoryAll, c)

	c, err = ParseCategoryFilter("Home & Garden")
	require.NoError(t, err)
	assert.Equal(t, CategoryHomeGarden, c)

	_, err = ParseCategoryFilter("Weapons")
	assert.True(t, errors.Is(err, ErrInvalidCategory))
}

func TestConditionValid(t *testing.T) {
	for _, c := range Conditions {
		assert.True(t, c.Valid())
	}
	assert.False(t, Condition("Broken").Valid())
	assert.False(t, Condition("").Valid())
}

func TestParseCondition(t *testing.T) {
	c, err := ParseCondition("Like New")
	require.NoError(t, err)
	assert.Equal(t, ConditionLikeNew, c)

	_, err = ParseCondition("like new")
	assert.ErrorIs(t, err, ErrInvalidCondition)
}

func TestSellerName(t *testing.T) {
	assert.Equal(t, "Anonymous", Item{}.SellerName())
	assert.Equal(t, "Anonymous", Item{Profile: &Profile{Email: "a@b.c"}}.SellerName())
	assert.Equal(t, "Ada", Item{Profile: &Profile{FullName: "Ada"}}.SellerName())
}

func TestUserDisplayName(t *testing.T) {
	assert.Equal(t, "a@b.c", User{Email: "a@b.c"}.DisplayName())
	assert.Equal(t, "Ada", User{Email: "a@b.c", FullName: "Ada"}.DisplayName())
}

func TestSessionExpired(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	assert.False(t, (&Session{}).Expired(now), "zero expiry never expires")
	assert.False(t, (&Session{ExpiresAt: now.Add(time.Hour)}).Expired(now))
	assert.True(t, (&Session{ExpiresAt: now.Add(5 * time.Second)}).Expired(now))
	assert.True(t, (&Session{ExpiresAt: now.Add(-time.Minute)}).Expired(now))
}
