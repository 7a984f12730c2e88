package models

import (
	"time"

	"github.com/google/uuid"
)

// Item statuses. Only ItemStatusActive is ever written or read by the shop.
const (
	ItemStatusActive   = "active"
	ItemStatusInactive = "inactive"
)

// Item structs
type Item struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Category    Category  `json:"category"`
	Condition   Condition `json:"condition"`
	Location    string    `json:"location"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	Profile     *Profile  `json:"profiles,omitempty"`
}

// Profile is the owner summary joined from the profiles table.
type Profile struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// SellerName is the display name shown on a listing card.
func (i Item) SellerName() string {
	if i.Profile == nil || i.Profile.FullName == "" {
		return "Anonymous"
	}
	return i.Profile.FullName
}

// NewItem is the insert payload for the items table.
type NewItem struct {
	UserID      uuid.UUID `json:"user_id"`
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description" validate:"required"`
	Price       float64   `json:"price" validate:"gte=0"`
	Category    Category  `json:"category" validate:"required,category"`
	Condition   Condition `json:"condition" validate:"required,condition"`
	Location    string    `json:"location"`
	Status      string    `json:"status"`
}

// Auth structs
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	FullName string `json:"full_name,omitempty"`
}

type AuthResponse struct {
	Session *Session `json:"session,omitempty"`
	Message string   `json:"message"`
}

type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         User      `json:"user"`
}

// Expired reports whether the access token should be refreshed before use.
// A small skew keeps a token from expiring mid-request.
func (s *Session) Expired(now time.Time) bool {
	if s.ExpiresAt.IsZero() {
		return false
	}
	return !now.Add(10 * time.Second).Before(s.ExpiresAt)
}

type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// DisplayName is the full name when set, the email otherwise.
func (u User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Email
}
