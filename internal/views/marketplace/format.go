package marketplace

import (
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/vindennt/quick-little-shop/internal/models"
)

var usd = message.NewPrinter(language.AmericanEnglish)

// FormatPrice renders p as US dollars with two decimals, e.g. "$150.00".
func FormatPrice(p float64) string {
	return usd.Sprintf("$%.2f", p)
}

// FormatDate renders the abbreviated month and day, e.g. "Mar 4".
func FormatDate(t time.Time) string {
	return t.Format("Jan 2")
}

// EmptyMessage is shown when a load returns no rows.
func EmptyMessage(c models.Category) string {
	if c == models.CategoryAll {
		return "No items found"
	}
	return "No " + strings.ToLower(string(c)) + " items found"
}

// Card is one rendered listing.
type Card struct {
	ID          string
	Title       string
	Description string
	Price       string
	Category    string
	Condition   string
	Location    string
	Seller      string
	Posted      string
	Symbol      string
}

func NewCard(it models.Item) Card {
	return Card{
		ID:          it.ID.String(),
		Title:       it.Title,
		Description: it.Description,
		Price:       FormatPrice(it.Price),
		Category:    string(it.Category),
		Condition:   string(it.Condition),
		Location:    it.Location,
		Seller:      it.SellerName(),
		Posted:      FormatDate(it.CreatedAt),
		Symbol:      it.Category.Symbol(),
	}
}
