package models

import "fmt"

// Category is one of the fixed listing categories. The zero value means "All"
// when used as a filter.
type Category string

const (
	CategoryAll            Category = ""
	CategoryElectronics    Category = "Electronics"
	CategoryFurniture      Category = "Furniture"
	CategoryClothing       Category = "Clothing"
	CategoryBooks          Category = "Books"
	CategorySportsOutdoors Category = "Sports & Outdoors"
	CategoryHomeGarden     Category = "Home & Garden"
	CategoryToysGames      Category = "Toys & Games"
	CategoryHealthFood     Category = "Health & Food"
	CategoryVehicles       Category = "Vehicles"
	CategoryArt            Category = "Art"
	CategoryAutomotive     Category = "Automotive"
	CategoryOther          Category = "Other"
)

const fallbackCategorySymbol = "📦"

// Categories lists every category in display order.
var Categories = []Category{
	CategoryElectronics,
	CategoryFurniture,
	CategoryClothing,
	CategoryBooks,
	CategorySportsOutdoors,
	CategoryHomeGarden,
	CategoryToysGames,
	CategoryHealthFood,
	CategoryVehicles,
	CategoryArt,
	CategoryAutomotive,
	CategoryOther,
}

var categorySymbols = map[Category]string{
	CategoryElectronics:    "📱",
	CategoryFurniture:      "🪑",
	CategoryClothing:       "👕",
	CategoryBooks:          "📚",
	CategorySportsOutdoors: "⚽",
	CategoryHomeGarden:     "🏡",
	CategoryToysGames:      "🎲",
	CategoryHealthFood:     "🥗",
	CategoryVehicles:       "🚗",
	CategoryArt:            "🎨",
	CategoryAutomotive:     "🔧",
	CategoryOther:          "📦",
}

// Valid reports whether c is a member of the category set.
func (c Category) Valid() bool {
	_, ok := categorySymbols[c]
	return ok
}

// Symbol returns the decorative emoji for c, falling back to a parcel for
// anything outside the set.
func (c Category) Symbol() string {
	if s, ok := categorySymbols[c]; ok {
		return s
	}
	return fallbackCategorySymbol
}

// Label is the name shown on the filter control.
func (c Category) Label() string {
	if c == CategoryAll {
		return "All"
	}
	return string(c)
}

// ParseCategoryFilter accepts "", "All" or a category name.
func ParseCategoryFilter(s string) (Category, error) {
	if s == "" || s == "All" {
		return CategoryAll, nil
	}
	c := Category(s)
	if !c.Valid() {
		return CategoryAll, fmt.Errorf("%w: %q", ErrInvalidCategory, s)
	}
	return c, nil
}

// Condition is the fixed set of item conditions.
type Condition string

const (
	ConditionNew     Condition = "New"
	ConditionLikeNew Condition = "Like New"
	ConditionGood    Condition = "Good"
	ConditionFair    Condition = "Fair"
)

var Conditions = []Condition{ConditionNew, ConditionLikeNew, ConditionGood, ConditionFair}

func (c Condition) Valid() bool {
	for _, v := range Conditions {
		if v == c {
			return true
		}
	}
	return false
}

// ParseCondition accepts exactly one of the condition names.
func ParseCondition(s string) (Condition, error) {
	c := Condition(s)
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCondition, s)
	}
	return c, nil
}
