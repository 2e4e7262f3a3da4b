package models

import (
	"sort"
	"time"

	"github.com/pkg/errors"
)

// Sentinel errors shared by the storage layers
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

// Recipe is a scraped recipe. URL is its unique key.
type Recipe struct {
	Title       string       `json:"title"`
	Category    string       `json:"category"`
	URL         string       `json:"url"`
	Servings    string       `json:"n_people,omitempty"`
	Ingredients []Ingredient `json:"ingredients"`
}

// IngredientNames returns the ingredient names in recipe order
func (r *Recipe) IngredientNames() []string {
	names := make([]string, len(r.Ingredients))
	for i, ing := range r.Ingredients {
		names[i] = ing.Name
	}
	return names
}

// Fridge represents the ingredients available to a user.
// Only the ingredient names take part in matching.
type Fridge struct {
	ID          string                `json:"id,omitempty"`
	Owner       int64                 `json:"owner,omitempty"`
	Ingredients map[string]FridgeItem `json:"ingredients"`
	LastUpdated time.Time             `json:"last_updated"`
}

// FridgeItem represents a single ingredient in the fridge
type FridgeItem struct {
	Name     string    `json:"name"`
	Quantity string    `json:"quantity,omitempty"`
	AddedAt  time.Time `json:"added_at"`
}

// NewFridge returns an empty fridge
func NewFridge(id string, owner int64) *Fridge {
	return &Fridge{
		ID:          id,
		Owner:       owner,
		Ingredients: make(map[string]FridgeItem),
		LastUpdated: time.Now(),
	}
}

// Names returns the fridge ingredient names, sorted
func (f *Fridge) Names() []string {
	names := make([]string, 0, len(f.Ingredients))
	for name := range f.Ingredients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Items returns the fridge contents sorted by name
func (f *Fridge) Items() []FridgeItem {
	items := make([]FridgeItem, 0, len(f.Ingredients))
	for _, name := range f.Names() {
		items = append(items, f.Ingredients[name])
	}
	return items
}
