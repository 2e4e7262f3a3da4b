package fridge

import (
	"strings"

	"github.com/korjavin/ispirami/pkg/models"
)

// ParseList reads a typed ingredient list. Items are separated by commas or
// new lines and may carry a quantity after a colon, as in "latte: 1 l".
// Names are lower-cased; later duplicates replace earlier ones in place.
func ParseList(text string) []models.FridgeItem {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == '\n' || r == ';'
	})

	items := make([]models.FridgeItem, 0, len(fields))
	index := make(map[string]int)
	for _, field := range fields {
		name, qty, _ := strings.Cut(field, ":")
		name = strings.ToLower(strings.Join(strings.Fields(name), " "))
		name = strings.TrimLeft(name, "-•* ")
		if name == "" {
			continue
		}
		item := models.FridgeItem{Name: name, Quantity: strings.TrimSpace(qty)}
		if i, ok := index[name]; ok {
			items[i] = item
			continue
		}
		index[name] = len(items)
		items = append(items, item)
	}
	return items
}

// ItemMap converts items to the name to quantity map UpdateIngredients takes
func ItemMap(items []models.FridgeItem) map[string]string {
	out := make(map[string]string, len(items))
	for _, item := range items {
		out[item.Name] = item.Quantity
	}
	return out
}

// ItemNames returns the item names in order
func ItemNames(items []models.FridgeItem) []string {
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Name
	}
	return names
}
