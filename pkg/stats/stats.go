package stats

import (
	"sort"

	"github.com/korjavin/ispirami/pkg/ingredient"
	"github.com/korjavin/ispirami/pkg/models"
)

// Statistics summarises a recipe collection
type Statistics struct {
	TotalRecipes int `json:"total_recipes"`
	// TotalIngredients counts ingredient lines across all recipes
	TotalIngredients int `json:"total_ingredients"`
	// UniqueIngredients counts distinct cleaned ingredient names
	UniqueIngredients int            `json:"unique_ingredients"`
	Categories        map[string]int `json:"categories"`
	Ingredients       map[string]int `json:"ingredients"`
}

// Count is a name with the number of recipes it appears in
type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// New returns empty statistics
func New() *Statistics {
	return &Statistics{
		Categories:  make(map[string]int),
		Ingredients: make(map[string]int),
	}
}

// Compute gathers statistics over recipes
func Compute(recipes []models.Recipe) *Statistics {
	st := New()
	st.TotalRecipes = len(recipes)

	for i := range recipes {
		if c := recipes[i].Category; c != "" {
			st.Categories[c]++
		}
		seen := make(map[string]bool)
		for _, ing := range recipes[i].Ingredients {
			st.TotalIngredients++
			name := ingredient.CleanName(ing.Name)
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			st.Ingredients[name]++
		}
	}

	st.UniqueIngredients = len(st.Ingredients)
	return st
}

// TopCategories returns the largest categories, most recipes first
func (s *Statistics) TopCategories(limit int) []Count {
	return top(s.Categories, limit)
}

// TopIngredients returns the most used ingredients, most recipes first
func (s *Statistics) TopIngredients(limit int) []Count {
	return top(s.Ingredients, limit)
}

func top(counts map[string]int, limit int) []Count {
	out := make([]Count, 0, len(counts))
	for name, n := range counts {
		out = append(out, Count{Name: name, Count: n})
	}

	// Sort by count (descending), then name
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})

	// Take the top N
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
