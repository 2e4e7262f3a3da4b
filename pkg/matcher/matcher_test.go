package matcher

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/korjavin/ispirami/pkg/models"
)

func TestContainsMatch(t *testing.T) {
	tests := []struct {
		name   string
		fridge []string
		item   string
		want   bool
	}{
		{"exact", []string{"pasta"}, "pasta", true},
		{"case-insensitive", []string{"Pomodoro"}, "pomodoro", true},
		{"case-insensitive candidate", []string{"pomodoro"}, "POMODORO", true},
		{"fridge name inside candidate", []string{"pomodoro"}, "pomodoro fresco", true},
		{"candidate inside fridge name", []string{"pomodori freschi"}, "pomodori", true},
		{"plural does not contain singular", []string{"pomodori freschi"}, "pomodoro", false},
		{"singular not in plural candidate", []string{"pomodoro"}, "pomodori freschi", false},
		{"no accent folding", []string{"pomodori"}, "pomodorì", false},
		{"short name false positive kept", []string{"aglio"}, "agliolio-style stew", true},
		{"empty fridge", nil, "sale", false},
		{"empty fridge name matches anything", []string{""}, "sale", true},
		{"empty candidate matches any fridge name", []string{"sale"}, "", true},
		{"no match", []string{"pasta", "sale"}, "burro", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ContainsMatch(tt.fridge, tt.item))
		})
	}
}

func TestContainsMatchRule(t *testing.T) {
	fridge := []string{"Olio Extravergine", "sale fino", "UOVA", "aglio"}
	names := []string{"olio", "sale", "uova medie", "Aglio rosso", "pepe nero", "extravergine", "o"}

	m := New(fridge)
	for _, n := range names {
		want := false
		for _, f := range fridge {
			lf, ln := strings.ToLower(f), strings.ToLower(n)
			if strings.Contains(lf, ln) || strings.Contains(ln, lf) {
				want = true
			}
		}
		assert.Equal(t, want, m.ContainsMatch(n), n)
	}
}

func TestContainsMatchReflexive(t *testing.T) {
	fridge := []string{"Parmigiano Reggiano", "burro", "Farina 00"}
	for _, f := range fridge {
		assert.True(t, ContainsMatch(fridge, f))
		assert.True(t, ContainsMatch(fridge, strings.ToUpper(f)))
	}
}

func TestIsSatisfied(t *testing.T) {
	fridge := []string{"pasta", "pomodoro", "sale"}

	assert.True(t, IsSatisfied(fridge, []string{"pasta", "pomodoro"}))
	assert.False(t, IsSatisfied([]string{"pasta"}, []string{"pasta", "pomodoro"}))

	// An empty ingredient list is satisfied by any fridge, including an empty one.
	// This is intentional: zero required ingredients means none are missing.
	assert.True(t, IsSatisfied(fridge, nil))
	assert.True(t, IsSatisfied(nil, []string{}))
}

func TestMissing(t *testing.T) {
	m := New([]string{"pasta", "sale"})
	assert.Equal(t, []string{"pomodoro", "basilico"}, m.Missing([]string{"pomodoro", "pasta", "basilico"}))
	assert.Empty(t, m.Missing([]string{"pasta"}))
}

func TestMatchRecipes(t *testing.T) {
	recipes := []models.Recipe{
		{Title: "Aglio e olio", URL: "u1", Ingredients: []models.Ingredient{{Name: "spaghetti"}, {Name: "aglio"}, {Name: "olio"}}},
		{Title: "Carbonara", URL: "u2", Ingredients: []models.Ingredient{{Name: "spaghetti"}, {Name: "guanciale"}, {Name: "uova"}}},
		{Title: "Empty", URL: "u3"},
		{Title: "Pasta al burro", URL: "u4", Ingredients: []models.Ingredient{{Name: "Spaghetti"}, {Name: "burro"}}},
	}

	fridge := models.NewFridge("", 0)
	for _, n := range []string{"Spaghetti", "aglio", "olio extravergine d'oliva", "burro", "sale"} {
		fridge.Ingredients[n] = models.FridgeItem{Name: n}
	}

	m := FromFridge(fridge)
	assert.Equal(t, 5, m.Size())
	assert.Equal(t, []string{"u1", "u3", "u4"}, m.MatchRecipes(recipes))
	assert.Empty(t, New(nil).MatchRecipes(recipes[:2]))
}

func TestMatcherConcurrentUse(t *testing.T) {
	m := New([]string{"pasta", "sale"})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.True(t, m.IsSatisfied([]string{"pasta", "sale grosso"}))
			assert.False(t, m.IsSatisfied([]string{"pasta", "burro"}))
		}()
	}
	wg.Wait()
}
