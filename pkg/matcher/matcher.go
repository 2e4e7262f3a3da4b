// Package matcher decides which recipes can be cooked from the ingredients in a fridge.
//
// Two names match when either one, lower-cased, is a substring of the other.
// No accent folding or tokenisation is applied, so short fridge names such as
// "aglio" also match longer unrelated names that happen to contain them.
package matcher

import (
	"strings"

	"github.com/korjavin/ispirami/pkg/models"
)

// Matcher holds a fridge's ingredient names. It is immutable after New and
// safe for concurrent use.
type Matcher struct {
	fridge []string // lower-cased
}

// New creates a matcher over the given fridge ingredient names
func New(fridgeNames []string) *Matcher {
	lowered := make([]string, len(fridgeNames))
	for i, name := range fridgeNames {
		lowered[i] = strings.ToLower(name)
	}
	return &Matcher{fridge: lowered}
}

// FromFridge creates a matcher over a fridge's key set
func FromFridge(f *models.Fridge) *Matcher {
	return New(f.Names())
}

// Size returns the number of fridge names
func (m *Matcher) Size() int {
	return len(m.fridge)
}

// ContainsMatch reports whether name matches at least one fridge ingredient
func (m *Matcher) ContainsMatch(name string) bool {
	candidate := strings.ToLower(name)
	for _, f := range m.fridge {
		if strings.Contains(f, candidate) || strings.Contains(candidate, f) {
			return true
		}
	}
	return false
}

// IsSatisfied reports whether every required ingredient matches the fridge.
// An empty list is satisfied.
func (m *Matcher) IsSatisfied(required []string) bool {
	for _, name := range required {
		if !m.ContainsMatch(name) {
			return false
		}
	}
	return true
}

// Missing returns the required ingredients with no match, in input order
func (m *Matcher) Missing(required []string) []string {
	var missing []string
	for _, name := range required {
		if !m.ContainsMatch(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// MatchRecipes returns the URLs of the satisfied recipes, in input order
func (m *Matcher) MatchRecipes(recipes []models.Recipe) []string {
	urls := make([]string, 0)
	for i := range recipes {
		if m.IsSatisfied(recipes[i].IngredientNames()) {
			urls = append(urls, recipes[i].URL)
		}
	}
	return urls
}

// ContainsMatch reports whether name matches at least one of fridgeNames
func ContainsMatch(fridgeNames []string, name string) bool {
	return New(fridgeNames).ContainsMatch(name)
}

// IsSatisfied reports whether every required name matches one of fridgeNames
func IsSatisfied(fridgeNames []string, required []string) bool {
	return New(fridgeNames).IsSatisfied(required)
}
