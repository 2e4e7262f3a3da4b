package scraper

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/korjavin/ispirami/pkg/models"
	"github.com/korjavin/ispirami/pkg/quantity"
)

var (
	titleSelectors = []string{"h1", ".recipe-title", "h2", "title"}

	ingredientSelectors = []string{
		".ingredient",
		".recipe-ingredient",
		".ingredients-list li",
		".ingredient-item",
		"li[data-ingredient]",
		".gz-ingredient",
	}

	categorySelectors = []string{
		".breadcrumb a",
		".category",
		".recipe-category",
		".breadcrumb li a",
		".gz-breadcrumb",
	}

	servingsRegex = regexp.MustCompile(`(\d)\s+persone`)
)

// TotalPages returns the largest page number shown in the listing's
// ".disabled.total-pages" marker, or 0 when there is none.
func TotalPages(doc *goquery.Document) int {
	total := 0
	doc.Find(".disabled.total-pages").Each(func(_ int, s *goquery.Selection) {
		n, err := strconv.Atoi(strings.TrimSpace(s.Text()))
		if err == nil && n > total {
			total = n
		}
	})
	return total
}

// RecipeLinks extracts candidate recipe links from a listing page.
// Links are taken from the first anchor of every article or div whose class
// mentions "recipe" or "card". When no card yields a link, any anchor that
// looks like a recipe page is used instead. Relative links are resolved
// against base and duplicates are dropped, keeping first-seen order.
func RecipeLinks(doc *goquery.Document, base *url.URL) []string {
	var links []string
	seen := make(map[string]bool)
	add := func(href string) {
		abs, ok := absolute(href, base)
		if !ok || seen[abs] {
			return
		}
		seen[abs] = true
		links = append(links, abs)
	}

	doc.Find("article, div").Each(func(_ int, card *goquery.Selection) {
		class := strings.ToLower(card.AttrOr("class", ""))
		if !strings.Contains(class, "recipe") && !strings.Contains(class, "card") {
			return
		}
		if href, ok := card.Find("a").First().Attr("href"); ok {
			add(href)
		}
	})
	if len(links) > 0 {
		return links
	}

	doc.Find("a").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if ok && IsRecipeLink(href) {
			add(href)
		}
	})
	return links
}

// IsRecipeLink reports whether a link points at a recipe page rather than a category
func IsRecipeLink(href string) bool {
	return strings.Contains(href, "/ricette/") || strings.HasSuffix(href, ".html")
}

func absolute(href string, base *url.URL) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "javascript:") {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	if base != nil {
		ref = base.ResolveReference(ref)
	}
	return ref.String(), true
}

// ParseRecipe reads a recipe page. The returned recipe has no ingredients
// when none of the known ingredient markups is present.
func ParseRecipe(doc *goquery.Document, pageURL string) *models.Recipe {
	return &models.Recipe{
		Title:       firstText(doc, titleSelectors),
		Category:    firstText(doc, categorySelectors),
		URL:         pageURL,
		Servings:    findServings(doc),
		Ingredients: findIngredients(doc),
	}
}

// firstText returns the first non-empty trimmed text, trying selectors in order
func firstText(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		var text string
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text = strings.TrimSpace(s.Text())
			return text == ""
		})
		if text != "" {
			return text
		}
	}
	return ""
}

func findIngredients(doc *goquery.Document) []models.Ingredient {
	ingredients := make([]models.Ingredient, 0)
	for _, sel := range ingredientSelectors {
		tags := doc.Find(sel)
		if tags.Length() == 0 {
			continue
		}

		tags.Each(func(_ int, tag *goquery.Selection) {
			text := strings.TrimSpace(tag.Text())
			words := strings.Fields(text)
			if len(words) < 2 {
				return
			}
			name := strings.ToLower(strings.Join(words, " "))
			ingredients = append(ingredients, models.NewIngredient(name, quantity.Parse(text)))
		})
		// only the first markup that is present counts
		break
	}
	return ingredients
}

func findServings(doc *goquery.Document) string {
	var servings string
	doc.Find(".gz-name-featured-data").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if m := servingsRegex.FindStringSubmatch(s.Text()); m != nil {
			servings = m[1]
			return false
		}
		return true
	})
	return servings
}
