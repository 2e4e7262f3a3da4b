package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/korjavin/ispirami/pkg/logger"
	"github.com/korjavin/ispirami/pkg/quantity"
	"github.com/korjavin/ispirami/pkg/recipes"
)

const listingPage1 = `<html><body>
<span class="disabled total-pages">2</span>
<article class="gz-card"><a href="/ricette/pasta.html">Pasta</a></article>
<article class="gz-card"><a href="/ricette/vuota.html">Vuota</a></article>
<div class="gz-card-category"><a href="/categoria/primi">Primi</a></div>
<div class="Recipe-Box"><a href="/ricette/pasta.html">Pasta again</a></div>
</body></html>`

const listingPage2 = `<html><body>
<a href="#top">top</a>
<a href="javascript:void(0)">menu</a>
<a href="/chi-siamo">about</a>
<a href="/ricette/rotta.html">Rotta</a>
</body></html>`

const pastaPage = `<html><head><title>Pasta - Cookbook</title></head><body>
<ul class="breadcrumb"><a> </a><a>Primi piatti</a></ul>
<h1>  Pasta al pomodoro </h1>
<div class="gz-name-featured-data">Dosi per 4 persone</div>
<dd class="gz-ingredient">Spaghetti   320 g</dd>
<dd class="gz-ingredient">Sale</dd>
<dd class="gz-ingredient">Pomodori pelati 400 g</dd>
<dd class="gz-ingredient">Basilico 4 foglie</dd>
</body></html>`

const emptyPage = `<html><body><h1>Vuota</h1></body></html>`

func cookbookServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	page := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write([]byte(body))
		}
	}
	mux.HandleFunc("/ricette-cat", page(listingPage1))
	mux.HandleFunc("/ricette-cat/page2/", page(listingPage2))
	mux.HandleFunc("/ricette/pasta.html", page(pastaPage))
	mux.HandleFunc("/ricette/vuota.html", page(emptyPage))
	mux.HandleFunc("/ricette/rotta.html", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testOptions(base string) Options {
	return Options{
		BaseURL: base,
		Retries: 2,
		Backoff: time.Millisecond,
		Timeout: 5 * time.Second,
	}
}

func parse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestPageURL(t *testing.T) {
	s, err := New(Options{BaseURL: "https://example.com/ricette-cat"}, nil, logger.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/ricette-cat", s.PageURL(1))
	assert.Equal(t, "https://example.com/ricette-cat/page2/", s.PageURL(2))
	assert.Equal(t, "https://example.com/ricette-cat/page41/", s.PageURL(41))
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := New(Options{BaseURL: "not a url"}, nil, logger.NewNop())
	assert.Error(t, err)
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 2, TotalPages(parse(t, listingPage1)))
	assert.Equal(t, 0, TotalPages(parse(t, listingPage2)))
	assert.Equal(t, 7, TotalPages(parse(t, `<span class="disabled total-pages">3</span><span class="disabled total-pages">7</span>`)))
}

func TestRecipeLinks(t *testing.T) {
	base, _ := url.Parse("https://example.com/ricette-cat")

	links := RecipeLinks(parse(t, listingPage1), base)
	assert.Equal(t, []string{
		"https://example.com/ricette/pasta.html",
		"https://example.com/ricette/vuota.html",
		"https://example.com/categoria/primi",
	}, links)

	links = RecipeLinks(parse(t, listingPage2), base)
	assert.Equal(t, []string{"https://example.com/ricette/rotta.html"}, links)

	assert.Empty(t, RecipeLinks(parse(t, `<p>nothing here</p>`), base))
}

func TestIsRecipeLink(t *testing.T) {
	assert.True(t, IsRecipeLink("https://example.com/ricette/pasta"))
	assert.True(t, IsRecipeLink("/Pasta-al-pomodoro.html"))
	assert.False(t, IsRecipeLink("https://example.com/categoria/primi"))
}

func TestParseRecipe(t *testing.T) {
	r := ParseRecipe(parse(t, pastaPage), "https://example.com/ricette/pasta.html")

	assert.Equal(t, "Pasta al pomodoro", r.Title)
	assert.Equal(t, "Primi piatti", r.Category)
	assert.Equal(t, "4", r.Servings)
	assert.Equal(t, "https://example.com/ricette/pasta.html", r.URL)
	require.Len(t, r.Ingredients, 3)

	assert.Equal(t, "spaghetti 320 g", r.Ingredients[0].Name)
	assert.Equal(t, quantity.Amount{Quantity: 320, Unit: "g"}, r.Ingredients[0].Amount())
	assert.Equal(t, "pomodori pelati 400 g", r.Ingredients[1].Name)
	assert.Equal(t, quantity.Amount{Quantity: 4}, r.Ingredients[2].Amount())
}

func TestParseRecipeFallbacks(t *testing.T) {
	doc := parse(t, `<html><head><title>Only title</title></head><body>
<h1> </h1>
<ul class="ingredients-list"><li>Uova 2</li><li>Farina 00 200 g</li></ul>
<span class="gz-ingredient">ignored because an earlier selector matched</span>
</body></html>`)

	r := ParseRecipe(doc, "u")
	assert.Equal(t, "Only title", r.Title)
	assert.Empty(t, r.Category)
	assert.Empty(t, r.Servings)
	assert.Equal(t, []string{"uova 2", "farina 00 200 g"}, r.IngredientNames())

	r = ParseRecipe(parse(t, emptyPage), "u")
	assert.Empty(t, r.Ingredients)
}

func TestFetchRetries(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`<h1>ok</h1>`))
	}))
	defer srv.Close()

	opts := testOptions(srv.URL)
	opts.Retries = 3
	s, err := New(opts, nil, logger.NewTest(t))
	require.NoError(t, err)

	doc, err := s.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", doc.Find("h1").Text())
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))

	atomic.StoreInt32(&hits, -10)
	_, err = s.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
}

func TestRun(t *testing.T) {
	srv := cookbookServer(t)
	repo, err := recipes.NewFileStore(t.TempDir())
	require.NoError(t, err)

	s, err := New(testOptions(srv.URL+"/ricette-cat"), repo, logger.NewTest(t))
	require.NoError(t, err)

	var pages []int
	report, err := s.Run(context.Background(), func(page, total int) {
		assert.Equal(t, 2, total)
		pages = append(pages, page)
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, pages)
	assert.Equal(t, Report{Pages: 2, Processed: 3, Saved: 1, Failed: 1}, report)

	all, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Pasta al pomodoro", all[0].Title)
	assert.Equal(t, srv.URL+"/ricette/pasta.html", all[0].URL)

	// a second run stores nothing new
	report, err = s.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Saved)
	assert.Equal(t, 3, report.Processed)
}

func TestRunMaxPages(t *testing.T) {
	srv := cookbookServer(t)
	repo, err := recipes.NewFileStore(t.TempDir())
	require.NoError(t, err)

	opts := testOptions(srv.URL + "/ricette-cat")
	opts.MaxPages = 1
	s, err := New(opts, repo, logger.NewTest(t))
	require.NoError(t, err)

	report, err := s.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, Report{Pages: 1, Processed: 2, Saved: 1}, report)
}

func TestRunCancelled(t *testing.T) {
	srv := cookbookServer(t)
	repo, err := recipes.NewFileStore(t.TempDir())
	require.NoError(t, err)

	opts := testOptions(srv.URL + "/ricette-cat")
	opts.PageDelay = time.Hour
	s, err := New(opts, repo, logger.NewTest(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	_, err = s.Run(ctx, func(page, total int) { cancel() })
	assert.ErrorIs(t, err, context.Canceled)
}
