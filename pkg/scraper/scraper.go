// Package scraper downloads recipes from a paginated online cookbook and
// saves them into a recipe repository.
package scraper

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/korjavin/ispirami/pkg/config"
	"github.com/korjavin/ispirami/pkg/logger"
	"github.com/korjavin/ispirami/pkg/recipes"
)

const userAgent = "ispirami/1.0 (+https://github.com/korjavin/ispirami)"

// Options controls pagination and pacing
type Options struct {
	BaseURL string
	// MaxPages caps the number of listing pages. 0 means all of them.
	MaxPages int
	// Delay is the minimum gap between two requests
	Delay time.Duration
	// PageDelay is slept after each listing page except the last
	PageDelay time.Duration
	// PauseEvery pages the scraper sleeps for Pause. 0 disables the pause.
	PauseEvery int
	Pause      time.Duration
	Timeout    time.Duration
	// Retries is the number of attempts per request
	Retries int
	// Backoff is the wait before the first retry. It doubles on every retry.
	Backoff time.Duration
}

// OptionsFromConfig builds scraper options from the application config
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		BaseURL:    cfg.CookbookURL,
		MaxPages:   cfg.ScrapeMaxPages,
		Delay:      cfg.ScrapeDelay,
		PageDelay:  cfg.ScrapePageDelay,
		PauseEvery: cfg.ScrapePauseEach,
		Pause:      cfg.ScrapePause,
		Timeout:    cfg.HTTPTimeout,
		Retries:    3,
		Backoff:    2 * time.Second,
	}
}

// Report summarises a scraping run
type Report struct {
	Pages     int
	Processed int
	Saved     int
	// Failed counts listing pages and recipes that could not be downloaded or stored
	Failed int
}

// Progress is called after every listing page
type Progress func(page, total int)

// Scraper walks the cookbook listing and stores every recipe it finds
type Scraper struct {
	opts    Options
	base    *url.URL
	repo    recipes.Repository
	client  *http.Client
	limiter *rate.Limiter
	logger  *logger.Logger
}

// New creates a scraper saving into repo
func New(opts Options, repo recipes.Repository, log *logger.Logger) (*Scraper, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, errors.Errorf("invalid cookbook URL %q", opts.BaseURL)
	}
	if opts.Retries < 1 {
		opts.Retries = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if log == nil {
		log = logger.New("scraper")
	}

	limit := rate.Inf
	if opts.Delay > 0 {
		limit = rate.Every(opts.Delay)
	}

	return &Scraper{
		opts:    opts,
		base:    base,
		repo:    repo,
		client:  &http.Client{Timeout: opts.Timeout},
		limiter: rate.NewLimiter(limit, 1),
		logger:  log,
	}, nil
}

// PageURL returns the address of listing page n. Page 1 is the base URL.
func (s *Scraper) PageURL(n int) string {
	if n <= 1 {
		return s.opts.BaseURL
	}
	return s.opts.BaseURL + "/page" + strconv.Itoa(n) + "/"
}

// CountPages reads the number of listing pages from the first page
func (s *Scraper) CountPages(ctx context.Context) (int, error) {
	doc, err := s.Fetch(ctx, s.PageURL(1))
	if err != nil {
		return 0, errors.Wrap(err, "failed to count pages")
	}
	return TotalPages(doc), nil
}

// Fetch downloads and parses a page, retrying failed attempts with
// exponential backoff.
func (s *Scraper) Fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	backoff := s.opts.Backoff
	var lastErr error

	for attempt := 1; attempt <= s.opts.Retries; attempt++ {
		doc, err := s.fetchOnce(ctx, pageURL)
		if err == nil {
			return doc, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if attempt == s.opts.Retries {
			break
		}

		s.logger.Debug("Attempt %d failed for %s: %v, retrying in %v", attempt, pageURL, err, backoff)
		if err := sleep(ctx, backoff); err != nil {
			return nil, err
		}
		backoff *= 2
	}

	return nil, errors.Wrapf(lastErr, "failed to download %s after %d attempts", pageURL, s.opts.Retries)
}

func (s *Scraper) fetchOnce(ctx context.Context, pageURL string) (*goquery.Document, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build request")
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.Errorf("unexpected status %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse HTML")
	}
	return doc, nil
}

// SaveRecipe downloads one recipe page and stores it. Pages without
// ingredients and recipes already stored are skipped and report false.
func (s *Scraper) SaveRecipe(ctx context.Context, recipeURL string) (bool, error) {
	doc, err := s.Fetch(ctx, recipeURL)
	if err != nil {
		return false, err
	}

	r := ParseRecipe(doc, recipeURL)
	s.logger.Debug("Processing: %s - Found %d ingredients", r.Title, len(r.Ingredients))
	if len(r.Ingredients) == 0 {
		return false, nil
	}
	return s.repo.Save(ctx, r)
}

// Run scrapes every listing page and the recipes linked from it
func (s *Scraper) Run(ctx context.Context, progress Progress) (Report, error) {
	var report Report

	total, err := s.CountPages(ctx)
	if err != nil {
		return report, err
	}
	if total < 1 {
		total = 1
	}
	if s.opts.MaxPages > 0 && total > s.opts.MaxPages {
		total = s.opts.MaxPages
	}
	s.logger.Info("Scraping %d pages from %s", total, s.opts.BaseURL)

	for page := 1; page <= total; page++ {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		if page > 1 && s.opts.PauseEvery > 0 && page%s.opts.PauseEvery == 0 {
			s.logger.Warn("Cautious pause: sleeping for %v after %d pages", s.opts.Pause, page)
			if err := sleep(ctx, s.opts.Pause); err != nil {
				return report, err
			}
			s.logger.Info("Resuming scraping")
		}

		saved, err := s.scrapePage(ctx, page, &report)
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			report.Failed++
			s.logger.Error("Failed to process page %d: %v", page, err)
		} else {
			s.logger.Info("Page %d: %d recipes saved", page, saved)
		}

		report.Pages++
		if progress != nil {
			progress(page, total)
		}

		if page < total {
			if err := sleep(ctx, s.opts.PageDelay); err != nil {
				return report, err
			}
		}
	}

	s.logger.Info("Scraping completed: %d processed, %d saved, %d failed", report.Processed, report.Saved, report.Failed)
	return report, nil
}

func (s *Scraper) scrapePage(ctx context.Context, page int, report *Report) (int, error) {
	doc, err := s.Fetch(ctx, s.PageURL(page))
	if err != nil {
		return 0, err
	}

	links := RecipeLinks(doc, s.base)
	s.logger.Info("Page %d: found %d recipe links", page, len(links))

	saved := 0
	for _, link := range links {
		if !IsRecipeLink(link) {
			s.logger.Debug("Skipping category page: %s", link)
			continue
		}
		if err := ctx.Err(); err != nil {
			return saved, err
		}

		report.Processed++
		ok, err := s.SaveRecipe(ctx, link)
		if err != nil {
			if ctx.Err() != nil {
				return saved, ctx.Err()
			}
			report.Failed++
			s.logger.Error("Failed to save %s: %v", link, err)
			continue
		}
		if ok {
			report.Saved++
			saved++
		}
	}
	return saved, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
