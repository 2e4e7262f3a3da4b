// Package recipes stores scraped recipes. Recipes can live as one JSON file
// each, in the embedded key-value store, or in a relational database.
package recipes

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/korjavin/ispirami/pkg/config"
	"github.com/korjavin/ispirami/pkg/logger"
	"github.com/korjavin/ispirami/pkg/models"
	"github.com/korjavin/ispirami/pkg/storage"
)

// Repository persists recipes keyed by URL
type Repository interface {
	// Save stores a recipe. It returns false, without error, when the
	// recipe is already stored.
	Save(ctx context.Context, r *models.Recipe) (bool, error)
	// Get returns the recipe with the given URL or models.ErrNotFound.
	Get(ctx context.Context, url string) (*models.Recipe, error)
	// List returns all recipes sorted by title, then URL.
	List(ctx context.Context) ([]models.Recipe, error)
	// Exists reports whether the recipe is already stored.
	Exists(ctx context.Context, r *models.Recipe) (bool, error)
	Close() error
}

// Open returns the repository selected by cfg.Store
func Open(cfg *config.Config) (Repository, error) {
	switch cfg.Store {
	case config.StoreFiles:
		return NewFileStore(cfg.RecipesDir)
	case config.StoreBadger:
		store, err := storage.New(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		return NewKVStore(store, true), nil
	case config.StoreSQL:
		return OpenSQL(cfg.DBDriver, cfg.DBDSN)
	default:
		return nil, errors.Errorf("unknown recipe store %q", cfg.Store)
	}
}

// IngestReport counts what Ingest did
type IngestReport struct {
	Read    int
	Saved   int
	Skipped int
}

// Ingest copies every recipe from src into dst. Recipes dst already holds are skipped.
func Ingest(ctx context.Context, src, dst Repository) (IngestReport, error) {
	log := logger.New("ingest")

	var report IngestReport
	all, err := src.List(ctx)
	if err != nil {
		return report, errors.Wrap(err, "failed to list source recipes")
	}

	for i := range all {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Read++

		saved, err := dst.Save(ctx, &all[i])
		if err != nil {
			return report, errors.Wrapf(err, "failed to save %s", all[i].URL)
		}
		if saved {
			report.Saved++
		} else {
			report.Skipped++
		}

		if report.Read%10 == 0 {
			log.Info("Processed %d recipes...", report.Read)
		}
	}

	log.Info("Ingest finished: %d read, %d saved, %d skipped", report.Read, report.Saved, report.Skipped)
	return report, nil
}

func sortRecipes(all []models.Recipe) {
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Title != all[j].Title {
			return all[i].Title < all[j].Title
		}
		return all[i].URL < all[j].URL
	})
}
