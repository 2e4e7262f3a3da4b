package recipes

import (
	"context"

	"github.com/pkg/errors"

	"github.com/korjavin/ispirami/pkg/logger"
	"github.com/korjavin/ispirami/pkg/models"
	"github.com/korjavin/ispirami/pkg/storage"
)

const recipePrefix = "recipe:"

var _ Repository = (*KVStore)(nil)

// KVStore keeps recipes in BadgerDB under "recipe:<url>"
type KVStore struct {
	store  *storage.Store
	owned  bool
	logger *logger.Logger
}

// NewKVStore wraps a store. When owned is true Close also closes the store.
func NewKVStore(store *storage.Store, owned bool) *KVStore {
	return &KVStore{store: store, owned: owned, logger: logger.New("recipes")}
}

// Save stores the recipe unless its URL is already present
func (s *KVStore) Save(ctx context.Context, r *models.Recipe) (bool, error) {
	exists, err := s.Exists(ctx, r)
	if err != nil || exists {
		return false, err
	}
	if err := s.store.Set(recipePrefix+r.URL, r); err != nil {
		return false, errors.Wrap(err, "failed to save recipe")
	}
	return true, nil
}

// Exists reports whether the URL is stored
func (s *KVStore) Exists(ctx context.Context, r *models.Recipe) (bool, error) {
	return s.store.Exists(recipePrefix + r.URL)
}

// Get returns the recipe stored for url
func (s *KVStore) Get(ctx context.Context, url string) (*models.Recipe, error) {
	var r models.Recipe
	if err := s.store.Get(recipePrefix+url, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// List returns all stored recipes
func (s *KVStore) List(ctx context.Context) ([]models.Recipe, error) {
	keys, err := s.store.List(recipePrefix)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list recipes")
	}

	all := make([]models.Recipe, 0, len(keys))
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var r models.Recipe
		if err := s.store.Get(key, &r); err != nil {
			s.logger.Error("Failed to get recipe %s: %v", key, err)
			continue
		}
		all = append(all, r)
	}

	sortRecipes(all)
	return all, nil
}

// Close closes the underlying store if this repository owns it
func (s *KVStore) Close() error {
	if s.owned {
		return s.store.Close()
	}
	return nil
}
