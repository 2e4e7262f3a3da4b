// Package dinner answers "what can I cook" questions by running the matcher
// over the stored recipes.
package dinner

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/korjavin/ispirami/pkg/logger"
	"github.com/korjavin/ispirami/pkg/matcher"
	"github.com/korjavin/ispirami/pkg/models"
	"github.com/korjavin/ispirami/pkg/recipes"
)

// Service provides recipe matching against a fridge
type Service struct {
	repo   recipes.Repository
	logger *logger.Logger
}

// New creates a new dinner service
func New(repo recipes.Repository) *Service {
	return &Service{
		repo:   repo,
		logger: logger.New("dinner"),
	}
}

// NearMiss is a recipe that needs a few more ingredients
type NearMiss struct {
	Recipe  models.Recipe
	Missing []string
}

// Cookable returns the recipes whose ingredients are all matched by the
// fridge, in repository order.
func (s *Service) Cookable(ctx context.Context, fridgeNames []string) ([]models.Recipe, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list recipes")
	}

	m := matcher.New(fridgeNames)
	matched := make([]models.Recipe, 0)
	for i := range all {
		if m.IsSatisfied(all[i].IngredientNames()) {
			matched = append(matched, all[i])
		}
	}

	s.logger.Debug("%d of %d recipes match %d fridge ingredients", len(matched), len(all), m.Size())
	return matched, nil
}

// Missing returns the recipe stored under url and the ingredients the fridge lacks for it
func (s *Service) Missing(ctx context.Context, fridgeNames []string, url string) (*models.Recipe, []string, error) {
	r, err := s.repo.Get(ctx, url)
	if err != nil {
		return nil, nil, err
	}
	return r, matcher.New(fridgeNames).Missing(r.IngredientNames()), nil
}

// Almost returns recipes missing between 1 and maxMissing ingredients, fewest
// missing first. A limit of 0 returns all of them.
func (s *Service) Almost(ctx context.Context, fridgeNames []string, maxMissing, limit int) ([]NearMiss, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list recipes")
	}

	m := matcher.New(fridgeNames)
	near := make([]NearMiss, 0)
	for i := range all {
		missing := m.Missing(all[i].IngredientNames())
		if len(missing) == 0 || len(missing) > maxMissing {
			continue
		}
		near = append(near, NearMiss{Recipe: all[i], Missing: missing})
	}

	sort.SliceStable(near, func(i, j int) bool {
		return len(near[i].Missing) < len(near[j].Missing)
	})
	if limit > 0 && len(near) > limit {
		near = near[:limit]
	}
	return near, nil
}
