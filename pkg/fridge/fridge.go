package fridge

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/korjavin/ispirami/pkg/logger"
	"github.com/korjavin/ispirami/pkg/models"
	"github.com/korjavin/ispirami/pkg/storage"
)

// Service provides fridge management functionality
type Service struct {
	store  *storage.Store
	logger *logger.Logger
}

// New creates a new fridge service
func New(store *storage.Store) *Service {
	return &Service{
		store:  store,
		logger: logger.New("fridge"),
	}
}

func fridgeKey(owner int64) string {
	return fmt.Sprintf("fridge:%d", owner)
}

// GetFridge retrieves the fridge for an owner, creating an empty one on first use
func (s *Service) GetFridge(owner int64) (*models.Fridge, error) {
	key := fridgeKey(owner)

	var fridge models.Fridge
	err := s.store.Get(key, &fridge)
	if err == nil {
		if fridge.Ingredients == nil {
			fridge.Ingredients = make(map[string]models.FridgeItem)
		}
		return &fridge, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, errors.Wrap(err, "failed to load fridge")
	}

	created := models.NewFridge(key, owner)
	if err := s.store.Set(key, created); err != nil {
		return nil, errors.Wrap(err, "failed to create fridge")
	}
	s.logger.Debug("Created fridge %s", key)
	return created, nil
}

// AddIngredient adds an ingredient to the fridge
func (s *Service) AddIngredient(owner int64, name, quantity string) error {
	return s.UpdateIngredients(owner, map[string]string{name: quantity})
}

// RemoveIngredient removes an ingredient from the fridge
func (s *Service) RemoveIngredient(owner int64, name string) error {
	return s.RemoveIngredients(owner, []string{name})
}

// ListIngredients returns the fridge contents sorted by name
func (s *Service) ListIngredients(owner int64) ([]models.FridgeItem, error) {
	fridge, err := s.GetFridge(owner)
	if err != nil {
		return nil, err
	}
	return fridge.Items(), nil
}

// Names returns the fridge ingredient names for matching
func (s *Service) Names(owner int64) ([]string, error) {
	fridge, err := s.GetFridge(owner)
	if err != nil {
		return nil, err
	}
	return fridge.Names(), nil
}

// ResetFridge empties the fridge for an owner
func (s *Service) ResetFridge(owner int64) error {
	return s.store.Set(fridgeKey(owner), models.NewFridge(fridgeKey(owner), owner))
}

// UpdateIngredients adds or replaces multiple ingredients at once.
// Names are trimmed; blank names are ignored.
func (s *Service) UpdateIngredients(owner int64, ingredients map[string]string) error {
	fridge, err := s.GetFridge(owner)
	if err != nil {
		return err
	}

	now := time.Now()
	for name, quantity := range ingredients {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		fridge.Ingredients[name] = models.FridgeItem{
			Name:     name,
			Quantity: strings.TrimSpace(quantity),
			AddedAt:  now,
		}
	}

	fridge.LastUpdated = now
	return s.store.Set(fridge.ID, fridge)
}

// RemoveIngredients removes multiple ingredients at once.
// Names are compared case-insensitively.
func (s *Service) RemoveIngredients(owner int64, names []string) error {
	fridge, err := s.GetFridge(owner)
	if err != nil {
		return err
	}

	removed := Remove(fridge, names)
	s.logger.Debug("Removed %d ingredients from %s", len(removed), fridge.ID)
	return s.store.Set(fridge.ID, fridge)
}
