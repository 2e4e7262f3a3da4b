// Package commands implements the ispirami subcommands.
package commands

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/korjavin/ispirami/pkg/config"
	"github.com/korjavin/ispirami/pkg/fridge"
	"github.com/korjavin/ispirami/pkg/logger"
	"github.com/korjavin/ispirami/pkg/models"
	"github.com/korjavin/ispirami/pkg/recipes"
)

var (
	cfg *config.Config

	storeFlag      string
	recipesDirFlag string
	fridgeFileFlag string
	verboseFlag    bool
)

// AddFlags registers the global flags. Flags override the environment.
func AddFlags(root *cobra.Command) {
	root.PersistentFlags().StringVar(&storeFlag, "store", "", "recipe store: files, badger or sql (env STORE)")
	root.PersistentFlags().StringVar(&recipesDirFlag, "recipes", "", "recipes directory (env RECIPES_DIR)")
	root.PersistentFlags().StringVar(&fridgeFileFlag, "fridge", "", "fridge JSON file (env FRIDGE_FILE)")
	root.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "debug logging")
}

// LoadConfig reads the configuration before any command runs
func LoadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.LoadFromEnv()
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}
	if storeFlag != "" {
		c.Store = storeFlag
	}
	if recipesDirFlag != "" {
		c.RecipesDir = recipesDirFlag
	}
	if fridgeFileFlag != "" {
		c.FridgeFile = fridgeFileFlag
	}
	if verboseFlag {
		logger.SetLevel("debug")
	}
	if err := c.Validate(); err != nil {
		return err
	}
	cfg = c
	return nil
}

func openRepo() (recipes.Repository, error) {
	repo, err := recipes.Open(cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s recipe store", cfg.Store)
	}
	return repo, nil
}

// loadFridge reads the fridge file. A missing file is an empty fridge.
func loadFridge(path string) (*models.Fridge, error) {
	f, err := fridge.LoadFile(path)
	if errors.Is(err, models.ErrNotFound) {
		return models.NewFridge(path, 0), nil
	}
	return f, err
}

func allRecipes(ctx context.Context) ([]models.Recipe, error) {
	repo, err := openRepo()
	if err != nil {
		return nil, err
	}
	defer repo.Close()
	return repo.List(ctx)
}
