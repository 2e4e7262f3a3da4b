package commands

import (
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/korjavin/ispirami/pkg/config"
	"github.com/korjavin/ispirami/pkg/matcher"
)

// RunCmd scrapes when there are no recipes yet, then matches the fridge
var RunCmd = &cobra.Command{
	Use:   "run",
	Short: "Scrape if no recipes are stored, then print the matching recipes",
	RunE:  RunDefault,
}

// RunDefault is the default flow when no subcommand is given
func RunDefault(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	missing, err := recipesMissing(cmd)
	if err != nil {
		return err
	}
	if missing {
		pterm.Info.Println("Recipes not found. Running scraper to download recipes...")
		if _, err := scrape(ctx, cfg.ScrapeMaxPages); err != nil {
			return err
		}
	} else {
		pterm.Info.Println("Recipes found. Skipping scraper execution.")
	}

	pterm.Info.Println("Running matcher...")
	f, err := loadFridge(cfg.FridgeFile)
	if err != nil {
		return err
	}
	all, err := allRecipes(ctx)
	if err != nil {
		return err
	}
	printMatches(matcher.FromFridge(f).MatchRecipes(all))
	pterm.Success.Println("Matching completed.")
	return nil
}

func recipesMissing(cmd *cobra.Command) (bool, error) {
	if cfg.Store == config.StoreFiles {
		_, err := os.Stat(cfg.RecipesDir)
		return os.IsNotExist(err), nil
	}
	all, err := allRecipes(cmd.Context())
	if err != nil {
		return false, err
	}
	return len(all) == 0, nil
}

func printMatches(urls []string) {
	pterm.Printf("Found %d matching recipes.\n", len(urls))
	if len(urls) == 0 {
		pterm.Println("No recipes found.")
		return
	}
	pterm.Println("Matching recipes:")
	for _, url := range urls {
		pterm.Printf("  - %s\n", url)
	}
}
