package commands

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/korjavin/ispirami/pkg/models"
	"github.com/korjavin/ispirami/pkg/recipes"
)

// SearchCmd finds recipes by ingredient
var SearchCmd = &cobra.Command{
	Use:   "search <ingredient>",
	Short: "List the recipes using an ingredient",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

// ShowCmd prints one recipe
var ShowCmd = &cobra.Command{
	Use:   "show <url>",
	Short: "Show a stored recipe",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	repo, err := openRepo()
	if err != nil {
		return err
	}
	defer repo.Close()

	found, err := searchByIngredient(cmd.Context(), repo, query)
	if err != nil {
		return err
	}

	pterm.Info.Printf("%d recipes use %q\n", len(found), query)
	if len(found) == 0 {
		return nil
	}
	data := pterm.TableData{{"Recipe", "Category", "URL"}}
	for _, r := range found {
		data = append(data, []string{r.Title, r.Category, r.URL})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

// searchByIngredient runs the query in the database when possible and
// otherwise scans every recipe.
func searchByIngredient(ctx context.Context, repo recipes.Repository, query string) ([]models.Recipe, error) {
	if db, ok := repo.(*recipes.SQLStore); ok {
		return db.SearchByIngredient(ctx, query)
	}

	all, err := repo.List(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(query)
	found := make([]models.Recipe, 0)
	for _, r := range all {
		for _, name := range r.IngredientNames() {
			if strings.Contains(strings.ToLower(name), needle) {
				found = append(found, r)
				break
			}
		}
	}
	return found, nil
}

func runShow(cmd *cobra.Command, args []string) error {
	repo, err := openRepo()
	if err != nil {
		return err
	}
	defer repo.Close()

	r, err := repo.Get(cmd.Context(), args[0])
	if errors.Is(err, models.ErrNotFound) {
		pterm.Warning.Printf("No recipe stored for %s\n", args[0])
		return nil
	}
	if err != nil {
		return err
	}

	pterm.DefaultHeader.Println(r.Title)
	pterm.Printf("Category: %s\n", r.Category)
	if r.Servings != "" {
		pterm.Printf("Serves:   %s\n", r.Servings)
	}
	pterm.Printf("URL:      %s\n\n", r.URL)

	data := pterm.TableData{{"Ingredient", "Amount"}}
	for _, ing := range r.Ingredients {
		data = append(data, []string{ing.Name, ing.Amount().String()})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
