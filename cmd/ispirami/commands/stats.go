package commands

import (
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/korjavin/ispirami/pkg/recipes"
	"github.com/korjavin/ispirami/pkg/stats"
)

// StatsCmd prints collection statistics
var StatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show recipe collection statistics",
	RunE:  runStats,
}

var statsLimitFlag int

func init() {
	StatsCmd.Flags().IntVar(&statsLimitFlag, "limit", 10, "number of top categories and ingredients to show")
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	repo, err := openRepo()
	if err != nil {
		return err
	}
	defer repo.Close()

	var st *stats.Statistics
	if db, ok := repo.(*recipes.SQLStore); ok {
		st, err = db.Statistics(ctx)
	} else {
		all, listErr := repo.List(ctx)
		st, err = stats.Compute(all), listErr
	}
	if err != nil {
		return err
	}

	pterm.DefaultHeader.Println("Recipe statistics")
	pterm.Printf("Total recipes:      %d\n", st.TotalRecipes)
	pterm.Printf("Ingredient lines:   %d\n", st.TotalIngredients)
	pterm.Printf("Unique ingredients: %d\n", st.UniqueIngredients)
	pterm.Println()

	if err := renderCounts("Category", st.TopCategories(statsLimitFlag)); err != nil {
		return err
	}
	pterm.Println()
	return renderCounts("Ingredient", st.TopIngredients(statsLimitFlag))
}

func renderCounts(title string, counts []stats.Count) error {
	data := pterm.TableData{{title, "Recipes"}}
	for _, c := range counts {
		data = append(data, []string{c.Name, strconv.Itoa(c.Count)})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
