package commands

import (
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/korjavin/ispirami/pkg/dinner"
)

// MatchCmd prints the recipes the fridge can cook
var MatchCmd = &cobra.Command{
	Use:   "match",
	Short: "Print the recipes that can be cooked with the fridge contents",
	Long: `Print the URL of every stored recipe whose ingredients all match the
fridge. A fridge ingredient matches a recipe ingredient when either name
contains the other, ignoring case.`,
	RunE: runMatch,
}

var missingFlag int

func init() {
	MatchCmd.Flags().IntVar(&missingFlag, "missing", 0, "also list recipes missing at most this many ingredients")
}

func runMatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	f, err := loadFridge(cfg.FridgeFile)
	if err != nil {
		return err
	}
	repo, err := openRepo()
	if err != nil {
		return err
	}
	defer repo.Close()

	svc := dinner.New(repo)
	found, err := svc.Cookable(ctx, f.Names())
	if err != nil {
		return err
	}
	urls := make([]string, len(found))
	for i := range found {
		urls[i] = found[i].URL
	}
	printMatches(urls)

	if missingFlag <= 0 {
		return nil
	}
	near, err := svc.Almost(ctx, f.Names(), missingFlag, 0)
	if err != nil {
		return err
	}
	pterm.Println()
	pterm.Info.Printf("%d recipes missing at most %d ingredients\n", len(near), missingFlag)
	if len(near) == 0 {
		return nil
	}
	data := pterm.TableData{{"Recipe", "Missing", "URL"}}
	for _, n := range near {
		data = append(data, []string{n.Recipe.Title, strings.Join(n.Missing, ", "), n.Recipe.URL})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
