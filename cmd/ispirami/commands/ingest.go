package commands

import (
	"github.com/pkg/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/korjavin/ispirami/pkg/config"
	"github.com/korjavin/ispirami/pkg/recipes"
)

// IngestCmd copies the JSON recipe files into another store
var IngestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Copy the JSON recipe files into the database or the key-value store",
	Long: `Read every recipe file in the recipes directory and save it into the
store named by --to. Recipes already present are skipped, so the command
can be run again after a new scrape.`,
	RunE: runIngest,
}

var ingestToFlag string

func init() {
	IngestCmd.Flags().StringVar(&ingestToFlag, "to", config.StoreSQL, "destination store: sql or badger")
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestToFlag == config.StoreFiles {
		return errors.New("the destination must differ from the recipe files")
	}

	src, err := recipes.NewFileStore(cfg.RecipesDir)
	if err != nil {
		return err
	}
	defer src.Close()

	dstCfg := *cfg
	dstCfg.Store = ingestToFlag
	if err := dstCfg.Validate(); err != nil {
		return err
	}
	dst, err := recipes.Open(&dstCfg)
	if err != nil {
		return err
	}
	defer dst.Close()

	spinner, _ := pterm.DefaultSpinner.Start("Ingesting recipes from " + cfg.RecipesDir)
	report, err := recipes.Ingest(cmd.Context(), src, dst)
	if err != nil {
		if spinner != nil {
			spinner.Fail(err.Error())
		}
		return err
	}
	if spinner != nil {
		spinner.Success("Ingest finished")
	}
	pterm.Printf("Read %d recipes: %d saved, %d already present\n", report.Read, report.Saved, report.Skipped)
	return nil
}
