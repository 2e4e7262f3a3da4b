package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/korjavin/ispirami/cmd/ispirami/commands"
	"github.com/korjavin/ispirami/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "ispirami",
	Short: "Find the recipes you can cook with what is in your fridge",
	Long: `ispirami scrapes an online cookbook and tells you which recipes
can be cooked with the ingredients in your fridge.

Examples:
  ispirami                         # scrape if needed, then match fridge.json
  ispirami scrape --max-pages 5    # download the first five listing pages
  ispirami match --missing 2       # also show recipes missing up to two ingredients
  ispirami fridge add "uova: 6, latte"
  ispirami ingest --to sql         # copy the JSON recipes into the database
  ispirami stats --limit 10`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: commands.LoadConfig,
	RunE:              commands.RunDefault,
}

func init() {
	commands.AddFlags(rootCmd)
	rootCmd.AddCommand(
		commands.RunCmd,
		commands.ScrapeCmd,
		commands.MatchCmd,
		commands.IngestCmd,
		commands.StatsCmd,
		commands.SearchCmd,
		commands.ShowCmd,
		commands.ParseCmd,
		commands.FridgeCmd,
	)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logger.Global.Sync()
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}
