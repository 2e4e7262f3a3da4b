package commands

import (
	"context"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/korjavin/ispirami/pkg/logger"
	"github.com/korjavin/ispirami/pkg/scraper"
)

// ScrapeCmd downloads the cookbook into the recipe store
var ScrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Download recipes from the online cookbook",
	Long: `Walk the cookbook listing pages and save every recipe that has
ingredients and is not stored yet. Requests are paced and the scraper
pauses every SCRAPE_PAUSE_EVERY pages.`,
	RunE: runScrape,
}

var maxPagesFlag int

func init() {
	ScrapeCmd.Flags().IntVar(&maxPagesFlag, "max-pages", -1, "limit the number of listing pages (default SCRAPE_MAX_PAGES)")
}

func runScrape(cmd *cobra.Command, args []string) error {
	maxPages := cfg.ScrapeMaxPages
	if maxPagesFlag >= 0 {
		maxPages = maxPagesFlag
	}
	_, err := scrape(cmd.Context(), maxPages)
	return err
}

func scrape(ctx context.Context, maxPages int) (scraper.Report, error) {
	repo, err := openRepo()
	if err != nil {
		return scraper.Report{}, err
	}
	defer repo.Close()

	opts := scraper.OptionsFromConfig(cfg)
	opts.MaxPages = maxPages
	s, err := scraper.New(opts, repo, logger.New("scraper"))
	if err != nil {
		return scraper.Report{}, err
	}

	var bar *pterm.ProgressbarPrinter
	report, err := s.Run(ctx, func(page, total int) {
		if bar == nil {
			bar, _ = pterm.DefaultProgressbar.WithTotal(total).WithTitle("pages…").Start()
		}
		if bar != nil {
			bar.Increment()
		}
	})
	if bar != nil {
		bar.Stop()
	}

	pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData{
		{"Pages", "Processed", "Saved", "Failed"},
		{strconv.Itoa(report.Pages), strconv.Itoa(report.Processed), strconv.Itoa(report.Saved), strconv.Itoa(report.Failed)},
	}).Render()

	if err != nil {
		return report, err
	}
	pterm.Success.Println("Scraping completed.")
	return report, nil
}
