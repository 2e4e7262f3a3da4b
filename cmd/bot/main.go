package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/korjavin/ispirami/pkg/config"
	"github.com/korjavin/ispirami/pkg/dinner"
	"github.com/korjavin/ispirami/pkg/fridge"
	"github.com/korjavin/ispirami/pkg/logger"
	"github.com/korjavin/ispirami/pkg/openai"
	"github.com/korjavin/ispirami/pkg/recipes"
	"github.com/korjavin/ispirami/pkg/scheduler"
	"github.com/korjavin/ispirami/pkg/scraper"
	"github.com/korjavin/ispirami/pkg/state"
	"github.com/korjavin/ispirami/pkg/storage"
	"github.com/korjavin/ispirami/pkg/telegram"
)

const gcInterval = 10 * time.Minute

func main() {
	// Initialize logger
	log := logger.Global
	log.Info("Starting ispirami bot...")
	defer log.Sync()

	// Load configuration
	cfg, err := config.LoadFromEnv()
	if err == nil {
		err = cfg.RequireBot()
	}
	if err != nil {
		log.Error("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	// Initialize storage
	store, err := storage.New(cfg.DataDir)
	if err != nil {
		log.Error("Failed to initialize storage: %v", err)
		os.Exit(1)
	}
	defer store.Close()

	repo, err := openRecipes(cfg, store)
	if err != nil {
		log.Error("Failed to open recipes: %v", err)
		os.Exit(1)
	}
	defer repo.Close()

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	jobs := scheduler.New()
	jobs.Every("storage-gc", gcInterval, false, store.GC)
	jobs.Every("recipe-refresh", cfg.ScrapeRefresh, true, refreshJob(cfg, repo))
	jobs.Start(ctx)
	defer jobs.Stop()

	bot, err := telegram.New(cfg.BotToken)
	if err != nil {
		log.Error("Failed to initialize Telegram bot: %v", err)
		os.Exit(1)
	}

	a := &app{
		ctx:     ctx,
		bot:     bot,
		fridges: fridge.New(store),
		dinner:  dinner.New(repo),
		states:  state.New(state.DefaultTTL),
		logger:  logger.New("bot"),
	}
	if cfg.HasOpenAI() {
		a.llm = openai.New(cfg.OpenAIAPIKey, cfg.OpenAIAPIBase, cfg.OpenAIModel)
	} else {
		log.Info("OPENAI_API_KEY not set, fridge lists are split on commas and new lines")
	}

	log.Info("Bot is now running. Press CTRL-C to exit.")
	if err := bot.Start(ctx, a.handlers()); err != nil && ctx.Err() == nil {
		log.Error("Error running bot: %v", err)
	}
	log.Info("Shutting down...")
}

// openRecipes opens the configured recipe repository. The badger backend
// shares the bot's store since badger allows one process per directory.
func openRecipes(cfg *config.Config, store *storage.Store) (recipes.Repository, error) {
	if cfg.Store == config.StoreBadger {
		return recipes.NewKVStore(store, false), nil
	}
	return recipes.Open(cfg)
}

// refreshJob re-scrapes the newest listing pages
func refreshJob(cfg *config.Config, repo recipes.Repository) scheduler.JobFunc {
	opts := scraper.OptionsFromConfig(cfg)
	opts.MaxPages = cfg.ScrapeRefreshPages
	log := logger.New("refresh")

	return func(ctx context.Context) error {
		s, err := scraper.New(opts, repo, log)
		if err != nil {
			return err
		}
		report, err := s.Run(ctx, nil)
		if err != nil {
			return err
		}
		log.Info("Refresh saved %d new recipes", report.Saved)
		return nil
	}
}
