package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/korjavin/ispirami/pkg/logger"
)

// Recipe store backends
const (
	StoreFiles  = "files"
	StoreBadger = "badger"
	StoreSQL    = "sql"
)

// SQL drivers
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Config holds all configuration for the application
type Config struct {
	// Storage configuration
	RecipesDir string
	FridgeFile string
	Store      string
	DataDir    string
	DBDriver   string
	DBDSN      string

	// Scraper configuration
	CookbookURL     string
	ScrapeMaxPages  int
	ScrapeDelay     time.Duration
	ScrapePageDelay time.Duration
	ScrapePauseEach int
	ScrapePause     time.Duration
	HTTPTimeout     time.Duration
	// ScrapeRefresh is how often the bot re-scrapes the first
	// ScrapeRefreshPages listing pages. 0 disables refreshing.
	ScrapeRefresh      time.Duration
	ScrapeRefreshPages int

	// OpenAI configuration, optional
	OpenAIAPIBase string
	OpenAIAPIKey  string
	OpenAIModel   string

	// Telegram Bot configuration, bot only
	BotToken string

	LogLevel string
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Global.Warn("Error loading .env file: %v", err)
	}

	cfg := &Config{
		RecipesDir:    getEnvWithDefault("RECIPES_DIR", "Recipes"),
		FridgeFile:    getEnvWithDefault("FRIDGE_FILE", "fridge.json"),
		Store:         strings.ToLower(getEnvWithDefault("STORE", StoreFiles)),
		DataDir:       getEnvWithDefault("DATA_DIR", "data"),
		DBDriver:      strings.ToLower(getEnvWithDefault("DB_DRIVER", DriverSQLite)),
		DBDSN:         getEnvWithDefault("DB_DSN", "recipes.db"),
		CookbookURL:   strings.TrimRight(getEnvWithDefault("COOKBOOK_URL", "https://www.giallozafferano.it/ricette-cat"), "/"),
		OpenAIAPIBase: getEnvWithDefault("OPENAI_API_BASE", "https://api.openai.com/v1"),
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   getEnvWithDefault("OPENAI_MODEL", "gpt-4o-mini"),
		BotToken:      os.Getenv("BOT_TOKEN"),
		LogLevel:      getEnvWithDefault("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.ScrapeMaxPages, err = getIntEnv("SCRAPE_MAX_PAGES", 0); err != nil {
		return nil, err
	}
	if cfg.ScrapePauseEach, err = getIntEnv("SCRAPE_PAUSE_EVERY", 40); err != nil {
		return nil, err
	}
	if cfg.ScrapeDelay, err = getDurationEnv("SCRAPE_DELAY", 500*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.ScrapePageDelay, err = getDurationEnv("SCRAPE_PAGE_DELAY", time.Second); err != nil {
		return nil, err
	}
	if cfg.ScrapePause, err = getDurationEnv("SCRAPE_PAUSE", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getDurationEnv("HTTP_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.ScrapeRefresh, err = getDurationEnv("SCRAPE_REFRESH", 0); err != nil {
		return nil, err
	}
	if cfg.ScrapeRefreshPages, err = getIntEnv("SCRAPE_REFRESH_PAGES", 3); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.SetLevel(cfg.LogLevel)
	logger.Global.Debug("Configuration loaded: %+v", cfg.Redacted())
	return cfg, nil
}

// Validate checks the enumerated settings
func (c *Config) Validate() error {
	switch c.Store {
	case StoreFiles, StoreBadger, StoreSQL:
	default:
		return errors.Errorf("STORE must be one of %s, %s, %s; got %q", StoreFiles, StoreBadger, StoreSQL, c.Store)
	}
	switch c.DBDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return errors.Errorf("DB_DRIVER must be %s or %s; got %q", DriverSQLite, DriverPostgres, c.DBDriver)
	}
	if c.ScrapeMaxPages < 0 {
		return errors.New("SCRAPE_MAX_PAGES cannot be negative")
	}
	return nil
}

// RequireBot checks the settings the Telegram bot cannot run without
func (c *Config) RequireBot() error {
	if c.BotToken == "" {
		return errors.New("BOT_TOKEN environment variable is required")
	}
	return nil
}

// HasOpenAI reports whether an OpenAI key is configured
func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

// Redacted returns a copy safe for logging
func (c *Config) Redacted() Config {
	out := *c
	out.BotToken = redact(out.BotToken)
	out.OpenAIAPIKey = redact(out.OpenAIAPIKey)
	if i := strings.Index(out.DBDSN, "password="); i >= 0 {
		out.DBDSN = out.DBDSN[:i] + "password=...REDACTED..."
	}
	return out
}

func redact(secret string) string {
	if len(secret) > 8 {
		return secret[:8] + "...REDACTED..."
	}
	return secret
}

// getEnvWithDefault returns the value of the environment variable or the default value
func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s", key)
	}
	return n, nil
}

func getDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s", key)
	}
	return d, nil
}
