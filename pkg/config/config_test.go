package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	for _, k := range []string{"STORE", "DB_DRIVER", "RECIPES_DIR", "SCRAPE_DELAY", "SCRAPE_MAX_PAGES", "BOT_TOKEN"} {
		t.Setenv(k, "")
	}

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "Recipes", cfg.RecipesDir)
	assert.Equal(t, StoreFiles, cfg.Store)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, 500*time.Millisecond, cfg.ScrapeDelay)
	assert.Equal(t, 40, cfg.ScrapePauseEach)
	assert.Equal(t, "https://www.giallozafferano.it/ricette-cat", cfg.CookbookURL)
	assert.Error(t, cfg.RequireBot())
}

func TestLoadFromEnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("STORE", "SQL")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("SCRAPE_MAX_PAGES", "3")
	t.Setenv("SCRAPE_PAUSE", "10s")
	t.Setenv("COOKBOOK_URL", "http://localhost:8080/list/")
	t.Setenv("BOT_TOKEN", "123456789:secret")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, StoreSQL, cfg.Store)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, 3, cfg.ScrapeMaxPages)
	assert.Equal(t, 10*time.Second, cfg.ScrapePause)
	assert.Equal(t, "http://localhost:8080/list", cfg.CookbookURL)
	assert.NoError(t, cfg.RequireBot())
	assert.Equal(t, "12345678...REDACTED...", cfg.Redacted().BotToken)
}

func TestLoadFromEnvInvalid(t *testing.T) {
	chdir(t, t.TempDir())

	tests := []struct {
		key, value string
	}{
		{"STORE", "mongo"},
		{"DB_DRIVER", "mysql"},
		{"SCRAPE_MAX_PAGES", "many"},
		{"SCRAPE_MAX_PAGES", "-1"},
		{"HTTP_TIMEOUT", "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := LoadFromEnv()
			assert.Error(t, err)
		})
	}
}

func TestRedactedDSN(t *testing.T) {
	cfg := &Config{DBDSN: "host=db user=postgres password=hunter2 dbname=ispirami"}
	assert.Equal(t, "host=db user=postgres password=...REDACTED...", cfg.Redacted().DBDSN)
	assert.Equal(t, "host=db user=postgres password=hunter2 dbname=ispirami", cfg.DBDSN)
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
