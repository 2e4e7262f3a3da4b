package commands

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/korjavin/ispirami/pkg/config"
	"github.com/korjavin/ispirami/pkg/fridge"
	"github.com/korjavin/ispirami/pkg/models"
	"github.com/korjavin/ispirami/pkg/quantity"
	"github.com/korjavin/ispirami/pkg/recipes"
)

func TestMain(m *testing.M) {
	pterm.DisableOutput()
	os.Exit(m.Run())
}

// workspace points every path setting into a fresh directory
func workspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("RECIPES_DIR", filepath.Join(dir, "Recipes"))
	t.Setenv("FRIDGE_FILE", filepath.Join(dir, "fridge.json"))
	t.Setenv("DATA_DIR", filepath.Join(dir, "data"))
	t.Setenv("DB_DSN", filepath.Join(dir, "recipes.db"))
	t.Setenv("STORE", config.StoreFiles)
	t.Setenv("SCRAPE_DELAY", "0s")
	t.Setenv("SCRAPE_PAGE_DELAY", "0s")
	t.Setenv("OPENAI_API_KEY", "")
	return dir
}

func execute(t *testing.T, args ...string) error {
	t.Helper()

	storeFlag, recipesDirFlag, fridgeFileFlag, verboseFlag = "", "", "", false
	missingFlag, maxPagesFlag, ingestToFlag, statsLimitFlag = 0, -1, config.StoreSQL, 10

	root := &cobra.Command{
		Use:               "ispirami",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: LoadConfig,
		RunE:              RunDefault,
	}
	AddFlags(root)
	root.AddCommand(RunCmd, ScrapeCmd, MatchCmd, IngestCmd, StatsCmd, SearchCmd, ShowCmd, ParseCmd, FridgeCmd)
	if args == nil {
		args = []string{}
	}
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

func seedRecipes(t *testing.T, dir string) {
	t.Helper()
	repo, err := recipes.NewFileStore(dir)
	require.NoError(t, err)
	for _, r := range []models.Recipe{
		{Title: "Frittata", Category: "Secondi", URL: "https://example.com/frittata.html", Ingredients: []models.Ingredient{
			models.NewIngredient("uova", quantity.Parse("4")),
			models.NewIngredient("sale", quantity.Fallback),
		}},
		{Title: "Carbonara", Category: "Primi", URL: "https://example.com/carbonara.html", Ingredients: []models.Ingredient{
			models.NewIngredient("spaghetti", quantity.Parse("320 g")),
			models.NewIngredient("uova", quantity.Parse("4")),
			models.NewIngredient("guanciale", quantity.Parse("150 g")),
		}},
	} {
		r := r
		_, err := repo.Save(context.Background(), &r)
		require.NoError(t, err)
	}
}

func TestFridgeCommands(t *testing.T) {
	dir := workspace(t)
	path := filepath.Join(dir, "fridge.json")

	require.NoError(t, execute(t, "fridge", "add", "Uova: 6, latte: 1 l", "sale"))
	f, err := fridge.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"latte", "sale", "uova"}, f.Names())
	assert.Equal(t, "6", f.Ingredients["uova"].Quantity)

	require.NoError(t, execute(t, "fridge", "remove", "LATTE"))
	f, err = fridge.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"sale", "uova"}, f.Names())

	require.NoError(t, execute(t, "fridge", "import-text", "burro\nzucchero"))
	f, err = fridge.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"burro", "sale", "uova", "zucchero"}, f.Names())

	require.NoError(t, execute(t, "fridge", "list"))
	assert.Error(t, execute(t, "fridge", "add", " , "))
}

func TestMatchAndRun(t *testing.T) {
	dir := workspace(t)
	seedRecipes(t, filepath.Join(dir, "Recipes"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fridge.json"), []byte(`{"uova": 6, "sale": null}`), 0o644))

	assert.NoError(t, execute(t, "match", "--missing", "2"))
	assert.NoError(t, execute(t))
	assert.NoError(t, execute(t, "run", "--fridge", filepath.Join(dir, "missing.json")))
}

func TestIngestStatsSearchShow(t *testing.T) {
	dir := workspace(t)
	seedRecipes(t, filepath.Join(dir, "Recipes"))

	require.NoError(t, execute(t, "ingest", "--to", "sql"))
	require.NoError(t, execute(t, "ingest", "--to", "sql"))
	assert.Error(t, execute(t, "ingest", "--to", "files"))

	db, err := recipes.OpenSQL(config.DriverSQLite, filepath.Join(dir, "recipes.db"))
	require.NoError(t, err)
	all, err := db.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)
	require.NoError(t, db.Close())

	for _, store := range []string{config.StoreFiles, config.StoreSQL} {
		assert.NoError(t, execute(t, "--store", store, "stats", "--limit", "3"), store)
		assert.NoError(t, execute(t, "--store", store, "search", "uova"), store)
		assert.NoError(t, execute(t, "--store", store, "show", "https://example.com/frittata.html"), store)
		assert.NoError(t, execute(t, "--store", store, "show", "https://example.com/nope.html"), store)
	}

	assert.Error(t, execute(t, "--store", "mongo", "stats"))
	assert.Error(t, execute(t, "search"))
}

func TestSearchByIngredientScan(t *testing.T) {
	dir := t.TempDir()
	seedRecipes(t, dir)
	repo, err := recipes.NewFileStore(dir)
	require.NoError(t, err)

	found, err := searchByIngredient(context.Background(), repo, "GUANC")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Carbonara", found[0].Title)

	found, err = searchByIngredient(context.Background(), repo, "uova")
	require.NoError(t, err)
	assert.Len(t, found, 2)
}

func TestParse(t *testing.T) {
	workspace(t)
	assert.NoError(t, execute(t, "parse", "Farina", "00", "250", "g"))
	assert.Error(t, execute(t, "parse"))
}

func TestScrapeCommand(t *testing.T) {
	dir := workspace(t)

	mux := http.NewServeMux()
	mux.HandleFunc("/ricette-cat", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<article class="card"><a href="/ricette/frittata.html">Frittata</a></article>`))
	})
	mux.HandleFunc("/ricette/frittata.html", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<h1>Frittata</h1><ul><li class="gz-ingredient">Uova 4</li></ul>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	t.Setenv("COOKBOOK_URL", srv.URL+"/ricette-cat")

	require.NoError(t, execute(t, "scrape", "--max-pages", "1"))

	repo, err := recipes.NewFileStore(filepath.Join(dir, "Recipes"))
	require.NoError(t, err)
	all, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Frittata", all[0].Title)
	assert.Equal(t, []string{"uova 4"}, all[0].IngredientNames())
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
