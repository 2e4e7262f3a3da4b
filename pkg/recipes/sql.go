package recipes

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/korjavin/ispirami/pkg/config"
	"github.com/korjavin/ispirami/pkg/ingredient"
	"github.com/korjavin/ispirami/pkg/logger"
	"github.com/korjavin/ispirami/pkg/models"
	"github.com/korjavin/ispirami/pkg/quantity"
	"github.com/korjavin/ispirami/pkg/stats"
)

var _ Repository = (*SQLStore)(nil)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS recipes (
	id %[1]s,
	title VARCHAR(255) NOT NULL,
	category TEXT,
	url TEXT UNIQUE NOT NULL,
	n_people VARCHAR(50),
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS ingredients (
	id %[1]s,
	name VARCHAR(255) UNIQUE NOT NULL,
	quantity DECIMAL(10,2),
	unit VARCHAR(50),
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS recipe_ingredients (
	id %[1]s,
	recipe_id INTEGER REFERENCES recipes(id) ON DELETE CASCADE,
	ingredient_id INTEGER REFERENCES ingredients(id) ON DELETE CASCADE,
	quantity DECIMAL(10,2),
	unit VARCHAR(50),
	notes TEXT,
	UNIQUE(recipe_id, ingredient_id)
);

CREATE INDEX IF NOT EXISTS idx_recipes_title ON recipes(title);
CREATE INDEX IF NOT EXISTS idx_recipes_category ON recipes(category);
CREATE INDEX IF NOT EXISTS idx_ingredients_name ON ingredients(name);
CREATE INDEX IF NOT EXISTS idx_recipe_ingredients_recipe_id ON recipe_ingredients(recipe_id);
CREATE INDEX IF NOT EXISTS idx_recipe_ingredients_ingredient_id ON recipe_ingredients(ingredient_id);

%[2]s recipe_ingredients_view AS
SELECT
	r.id AS recipe_id,
	r.title AS recipe_title,
	i.id AS ingredient_id,
	i.name AS ingredient_name,
	ri.quantity AS required_quantity,
	ri.unit AS required_unit,
	ri.notes
FROM recipes r
JOIN recipe_ingredients ri ON r.id = ri.recipe_id
JOIN ingredients i ON ri.ingredient_id = i.id;
`

// SQLStore keeps recipes in the recipes / ingredients / recipe_ingredients
// tables. Ingredient names are stored cleaned and shared between recipes.
type SQLStore struct {
	db     *sql.DB
	driver string
	logger *logger.Logger
}

// OpenSQL connects with the given driver ("sqlite3" or "postgres") and creates the schema
func OpenSQL(driver, dsn string) (*SQLStore, error) {
	log := logger.New("sql")
	log.Debug("Opening %s database", driver)

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	if driver == config.DriverSQLite {
		// PRAGMAs are per connection
		db.SetMaxOpenConns(1)
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, errors.Wrap(err, "failed to enable foreign keys")
		}
		if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
			db.Close()
			return nil, errors.Wrap(err, "failed to set busy timeout")
		}
	}

	s := &SQLStore{db: db, driver: driver, logger: log}
	if err := s.createSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	log.Info("Database ready (%s)", driver)
	return s, nil
}

func (s *SQLStore) createSchema(ctx context.Context) error {
	idColumn, view := "INTEGER PRIMARY KEY AUTOINCREMENT", "CREATE VIEW IF NOT EXISTS"
	if s.driver == config.DriverPostgres {
		idColumn, view = "SERIAL PRIMARY KEY", "CREATE OR REPLACE VIEW"
	}
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(schemaSQL, idColumn, view)); err != nil {
		return errors.Wrap(err, "failed to create schema")
	}
	return nil
}

// rebind turns ? placeholders into $n for postgres
func (s *SQLStore) rebind(query string) string {
	if s.driver != config.DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Close closes the database
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Exists reports whether the recipe URL is stored
func (s *SQLStore) Exists(ctx context.Context, r *models.Recipe) (bool, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT id FROM recipes WHERE url = ?`), r.URL).Scan(&id)
	switch {
	case err == nil:
		return true, nil
	case err == sql.ErrNoRows:
		return false, nil
	default:
		return false, errors.Wrap(err, "failed to look up recipe")
	}
}

// Save inserts the recipe and links its ingredients in one transaction
func (s *SQLStore) Save(ctx context.Context, r *models.Recipe) (bool, error) {
	exists, err := s.Exists(ctx, r)
	if err != nil || exists {
		return false, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	var recipeID int64
	err = tx.QueryRowContext(ctx, s.rebind(`
		INSERT INTO recipes (title, category, url, n_people)
		VALUES (?, ?, ?, ?)
		RETURNING id`),
		r.Title, r.Category, r.URL, nullString(r.Servings),
	).Scan(&recipeID)
	if err != nil {
		return false, errors.Wrapf(err, "failed to insert recipe %s", r.Title)
	}

	for _, ing := range r.Ingredients {
		name := ingredient.CleanName(ing.Name)
		if name == "" {
			continue
		}
		ingredientID, err := s.upsertIngredient(ctx, tx, name, ing.Quantity, ing.Unit)
		if err != nil {
			return false, err
		}
		_, err = tx.ExecContext(ctx, s.rebind(`
			INSERT INTO recipe_ingredients (recipe_id, ingredient_id, quantity, unit)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (recipe_id, ingredient_id) DO UPDATE SET
				quantity = excluded.quantity,
				unit = excluded.unit`),
			recipeID, ingredientID, ing.Quantity, ing.Unit,
		)
		if err != nil {
			return false, errors.Wrapf(err, "failed to link ingredient %s", name)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, errors.Wrap(err, "failed to commit recipe")
	}
	return true, nil
}

type execQueryer interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func (s *SQLStore) upsertIngredient(ctx context.Context, q execQueryer, name string, qty *float64, unit *string) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, s.rebind(`
		INSERT INTO ingredients (name, quantity, unit)
		VALUES (?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			quantity = excluded.quantity,
			unit = excluded.unit
		RETURNING id`),
		name, qty, unit,
	).Scan(&id)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to insert ingredient %s", name)
	}
	return id, nil
}

// AddIngredient inserts or updates an ingredient in the catalogue
func (s *SQLStore) AddIngredient(ctx context.Context, name string, amount quantity.Amount) error {
	q := amount.Quantity
	_, err := s.upsertIngredient(ctx, s.db, ingredient.CleanName(name), &q, amount.UnitPtr())
	return err
}

// Get returns one recipe with its ingredients
func (s *SQLStore) Get(ctx context.Context, url string) (*models.Recipe, error) {
	var (
		id       int64
		r        models.Recipe
		category sql.NullString
		servings sql.NullString
	)
	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT id, title, category, url, n_people
		FROM recipes
		WHERE url = ?`), url,
	).Scan(&id, &r.Title, &category, &r.URL, &servings)
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(models.ErrNotFound, "recipe %s", url)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get recipe")
	}
	r.Category = category.String
	r.Servings = servings.String

	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT i.name, ri.quantity, ri.unit
		FROM recipe_ingredients ri
		JOIN ingredients i ON ri.ingredient_id = i.id
		WHERE ri.recipe_id = ?
		ORDER BY ri.id`), id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get recipe ingredients")
	}
	defer rows.Close()

	r.Ingredients = make([]models.Ingredient, 0)
	for rows.Next() {
		ing, err := scanIngredient(rows)
		if err != nil {
			return nil, err
		}
		r.Ingredients = append(r.Ingredients, ing)
	}
	return &r, errors.Wrap(rows.Err(), "failed to read recipe ingredients")
}

// List returns every recipe with its ingredients, sorted by title then URL
func (s *SQLStore) List(ctx context.Context) ([]models.Recipe, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.title, r.category, r.url, r.n_people, i.name, ri.quantity, ri.unit
		FROM recipes r
		LEFT JOIN recipe_ingredients ri ON r.id = ri.recipe_id
		LEFT JOIN ingredients i ON ri.ingredient_id = i.id
		ORDER BY r.title, r.url, ri.id`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list recipes")
	}
	defer rows.Close()

	all := make([]models.Recipe, 0)
	lastID := int64(-1)
	for rows.Next() {
		var (
			id                 int64
			r                  models.Recipe
			category, servings sql.NullString
			name, unit         sql.NullString
			qty                sql.NullFloat64
		)
		if err := rows.Scan(&id, &r.Title, &category, &r.URL, &servings, &name, &qty, &unit); err != nil {
			return nil, errors.Wrap(err, "failed to scan recipe")
		}
		if id != lastID {
			r.Category = category.String
			r.Servings = servings.String
			r.Ingredients = make([]models.Ingredient, 0)
			all = append(all, r)
			lastID = id
		}
		if name.Valid {
			cur := &all[len(all)-1]
			cur.Ingredients = append(cur.Ingredients, toIngredient(name.String, qty, unit))
		}
	}
	return all, errors.Wrap(rows.Err(), "failed to read recipes")
}

// SearchByIngredient returns the recipes using an ingredient whose name
// contains the query, case-insensitively. Ingredients are not loaded.
func (s *SQLStore) SearchByIngredient(ctx context.Context, query string) ([]models.Recipe, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT DISTINCT r.title, r.category, r.url, r.n_people
		FROM recipes r
		JOIN recipe_ingredients ri ON r.id = ri.recipe_id
		JOIN ingredients i ON ri.ingredient_id = i.id
		WHERE LOWER(i.name) LIKE LOWER(?)
		ORDER BY r.title, r.url`), "%"+query+"%")
	if err != nil {
		return nil, errors.Wrap(err, "failed to search recipes")
	}
	defer rows.Close()

	found := make([]models.Recipe, 0)
	for rows.Next() {
		var (
			r                  models.Recipe
			category, servings sql.NullString
		)
		if err := rows.Scan(&r.Title, &category, &r.URL, &servings); err != nil {
			return nil, errors.Wrap(err, "failed to scan recipe")
		}
		r.Category = category.String
		r.Servings = servings.String
		found = append(found, r)
	}
	return found, errors.Wrap(rows.Err(), "failed to read search results")
}

// Ingredients returns the ingredient catalogue sorted by name
func (s *SQLStore) Ingredients(ctx context.Context) ([]models.Ingredient, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, quantity, unit FROM ingredients ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list ingredients")
	}
	defer rows.Close()

	out := make([]models.Ingredient, 0)
	for rows.Next() {
		ing, err := scanIngredient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ing)
	}
	return out, errors.Wrap(rows.Err(), "failed to read ingredients")
}

// Statistics computes collection statistics in the database
func (s *SQLStore) Statistics(ctx context.Context) (*stats.Statistics, error) {
	st := stats.New()

	counts := []struct {
		query string
		dst   *int
	}{
		{`SELECT COUNT(*) FROM recipes`, &st.TotalRecipes},
		{`SELECT COUNT(*) FROM recipe_ingredients`, &st.TotalIngredients},
		{`SELECT COUNT(DISTINCT ingredient_id) FROM recipe_ingredients`, &st.UniqueIngredients},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dst); err != nil {
			return nil, errors.Wrap(err, "failed to count")
		}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT category, COUNT(*)
		FROM recipes
		WHERE category IS NOT NULL AND category != ''
		GROUP BY category`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count categories")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			category string
			n        int
		)
		if err := rows.Scan(&category, &n); err != nil {
			return nil, errors.Wrap(err, "failed to scan category")
		}
		st.Categories[category] = n
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read categories")
	}

	ingRows, err := s.db.QueryContext(ctx, `
		SELECT i.name, COUNT(*)
		FROM recipe_ingredients ri
		JOIN ingredients i ON ri.ingredient_id = i.id
		GROUP BY i.name`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count ingredient usage")
	}
	defer ingRows.Close()

	for ingRows.Next() {
		var (
			name string
			n    int
		)
		if err := ingRows.Scan(&name, &n); err != nil {
			return nil, errors.Wrap(err, "failed to scan ingredient usage")
		}
		st.Ingredients[name] = n
	}
	return st, errors.Wrap(ingRows.Err(), "failed to read ingredient usage")
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanIngredient(row scanner) (models.Ingredient, error) {
	var (
		name string
		qty  sql.NullFloat64
		unit sql.NullString
	)
	if err := row.Scan(&name, &qty, &unit); err != nil {
		return models.Ingredient{}, errors.Wrap(err, "failed to scan ingredient")
	}
	return toIngredient(name, qty, unit), nil
}

func toIngredient(name string, qty sql.NullFloat64, unit sql.NullString) models.Ingredient {
	ing := models.Ingredient{Name: name}
	if qty.Valid {
		q := qty.Float64
		ing.Quantity = &q
	}
	if unit.Valid {
		u := unit.String
		ing.Unit = &u
	}
	return ing
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
