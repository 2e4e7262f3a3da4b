package recipes

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/korjavin/ispirami/pkg/logger"
	"github.com/korjavin/ispirami/pkg/models"
)

var _ Repository = (*FileStore)(nil)

// FileStore keeps one JSON file per recipe in a directory
type FileStore struct {
	dir    string
	logger *logger.Logger
}

// NewFileStore creates the directory if needed
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create recipes directory")
	}
	return &FileStore{dir: dir, logger: logger.New("recipes")}, nil
}

// FileName returns the file a recipe is stored in: the lower-cased title
// with spaces replaced by underscores.
func FileName(title string) string {
	name := strings.ToLower(strings.ReplaceAll(title, " ", "_"))
	// path separators would escape the directory
	name = strings.NewReplacer("/", "_", string(os.PathSeparator), "_").Replace(name)
	return name + ".json"
}

func (s *FileStore) path(r *models.Recipe) string {
	return filepath.Join(s.dir, FileName(r.Title))
}

// Save writes the recipe unless its file already exists
func (s *FileStore) Save(ctx context.Context, r *models.Recipe) (bool, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return false, errors.Wrap(err, "failed to encode recipe")
	}

	f, err := os.OpenFile(s.path(r), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return false, nil
		}
		return false, errors.Wrap(err, "failed to create recipe file")
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return false, errors.Wrap(err, "failed to write recipe file")
	}
	return true, nil
}

// Exists reports whether the recipe's file is present
func (s *FileStore) Exists(ctx context.Context, r *models.Recipe) (bool, error) {
	_, err := os.Stat(s.path(r))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.Wrap(err, "failed to stat recipe file")
}

// Get scans the directory for the recipe with the given URL
func (s *FileStore) Get(ctx context.Context, url string) (*models.Recipe, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].URL == url {
			return &all[i], nil
		}
	}
	return nil, errors.Wrapf(models.ErrNotFound, "recipe %s", url)
}

// List reads every .json file in the directory. Files that fail to decode are skipped.
func (s *FileStore) List(ctx context.Context) ([]models.Recipe, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read recipes directory")
	}

	all := make([]models.Recipe, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			s.logger.Error("Failed to read %s: %v", entry.Name(), err)
			continue
		}

		var r models.Recipe
		if err := json.Unmarshal(data, &r); err != nil {
			s.logger.Error("Failed to parse %s: %v", entry.Name(), err)
			continue
		}
		all = append(all, r)
	}

	sortRecipes(all)
	return all, nil
}

// Close is a no-op
func (s *FileStore) Close() error {
	return nil
}
