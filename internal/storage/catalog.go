package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/jwebster45206/survival-kitchen/pkg/catalog"
	"github.com/jwebster45206/survival-kitchen/pkg/storage"
)

func isCatalogFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

// Catalog operations (filesystem-backed)

// ListCatalogs walks DATA_DIR/catalogs. Files that fail to parse or validate
// are skipped with a warning.
func (r *RedisStorage) ListCatalogs(ctx context.Context) (map[string]string, error) {
	catalogsDir := filepath.Join(r.dataDir, "catalogs")
	catalogs := make(map[string]string)

	err := filepath.WalkDir(catalogsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !isCatalogFile(path) {
			return nil
		}

		c, err := catalog.Load(path)
		if err != nil {
			r.logger.Warn("Skipping invalid catalog file", "path", path, "error", err)
			return nil
		}

		rel, err := filepath.Rel(catalogsDir, path)
		if err != nil {
			rel = filepath.Base(path)
		}
		catalogs[c.Name] = filepath.ToSlash(rel)
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to walk catalogs directory", "error", err)
		return nil, fmt.Errorf("failed to list catalogs: %w", err)
	}

	return catalogs, nil
}

func (r *RedisStorage) GetCatalog(ctx context.Context, filename string) (*catalog.Catalog, error) {
	if filename == "" || !filepath.IsLocal(filename) || !isCatalogFile(filename) {
		return nil, fmt.Errorf("%w: %q", storage.ErrCatalogNotFound, filename)
	}
	path := filepath.Join(r.dataDir, "catalogs", filename)
	r.logger.Debug("Loading catalog", "filename", filename, "full_path", path)

	c, err := catalog.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", storage.ErrCatalogNotFound, filename)
		}
		return nil, err
	}
	return c, nil
}
