package filestore

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jwalitptl/health-api/internal/model"
)

// ListDataFiles returns every .json file under the data directory as a
// slash-separated path relative to it, sorted. A missing directory yields an
// empty list.
func (s *Store) ListDataFiles(ctx context.Context) ([]string, error) {
	files := make([]string, 0)

	err := filepath.WalkDir(s.dataDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == s.dataDir {
				return filepath.SkipAll
			}
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}

		rel, err := filepath.Rel(s.dataDir, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// Dated is any record that carries a calendar date.
type Dated interface {
	RecordDate() string
}

// FilterByDateRange keeps the items dated inside r, bounds inclusive. Items
// with no date are dropped. A zero range keeps every dated item.
func FilterByDateRange[T Dated](items []T, r *model.DateRange) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if r.Contains(it.RecordDate()) {
			out = append(out, it)
		}
	}
	return out
}
