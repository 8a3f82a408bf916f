package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/jwalitptl/health-api/internal/model"
)

// LoadLabResults walks <root>/<category>/<year>/*.json under every lab root
// and category. Files that cannot be read or decoded are logged and skipped
// so one bad report never hides the rest. Only context cancellation fails the
// call.
func (s *Store) LoadLabResults(ctx context.Context) ([]model.LabTest, error) {
	results := make([]model.LabTest, 0)

	for _, root := range s.labRoots {
		for _, category := range s.labCategories {
			tests, err := s.loadLabCategory(ctx, filepath.Join(root, category), category)
			if err != nil {
				return nil, err
			}
			results = append(results, tests...)
		}
	}

	return results, nil
}

func (s *Store) loadLabCategory(ctx context.Context, dir, category string) ([]model.LabTest, error) {
	years, err := os.ReadDir(dir)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn(err, "failed to read lab category directory", "dir", dir)
		}
		return nil, nil
	}

	var tests []model.LabTest
	for _, year := range years {
		if !year.IsDir() {
			continue
		}

		yearPath := filepath.Join(dir, year.Name())
		files, err := os.ReadDir(yearPath)
		if err != nil {
			s.logger.Warn(err, "failed to read lab year directory", "dir", yearPath)
			continue
		}

		for _, file := range files {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if !file.Type().IsRegular() || !strings.HasSuffix(file.Name(), ".json") {
				continue
			}

			path := filepath.Join(yearPath, file.Name())
			test, err := readLabFile(path)
			if err != nil {
				s.metrics.ObserveLabFileSkipped()
				s.logger.Error(err, "skipping unreadable lab result file", "file", path)
				continue
			}

			test.Category = category
			tests = append(tests, *test)
		}
	}

	return tests, nil
}

func readLabFile(path string) (*model.LabTest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var test model.LabTest
	if err := json.Unmarshal(data, &test); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	test.Normalize()
	return &test, nil
}

// labRoots puts the data directory first and drops duplicates of it.
func labRoots(dataDir string, extra []string) []string {
	roots := []string{dataDir}
	seen := map[string]bool{absPath(dataDir): true}

	for _, r := range extra {
		if r == "" {
			continue
		}
		key := absPath(r)
		if seen[key] {
			continue
		}
		seen[key] = true
		roots = append(roots, r)
	}

	return roots
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return filepath.Clean(abs)
	}
	return filepath.Clean(p)
}
