package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jwalitptl/health-api/internal/model"
	"github.com/jwalitptl/health-api/pkg/logger"
)

const (
	reportsSubdir  = "generated-reports"
	filenamePrefix = "health-report-"
	htmlExt        = ".html"
	jsonExt        = ".json"
)

var (
	ErrInvalidFilename = errors.New("not a report filename")
	ErrReportNotFound  = errors.New("report not found")
)

var filenamePattern = regexp.MustCompile(`^health-report-\d{4}-\d{2}-\d{2}-[A-Za-z0-9_-]+\.(html|json)$`)

// Store keeps reports under <OutputDir>/generated-reports.
type Store struct {
	dir    string
	logger *logger.Logger
}

func NewStore(outputDir string, log *logger.Logger) *Store {
	if log == nil {
		log = logger.Nop()
	}
	return &Store{
		dir:    filepath.Join(outputDir, reportsSubdir),
		logger: log.With("component", "report_store"),
	}
}

// Dir is the directory reports are written to.
func (s *Store) Dir() string { return s.dir }

// NewReportID derives a report id from the generation time in milliseconds.
func NewReportID(now time.Time) string {
	return strconv.FormatInt(now.UnixMilli(), 10)
}

// BaseName is the file name shared by a report's HTML and JSON files.
func BaseName(meta model.ReportMetadata) string {
	return filenamePrefix + meta.GeneratedAt.UTC().Format(model.DateLayout) + "-" + meta.ReportID
}

// Persist writes the HTML page and its JSON sidecar. Either both files are
// left in place or neither is.
func (s *Store) Persist(ctx context.Context, meta model.ReportMetadata, html string, sidecar interface{}) (model.ReportPaths, error) {
	if err := ctx.Err(); err != nil {
		return model.ReportPaths{}, err
	}
	if meta.ReportID == "" || !filenamePattern.MatchString(BaseName(meta)+htmlExt) {
		return model.ReportPaths{}, fmt.Errorf("%w: report id %q", ErrInvalidFilename, meta.ReportID)
	}

	data, err := json.MarshalIndent(sidecar, "", "  ")
	if err != nil {
		return model.ReportPaths{}, fmt.Errorf("encoding report sidecar: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return model.ReportPaths{}, fmt.Errorf("creating report directory: %w", err)
	}

	base := filepath.Join(s.dir, BaseName(meta))
	paths := model.ReportPaths{HTML: base + htmlExt, JSON: base + jsonExt}

	if err := writeFileAtomic(paths.HTML, []byte(html)); err != nil {
		return model.ReportPaths{}, fmt.Errorf("writing report html: %w", err)
	}
	if err := writeFileAtomic(paths.JSON, data); err != nil {
		if rmErr := os.Remove(paths.HTML); rmErr != nil {
			s.logger.Warn(rmErr, "failed to remove orphaned report html", "path", paths.HTML)
		}
		return model.ReportPaths{}, fmt.Errorf("writing report sidecar: %w", err)
	}

	s.logger.Info("report persisted", "report_id", meta.ReportID, "html", paths.HTML)
	return paths, nil
}

// List returns the HTML reports, newest first. A missing directory yields
// an empty list.
func (s *Store) List(ctx context.Context) ([]model.ReportEntry, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []model.ReportEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading report directory: %w", err)
	}

	reports := make([]model.ReportEntry, 0, len(entries))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() || !strings.HasSuffix(e.Name(), htmlExt) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}
		reports = append(reports, model.ReportEntry{Filename: e.Name(), CreatedAt: info.ModTime()})
	}

	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].CreatedAt.After(reports[j].CreatedAt)
	})
	return reports, nil
}

// Open reads one report file by name. Only plain report file names are
// accepted, never paths.
func (s *Store) Open(ctx context.Context, filename string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if filepath.Base(filename) != filename || !filenamePattern.MatchString(filename) {
		return nil, ErrInvalidFilename
	}

	data, err := os.ReadFile(filepath.Join(s.dir, filename))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}
	return data, nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return err
	}
	name := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Chmod(name, 0o644); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return err
	}
	return nil
}
