// Package filestore reads the health record JSON files from the data
// directory. It never writes to it.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jwalitptl/health-api/internal/model"
	"github.com/jwalitptl/health-api/pkg/logger"
	"github.com/jwalitptl/health-api/pkg/metrics"
)

// ErrMalformedRecord marks a record file that exists but is not valid JSON
// for its domain. A missing file is not an error.
var ErrMalformedRecord = errors.New("malformed record file")

// ParseError reports which file failed to decode.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrMalformedRecord, e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrMalformedRecord }

// DefaultLabCategories are searched when Config.LabCategories is empty.
// 生化检查 (biochemistry) is the directory existing data sets keep lab
// reports in.
var DefaultLabCategories = []string{"生化检查", "biochemistry", "hematology", "urinalysis", "immunology", "microbiology", "other"}

// Config locates the data on disk.
type Config struct {
	DataDir string
	// LabRoots are searched for lab categories after DataDir.
	LabRoots      []string
	LabCategories []string
}

// Store is a read-only view over the data directory.
type Store struct {
	dataDir       string
	labRoots      []string
	labCategories []string
	logger        *logger.Logger
	metrics       *metrics.Metrics
}

func New(cfg Config, log *logger.Logger, m *metrics.Metrics) *Store {
	if log == nil {
		log = logger.Nop()
	}
	categories := cfg.LabCategories
	if len(categories) == 0 {
		categories = DefaultLabCategories
	}
	return &Store{
		dataDir:       cfg.DataDir,
		labRoots:      labRoots(cfg.DataDir, cfg.LabRoots),
		labCategories: categories,
		logger:        log.With("component", "filestore"),
		metrics:       m,
	}
}

// DataDir returns the base directory the store reads from.
func (s *Store) DataDir() string {
	return s.dataDir
}

// Ping checks the data directory is present and readable.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	info, err := os.Stat(s.dataDir)
	if err != nil {
		return fmt.Errorf("data directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("data directory %s is not a directory", s.dataDir)
	}
	return nil
}

// normalizer is implemented by every record type's pointer.
type normalizer[T any] interface {
	*T
	Normalize()
}

// LoadNamed decodes the file at name (relative to the data directory) into a
// T. A missing file yields T's placeholder; a file that does not decode
// yields a *ParseError.
func LoadNamed[T any, PT normalizer[T]](ctx context.Context, s *Store, name string) (PT, error) {
	v := PT(new(T))

	found, err := s.readJSON(ctx, name, v)
	if err != nil {
		return nil, err
	}
	if !found {
		s.logger.Warn(nil, "record file not found, using empty placeholder", "file", name)
	}

	v.Normalize()
	return v, nil
}

func (s *Store) readJSON(ctx context.Context, name string, dst interface{}) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	path := filepath.Join(s.dataDir, filepath.FromSlash(name))
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		s.metrics.ObserveRecordLoad(name, "missing")
		return false, nil
	}
	if err != nil {
		s.metrics.ObserveRecordLoad(name, "error")
		return false, fmt.Errorf("failed to read %s: %w", name, err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		s.metrics.ObserveRecordLoad(name, "malformed")
		return false, &ParseError{Path: name, Err: err}
	}

	s.metrics.ObserveRecordLoad(name, "ok")
	return true, nil
}

func (s *Store) LoadProfile(ctx context.Context) (*model.Profile, error) {
	return LoadNamed[model.Profile](ctx, s, model.DomainProfile.FileName())
}

func (s *Store) LoadAllergies(ctx context.Context) (*model.AllergyRecords, error) {
	return LoadNamed[model.AllergyRecords](ctx, s, model.DomainAllergies.FileName())
}

func (s *Store) LoadCycleTracker(ctx context.Context) (*model.CycleTracker, error) {
	return LoadNamed[model.CycleTracker](ctx, s, model.DomainCycleTracker.FileName())
}

func (s *Store) LoadPregnancyTracker(ctx context.Context) (*model.PregnancyTracker, error) {
	return LoadNamed[model.PregnancyTracker](ctx, s, model.DomainPregnancyTracker.FileName())
}

func (s *Store) LoadMenopauseTracker(ctx context.Context) (*model.MenopauseTracker, error) {
	return LoadNamed[model.MenopauseTracker](ctx, s, model.DomainMenopauseTracker.FileName())
}

func (s *Store) LoadScreeningTracker(ctx context.Context) (*model.ScreeningTracker, error) {
	return LoadNamed[model.ScreeningTracker](ctx, s, model.DomainScreeningTracker.FileName())
}

func (s *Store) LoadVaccinations(ctx context.Context) (*model.VaccinationRecords, error) {
	return LoadNamed[model.VaccinationRecords](ctx, s, model.DomainVaccinations.FileName())
}

func (s *Store) LoadRadiationRecords(ctx context.Context) (*model.RadiationRecords, error) {
	return LoadNamed[model.RadiationRecords](ctx, s, model.DomainRadiation.FileName())
}

func (s *Store) LoadInteractions(ctx context.Context) (*model.InteractionDatabase, error) {
	return LoadNamed[model.InteractionDatabase](ctx, s, model.DomainInteractions.FileName())
}

func (s *Store) LoadReminders(ctx context.Context) (*model.Reminders, error) {
	return LoadNamed[model.Reminders](ctx, s, model.DomainReminders.FileName())
}
