package repository

import (
	"context"
	"time"

	"github.com/jwalitptl/health-api/internal/model"
)

// All repository interfaces in one file
type (
	// RecordStore loads the health record domains. Missing files load as
	// placeholders; only unreadable or malformed files return an error.
	RecordStore interface {
		LoadProfile(ctx context.Context) (*model.Profile, error)
		LoadAllergies(ctx context.Context) (*model.AllergyRecords, error)
		LoadCycleTracker(ctx context.Context) (*model.CycleTracker, error)
		LoadPregnancyTracker(ctx context.Context) (*model.PregnancyTracker, error)
		LoadMenopauseTracker(ctx context.Context) (*model.MenopauseTracker, error)
		LoadScreeningTracker(ctx context.Context) (*model.ScreeningTracker, error)
		LoadLabResults(ctx context.Context) ([]model.LabTest, error)
		LoadVaccinations(ctx context.Context) (*model.VaccinationRecords, error)
		LoadRadiationRecords(ctx context.Context) (*model.RadiationRecords, error)
		LoadInteractions(ctx context.Context) (*model.InteractionDatabase, error)
		LoadReminders(ctx context.Context) (*model.Reminders, error)
		ListDataFiles(ctx context.Context) ([]string, error)
		Ping(ctx context.Context) error
	}

	AuditRepository interface {
		Create(ctx context.Context, log *model.AuditLog) error
		List(ctx context.Context, filter model.AuditFilter) ([]*model.AuditLog, error)
		Cleanup(ctx context.Context, before time.Time) (int64, error)
		Ping(ctx context.Context) error
	}
)
