// Package snapshot aggregates every record domain into one view.
package snapshot

import (
	"context"
	"time"

	"github.com/jwalitptl/health-api/internal/analytics"
	"github.com/jwalitptl/health-api/internal/model"
	"github.com/jwalitptl/health-api/internal/repository"
	"github.com/jwalitptl/health-api/internal/repository/filestore"
	"github.com/jwalitptl/health-api/pkg/logger"
)

type Service struct {
	store  repository.RecordStore
	logger *logger.Logger
	now    func() time.Time
}

func NewService(store repository.RecordStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		store:  store,
		logger: log.With("component", "snapshot"),
		now:    time.Now,
	}
}

// Build loads every domain independently. A domain that fails to load is
// logged, noted in LoadErrors and left as its placeholder; Build itself
// never fails.
func (s *Service) Build(ctx context.Context) *model.Snapshot {
	now := s.now()
	snap := model.NewSnapshot(now)

	load(ctx, s, snap, model.DomainProfile, s.store.LoadProfile, func(v *model.Profile) {
		analytics.FillCalculated(v, now)
		snap.Profile = v
	})
	load(ctx, s, snap, model.DomainAllergies, s.store.LoadAllergies, func(v *model.AllergyRecords) { snap.Allergies = v })
	load(ctx, s, snap, model.DomainCycleTracker, s.store.LoadCycleTracker, func(v *model.CycleTracker) { snap.CycleTracker = v })
	load(ctx, s, snap, model.DomainPregnancyTracker, s.store.LoadPregnancyTracker, func(v *model.PregnancyTracker) { snap.PregnancyTracker = v })
	load(ctx, s, snap, model.DomainMenopauseTracker, s.store.LoadMenopauseTracker, func(v *model.MenopauseTracker) { snap.MenopauseTracker = v })
	load(ctx, s, snap, model.DomainScreeningTracker, s.store.LoadScreeningTracker, func(v *model.ScreeningTracker) { snap.ScreeningTracker = v })
	load(ctx, s, snap, model.DomainLabResults, s.store.LoadLabResults, func(v []model.LabTest) { snap.LabResults = v })
	load(ctx, s, snap, model.DomainVaccinations, s.store.LoadVaccinations, func(v *model.VaccinationRecords) { snap.Vaccinations = v })
	load(ctx, s, snap, model.DomainRadiation, s.store.LoadRadiationRecords, func(v *model.RadiationRecords) { snap.RadiationRecords = v })
	load(ctx, s, snap, model.DomainInteractions, s.store.LoadInteractions, func(v *model.InteractionDatabase) { snap.Interactions = v })
	load(ctx, s, snap, model.DomainReminders, s.store.LoadReminders, func(v *model.Reminders) { snap.Reminders = v })

	return snap
}

// load runs one domain loader. The placeholder already in snap is kept when
// the loader fails.
func load[T any](ctx context.Context, s *Service, snap *model.Snapshot, d model.Domain, fn func(context.Context) (T, error), set func(T)) {
	v, err := fn(ctx)
	if err != nil {
		s.logger.Warn(err, "domain load failed, using placeholder", "domain", string(d))
		snap.RecordLoadError(d, err)
		return
	}
	set(v)
}

// Domain loads a single domain by route name or snapshot key. Unlike Build,
// a load failure is returned to the caller.
func (s *Service) Domain(ctx context.Context, name string) (interface{}, error) {
	d, err := model.ParseDomain(name)
	if err != nil {
		return nil, err
	}

	switch d {
	case model.DomainProfile:
		p, err := s.store.LoadProfile(ctx)
		if err != nil {
			return nil, err
		}
		analytics.FillCalculated(p, s.now())
		return p, nil
	case model.DomainAllergies:
		return s.store.LoadAllergies(ctx)
	case model.DomainCycleTracker:
		return s.store.LoadCycleTracker(ctx)
	case model.DomainPregnancyTracker:
		return s.store.LoadPregnancyTracker(ctx)
	case model.DomainMenopauseTracker:
		return s.store.LoadMenopauseTracker(ctx)
	case model.DomainScreeningTracker:
		return s.store.LoadScreeningTracker(ctx)
	case model.DomainLabResults:
		return s.store.LoadLabResults(ctx)
	case model.DomainVaccinations:
		return s.store.LoadVaccinations(ctx)
	case model.DomainRadiation:
		return s.store.LoadRadiationRecords(ctx)
	case model.DomainInteractions:
		return s.store.LoadInteractions(ctx)
	case model.DomainReminders:
		return s.store.LoadReminders(ctx)
	}
	return nil, model.ErrUnknownDomain
}

// Files lists the JSON files under the data directory.
func (s *Service) Files(ctx context.Context) ([]string, error) {
	return s.store.ListDataFiles(ctx)
}

// Scoped returns a copy of snap whose dated collections (weight history,
// lab tests, radiation records, vaccinations, cycles) are limited to r.
// snap itself is not modified.
func Scoped(snap *model.Snapshot, r *model.DateRange) *model.Snapshot {
	if r.IsZero() {
		return snap
	}

	out := *snap

	profile := *snap.Profile
	profile.History = filestore.FilterByDateRange(snap.Profile.History, r)
	out.Profile = &profile

	out.LabResults = filestore.FilterByDateRange(snap.LabResults, r)

	radiation := *snap.RadiationRecords
	radiation.Records = filestore.FilterByDateRange(snap.RadiationRecords.Records, r)
	out.RadiationRecords = &radiation

	vaccinations := *snap.Vaccinations
	vaccinations.Records = filestore.FilterByDateRange(snap.Vaccinations.Records, r)
	out.Vaccinations = &vaccinations

	cycles := *snap.CycleTracker
	cycles.Cycles = filestore.FilterByDateRange(snap.CycleTracker.Cycles, r)
	out.CycleTracker = &cycles

	return &out
}
