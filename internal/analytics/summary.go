package analytics

import (
	"strings"
	"time"

	"github.com/jwalitptl/health-api/internal/model"
)

// DataPoints counts the observations an analysis request carries: weigh-ins,
// lab items, allergies, cycles and vaccination records.
func DataPoints(s *model.Snapshot) int {
	if s == nil {
		return 0
	}

	count := 0
	if s.Profile != nil {
		count += len(s.Profile.History)
	}
	for _, lt := range s.LabResults {
		count += len(lt.Items)
	}
	if s.Allergies != nil {
		count += len(s.Allergies.Allergies)
	}
	if s.CycleTracker != nil {
		count += len(s.CycleTracker.Cycles)
	}
	if s.Vaccinations != nil {
		count += len(s.Vaccinations.Records)
	}
	return count
}

// AllergySummary counts allergies by category and severity.
func AllergySummary(records *model.AllergyRecords) model.AllergySummary {
	out := model.AllergySummary{Total: len(records.Allergies)}
	for _, a := range records.Allergies {
		level := a.Level()
		if level.IsSevere() {
			out.Severe++
		}
		if level >= model.SeverityLifeThreatening || strings.Contains(strings.ToLower(a.ReactionType), "anaphyla") {
			out.Anaphylaxis++
		}
		switch strings.ToLower(a.Category) {
		case "drug":
			out.Drug++
		case "food":
			out.Food++
		}
	}
	return out
}

// VaccineDoses counts administered doses.
func VaccineDoses(v *model.VaccinationRecords) int {
	return len(v.Records)
}

// Summarize builds the dashboard bundle for a snapshot.
func Summarize(s *model.Snapshot, now time.Time) model.DerivedMetrics {
	return model.DerivedMetrics{
		GeneratedAt:   now,
		Body:          Body(s.Profile, now),
		WeightTrend:   WeightTrend(s.Profile.History, 0),
		Labs:          LabAbnormalities(s.LabResults),
		Radiation:     RadiationSummary(s.RadiationRecords.Records, now),
		Cycle:         CycleSummary(s.CycleTracker),
		Reminders:     ReminderSummary(s.Reminders.Reminders, now),
		Allergies:     AllergySummary(s.Allergies),
		VaccineDoses:  VaccineDoses(s.Vaccinations),
		WeightRecords: len(s.Profile.History),
		DataPoints:    DataPoints(s),
	}
}
