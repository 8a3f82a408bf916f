package model

import (
	"fmt"
	"time"
)

// Domain names one record collection as it appears in routes and logs.
type Domain string

const (
	DomainProfile          Domain = "profile"
	DomainAllergies        Domain = "allergies"
	DomainCycleTracker     Domain = "cycle-tracker"
	DomainPregnancyTracker Domain = "pregnancy-tracker"
	DomainMenopauseTracker Domain = "menopause-tracker"
	DomainScreeningTracker Domain = "screening-tracker"
	DomainLabResults       Domain = "lab-results"
	DomainVaccinations     Domain = "vaccinations"
	DomainRadiation        Domain = "radiation-records"
	DomainInteractions     Domain = "interactions"
	DomainReminders        Domain = "reminders"
)

// Domains lists every domain in snapshot order.
var Domains = []Domain{
	DomainProfile,
	DomainAllergies,
	DomainCycleTracker,
	DomainPregnancyTracker,
	DomainMenopauseTracker,
	DomainScreeningTracker,
	DomainLabResults,
	DomainVaccinations,
	DomainRadiation,
	DomainInteractions,
	DomainReminders,
}

var domainFiles = map[Domain]string{
	DomainProfile:          "profile.json",
	DomainAllergies:        "allergies.json",
	DomainCycleTracker:     "cycle-tracker.json",
	DomainPregnancyTracker: "pregnancy-tracker.json",
	DomainMenopauseTracker: "menopause-tracker.json",
	DomainScreeningTracker: "screening-tracker.json",
	DomainVaccinations:     "vaccinations.json",
	DomainRadiation:        "radiation-records.json",
	DomainInteractions:     "interactions/interaction-db.json",
	DomainReminders:        "reminders.json",
}

var snapshotKeys = map[Domain]string{
	DomainProfile:          "profile",
	DomainAllergies:        "allergies",
	DomainCycleTracker:     "cycleTracker",
	DomainPregnancyTracker: "pregnancyTracker",
	DomainMenopauseTracker: "menopauseTracker",
	DomainScreeningTracker: "screeningTracker",
	DomainLabResults:       "labResults",
	DomainVaccinations:     "vaccinations",
	DomainRadiation:        "radiationRecords",
	DomainInteractions:     "interactions",
	DomainReminders:        "reminders",
}

// FileName is the path of the domain's file relative to the data directory.
// Lab results live in a directory tree and have no single file.
func (d Domain) FileName() string {
	return domainFiles[d]
}

// Key is the domain's field name in the snapshot JSON.
func (d Domain) Key() string {
	return snapshotKeys[d]
}

// ParseDomain accepts either the route name or the snapshot key.
func ParseDomain(s string) (Domain, error) {
	for _, d := range Domains {
		if string(d) == s || d.Key() == s {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDomain, s)
}

// Snapshot is one request's aggregate of every domain. No field is ever nil
// after NewSnapshot: absent domains hold their placeholder.
type Snapshot struct {
	Profile          *Profile             `json:"profile"`
	Allergies        *AllergyRecords      `json:"allergies"`
	CycleTracker     *CycleTracker        `json:"cycleTracker"`
	PregnancyTracker *PregnancyTracker    `json:"pregnancyTracker"`
	MenopauseTracker *MenopauseTracker    `json:"menopauseTracker"`
	ScreeningTracker *ScreeningTracker    `json:"screeningTracker"`
	LabResults       []LabTest            `json:"labResults"`
	Vaccinations     *VaccinationRecords  `json:"vaccinations"`
	RadiationRecords *RadiationRecords    `json:"radiationRecords"`
	Interactions     *InteractionDatabase `json:"interactions"`
	Reminders        *Reminders           `json:"reminders"`

	GeneratedAt time.Time         `json:"generatedAt"`
	LoadErrors  map[string]string `json:"loadErrors,omitempty"`
}

// NewSnapshot returns a snapshot with every domain set to its placeholder.
func NewSnapshot(now time.Time) *Snapshot {
	return &Snapshot{
		Profile:          EmptyProfile(),
		Allergies:        EmptyAllergyRecords(),
		CycleTracker:     EmptyCycleTracker(),
		PregnancyTracker: EmptyPregnancyTracker(),
		MenopauseTracker: EmptyMenopauseTracker(),
		ScreeningTracker: EmptyScreeningTracker(),
		LabResults:       []LabTest{},
		Vaccinations:     EmptyVaccinationRecords(),
		RadiationRecords: EmptyRadiationRecords(),
		Interactions:     EmptyInteractionDatabase(),
		Reminders:        EmptyReminders(),
		GeneratedAt:      now,
	}
}

// Get returns the value held for one domain.
func (s *Snapshot) Get(d Domain) (interface{}, error) {
	switch d {
	case DomainProfile:
		return s.Profile, nil
	case DomainAllergies:
		return s.Allergies, nil
	case DomainCycleTracker:
		return s.CycleTracker, nil
	case DomainPregnancyTracker:
		return s.PregnancyTracker, nil
	case DomainMenopauseTracker:
		return s.MenopauseTracker, nil
	case DomainScreeningTracker:
		return s.ScreeningTracker, nil
	case DomainLabResults:
		return s.LabResults, nil
	case DomainVaccinations:
		return s.Vaccinations, nil
	case DomainRadiation:
		return s.RadiationRecords, nil
	case DomainInteractions:
		return s.Interactions, nil
	case DomainReminders:
		return s.Reminders, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDomain, d)
}

// RecordLoadError notes that a domain fell back to its placeholder.
func (s *Snapshot) RecordLoadError(d Domain, err error) {
	if s.LoadErrors == nil {
		s.LoadErrors = make(map[string]string)
	}
	s.LoadErrors[d.Key()] = err.Error()
}
