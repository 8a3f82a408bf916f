// Package testutil writes sample record files for tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// LabCategory is the category directory the sample lab reports live in.
const LabCategory = "biochemistry"

const profileJSON = `{
  "created_at": "2025-01-01",
  "last_updated": "2026-02-01",
  "basic_info": {"birth_date": "1990-06-15", "height": 175, "height_unit": "cm", "weight": 70, "weight_unit": "kg"},
  "calculated": {},
  "history": [
    {"date": "2025-11-01", "weight": 72.0, "bmi": 23.5},
    {"date": "2025-12-01", "weight": 71.2, "bmi": 23.2},
    {"date": "2026-01-01", "weight": 70.4, "bmi": 23.0},
    {"date": "2026-02-01", "weight": 70.0, "bmi": 22.9}
  ]
}`

const allergiesJSON = `{
  "allergies": [
    {"allergen": "Penicillin", "category": "drug", "severity": 4, "reaction_type": "rash", "symptoms": ["hives"]},
    {"allergen": "Peanut", "category": "food", "severity": "mild", "reaction_type": "itching"}
  ],
  "statistics": {"total_allergies": 2, "severe_count": 1, "drug_allergies": 1, "food_allergies": 1}
}`

const radiationJSON = `{
  "records": [
    {"id": "r1", "date": "2025-03-10", "exam_type": "Chest CT", "body_part": "chest", "effective_dose": 7.0, "dose_unit": "mSv"},
    {"id": "r2", "date": "2026-01-20", "exam_type": "Chest X-ray", "body_part": "chest", "effective_dose": 0.1, "dose_unit": "mSv"}
  ],
  "statistics": {"total_records": 2, "total_dose": 7.1}
}`

const remindersJSON = `{
  "reminders": [
    {"id": "m1", "title": "Annual checkup", "type": "checkup", "due_date": "2026-03-01", "priority": "high", "status": "pending"},
    {"id": "m2", "title": "Flu shot", "type": "vaccination", "due_date": "2025-10-01", "priority": "medium", "status": "completed"}
  ]
}`

const vaccinationsJSON = `{
  "vaccination_records": [
    {"id": "v1", "vaccine_name": "Influenza", "dose_number": 1, "administration_date": "2025-10-01"}
  ],
  "statistics": {"total_vaccination_records": 1, "total_doses_administered": 1}
}`

const cycleJSON = `{
  "user_settings": {"average_cycle_length": 28, "average_period_length": 5},
  "cycles": [
    {"id": "c1", "period_start": "2026-01-03", "period_end": "2026-01-07", "period_length": 5, "cycle_length": 28},
    {"id": "c2", "period_start": "2026-01-31", "period_end": "2026-02-04", "period_length": 5, "cycle_length": 29}
  ],
  "current_cycle": null,
  "statistics": {"total_cycles_tracked": 2, "average_cycle_length": 28.5, "average_period_length": 5, "regularity_score": 0.9, "cycle_length_range": [28, 29]}
}`

const labLiverJSON = `{
  "id": "lab-2025-liver",
  "type": "Liver function",
  "date": "2025-12-15",
  "hospital": "City Hospital",
  "items": [
    {"name": "ALT", "value": 58, "unit": "U/L", "min_ref": 9, "max_ref": 50, "is_abnormal": true, "abnormal_marker": "↑"},
    {"name": "AST", "value": "32", "unit": "U/L", "min_ref": "15", "max_ref": "40", "is_abnormal": false}
  ]
}`

const labLipidJSON = `{
  "id": "lab-2026-lipid",
  "type": "Lipid panel",
  "date": "2026-02-10",
  "hospital": "City Hospital",
  "items": [
    {"name": "LDL-C", "value": 3.1, "unit": "mmol/L", "min_ref": 0, "max_ref": 3.4, "is_abnormal": false}
  ]
}`

// WriteFile creates path and its parents with content.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// WriteDataset fills dir with a small but complete set of record files:
// four weigh-ins, two allergies, two radiation exams, two reminders, one
// vaccination, two cycles and two lab reports with one abnormal item.
// Pregnancy, menopause, screening and interaction files are left absent.
func WriteDataset(t *testing.T, dir string) {
	t.Helper()
	WriteFile(t, filepath.Join(dir, "profile.json"), profileJSON)
	WriteFile(t, filepath.Join(dir, "allergies.json"), allergiesJSON)
	WriteFile(t, filepath.Join(dir, "radiation-records.json"), radiationJSON)
	WriteFile(t, filepath.Join(dir, "reminders.json"), remindersJSON)
	WriteFile(t, filepath.Join(dir, "vaccinations.json"), vaccinationsJSON)
	WriteFile(t, filepath.Join(dir, "cycle-tracker.json"), cycleJSON)
	WriteFile(t, filepath.Join(dir, LabCategory, "2025", "lab-2025-liver.json"), labLiverJSON)
	WriteFile(t, filepath.Join(dir, LabCategory, "2026", "lab-2026-lipid.json"), labLipidJSON)
}
