package model

// RadiationRecords is the contents of radiation-records.json.
type RadiationRecords struct {
	Timestamps
	Records    []RadiationRecord         `json:"records"`
	Statistics StoredRadiationStatistics `json:"statistics"`
}

type RadiationRecord struct {
	ID            string  `json:"id"`
	Date          string  `json:"date"`
	ExamType      string  `json:"exam_type"`
	BodyPart      string  `json:"body_part"`
	EffectiveDose float64 `json:"effective_dose"`
	DoseUnit      string  `json:"dose_unit"`
	Hospital      string  `json:"hospital,omitempty"`
	Notes         string  `json:"notes,omitempty"`
}

func (r RadiationRecord) RecordDate() string { return r.Date }

// StoredRadiationStatistics is the summary block written into the file.
type StoredRadiationStatistics struct {
	TotalRecords    int     `json:"total_records"`
	TotalDose       float64 `json:"total_dose"`
	CurrentYearDose float64 `json:"current_year_dose"`
}

// RadiationStatistics is recomputed from the records on every request.
type RadiationStatistics struct {
	TotalCumulativeDoseMSv float64         `json:"total_cumulative_dose_msv"`
	CurrentYearDoseMSv     float64         `json:"current_year_dose_msv"`
	ExamsThisYear          int             `json:"exams_this_year"`
	HighestSingleDoseMSv   float64         `json:"highest_single_dose_msv"`
	HighestDoseExam        string          `json:"highest_dose_exam"`
	AverageAnnualDoseMSv   float64         `json:"average_annual_dose_msv"`
	YearsOfTracking        int             `json:"years_of_tracking"`
	AnnualDoseHistory      []AnnualDose    `json:"annual_dose_history"`
	PercentOfAnnualLimit   float64         `json:"percent_of_annual_limit"`
	SafetyLevel            RadiationSafety `json:"safety_level"`
}

type AnnualDose struct {
	Year    int     `json:"year"`
	DoseMSv float64 `json:"dose_msv"`
	Exams   int     `json:"exams"`
}

// RadiationSafety buckets a yearly dose in mSv.
type RadiationSafety string

const (
	RadiationSafe     RadiationSafety = "safe"
	RadiationLow      RadiationSafety = "low"
	RadiationModerate RadiationSafety = "moderate"
	RadiationHigh     RadiationSafety = "high"
)

func EmptyRadiationRecords() *RadiationRecords {
	r := &RadiationRecords{}
	r.Normalize()
	return r
}

func (r *RadiationRecords) Normalize() {
	if r.Records == nil {
		r.Records = []RadiationRecord{}
	}
}
