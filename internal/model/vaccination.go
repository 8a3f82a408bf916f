package model

// VaccinationRecords is the contents of vaccinations.json.
type VaccinationRecords struct {
	Timestamps
	Records    []Vaccination         `json:"vaccination_records"`
	Statistics VaccinationStatistics `json:"statistics"`
}

type Vaccination struct {
	ID                 string   `json:"id"`
	VaccineName        string   `json:"vaccine_name"`
	DoseNumber         *int     `json:"dose_number"`
	AdministrationDate string   `json:"administration_date"`
	NextDueDate        string   `json:"next_due_date,omitempty"`
	AdverseReactions   []string `json:"adverse_reactions,omitempty"`
	Notes              string   `json:"notes,omitempty"`
}

func (v Vaccination) RecordDate() string { return v.AdministrationDate }

type VaccinationStatistics struct {
	TotalVaccinationRecords int `json:"total_vaccination_records"`
	TotalDosesAdministered  int `json:"total_doses_administered"`
	SeriesCompleted         int `json:"series_completed"`
	SeriesInProgress        int `json:"series_in_progress"`
	OverdueCount            int `json:"overdue_count"`
	Upcoming30Days          int `json:"upcoming_30_days"`
}

func EmptyVaccinationRecords() *VaccinationRecords {
	v := &VaccinationRecords{}
	v.Normalize()
	return v
}

func (v *VaccinationRecords) Normalize() {
	if v.Records == nil {
		v.Records = []Vaccination{}
	}
}
