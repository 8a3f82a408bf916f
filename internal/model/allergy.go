package model

// AllergyRecords is the contents of allergies.json.
type AllergyRecords struct {
	Allergies  []Allergy         `json:"allergies"`
	Statistics AllergyStatistics `json:"statistics"`
}

type Allergy struct {
	Allergen       string   `json:"allergen"`
	Category       string   `json:"category"`
	Severity       Severity `json:"severity"`
	SeverityLevel  Severity `json:"severity_level,omitempty"`
	ReactionType   string   `json:"reaction_type"`
	Symptoms       []string `json:"symptoms"`
	OnsetDate      string   `json:"onset_date,omitempty"`
	LastOccurrence string   `json:"last_occurrence,omitempty"`
	ConfirmedBy    string   `json:"confirmed_by,omitempty"`
	Notes          string   `json:"notes,omitempty"`
}

// Level prefers the numeric severity_level when the file carries both.
func (a Allergy) Level() Severity {
	if a.SeverityLevel > 0 {
		return a.SeverityLevel
	}
	return a.Severity
}

type AllergyStatistics struct {
	TotalAllergies         int     `json:"total_allergies"`
	ActiveAllergies        int     `json:"active_allergies"`
	SevereCount            int     `json:"severe_count"`
	DrugAllergies          int     `json:"drug_allergies"`
	FoodAllergies          int     `json:"food_allergies"`
	EnvironmentalAllergies int     `json:"environmental_allergies"`
	OtherAllergies         int     `json:"other_allergies"`
	AnaphylaxisCount       int     `json:"anaphylaxis_count"`
	LastUpdated            *string `json:"last_updated"`
}

func EmptyAllergyRecords() *AllergyRecords {
	a := &AllergyRecords{}
	a.Normalize()
	return a
}

func (a *AllergyRecords) Normalize() {
	if a.Allergies == nil {
		a.Allergies = []Allergy{}
	}
	for i := range a.Allergies {
		if a.Allergies[i].Symptoms == nil {
			a.Allergies[i].Symptoms = []string{}
		}
	}
}
