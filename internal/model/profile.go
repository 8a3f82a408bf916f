package model

// Profile is the contents of profile.json.
type Profile struct {
	Timestamps
	BasicInfo  BasicInfo     `json:"basic_info"`
	Calculated Calculated    `json:"calculated"`
	History    []WeightEntry `json:"history"`
}

type BasicInfo struct {
	BirthDate  string  `json:"birth_date"`
	Height     float64 `json:"height"`
	HeightUnit string  `json:"height_unit"`
	Weight     float64 `json:"weight"`
	WeightUnit string  `json:"weight_unit"`
}

// Calculated holds figures derived from BasicInfo. They are filled on load
// when the file leaves them empty; stored values are never overwritten.
type Calculated struct {
	Age             int     `json:"age"`
	AgeYears        int     `json:"age_years"`
	BMI             float64 `json:"bmi"`
	BMIStatus       string  `json:"bmi_status"`
	BodySurfaceArea float64 `json:"body_surface_area"`
	BSAUnit         string  `json:"bsa_unit"`
}

// WeightEntry is one weigh-in. History keeps file order, which is chronological.
type WeightEntry struct {
	Date   string  `json:"date"`
	Weight float64 `json:"weight"`
	BMI    float64 `json:"bmi"`
	Notes  string  `json:"notes,omitempty"`
}

func (w WeightEntry) RecordDate() string { return w.Date }

// EmptyProfile is the placeholder used when profile.json is absent.
func EmptyProfile() *Profile {
	p := &Profile{}
	p.Normalize()
	return p
}

// Normalize fills nil collections and unit defaults.
func (p *Profile) Normalize() {
	if p.History == nil {
		p.History = []WeightEntry{}
	}
	if p.BasicInfo.HeightUnit == "" {
		p.BasicInfo.HeightUnit = "cm"
	}
	if p.BasicInfo.WeightUnit == "" {
		p.BasicInfo.WeightUnit = "kg"
	}
	if p.Calculated.BSAUnit == "" {
		p.Calculated.BSAUnit = "m²"
	}
	if p.Calculated.BMIStatus == "" {
		p.Calculated.BMIStatus = "N/A"
	}
}
