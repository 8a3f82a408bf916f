package model

// LabTest is one lab report file from <category>/<year>/<id>.json.
type LabTest struct {
	ID           string      `json:"id"`
	Type         string      `json:"type"`
	Date         string      `json:"date"`
	Hospital     string      `json:"hospital,omitempty"`
	Department   string      `json:"department,omitempty"`
	Items        []LabItem   `json:"items"`
	Summary      *LabSummary `json:"summary,omitempty"`
	Notes        string      `json:"notes,omitempty"`
	DoctorAdvice string      `json:"doctor_advice,omitempty"`

	// Category is the top-level directory the file was found under.
	Category string `json:"category,omitempty"`
}

// LabItem is a single measured analyte. IsAbnormal comes from the report and
// is not re-derived from the reference range.
type LabItem struct {
	Name                 string  `json:"name"`
	Value                Measure `json:"value"`
	Unit                 string  `json:"unit"`
	MinRef               Measure `json:"min_ref"`
	MaxRef               Measure `json:"max_ref"`
	IsAbnormal           bool    `json:"is_abnormal"`
	AbnormalType         string  `json:"abnormal_type,omitempty"`
	AbnormalMarker       string  `json:"abnormal_marker,omitempty"`
	ClinicalSignificance string  `json:"clinical_significance,omitempty"`
}

type LabSummary struct {
	TotalItems    int      `json:"total_items"`
	AbnormalCount int      `json:"abnormal_count"`
	AbnormalItems []string `json:"abnormal_items"`
}

func (t LabTest) RecordDate() string { return t.Date }

// Normalize fills nil collections and computes the summary when the report
// file does not carry one.
func (t *LabTest) Normalize() {
	if t.Items == nil {
		t.Items = []LabItem{}
	}
	if t.Summary == nil {
		s := SummarizeItems(t.Items)
		t.Summary = &s
	}
	if t.Summary.AbnormalItems == nil {
		t.Summary.AbnormalItems = []string{}
	}
}

// SummarizeItems counts flagged items.
func SummarizeItems(items []LabItem) LabSummary {
	s := LabSummary{TotalItems: len(items), AbnormalItems: []string{}}
	for _, it := range items {
		if it.IsAbnormal {
			s.AbnormalCount++
			s.AbnormalItems = append(s.AbnormalItems, it.Name)
		}
	}
	return s
}
