package model

import "encoding/json"

// PregnancyTracker is the contents of pregnancy-tracker.json.
type PregnancyTracker struct {
	Timestamps
	CurrentPregnancy *Pregnancy          `json:"current_pregnancy"`
	PregnancyHistory []PastPregnancy     `json:"pregnancy_history"`
	Statistics       PregnancyStatistics `json:"statistics"`
}

type Pregnancy struct {
	StartDate   string             `json:"start_date"`
	DueDate     string             `json:"due_date"`
	CurrentWeek int                `json:"current_week"`
	Checkups    []PregnancyCheckup `json:"checkups"`
}

type PregnancyCheckup struct {
	Date    string          `json:"date"`
	Week    int             `json:"week"`
	Results json.RawMessage `json:"results,omitempty"`
}

type PastPregnancy struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Outcome   string `json:"outcome"`
	Notes     string `json:"notes,omitempty"`
}

type PregnancyStatistics struct {
	TotalPregnancies     int      `json:"total_pregnancies"`
	CurrentPregnancyWeek *int     `json:"current_pregnancy_week"`
	TotalWeightGain      *float64 `json:"total_weight_gain"`
	CheckupsCompleted    int      `json:"checkups_completed"`
}

func EmptyPregnancyTracker() *PregnancyTracker {
	p := &PregnancyTracker{}
	p.Normalize()
	return p
}

func (p *PregnancyTracker) Normalize() {
	if p.PregnancyHistory == nil {
		p.PregnancyHistory = []PastPregnancy{}
	}
	if p.CurrentPregnancy != nil && p.CurrentPregnancy.Checkups == nil {
		p.CurrentPregnancy.Checkups = []PregnancyCheckup{}
	}
}

// MenopauseTracker is the contents of menopause-tracker.json.
type MenopauseTracker struct {
	Timestamps
	MenopauseTracking *MenopauseTracking  `json:"menopause_tracking"`
	Statistics        MenopauseStatistics `json:"statistics"`
}

type MenopauseTracking struct {
	StartDate string             `json:"start_date"`
	Symptoms  []MenopauseSymptom `json:"symptoms"`
}

type MenopauseSymptom struct {
	Date     string `json:"date"`
	Symptom  string `json:"symptom"`
	Severity string `json:"severity"`
}

type MenopauseStatistics struct {
	TrackingDurationMonths int    `json:"tracking_duration_months"`
	TotalSymptomRecords    int    `json:"total_symptom_records"`
	SymptomTrend           string `json:"symptom_trend"`
	HRTUse                 bool   `json:"hrt_use"`
	BoneDensityTests       int    `json:"bone_density_tests"`
}

func EmptyMenopauseTracker() *MenopauseTracker {
	m := &MenopauseTracker{}
	m.Normalize()
	return m
}

func (m *MenopauseTracker) Normalize() {
	if m.MenopauseTracking != nil && m.MenopauseTracking.Symptoms == nil {
		m.MenopauseTracking.Symptoms = []MenopauseSymptom{}
	}
}

// ScreeningTracker is the contents of screening-tracker.json.
type ScreeningTracker struct {
	Timestamps
	CancerScreening CancerScreening     `json:"cancer_screening"`
	Statistics      ScreeningStatistics `json:"statistics"`
}

type CancerScreening struct {
	Cervical []ScreeningResult `json:"cervical"`
	Breast   []ScreeningResult `json:"breast"`
	Colon    []ScreeningResult `json:"colon"`
}

type ScreeningResult struct {
	Date        string `json:"date"`
	Result      string `json:"result"`
	HPVResult   string `json:"hpv_result,omitempty"`
	Methodology string `json:"methodology,omitempty"`
}

type ScreeningStatistics struct {
	TotalCervicalScreenings int     `json:"total_cervical_screenings"`
	YearsOfScreening        int     `json:"years_of_screening"`
	AbnormalResultsCount    int     `json:"abnormal_results_count"`
	ScreeningUpToDate       bool    `json:"screening_uptodate"`
	NextScreeningDue        *string `json:"next_screening_due"`
}

func EmptyScreeningTracker() *ScreeningTracker {
	s := &ScreeningTracker{}
	s.Normalize()
	return s
}

func (s *ScreeningTracker) Normalize() {
	if s.CancerScreening.Cervical == nil {
		s.CancerScreening.Cervical = []ScreeningResult{}
	}
	if s.CancerScreening.Breast == nil {
		s.CancerScreening.Breast = []ScreeningResult{}
	}
	if s.CancerScreening.Colon == nil {
		s.CancerScreening.Colon = []ScreeningResult{}
	}
}
