package model

// CycleTracker is the contents of cycle-tracker.json.
type CycleTracker struct {
	Timestamps
	UserSettings CycleSettings   `json:"user_settings"`
	Cycles       []Cycle         `json:"cycles"`
	CurrentCycle *string         `json:"current_cycle"`
	Statistics   CycleStatistics `json:"statistics"`
}

type CycleSettings struct {
	AverageCycleLength  float64 `json:"average_cycle_length"`
	AveragePeriodLength float64 `json:"average_period_length"`
	PregnancyPlanning   bool    `json:"pregnancy_planning"`
}

type Cycle struct {
	ID           string            `json:"id"`
	PeriodStart  string            `json:"period_start"`
	PeriodEnd    string            `json:"period_end"`
	PeriodLength int               `json:"period_length"`
	CycleLength  int               `json:"cycle_length"`
	FlowPattern  map[string]string `json:"flow_pattern,omitempty"`
	DailyLogs    []CycleDayLog     `json:"daily_logs,omitempty"`
}

func (c Cycle) RecordDate() string { return c.PeriodStart }

type CycleDayLog struct {
	Date        string   `json:"date"`
	CycleDay    int      `json:"cycle_day"`
	Phase       string   `json:"phase"`
	Flow        *DayFlow `json:"flow,omitempty"`
	Symptoms    []string `json:"symptoms,omitempty"`
	Mood        string   `json:"mood,omitempty"`
	EnergyLevel string   `json:"energy_level,omitempty"`
}

type DayFlow struct {
	Intensity   string `json:"intensity"`
	Description string `json:"description"`
}

// CycleStatistics is maintained by the tracker app. RegularityScore is a
// stored value in [0,1] and is never recomputed here.
type CycleStatistics struct {
	TotalCyclesTracked  int       `json:"total_cycles_tracked"`
	AverageCycleLength  *float64  `json:"average_cycle_length"`
	CycleLengthRange    []float64 `json:"cycle_length_range"`
	AveragePeriodLength *float64  `json:"average_period_length"`
	RegularityScore     *float64  `json:"regularity_score"`
}

func EmptyCycleTracker() *CycleTracker {
	c := &CycleTracker{}
	c.Normalize()
	return c
}

func (c *CycleTracker) Normalize() {
	if c.Cycles == nil {
		c.Cycles = []Cycle{}
	}
	if c.Statistics.CycleLengthRange == nil {
		c.Statistics.CycleLengthRange = []float64{}
	}
}
