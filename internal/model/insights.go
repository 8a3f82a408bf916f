package model

import "time"

type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
	TrendNoData     TrendDirection = "no_data"
)

// BodyMetrics are the profile figures shown on the dashboard header.
type BodyMetrics struct {
	AgeYears        int     `json:"age_years"`
	HeightCm        float64 `json:"height_cm"`
	WeightKg        float64 `json:"weight_kg"`
	BMI             float64 `json:"bmi"`
	BMIStatus       string  `json:"bmi_status"`
	BodySurfaceArea float64 `json:"body_surface_area"`
	BSAUnit         string  `json:"bsa_unit"`
}

type WeightTrend struct {
	Direction     TrendDirection `json:"direction"`
	Change        float64        `json:"change"`
	ChangePercent float64        `json:"change_percent"`
	StartWeight   float64        `json:"start_weight"`
	EndWeight     float64        `json:"end_weight"`
	StartDate     string         `json:"start_date,omitempty"`
	EndDate       string         `json:"end_date,omitempty"`
	Points        int            `json:"points"`
}

type LabAbnormalities struct {
	TotalTests    int                `json:"total_tests"`
	TotalItems    int                `json:"total_items"`
	AbnormalItems int                `json:"abnormal_items"`
	AbnormalRate  float64            `json:"abnormal_rate"`
	Tests         []LabTestAbnormals `json:"tests"`
}

type LabTestAbnormals struct {
	ID            string   `json:"id"`
	Type          string   `json:"type"`
	Date          string   `json:"date"`
	TotalItems    int      `json:"total_items"`
	AbnormalCount int      `json:"abnormal_count"`
	AbnormalNames []string `json:"abnormal_names"`
}

// CycleSummary reports the tracker's stored statistics next to what the raw
// cycle list shows.
type CycleSummary struct {
	TotalCycles                 int      `json:"total_cycles"`
	AverageCycleLength          *float64 `json:"average_cycle_length"`
	AveragePeriodLength         *float64 `json:"average_period_length"`
	RegularityScore             *float64 `json:"regularity_score"`
	ObservedAverageCycleLength  float64  `json:"observed_average_cycle_length"`
	ObservedAveragePeriodLength float64  `json:"observed_average_period_length"`
	LastPeriodStart             string   `json:"last_period_start,omitempty"`
}

type ReminderSummary struct {
	Total          int `json:"total"`
	Pending        int `json:"pending"`
	Completed      int `json:"completed"`
	Overdue        int `json:"overdue"`
	DueWithin7Days int `json:"due_within_7_days"`
	CompletionRate int `json:"completion_rate"`
}

type AllergySummary struct {
	Total       int `json:"total"`
	Severe      int `json:"severe"`
	Drug        int `json:"drug"`
	Food        int `json:"food"`
	Anaphylaxis int `json:"anaphylaxis"`
}

type Correlation struct {
	MetricA     string  `json:"metric_a"`
	MetricB     string  `json:"metric_b"`
	Coefficient float64 `json:"coefficient"`
	Samples     int     `json:"samples"`
}

// DerivedMetrics bundles every figure the dashboard shows.
type DerivedMetrics struct {
	GeneratedAt   time.Time           `json:"generated_at"`
	Body          BodyMetrics         `json:"body"`
	WeightTrend   WeightTrend         `json:"weight_trend"`
	Labs          LabAbnormalities    `json:"labs"`
	Radiation     RadiationStatistics `json:"radiation"`
	Cycle         CycleSummary        `json:"cycle"`
	Reminders     ReminderSummary     `json:"reminders"`
	Allergies     AllergySummary      `json:"allergies"`
	VaccineDoses  int                 `json:"vaccine_doses"`
	WeightRecords int                 `json:"weight_records"`
	DataPoints    int                 `json:"data_points"`
}

// WeightForecast extends a least-squares line through the weight history.
// The band is the history's standard deviation scaled by a fixed multiplier.
type WeightForecast struct {
	HistoryPoints int             `json:"history_points"`
	Slope         float64         `json:"slope_per_entry"`
	Intercept     float64         `json:"intercept"`
	StdDev        float64         `json:"std_dev"`
	Points        []ForecastPoint `json:"points"`
}

type ForecastPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

type InsightLevel string

const (
	InsightWarning InsightLevel = "warning"
	InsightInfo    InsightLevel = "info"
)

type Insight struct {
	Level       InsightLevel `json:"level"`
	Metric      string       `json:"metric"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
}

// MetricTrend compares the first and last value of one metric series.
// ChangePercent is unsigned; Direction carries the sign.
type MetricTrend struct {
	Metric        string         `json:"metric"`
	Direction     TrendDirection `json:"direction"`
	Current       float64        `json:"current"`
	Change        float64        `json:"change"`
	ChangePercent float64        `json:"change_percent"`
}

type TrendInsights struct {
	Trends   []MetricTrend `json:"trends"`
	Insights []Insight     `json:"insights"`
}
