package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/health-api/internal/model"
)

var fixedNow = time.Date(2026, time.October, 16, 9, 0, 0, 0, time.UTC)

func TestBMIStatus(t *testing.T) {
	tests := []struct {
		bmi  float64
		want string
	}{
		{0, BMIStatusUnknown},
		{-1, BMIStatusUnknown},
		{18.4, BMIStatusUnderweight},
		{18.5, BMIStatusNormal},
		{23.9, BMIStatusNormal},
		{24, BMIStatusOverweight},
		{27.9, BMIStatusOverweight},
		{28, BMIStatusObese},
		{35, BMIStatusObese},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%.1f", tt.bmi), func(t *testing.T) {
			assert.Equal(t, tt.want, BMIStatus(tt.bmi))
		})
	}
}

func TestBMI(t *testing.T) {
	assert.InDelta(t, 22.857, BMI(70, 1.75), 0.001)
	assert.Zero(t, BMI(70, 0))
	assert.Zero(t, BMI(0, 1.75))
}

func TestUnitConversions(t *testing.T) {
	assert.InDelta(t, 1.75, HeightMeters(175, "cm"), 1e-9)
	assert.InDelta(t, 1.75, HeightMeters(175, ""), 1e-9)
	assert.InDelta(t, 1.75, HeightMeters(1.75, "m"), 1e-9)
	assert.InDelta(t, 1.778, HeightMeters(70, "in"), 1e-9)

	assert.InDelta(t, 70, WeightKg(70, "kg"), 1e-9)
	assert.InDelta(t, 68.0388, WeightKg(150, "lb"), 1e-4)
	assert.InDelta(t, 60, WeightKg(120, "jin"), 1e-9)
}

func TestBodySurfaceArea(t *testing.T) {
	assert.InDelta(t, 1.752, BodySurfaceArea(170, 65), 0.001)
	assert.Zero(t, BodySurfaceArea(0, 65))
	assert.Zero(t, BodySurfaceArea(170, -1))
}

func TestAgeYears(t *testing.T) {
	age, ok := AgeYears("1990-06-15", fixedNow)
	require.True(t, ok)
	assert.Equal(t, 36, age)

	age, ok = AgeYears("1990-10-17", fixedNow)
	require.True(t, ok)
	assert.Equal(t, 35, age)

	_, ok = AgeYears("unknown", fixedNow)
	assert.False(t, ok)

	_, ok = AgeYears("2030-01-01", fixedNow)
	assert.False(t, ok)
}

func TestBody(t *testing.T) {
	p := model.EmptyProfile()
	p.BasicInfo = model.BasicInfo{BirthDate: "1990-06-15", Height: 175, HeightUnit: "cm", Weight: 70, WeightUnit: "kg"}

	b := Body(p, fixedNow)
	assert.Equal(t, 36, b.AgeYears)
	assert.Equal(t, 22.9, b.BMI)
	assert.Equal(t, BMIStatusNormal, b.BMIStatus)
	assert.Equal(t, 1.84, b.BodySurfaceArea)
	assert.Equal(t, "m²", b.BSAUnit)
}

func TestBodyEmptyProfile(t *testing.T) {
	b := Body(model.EmptyProfile(), fixedNow)
	assert.Zero(t, b.BMI)
	assert.Equal(t, BMIStatusUnknown, b.BMIStatus)
	assert.Zero(t, b.BodySurfaceArea)
}

func TestFillCalculatedKeepsStoredValues(t *testing.T) {
	p := model.EmptyProfile()
	p.BasicInfo = model.BasicInfo{BirthDate: "1990-06-15", Height: 175, HeightUnit: "cm", Weight: 70, WeightUnit: "kg"}
	p.Calculated.BMI = 25.0

	FillCalculated(p, fixedNow)

	assert.Equal(t, 25.0, p.Calculated.BMI)
	assert.Equal(t, BMIStatusOverweight, p.Calculated.BMIStatus)
	assert.Equal(t, 36, p.Calculated.AgeYears)
	assert.Equal(t, 1.84, p.Calculated.BodySurfaceArea)
}

func TestWeightTrend(t *testing.T) {
	entries := func(ws ...float64) []model.WeightEntry {
		out := make([]model.WeightEntry, len(ws))
		for i, w := range ws {
			out[i] = model.WeightEntry{Date: fmt.Sprintf("2026-01-%02d", i+1), Weight: w}
		}
		return out
	}

	tests := []struct {
		name   string
		in     []model.WeightEntry
		window int
		want   model.TrendDirection
		change float64
	}{
		{"empty", nil, 0, model.TrendNoData, 0},
		{"single point", entries(70), 0, model.TrendNoData, 0},
		{"below band", entries(70, 70.05), 0, model.TrendStable, 0.05},
		{"at band", entries(70, 70.1), 0, model.TrendIncreasing, 0.1},
		{"rounds to band but below it", entries(70, 70.096), 0, model.TrendStable, 0.1},
		{"just under band decreasing", entries(70, 69.904), 0, model.TrendStable, -0.1},
		{"decrease", entries(72, 71, 70), 0, model.TrendDecreasing, -2},
		{"window", entries(60, 70, 71, 71.05), 2, model.TrendStable, 0.05},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WeightTrend(tt.in, tt.window)
			assert.Equal(t, tt.want, got.Direction)
			assert.InDelta(t, tt.change, got.Change, 1e-9)
		})
	}
}

func TestWeightTrendPercentGuarded(t *testing.T) {
	got := WeightTrend([]model.WeightEntry{{Weight: 0}, {Weight: 5}}, 0)
	assert.Equal(t, model.TrendIncreasing, got.Direction)
	assert.Zero(t, got.ChangePercent)

	got = WeightTrend([]model.WeightEntry{{Weight: 72}, {Weight: 70}}, 0)
	assert.Equal(t, -2.78, got.ChangePercent)
}

func TestLabAbnormalities(t *testing.T) {
	labs := []model.LabTest{
		{ID: "a", Items: []model.LabItem{{Name: "ALT", IsAbnormal: true}, {Name: "AST"}}},
		{ID: "b", Items: []model.LabItem{{Name: "TG", IsAbnormal: true}, {Name: "LDL", IsAbnormal: true}, {Name: "HDL"}}},
	}

	got := LabAbnormalities(labs)
	assert.Equal(t, 2, got.TotalTests)
	assert.Equal(t, 5, got.TotalItems)
	assert.Equal(t, 3, got.AbnormalItems)
	assert.Equal(t, 60.0, got.AbnormalRate)
	require.Len(t, got.Tests, 2)
	assert.Equal(t, []string{"TG", "LDL"}, got.Tests[1].AbnormalNames)

	empty := LabAbnormalities(nil)
	assert.Zero(t, empty.AbnormalRate)
	assert.NotNil(t, empty.Tests)
}

func TestPearson(t *testing.T) {
	assert.InDelta(t, 1.0, Pearson([]float64{1, 2, 3}, []float64{1, 2, 3}), 1e-9)
	assert.InDelta(t, -1.0, Pearson([]float64{1, 2, 3}, []float64{3, 2, 1}), 1e-9)
	assert.Zero(t, Pearson([]float64{2, 2, 2}, []float64{1, 2, 3}))
	assert.Zero(t, Pearson(nil, nil))
	assert.Zero(t, Pearson([]float64{1, 2}, nil))
	assert.InDelta(t, 1.0, Pearson([]float64{1, 2, 3, 100}, []float64{1, 2, 3}), 1e-9)
}

func TestPearsonConstantDecimals(t *testing.T) {
	repeat := func(v float64, n int) []float64 {
		out := make([]float64, n)
		for i := range out {
			out[i] = v
		}
		return out
	}
	ramp := make([]float64, 19)
	for i := range ramp {
		ramp[i] = float64(i) + 0.3
	}

	assert.Zero(t, Pearson(repeat(70.3, 3), repeat(70.3, 3)))
	assert.Zero(t, Pearson(repeat(86.1, 7), repeat(23.9, 7)))
	assert.Zero(t, Pearson(repeat(5.6, 19), ramp))
	assert.Zero(t, Pearson(ramp, repeat(0.1, 19)))

	r := Pearson([]float64{70.3, 70.1, 69.8, 69.9}, []float64{23.0, 22.9, 22.8, 22.8})
	assert.True(t, r >= -1 && r <= 1, "coefficient %v out of range", r)
}

func TestCorrelationMatrixConstantWeights(t *testing.T) {
	s := model.NewSnapshot(fixedNow)
	s.Profile.BasicInfo.Height = 175
	s.Profile.History = []model.WeightEntry{
		{Date: "2026-01-01", Weight: 40.3},
		{Date: "2026-01-08", Weight: 40.3},
		{Date: "2026-01-15", Weight: 40.3},
	}

	got, err := CorrelationMatrix(SeriesFor(s, []string{MetricWeight, MetricBMI}))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Zero(t, got[0].Coefficient)
}

func TestWeightForecast(t *testing.T) {
	history := []model.WeightEntry{
		{Date: "2026-01-01", Weight: 70},
		{Date: "2026-01-02", Weight: 71},
		{Date: "2026-01-03", Weight: 72},
	}

	got := WeightForecast(history, 3)
	assert.Equal(t, 3, got.HistoryPoints)
	assert.InDelta(t, 1.0, got.Slope, 1e-9)
	assert.InDelta(t, 70.0, got.Intercept, 1e-9)
	assert.InDelta(t, 0.8165, got.StdDev, 1e-9)
	require.Len(t, got.Points, 3)
	assert.Equal(t, model.ForecastPoint{Date: "2026-01-04", Value: 73, Lower: 71.78, Upper: 74.22}, got.Points[0])
	assert.Equal(t, "2026-01-06", got.Points[2].Date)
	assert.Equal(t, 75.0, got.Points[2].Value)
}

func TestWeightForecastEdges(t *testing.T) {
	empty := WeightForecast(nil, 10)
	assert.Zero(t, empty.HistoryPoints)
	assert.Empty(t, empty.Points)
	assert.NotNil(t, empty.Points)

	single := WeightForecast([]model.WeightEntry{{Date: "2026-02-28", Weight: 65.5}}, 2)
	require.Len(t, single.Points, 2)
	assert.Equal(t, model.ForecastPoint{Date: "2026-03-01", Value: 65.5, Lower: 65.5, Upper: 65.5}, single.Points[0])

	history := []model.WeightEntry{{Weight: 70}, {Weight: 69}}
	assert.Len(t, WeightForecast(history, 0).Points, DefaultForecastDays)
	assert.Len(t, WeightForecast(history, 10000).Points, MaxForecastDays)
	assert.Empty(t, WeightForecast(history, 1).Points[0].Date)
}

func TestMetricTrendOf(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   model.TrendDirection
		pct    float64
	}{
		{"none", nil, model.TrendNoData, 0},
		{"single", []float64{70}, model.TrendStable, 0},
		{"within band", []float64{100, 105}, model.TrendStable, 5},
		{"up", []float64{100, 106}, model.TrendIncreasing, 6},
		{"down", []float64{100, 80}, model.TrendDecreasing, 20},
		{"zero start", []float64{0, 5}, model.TrendStable, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MetricTrendOf("weight", tt.values)
			assert.Equal(t, tt.want, got.Direction)
			assert.InDelta(t, tt.pct, got.ChangePercent, 1e-9)
		})
	}
}

func TestTrendInsights(t *testing.T) {
	t.Run("gain and high BMI", func(t *testing.T) {
		s := model.NewSnapshot(fixedNow)
		s.Profile.BasicInfo.Height = 170
		s.Profile.History = []model.WeightEntry{{Weight: 60}, {Weight: 65}, {Weight: 70}}

		got := TrendInsights(s, []string{MetricWeight, MetricBMI, "lab:ALT"})
		require.Len(t, got.Trends, 2)
		assert.Equal(t, model.TrendIncreasing, got.Trends[0].Direction)
		assert.Equal(t, 70.0, got.Trends[0].Current)
		assert.Equal(t, MetricBMI, got.Trends[1].Metric)

		require.Len(t, got.Insights, 2)
		assert.Equal(t, model.InsightWarning, got.Insights[0].Level)
		assert.Equal(t, "Significant weight gain", got.Insights[0].Title)
		assert.Contains(t, got.Insights[0].Description, "16.7%")
		assert.Equal(t, "BMI above range", got.Insights[1].Title)
		assert.Contains(t, got.Insights[1].Description, "24.2")
	})

	t.Run("steady", func(t *testing.T) {
		s := model.NewSnapshot(fixedNow)
		s.Profile.BasicInfo.Height = 180
		s.Profile.History = []model.WeightEntry{{Weight: 70}, {Weight: 0}, {Weight: 70.5}}

		got := TrendInsights(s, []string{MetricWeight, MetricBMI})
		require.Len(t, got.Insights, 1)
		assert.Equal(t, "Weight is steady", got.Insights[0].Title)
		assert.Equal(t, model.InsightInfo, got.Insights[0].Level)
	})

	t.Run("no data", func(t *testing.T) {
		got := TrendInsights(model.NewSnapshot(fixedNow), []string{MetricWeight})
		assert.Empty(t, got.Trends)
		assert.Empty(t, got.Insights)
	})
}

func TestCorrelationMatrix(t *testing.T) {
	got, err := CorrelationMatrix([]Series{
		{Name: "a", Values: []float64{1, 2, 3}},
		{Name: "b", Values: []float64{2, 4, 6}},
		{Name: "c", Values: []float64{5}},
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].MetricA)
	assert.Equal(t, "b", got[0].MetricB)
	assert.Equal(t, 1.0, got[0].Coefficient)
	assert.Equal(t, 3, got[0].Samples)

	_, err = CorrelationMatrix([]Series{{Name: "a", Values: []float64{1, 2}}})
	assert.ErrorIs(t, err, ErrInsufficientSeries)
}

func TestSeriesForDefaultsHeight(t *testing.T) {
	s := model.NewSnapshot(fixedNow)
	s.Profile.BasicInfo.Height = 0
	s.Profile.History = []model.WeightEntry{{Weight: 57.8}, {Weight: 60, BMI: 21.5}}
	s.LabResults = []model.LabTest{
		{Date: "2026-03-01", Items: []model.LabItem{{Name: "ALT", Value: model.NewMeasure(30)}}},
		{Date: "2025-03-01", Items: []model.LabItem{{Name: "ALT", Value: model.NewMeasure(20)}}},
	}

	series := SeriesFor(s, []string{"weight", " bmi ", "lab:ALT", "unknown", ""})
	require.Len(t, series, 4)
	assert.Equal(t, []float64{57.8, 60}, series[0].Values)
	assert.Equal(t, "bmi", series[1].Name)
	assert.InDelta(t, 20.0, series[1].Values[0], 1e-9)
	assert.Equal(t, 21.5, series[1].Values[1])
	assert.Equal(t, []float64{20, 30}, series[2].Values)
	assert.Empty(t, series[3].Values)
}

func TestRadiationCurrentYear(t *testing.T) {
	records := []model.RadiationRecord{
		{Date: fmt.Sprintf("%d-02-01", fixedNow.Year()), EffectiveDose: 0.4, ExamType: "X-ray"},
		{Date: fmt.Sprintf("%d-02-01", fixedNow.Year()-1), EffectiveDose: 5.0, ExamType: "CT"},
	}

	dose := CurrentYearDose(records, fixedNow)
	assert.InDelta(t, 0.4, dose, 1e-9)
	assert.Equal(t, model.RadiationSafe, SafetyLevel(dose))
	assert.InDelta(t, 40, PercentOfAnnualLimit(dose), 1e-9)

	stats := RadiationSummary(records, fixedNow)
	assert.Equal(t, 5.4, stats.TotalCumulativeDoseMSv)
	assert.Equal(t, 0.4, stats.CurrentYearDoseMSv)
	assert.Equal(t, 1, stats.ExamsThisYear)
	assert.Equal(t, 5.0, stats.HighestSingleDoseMSv)
	assert.Equal(t, "CT", stats.HighestDoseExam)
	assert.Equal(t, 2, stats.YearsOfTracking)
	assert.Equal(t, 2.7, stats.AverageAnnualDoseMSv)
	assert.Equal(t, 40.0, stats.PercentOfAnnualLimit)
	assert.Equal(t, model.RadiationSafe, stats.SafetyLevel)
	require.Len(t, stats.AnnualDoseHistory, 2)
	assert.Equal(t, fixedNow.Year()-1, stats.AnnualDoseHistory[0].Year)
}

func TestRadiationSummaryFillsGapYears(t *testing.T) {
	stats := RadiationSummary([]model.RadiationRecord{
		{Date: "2022-05-01", EffectiveDose: 2},
		{Date: "2025-05-01", EffectiveDose: 1},
	}, fixedNow)

	assert.Equal(t, 4, stats.YearsOfTracking)
	require.Len(t, stats.AnnualDoseHistory, 4)
	assert.Equal(t, model.AnnualDose{Year: 2023}, stats.AnnualDoseHistory[1])
	assert.Equal(t, 0.75, stats.AverageAnnualDoseMSv)
}

func TestRadiationSummaryEmpty(t *testing.T) {
	stats := RadiationSummary(nil, fixedNow)
	assert.Zero(t, stats.YearsOfTracking)
	assert.Zero(t, stats.AverageAnnualDoseMSv)
	assert.NotNil(t, stats.AnnualDoseHistory)
	assert.Equal(t, model.RadiationSafe, stats.SafetyLevel)
}

func TestSafetyLevel(t *testing.T) {
	assert.Equal(t, model.RadiationSafe, SafetyLevel(0.99))
	assert.Equal(t, model.RadiationLow, SafetyLevel(1))
	assert.Equal(t, model.RadiationLow, SafetyLevel(4.99))
	assert.Equal(t, model.RadiationModerate, SafetyLevel(5))
	assert.Equal(t, model.RadiationHigh, SafetyLevel(10))
}

func TestCycleSummaryPassesRegularityThrough(t *testing.T) {
	score := 0.85
	avg := 28.0
	tracker := model.EmptyCycleTracker()
	tracker.Statistics.RegularityScore = &score
	tracker.Statistics.AverageCycleLength = &avg
	tracker.Cycles = []model.Cycle{
		{PeriodStart: "2026-08-01", CycleLength: 28, PeriodLength: 5},
		{PeriodStart: "2026-08-29", CycleLength: 30, PeriodLength: 5},
		{PeriodStart: "2026-09-28", PeriodLength: 4},
	}

	got := CycleSummary(tracker)
	require.NotNil(t, got.RegularityScore)
	assert.Equal(t, 0.85, *got.RegularityScore)
	assert.Equal(t, 28.0, *got.AverageCycleLength)
	assert.Equal(t, 29.0, got.ObservedAverageCycleLength)
	assert.Equal(t, 4.7, got.ObservedAveragePeriodLength)
	assert.Equal(t, "2026-09-28", got.LastPeriodStart)
	assert.Equal(t, 3, got.TotalCycles)
}

func TestCycleSummaryEmpty(t *testing.T) {
	got := CycleSummary(model.EmptyCycleTracker())
	assert.Nil(t, got.RegularityScore)
	assert.Zero(t, got.ObservedAverageCycleLength)
}

func TestReminderSummary(t *testing.T) {
	reminders := []model.Reminder{
		{ID: "1", Status: model.ReminderCompleted, DueDate: "2026-01-01"},
		{ID: "2", Status: model.ReminderPending, DueDate: "2026-10-10"},
		{ID: "3", Status: model.ReminderPending, DueDate: "2026-10-20"},
		{ID: "4", Status: model.ReminderPending, DueDate: "2026-12-01"},
		{ID: "5", Status: model.ReminderOverdue, DueDate: "2026-09-01"},
		{ID: "6", Status: model.ReminderPending, NextReminder: "2026-10-18"},
	}

	got := ReminderSummary(reminders, fixedNow)
	assert.Equal(t, 6, got.Total)
	assert.Equal(t, 1, got.Completed)
	assert.Equal(t, 4, got.Pending)
	assert.Equal(t, 2, got.Overdue)
	assert.Equal(t, 2, got.DueWithin7Days)
	assert.Equal(t, 17, got.CompletionRate)

	assert.Equal(t, model.ReminderSummary{}, ReminderSummary(nil, fixedNow))
}

func TestAllergySummary(t *testing.T) {
	records := model.EmptyAllergyRecords()
	records.Allergies = []model.Allergy{
		{Allergen: "penicillin", Category: "drug", Severity: model.SeverityLifeThreatening},
		{Allergen: "peanut", Category: "food", Severity: model.SeverityMild},
		{Allergen: "bee", Category: "environmental", Severity: model.SeveritySevere, ReactionType: "Anaphylaxis"},
	}

	got := AllergySummary(records)
	assert.Equal(t, model.AllergySummary{Total: 3, Severe: 2, Drug: 1, Food: 1, Anaphylaxis: 2}, got)
}

func TestDataPointsAndSummarize(t *testing.T) {
	s := model.NewSnapshot(fixedNow)
	s.Profile.History = []model.WeightEntry{{Date: "2026-01-01", Weight: 70}, {Date: "2026-02-01", Weight: 69}}
	s.LabResults = []model.LabTest{{Items: []model.LabItem{{Name: "a"}, {Name: "b", IsAbnormal: true}, {Name: "c"}}}}
	s.Allergies.Allergies = []model.Allergy{{Allergen: "x"}}
	s.CycleTracker.Cycles = []model.Cycle{{}, {}}
	s.Vaccinations.Records = []model.Vaccination{{ID: "v1"}}

	assert.Equal(t, 9, DataPoints(s))
	assert.Zero(t, DataPoints(nil))

	m := Summarize(s, fixedNow)
	assert.Equal(t, 9, m.DataPoints)
	assert.Equal(t, 2, m.WeightRecords)
	assert.Equal(t, 1, m.VaccineDoses)
	assert.Equal(t, model.TrendDecreasing, m.WeightTrend.Direction)
	assert.Equal(t, 1, m.Labs.AbnormalItems)
	assert.Equal(t, fixedNow, m.GeneratedAt)
}

func TestSummarizeEmptySnapshot(t *testing.T) {
	m := Summarize(model.NewSnapshot(fixedNow), fixedNow)
	assert.Equal(t, model.TrendNoData, m.WeightTrend.Direction)
	assert.Zero(t, m.DataPoints)
	assert.Equal(t, BMIStatusUnknown, m.Body.BMIStatus)
}
