package analytics

import (
	"fmt"
	"math"

	"github.com/jwalitptl/health-api/internal/model"
)

// Percent thresholds on first-to-last change.
const (
	trendPercentBand       = 5.0
	significantPercent     = 10.0
	steadyPercent          = 3.0
	overweightBMIThreshold = 24.0
	underweightBMIBelow    = 18.5
)

// MetricTrendOf labels a series increasing or decreasing once its
// first-to-last change exceeds 5%; anything smaller is stable.
func MetricTrendOf(metric string, values []float64) model.MetricTrend {
	t := model.MetricTrend{Metric: metric, Direction: model.TrendStable}
	if len(values) == 0 {
		t.Direction = model.TrendNoData
		return t
	}

	first, last := values[0], values[len(values)-1]
	t.Current = round(last, 2)
	if len(values) < 2 {
		return t
	}

	change := last - first
	pct := ratio(change, first) * 100
	t.Change = round(change, 2)
	t.ChangePercent = round(math.Abs(pct), 2)
	if math.Abs(pct) > trendPercentBand {
		if pct > 0 {
			t.Direction = model.TrendIncreasing
		} else {
			t.Direction = model.TrendDecreasing
		}
	}
	return t
}

// TrendInsights summarises the requested metrics ("weight", "bmi" or
// "lab:<item>") and derives rule-based notes for weight and BMI. Metrics
// with no values are left out of Trends.
func TrendInsights(s *model.Snapshot, metrics []string) model.TrendInsights {
	out := model.TrendInsights{Trends: []model.MetricTrend{}, Insights: []model.Insight{}}

	byName := make(map[string][]float64, len(metrics))
	for _, series := range SeriesFor(s, metrics) {
		values := positive(series.Values)
		if len(values) == 0 {
			continue
		}
		byName[series.Name] = values
		out.Trends = append(out.Trends, MetricTrendOf(series.Name, values))
	}

	if weights := byName[MetricWeight]; len(weights) >= 2 {
		t := MetricTrendOf(MetricWeight, weights)
		switch {
		case t.Direction == model.TrendIncreasing && t.ChangePercent > significantPercent:
			out.Insights = append(out.Insights, model.Insight{
				Level:       model.InsightWarning,
				Metric:      MetricWeight,
				Title:       "Significant weight gain",
				Description: fmt.Sprintf("Weight rose %.1f%% over the recorded period. Review diet and exercise habits.", t.ChangePercent),
			})
		case t.Direction == model.TrendDecreasing && t.ChangePercent > significantPercent:
			out.Insights = append(out.Insights, model.Insight{
				Level:       model.InsightWarning,
				Metric:      MetricWeight,
				Title:       "Significant weight loss",
				Description: fmt.Sprintf("Weight fell %.1f%%. If the loss was not planned, consult a doctor.", t.ChangePercent),
			})
		}
	}

	if bmis := byName[MetricBMI]; len(bmis) > 0 {
		current := bmis[len(bmis)-1]
		switch {
		case current > overweightBMIThreshold:
			out.Insights = append(out.Insights, model.Insight{
				Level:       model.InsightInfo,
				Metric:      MetricBMI,
				Title:       "BMI above range",
				Description: fmt.Sprintf("Current BMI is %.1f, in the overweight range. Keep a balanced diet and regular exercise.", current),
			})
		case current < underweightBMIBelow:
			out.Insights = append(out.Insights, model.Insight{
				Level:       model.InsightInfo,
				Metric:      MetricBMI,
				Title:       "BMI below range",
				Description: fmt.Sprintf("Current BMI is %.1f, in the underweight range. Consider increasing nutritional intake.", current),
			})
		}
	}

	if weights := byName[MetricWeight]; len(weights) >= 2 {
		t := MetricTrendOf(MetricWeight, weights)
		if t.Direction == model.TrendStable && t.ChangePercent < steadyPercent {
			out.Insights = append(out.Insights, model.Insight{
				Level:       model.InsightInfo,
				Metric:      MetricWeight,
				Title:       "Weight is steady",
				Description: "Weight changed by less than 3% over the recorded period.",
			})
		}
	}

	return out
}

func positive(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if v > 0 {
			out = append(out, v)
		}
	}
	return out
}
