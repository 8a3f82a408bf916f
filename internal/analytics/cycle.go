package analytics

import (
	"gonum.org/v1/gonum/stat"

	"github.com/jwalitptl/health-api/internal/model"
)

// CycleSummary reports the tracker's stored statistics as-is, alongside the
// plain means observed in the cycle list. Cycles with a non-positive length
// are still open and are left out of the means.
func CycleSummary(t *model.CycleTracker) model.CycleSummary {
	out := model.CycleSummary{
		TotalCycles:         len(t.Cycles),
		AverageCycleLength:  t.Statistics.AverageCycleLength,
		AveragePeriodLength: t.Statistics.AveragePeriodLength,
		RegularityScore:     t.Statistics.RegularityScore,
	}

	var cycles, periods []float64
	for _, c := range t.Cycles {
		if c.CycleLength > 0 {
			cycles = append(cycles, float64(c.CycleLength))
		}
		if c.PeriodLength > 0 {
			periods = append(periods, float64(c.PeriodLength))
		}
		if c.PeriodStart > out.LastPeriodStart {
			out.LastPeriodStart = c.PeriodStart
		}
	}

	out.ObservedAverageCycleLength = mean(cycles)
	out.ObservedAveragePeriodLength = mean(periods)
	return out
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return round(stat.Mean(values, nil), 1)
}
