package analytics

import (
	"math"

	"github.com/jwalitptl/health-api/internal/model"
)

// stableBand is the absolute change, in the history's weight unit, below
// which a trend counts as stable.
const stableBand = 0.1

const bandEpsilon = 1e-9

// WeightTrend compares the first and last entries of the trailing window of
// history. window <= 0 uses the whole history. Fewer than two points yields
// model.TrendNoData with zero change.
func WeightTrend(history []model.WeightEntry, window int) model.WeightTrend {
	if window > 0 && window < len(history) {
		history = history[len(history)-window:]
	}

	trend := model.WeightTrend{Direction: model.TrendNoData, Points: len(history)}
	if len(history) == 0 {
		return trend
	}

	first, last := history[0], history[len(history)-1]
	trend.StartWeight = first.Weight
	trend.EndWeight = last.Weight
	trend.StartDate = first.Date
	trend.EndDate = last.Date

	if len(history) < 2 {
		return trend
	}

	delta := last.Weight - first.Weight
	trend.Change = round(delta, 2)
	trend.ChangePercent = round(ratio(delta, first.Weight)*100, 2)

	// The epsilon keeps a 0.1 change that floats as 0.0999… out of the band.
	switch {
	case math.Abs(delta) < stableBand-bandEpsilon:
		trend.Direction = model.TrendStable
	case delta > 0:
		trend.Direction = model.TrendIncreasing
	default:
		trend.Direction = model.TrendDecreasing
	}

	return trend
}
