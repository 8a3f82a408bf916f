package analytics

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/jwalitptl/health-api/internal/model"
)

const (
	DefaultForecastDays = 30
	MaxForecastDays     = 365

	// forecastBandWidth scales the history's standard deviation into the
	// forecast band.
	forecastBandWidth = 1.5
)

// WeightForecast fits a line through the weight history, with the entry
// index as x, and extends it days entries past the last weigh-in. Forecast
// dates advance one calendar day per entry from the last dated entry. A
// single entry forecasts flat; an empty history forecasts nothing.
func WeightForecast(history []model.WeightEntry, days int) model.WeightForecast {
	if days <= 0 {
		days = DefaultForecastDays
	}
	if days > MaxForecastDays {
		days = MaxForecastDays
	}

	out := model.WeightForecast{HistoryPoints: len(history), Points: []model.ForecastPoint{}}
	if len(history) == 0 {
		return out
	}

	xs := make([]float64, len(history))
	ys := make([]float64, len(history))
	for i, h := range history {
		xs[i] = float64(i)
		ys[i] = h.Weight
	}

	intercept, slope := ys[0], 0.0
	if len(history) > 1 {
		intercept, slope = stat.LinearRegression(xs, ys, nil, false)
		if math.IsNaN(slope) || math.IsNaN(intercept) {
			intercept, slope = stat.Mean(ys, nil), 0
		}
	}
	_, std := stat.PopMeanStdDev(ys, nil)
	if math.IsNaN(std) {
		std = 0
	}
	band := std * forecastBandWidth

	out.Slope = round(slope, 4)
	out.Intercept = round(intercept, 4)
	out.StdDev = round(std, 4)

	last, ok := parseDay(history[len(history)-1].Date)
	for i := 0; i < days; i++ {
		v := intercept + slope*float64(len(history)+i)
		p := model.ForecastPoint{
			Value: round(v, 2),
			Lower: round(v-band, 2),
			Upper: round(v+band, 2),
		}
		if ok {
			p.Date = last.AddDate(0, 0, i+1).Format(model.DateLayout)
		}
		out.Points = append(out.Points, p)
	}
	return out
}

func parseDay(date string) (time.Time, bool) {
	if len(date) < len(model.DateLayout) {
		return time.Time{}, false
	}
	t, err := time.Parse(model.DateLayout, date[:len(model.DateLayout)])
	return t, err == nil
}
