package analytics

import (
	"errors"
	"math"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/jwalitptl/health-api/internal/model"
)

// ErrInsufficientSeries is returned when fewer than two requested metrics
// have enough values to correlate.
var ErrInsufficientSeries = errors.New("at least two metrics with more than one value are required")

// defaultHeightCm stands in for a profile without a height when deriving BMI
// from the weight history.
const defaultHeightCm = 170.0

const (
	MetricWeight    = "weight"
	MetricBMI       = "bmi"
	labMetricPrefix = "lab:"
)

// Series is a named, ordered list of observations.
type Series struct {
	Name   string
	Values []float64
}

// Pearson returns the correlation coefficient of x and y over their common
// prefix. It returns 0 for empty input or when either series is constant.
func Pearson(x, y []float64) float64 {
	n := min(len(x), len(y))
	if n == 0 {
		return 0
	}
	x, y = x[:n], y[:n]
	if constant(x) || constant(y) {
		return 0
	}

	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return math.Max(-1, math.Min(1, r))
}

// constant reports whether every value equals the first. A constant series
// has zero variance even when float sums say otherwise.
func constant(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}

// CorrelationMatrix correlates every pair of series that carries more than
// one value. Pairs are emitted in input order.
func CorrelationMatrix(series []Series) ([]model.Correlation, error) {
	valid := make([]Series, 0, len(series))
	for _, s := range series {
		if len(s.Values) > 1 {
			valid = append(valid, s)
		}
	}
	if len(valid) < 2 {
		return nil, ErrInsufficientSeries
	}

	out := make([]model.Correlation, 0, len(valid)*(len(valid)-1)/2)
	for i := 0; i < len(valid); i++ {
		for j := i + 1; j < len(valid); j++ {
			a, b := valid[i], valid[j]
			samples := len(a.Values)
			if len(b.Values) < samples {
				samples = len(b.Values)
			}
			out = append(out, model.Correlation{
				MetricA:     a.Name,
				MetricB:     b.Name,
				Coefficient: round(Pearson(a.Values, b.Values), 4),
				Samples:     samples,
			})
		}
	}
	return out, nil
}

// SeriesFor resolves metric names against a snapshot. Supported names are
// "weight", "bmi" and "lab:<item name>". Unknown names resolve to an empty
// series and are dropped by CorrelationMatrix.
func SeriesFor(s *model.Snapshot, metrics []string) []Series {
	out := make([]Series, 0, len(metrics))
	for _, raw := range metrics {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		out = append(out, Series{Name: name, Values: seriesValues(s, name)})
	}
	return out
}

func seriesValues(s *model.Snapshot, name string) []float64 {
	switch {
	case name == MetricWeight:
		values := make([]float64, 0, len(s.Profile.History))
		for _, h := range s.Profile.History {
			values = append(values, h.Weight)
		}
		return values

	case name == MetricBMI:
		heightM := HeightMeters(s.Profile.BasicInfo.Height, s.Profile.BasicInfo.HeightUnit)
		if heightM <= 0 {
			heightM = defaultHeightCm / 100
		}
		values := make([]float64, 0, len(s.Profile.History))
		for _, h := range s.Profile.History {
			if h.BMI > 0 {
				values = append(values, h.BMI)
				continue
			}
			values = append(values, BMI(h.Weight, heightM))
		}
		return values

	case strings.HasPrefix(name, labMetricPrefix):
		return LabItemSeries(s.LabResults, strings.TrimPrefix(name, labMetricPrefix))
	}
	return nil
}
