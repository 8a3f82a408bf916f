package analytics

import (
	"sort"

	"github.com/jwalitptl/health-api/internal/model"
)

// LabAbnormalities counts flagged items per report and overall. The flag on
// each item is taken as recorded.
func LabAbnormalities(labs []model.LabTest) model.LabAbnormalities {
	out := model.LabAbnormalities{
		TotalTests: len(labs),
		Tests:      make([]model.LabTestAbnormals, 0, len(labs)),
	}

	for _, lt := range labs {
		s := model.SummarizeItems(lt.Items)
		out.TotalItems += s.TotalItems
		out.AbnormalItems += s.AbnormalCount
		out.Tests = append(out.Tests, model.LabTestAbnormals{
			ID:            lt.ID,
			Type:          lt.Type,
			Date:          lt.Date,
			TotalItems:    s.TotalItems,
			AbnormalCount: s.AbnormalCount,
			AbnormalNames: s.AbnormalItems,
		})
	}

	out.AbnormalRate = round(ratio(float64(out.AbnormalItems), float64(out.TotalItems))*100, 1)
	return out
}

// LabItemSeries returns the numeric values of the named analyte across
// reports in date order. Non-numeric results are skipped.
func LabItemSeries(labs []model.LabTest, name string) []float64 {
	sorted := make([]model.LabTest, len(labs))
	copy(sorted, labs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })

	values := make([]float64, 0)
	for _, lt := range sorted {
		for _, it := range lt.Items {
			if it.Name == name && it.Value.Numeric {
				values = append(values, it.Value.Value)
			}
		}
	}
	return values
}
