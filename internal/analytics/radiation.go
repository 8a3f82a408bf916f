package analytics

import (
	"strconv"
	"time"

	"github.com/jwalitptl/health-api/internal/model"
)

// AnnualLimitMSv is the public annual effective-dose limit.
const AnnualLimitMSv = 1.0

// Safety bucket upper bounds in mSv/year.
const (
	safeBelow     = 1.0
	lowBelow      = 5.0
	moderateBelow = 10.0
)

// CurrentYearDose sums the doses of records dated in now's calendar year.
func CurrentYearDose(records []model.RadiationRecord, now time.Time) float64 {
	year := strconv.Itoa(now.Year())
	var dose float64
	for _, r := range records {
		if model.YearOf(r.Date) == year {
			dose += r.EffectiveDose
		}
	}
	return dose
}

// PercentOfAnnualLimit expresses a yearly dose against AnnualLimitMSv.
func PercentOfAnnualLimit(doseMSv float64) float64 {
	return doseMSv / AnnualLimitMSv * 100
}

// SafetyLevel buckets a yearly dose at 1, 5 and 10 mSv.
func SafetyLevel(doseMSv float64) model.RadiationSafety {
	switch {
	case doseMSv < safeBelow:
		return model.RadiationSafe
	case doseMSv < lowBelow:
		return model.RadiationLow
	case doseMSv < moderateBelow:
		return model.RadiationModerate
	default:
		return model.RadiationHigh
	}
}

// RadiationSummary recomputes the statistics block from the records.
// Tracking spans from the earliest to the latest record year inclusive, and
// the yearly history lists every year in that span.
func RadiationSummary(records []model.RadiationRecord, now time.Time) model.RadiationStatistics {
	stats := model.RadiationStatistics{
		AnnualDoseHistory: []model.AnnualDose{},
		SafetyLevel:       model.RadiationSafe,
	}

	thisYear := now.Year()
	perYear := make(map[int]*model.AnnualDose)
	firstYear, lastYear := 0, 0

	for _, r := range records {
		stats.TotalCumulativeDoseMSv += r.EffectiveDose
		if r.EffectiveDose > stats.HighestSingleDoseMSv {
			stats.HighestSingleDoseMSv = r.EffectiveDose
			stats.HighestDoseExam = r.ExamType
		}

		year, err := strconv.Atoi(model.YearOf(r.Date))
		if err != nil {
			continue
		}
		if year == thisYear {
			stats.CurrentYearDoseMSv += r.EffectiveDose
			stats.ExamsThisYear++
		}

		y, ok := perYear[year]
		if !ok {
			y = &model.AnnualDose{Year: year}
			perYear[year] = y
		}
		y.DoseMSv += r.EffectiveDose
		y.Exams++

		if firstYear == 0 || year < firstYear {
			firstYear = year
		}
		if year > lastYear {
			lastYear = year
		}
	}

	if firstYear > 0 {
		stats.YearsOfTracking = lastYear - firstYear + 1
		for year := firstYear; year <= lastYear; year++ {
			entry := model.AnnualDose{Year: year}
			if y, ok := perYear[year]; ok {
				entry = *y
				entry.DoseMSv = round(entry.DoseMSv, 3)
			}
			stats.AnnualDoseHistory = append(stats.AnnualDoseHistory, entry)
		}
	}

	stats.AverageAnnualDoseMSv = round(ratio(stats.TotalCumulativeDoseMSv, float64(stats.YearsOfTracking)), 3)
	stats.TotalCumulativeDoseMSv = round(stats.TotalCumulativeDoseMSv, 3)
	stats.CurrentYearDoseMSv = round(stats.CurrentYearDoseMSv, 3)
	stats.HighestSingleDoseMSv = round(stats.HighestSingleDoseMSv, 3)
	stats.PercentOfAnnualLimit = round(PercentOfAnnualLimit(stats.CurrentYearDoseMSv), 1)
	stats.SafetyLevel = SafetyLevel(stats.CurrentYearDoseMSv)

	return stats
}
