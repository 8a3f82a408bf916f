// Package analytics derives dashboard figures from loaded records. Every
// function is pure and total: degenerate input yields 0, "N/A" or
// model.TrendNoData, never a panic or NaN.
package analytics

import (
	"math"
	"strings"
	"time"

	"github.com/jwalitptl/health-api/internal/model"
)

// BMI category cutoffs. These follow the regional convention used by the
// source records, not the WHO bands.
const (
	bmiUnderweightBelow = 18.5
	bmiNormalBelow      = 24.0
	bmiOverweightBelow  = 28.0
)

const (
	BMIStatusUnknown     = "N/A"
	BMIStatusUnderweight = "underweight"
	BMIStatusNormal      = "normal"
	BMIStatusOverweight  = "overweight"
	BMIStatusObese       = "obese"
)

// BMI is weight / height².
func BMI(weightKg, heightM float64) float64 {
	if weightKg <= 0 || heightM <= 0 {
		return 0
	}
	return weightKg / (heightM * heightM)
}

// BMIStatus buckets a BMI. Each lower bound is inclusive.
func BMIStatus(bmi float64) string {
	switch {
	case bmi <= 0 || math.IsNaN(bmi):
		return BMIStatusUnknown
	case bmi < bmiUnderweightBelow:
		return BMIStatusUnderweight
	case bmi < bmiNormalBelow:
		return BMIStatusNormal
	case bmi < bmiOverweightBelow:
		return BMIStatusOverweight
	default:
		return BMIStatusObese
	}
}

// BMIFromProfile converts the profile's height and weight to metric before
// computing BMI.
func BMIFromProfile(p *model.Profile) float64 {
	return BMI(
		WeightKg(p.BasicInfo.Weight, p.BasicInfo.WeightUnit),
		HeightMeters(p.BasicInfo.Height, p.BasicInfo.HeightUnit),
	)
}

// BodySurfaceArea uses the Mosteller formula: sqrt(height_cm * weight_kg / 3600), in m².
func BodySurfaceArea(heightCm, weightKg float64) float64 {
	if heightCm <= 0 || weightKg <= 0 {
		return 0
	}
	return math.Sqrt(heightCm * weightKg / 3600)
}

// HeightMeters converts a height in the given unit. An empty unit is read as
// centimetres.
func HeightMeters(height float64, unit string) float64 {
	if height <= 0 {
		return 0
	}
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "m":
		return height
	case "in", "inch", "inches":
		return height * 0.0254
	default:
		return height / 100
	}
}

// WeightKg converts a weight in the given unit. An empty unit is read as kilograms.
func WeightKg(weight float64, unit string) float64 {
	if weight <= 0 {
		return 0
	}
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "lb", "lbs", "pound", "pounds":
		return weight * 0.45359237
	case "jin", "斤":
		return weight * 0.5
	default:
		return weight
	}
}

// AgeYears returns completed years between birthDate and now.
func AgeYears(birthDate string, now time.Time) (int, bool) {
	if len(birthDate) < len(model.DateLayout) {
		return 0, false
	}
	born, err := time.Parse(model.DateLayout, birthDate[:len(model.DateLayout)])
	if err != nil || born.After(now) {
		return 0, false
	}

	age := now.Year() - born.Year()
	if now.Month() < born.Month() || (now.Month() == born.Month() && now.Day() < born.Day()) {
		age--
	}
	return age, true
}

// Body computes the header figures from a profile's basic info. BMI is
// rounded to one decimal and the status is taken from the rounded value so
// the two never disagree on screen.
func Body(p *model.Profile, now time.Time) model.BodyMetrics {
	heightM := HeightMeters(p.BasicInfo.Height, p.BasicInfo.HeightUnit)
	weightKg := WeightKg(p.BasicInfo.Weight, p.BasicInfo.WeightUnit)

	bmi := round(BMIFromProfile(p), 1)
	age, _ := AgeYears(p.BasicInfo.BirthDate, now)

	return model.BodyMetrics{
		AgeYears:        age,
		HeightCm:        round(heightM*100, 1),
		WeightKg:        round(weightKg, 1),
		BMI:             bmi,
		BMIStatus:       BMIStatus(bmi),
		BodySurfaceArea: round(BodySurfaceArea(heightM*100, weightKg), 2),
		BSAUnit:         "m²",
	}
}

// FillCalculated completes a profile's calculated block from its basic info.
// Values already present in the file are kept as stored.
func FillCalculated(p *model.Profile, now time.Time) {
	b := Body(p, now)
	c := &p.Calculated

	if c.AgeYears == 0 {
		c.AgeYears = b.AgeYears
	}
	if c.Age == 0 {
		c.Age = c.AgeYears
	}
	if c.BMI == 0 {
		c.BMI = b.BMI
	}
	if c.BMIStatus == "" || c.BMIStatus == BMIStatusUnknown {
		c.BMIStatus = BMIStatus(c.BMI)
	}
	if c.BodySurfaceArea == 0 {
		c.BodySurfaceArea = b.BodySurfaceArea
	}
	if c.BSAUnit == "" {
		c.BSAUnit = b.BSAUnit
	}
}

func round(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
