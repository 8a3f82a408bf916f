// Package report renders analysis results as standalone HTML and keeps the
// generated files on disk.
package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strconv"
	"time"

	"github.com/jwalitptl/health-api/internal/model"
)

// Disclaimer is printed at the foot of every report.
const Disclaimer = "This report was generated by an AI analysis of your health records. " +
	"It is for reference only and is not a medical diagnosis. " +
	"Consult a qualified doctor before making any treatment decision. " +
	"The analysis is limited to the data provided and may be incomplete."

const notAvailable = "N/A"

//go:embed templates/report.html.tmpl
var templateFS embed.FS

var reportTemplate = template.Must(template.ParseFS(templateFS, "templates/report.html.tmpl"))

type view struct {
	ReportID      string
	GeneratedAt   string
	GeneratedDate string
	DataPoints    int
	DateRange     *model.DateRange
	Query         string
	Analysis      string
	Profile       *profileView
	Labs          []labView
	Stats         statsView
	Disclaimer    string
}

type profileView struct {
	Age       string
	BMI       string
	BMIStatus string
	BSA       string
}

type labView struct {
	Type          string
	Date          string
	Hospital      string
	TotalItems    int
	AbnormalCount int
}

type statsView struct {
	WeightRecords int
	LabTests      int
	VaccineDoses  int
	Allergies     int
}

// Render produces the report page. The analysis text is HTML-escaped and
// shown with its line breaks preserved.
func Render(analysis string, s *model.Snapshot, meta model.ReportMetadata) (string, error) {
	if s == nil {
		s = model.NewSnapshot(meta.GeneratedAt)
	}

	v := view{
		ReportID:      meta.ReportID,
		GeneratedAt:   meta.GeneratedAt.UTC().Format(time.RFC1123),
		GeneratedDate: meta.GeneratedAt.UTC().Format(model.DateLayout),
		DataPoints:    meta.Analysis.DataPoints,
		Query:         meta.Query,
		Analysis:      analysis,
		Profile:       profileFor(s.Profile),
		Labs:          labsFor(s.LabResults),
		Stats:         statsFor(s),
		Disclaimer:    Disclaimer,
	}
	if !meta.DateRange.IsZero() {
		v.DateRange = meta.DateRange
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, v); err != nil {
		return "", fmt.Errorf("rendering report: %w", err)
	}
	return buf.String(), nil
}

func profileFor(p *model.Profile) *profileView {
	if p == nil {
		return nil
	}
	c := p.Calculated

	v := &profileView{Age: notAvailable, BMI: notAvailable, BSA: notAvailable}
	if c.AgeYears > 0 {
		v.Age = strconv.Itoa(c.AgeYears) + " years"
	}
	if c.BMI > 0 {
		v.BMI = strconv.FormatFloat(c.BMI, 'f', 1, 64)
		if c.BMIStatus != notAvailable {
			v.BMIStatus = c.BMIStatus
		}
	}
	if c.BodySurfaceArea > 0 {
		v.BSA = strconv.FormatFloat(c.BodySurfaceArea, 'f', 2, 64) + " " + c.BSAUnit
	}
	return v
}

func labsFor(labs []model.LabTest) []labView {
	out := make([]labView, 0, len(labs))
	for _, lt := range labs {
		s := model.SummarizeItems(lt.Items)
		if lt.Summary != nil && lt.Summary.TotalItems > 0 {
			s = *lt.Summary
		}
		out = append(out, labView{
			Type:          lt.Type,
			Date:          lt.Date,
			Hospital:      lt.Hospital,
			TotalItems:    s.TotalItems,
			AbnormalCount: s.AbnormalCount,
		})
	}
	return out
}

func statsFor(s *model.Snapshot) statsView {
	var st statsView
	if s.Profile != nil {
		st.WeightRecords = len(s.Profile.History)
	}
	st.LabTests = len(s.LabResults)
	if s.Vaccinations != nil {
		st.VaccineDoses = s.Vaccinations.Statistics.TotalDosesAdministered
		if st.VaccineDoses == 0 {
			st.VaccineDoses = len(s.Vaccinations.Records)
		}
	}
	if s.Allergies != nil {
		st.Allergies = s.Allergies.Statistics.TotalAllergies
		if st.Allergies == 0 {
			st.Allergies = len(s.Allergies.Allergies)
		}
	}
	return st
}
