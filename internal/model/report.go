package model

import "time"

// AnalysisMetadata describes one completed call to the analysis provider.
type AnalysisMetadata struct {
	Model        string    `json:"model"`
	Timestamp    time.Time `json:"timestamp"`
	DataPoints   int       `json:"dataPoints"`
	InputTokens  int       `json:"inputTokens,omitempty"`
	OutputTokens int       `json:"outputTokens,omitempty"`
	DurationMs   int64     `json:"durationMs"`
}

// ReportMetadata identifies a generated report.
type ReportMetadata struct {
	ReportID    string           `json:"reportId"`
	GeneratedAt time.Time        `json:"generatedAt"`
	Query       string           `json:"query"`
	FocusAreas  []string         `json:"focusAreas,omitempty"`
	DateRange   *DateRange       `json:"dateRange,omitempty"`
	Analysis    AnalysisMetadata `json:"analysis"`
}

// ReportSidecar is the machine-readable file written next to each report.
type ReportSidecar struct {
	Metadata ReportMetadata `json:"metadata"`
	Analysis string         `json:"analysis"`
	Query    string         `json:"query"`
	Metrics  DerivedMetrics `json:"metrics"`
}

type ReportPaths struct {
	HTML string `json:"html"`
	JSON string `json:"json"`
}

// ReportEntry is one row of the report listing.
type ReportEntry struct {
	Filename  string    `json:"filename"`
	CreatedAt time.Time `json:"createdAt"`
}
