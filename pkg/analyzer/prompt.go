package analyzer

import (
	"encoding/json"
	"fmt"
	"strings"
)

const basePrompt = `You are a health data analysis assistant with access to comprehensive medical knowledge.

Help the user understand their health data through:
- Trend analysis and pattern recognition
- Correlation between health metrics
- Risk assessment based on clinical guidelines
- Lab result interpretation against reference ranges
- Preventive care and screening status
- Medication interaction and radiation dose review

Analysis principles:
- Identify trends over time and flag significant changes or abnormalities
- Correlate related metrics (for example weight and blood pressure)
- Provide actionable insights in clear, non-alarmist language
- Note limitations and recommend professional consultation for diagnosis
- All data stays local to the user`

const disclaimerInstruction = `Important: you are analyzing personal health data. Do not provide medical diagnoses. ` +
	`Always include a disclaimer that this analysis is for informational purposes only and does not replace professional medical advice.`

// SystemPrompt builds the instructions sent with every request.
func SystemPrompt(req Request) string {
	var b strings.Builder
	b.WriteString(basePrompt)
	b.WriteString("\n")

	if len(req.FocusAreas) > 0 {
		fmt.Fprintf(&b, "\nFocus areas: %s", strings.Join(req.FocusAreas, ", "))
	}
	if req.DateRange != nil && (req.DateRange.Start != "" || req.DateRange.End != "") {
		fmt.Fprintf(&b, "\nAnalysis period: %s to %s", orOpen(req.DateRange.Start), orOpen(req.DateRange.End))
	}

	b.WriteString("\n")
	b.WriteString(disclaimerInstruction)
	return b.String()
}

// UserMessage renders the query followed by the data context.
func UserMessage(req Request) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "User query: %s\n\n", req.Query)

	switch c := req.Context.(type) {
	case nil:
	case string:
		b.WriteString(c)
		b.WriteString("\n")
	default:
		data, err := json.MarshalIndent(c, "", "  ")
		if err != nil {
			return "", fmt.Errorf("encoding analysis context: %w", err)
		}
		b.WriteString("Health data:\n")
		b.Write(data)
		b.WriteString("\n")
	}

	b.WriteString("\nPlease analyze this health data and provide insights related to the user's query.")
	return b.String(), nil
}

func orOpen(s string) string {
	if s == "" {
		return "open"
	}
	return s
}
