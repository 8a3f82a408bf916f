package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Measure is a lab value or reference bound. Hospital exports write these
// either as JSON numbers or as strings ("5.2", "<0.5", "negative"), so both
// encodings are accepted and the original text is kept for display.
type Measure struct {
	Raw     string
	Value   float64
	Numeric bool

	quoted bool
}

// NewMeasure returns a numeric measure.
func NewMeasure(v float64) Measure {
	return Measure{Value: v, Numeric: true}
}

func (m *Measure) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*m = Measure{}
		return nil
	}

	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		*m = Measure{Raw: s, Value: v, Numeric: err == nil, quoted: true}
		return nil
	}

	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*m = Measure{Raw: string(b), Value: v, Numeric: true}
	return nil
}

func (m Measure) MarshalJSON() ([]byte, error) {
	if m.quoted || (!m.Numeric && m.Raw != "") {
		return json.Marshal(m.Raw)
	}
	if !m.Numeric {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

// String renders the measure the way it appeared in the source file.
func (m Measure) String() string {
	if m.Raw != "" {
		return m.Raw
	}
	if !m.Numeric {
		return ""
	}
	return strconv.FormatFloat(m.Value, 'f', -1, 64)
}

// Severity is an ordinal 1-5 allergy severity. Older exports store a label
// instead of a number.
type Severity int

const (
	SeverityMild            Severity = 2
	SeverityModerate        Severity = 3
	SeveritySevere          Severity = 4
	SeverityLifeThreatening Severity = 5
)

var severityLabels = map[string]Severity{
	"mild":             SeverityMild,
	"moderate":         SeverityModerate,
	"severe":           SeveritySevere,
	"life-threatening": SeverityLifeThreatening,
	"anaphylaxis":      SeverityLifeThreatening,
}

func (s *Severity) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*s = 0
		return nil
	}
	if b[0] == '"' {
		var label string
		if err := json.Unmarshal(b, &label); err != nil {
			return err
		}
		if n, err := strconv.Atoi(label); err == nil {
			*s = Severity(n)
			return nil
		}
		*s = severityLabels[strings.ToLower(strings.TrimSpace(label))]
		return nil
	}
	var n float64
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = Severity(n)
	return nil
}

// IsSevere reports whether the reaction is rated severe or worse.
func (s Severity) IsSevere() bool {
	return s >= SeveritySevere
}
