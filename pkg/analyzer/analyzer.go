// Package analyzer sends a health-data question to a language model and
// returns the narrative answer.
package analyzer

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotConfigured means no API credential is set. No request is made.
	ErrNotConfigured = errors.New("analysis provider is not configured")
	// ErrUpstream covers non-2xx responses, transport failures and an open breaker.
	ErrUpstream = errors.New("analysis provider request failed")
	// ErrTimeout means the provider did not answer before the deadline.
	ErrTimeout = errors.New("analysis provider timed out")
	// ErrCanceled means the caller gave up before the provider answered.
	ErrCanceled = errors.New("analysis request canceled")
)

// Analyzer answers one query about the supplied context.
type Analyzer interface {
	Analyze(ctx context.Context, req Request) (*Result, error)
}

type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Request is a single analysis. Context is sent verbatim when it is a
// string and as indented JSON otherwise.
type Request struct {
	Query      string
	Context    any
	FocusAreas []string
	DateRange  *DateRange
}

type Result struct {
	Text     string
	Metadata Metadata
}

type Metadata struct {
	Model        string
	Timestamp    time.Time
	InputTokens  int
	OutputTokens int
	Duration     time.Duration
}
