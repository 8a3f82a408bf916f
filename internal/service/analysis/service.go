package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jwalitptl/health-api/internal/analytics"
	"github.com/jwalitptl/health-api/internal/model"
	"github.com/jwalitptl/health-api/internal/service/snapshot"
	"github.com/jwalitptl/health-api/pkg/analyzer"
	apperrors "github.com/jwalitptl/health-api/pkg/errors"
	"github.com/jwalitptl/health-api/pkg/logger"
	"github.com/jwalitptl/health-api/pkg/metrics"
	"github.com/jwalitptl/health-api/pkg/validator"
)

const (
	DefaultTimeout = 90 * time.Second
	// EmptyAnswer replaces a response that carried no text.
	EmptyAnswer = "Unable to generate analysis"
)

type AnalysisService interface {
	Analyze(ctx context.Context, in Input) (*Output, error)
}

// Input is the body of an analyze or report request.
type Input struct {
	Query      string           `json:"query" binding:"required,notblank,max=4000"`
	FocusAreas []string         `json:"focusAreas" binding:"max=20,dive,max=100"`
	DateRange  *model.DateRange `json:"dateRange"`
}

type Output struct {
	Analysis string                 `json:"analysis"`
	Metadata model.AnalysisMetadata `json:"metadata"`
	// Snapshot is the date-scoped data the analysis was run on.
	Snapshot *model.Snapshot `json:"-"`
}

// PromptContext is the payload sent alongside the query.
type PromptContext struct {
	HealthData *model.Snapshot      `json:"healthData"`
	Metrics    model.DerivedMetrics `json:"derivedMetrics"`
}

type configurable interface {
	Configured() bool
}

type Service struct {
	snapshots *snapshot.Service
	analyzer  analyzer.Analyzer
	validator validator.Validator
	metrics   *metrics.Metrics
	logger    *logger.Logger
	timeout   time.Duration
	now       func() time.Time
}

func NewService(snapshots *snapshot.Service, a analyzer.Analyzer, m *metrics.Metrics, log *logger.Logger, timeout time.Duration) *Service {
	if log == nil {
		log = logger.Nop()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Service{
		snapshots: snapshots,
		analyzer:  a,
		validator: validator.New(),
		metrics:   m,
		logger:    log.With("service", "analysis"),
		timeout:   timeout,
		now:       time.Now,
	}
}

// Validate rejects input before anything is loaded or sent.
func (s *Service) Validate(in Input) error {
	if err := s.validator.Validate(in); err != nil {
		return apperrors.NewBadRequest(err.Error(), nil)
	}
	if err := in.DateRange.Validate(); err != nil {
		return apperrors.NewBadRequest(fmt.Sprintf("invalid dateRange: %v", err), err)
	}
	return nil
}

// Analyze loads a fresh snapshot, scopes it to the requested range and asks
// the analyzer about it. Nothing is persisted.
func (s *Service) Analyze(ctx context.Context, in Input) (*Output, error) {
	if err := s.Validate(in); err != nil {
		return nil, err
	}
	if c, ok := s.analyzer.(configurable); ok && !c.Configured() {
		s.metrics.ObserveAnalysis("not_configured", 0, 0, 0)
		return nil, classify(analyzer.ErrNotConfigured)
	}

	now := s.now()
	snap := snapshot.Scoped(s.snapshots.Build(ctx), in.DateRange)
	req := analyzer.Request{
		Query:      in.Query,
		Context:    PromptContext{HealthData: snap, Metrics: analytics.Summarize(snap, now)},
		FocusAreas: in.FocusAreas,
	}
	if !in.DateRange.IsZero() {
		req.DateRange = &analyzer.DateRange{Start: in.DateRange.Start, End: in.DateRange.End}
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	started := time.Now()
	res, err := s.analyzer.Analyze(callCtx, req)
	elapsed := time.Since(started)
	if err != nil {
		switch {
		case errors.Is(ctx.Err(), context.Canceled) && !errors.Is(err, analyzer.ErrCanceled):
			err = fmt.Errorf("%w: %v", analyzer.ErrCanceled, err)
		case errors.Is(callCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, analyzer.ErrTimeout):
			err = fmt.Errorf("%w: %v", analyzer.ErrTimeout, err)
		}
		appErr := classify(err)
		s.metrics.ObserveAnalysis(outcome(appErr), elapsed, 0, 0)
		s.logger.Warn(err, "analysis failed", "code", appErr.Code, "duration_ms", elapsed.Milliseconds())
		return nil, appErr
	}

	text := res.Text
	if text == "" {
		text = EmptyAnswer
	}
	timestamp := res.Metadata.Timestamp
	if timestamp.IsZero() {
		timestamp = now.UTC()
	}
	s.metrics.ObserveAnalysis("success", elapsed, res.Metadata.InputTokens, res.Metadata.OutputTokens)

	return &Output{
		Analysis: text,
		Metadata: model.AnalysisMetadata{
			Model:        res.Metadata.Model,
			Timestamp:    timestamp,
			DataPoints:   analytics.DataPoints(snap),
			InputTokens:  res.Metadata.InputTokens,
			OutputTokens: res.Metadata.OutputTokens,
			DurationMs:   elapsed.Milliseconds(),
		},
		Snapshot: snap,
	}, nil
}

func classify(err error) *apperrors.AppError {
	if appErr, ok := apperrors.As(err); ok {
		return appErr
	}
	switch {
	case errors.Is(err, analyzer.ErrNotConfigured):
		return apperrors.NewConfiguration("API key not configured. Set ANTHROPIC_API_KEY", err)
	case errors.Is(err, analyzer.ErrCanceled), errors.Is(err, context.Canceled):
		return apperrors.NewRequestCanceled(err)
	case errors.Is(err, analyzer.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewAnalysisTimeout(err)
	case errors.Is(err, analyzer.ErrUpstream):
		return apperrors.NewExternalAPI(fmt.Sprintf("Analysis failed: %v", err), err)
	}
	return apperrors.NewInternal(err)
}

func outcome(err *apperrors.AppError) string {
	switch err.Code {
	case apperrors.ErrConfiguration:
		return "not_configured"
	case apperrors.ErrAnalysisTimeout:
		return "timeout"
	case apperrors.ErrExternalAPI:
		return "upstream_error"
	case apperrors.ErrRequestCanceled:
		return "canceled"
	}
	return "error"
}
