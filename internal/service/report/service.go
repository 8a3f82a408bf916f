package report

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jwalitptl/health-api/internal/analytics"
	"github.com/jwalitptl/health-api/internal/email"
	"github.com/jwalitptl/health-api/internal/model"
	"github.com/jwalitptl/health-api/internal/report"
	"github.com/jwalitptl/health-api/internal/service/analysis"
	apperrors "github.com/jwalitptl/health-api/pkg/errors"
	"github.com/jwalitptl/health-api/pkg/logger"
	"github.com/jwalitptl/health-api/pkg/messaging"
	"github.com/jwalitptl/health-api/pkg/metrics"
)

const (
	notifyTimeout = 30 * time.Second
	summaryLength = 500
)

type ReportService interface {
	Generate(ctx context.Context, in analysis.Input) (*Generated, error)
	List(ctx context.Context) ([]model.ReportEntry, error)
	Open(ctx context.Context, filename string) ([]byte, error)
}

// Generated is the result of one report request.
type Generated struct {
	ReportID string                 `json:"reportId"`
	Paths    model.ReportPaths      `json:"paths"`
	Metadata model.AnalysisMetadata `json:"metadata"`
}

// GeneratedEvent is the payload of messaging.EventReportGenerated.
type GeneratedEvent struct {
	ReportID    string    `json:"report_id"`
	GeneratedAt time.Time `json:"generated_at"`
	HTMLPath    string    `json:"html_path"`
	JSONPath    string    `json:"json_path"`
	DataPoints  int       `json:"data_points"`
	Model       string    `json:"model"`
	Query       string    `json:"query"`
	Summary     string    `json:"summary"`
}

type Service struct {
	analysis  analysis.AnalysisService
	store     *report.Store
	publisher messaging.Publisher
	mailer    email.Service
	metrics   *metrics.Metrics
	logger    *logger.Logger
	now       func() time.Time
	wg        sync.WaitGroup
}

func NewService(a analysis.AnalysisService, store *report.Store, publisher messaging.Publisher, mailer email.Service, m *metrics.Metrics, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	if publisher == nil {
		publisher = messaging.NopPublisher{}
	}
	if mailer == nil {
		mailer = email.Disabled{}
	}
	return &Service{
		analysis:  a,
		store:     store,
		publisher: publisher,
		mailer:    mailer,
		metrics:   m,
		logger:    log.With("service", "report"),
		now:       time.Now,
	}
}

// Generate runs the analysis and, once the full text is back, renders and
// writes the report. A failed analysis leaves nothing on disk.
func (s *Service) Generate(ctx context.Context, in analysis.Input) (*Generated, error) {
	out, err := s.analysis.Analyze(ctx, in)
	if err != nil {
		return nil, err
	}

	now := s.now()
	meta := model.ReportMetadata{
		ReportID:    report.NewReportID(now),
		GeneratedAt: out.Metadata.Timestamp,
		Query:       in.Query,
		FocusAreas:  in.FocusAreas,
		DateRange:   in.DateRange,
		Analysis:    out.Metadata,
	}

	html, err := report.Render(out.Analysis, out.Snapshot, meta)
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}

	paths, err := s.store.Persist(ctx, meta, html, model.ReportSidecar{
		Metadata: meta,
		Analysis: out.Analysis,
		Query:    in.Query,
		Metrics:  analytics.Summarize(out.Snapshot, now),
	})
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}
	s.metrics.ObserveReportGenerated()
	s.logger.Info("report generated", "report_id", meta.ReportID, "html", paths.HTML)

	s.notify(ctx, meta, paths, out.Analysis)

	return &Generated{ReportID: meta.ReportID, Paths: paths, Metadata: out.Metadata}, nil
}

// notify publishes the event and mails the report in the background. Both
// are best effort.
func (s *Service) notify(ctx context.Context, meta model.ReportMetadata, paths model.ReportPaths, text string) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()

		err := s.publisher.Publish(ctx, messaging.EventReportGenerated, GeneratedEvent{
			ReportID:    meta.ReportID,
			GeneratedAt: meta.GeneratedAt,
			HTMLPath:    paths.HTML,
			JSONPath:    paths.JSON,
			DataPoints:  meta.Analysis.DataPoints,
			Model:       meta.Analysis.Model,
			Query:       meta.Query,
			Summary:     excerpt(text, summaryLength),
		})
		s.metrics.ObserveEvent(messaging.EventReportGenerated, err)
		if err != nil {
			s.logger.Warn(err, "failed to publish report event", "report_id", meta.ReportID)
		}

		if !s.mailer.Enabled() {
			return
		}
		if err := s.mailer.SendReport(ctx, email.Report{
			ReportID: meta.ReportID,
			Query:    meta.Query,
			HTMLPath: paths.HTML,
			Summary:  excerpt(text, summaryLength),
		}); err != nil {
			s.logger.Warn(err, "failed to email report", "report_id", meta.ReportID)
		}
	}()
}

// Wait blocks until background notifications finish.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) List(ctx context.Context) ([]model.ReportEntry, error) {
	entries, err := s.store.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}
	return entries, nil
}

func (s *Service) Open(ctx context.Context, filename string) ([]byte, error) {
	data, err := s.store.Open(ctx, filename)
	switch {
	case errors.Is(err, report.ErrInvalidFilename):
		return nil, apperrors.NewBadRequest("invalid report filename", err)
	case errors.Is(err, report.ErrReportNotFound):
		return nil, apperrors.NewNotFound("report", err)
	case err != nil:
		return nil, apperrors.NewInternal(err)
	}
	return data, nil
}

func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
