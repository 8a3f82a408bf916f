package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jwalitptl/health-api/internal/email"
	"github.com/jwalitptl/health-api/internal/model"
	"github.com/jwalitptl/health-api/internal/service/audit"
	"github.com/jwalitptl/health-api/internal/service/report"
	"github.com/jwalitptl/health-api/pkg/logger"
	"github.com/jwalitptl/health-api/pkg/messaging"
)

const workerSubject = "worker"

type WorkerMetrics struct {
	processedEvents    prometheus.Counter
	failedEvents       prometheus.Counter
	processingLatency  prometheus.Histogram
	processingDuration prometheus.Histogram
}

func NewWorkerMetrics(namespace string, reg prometheus.Registerer) *WorkerMetrics {
	m := &WorkerMetrics{
		processedEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "report_events_processed_total",
			Help:      "The total number of delivered report events",
		}),
		failedEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "report_events_failed_total",
			Help:      "The total number of report events that could not be delivered",
		}),
		processingLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "report_event_latency_seconds",
			Help:      "Time between report generation and delivery",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}),
		processingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "report_event_duration_seconds",
			Help:      "Time spent delivering one report event",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(m.processedEvents, m.failedEvents, m.processingLatency, m.processingDuration)
	}
	return m
}

// ReportEventWorker consumes report.generated events and mails each report.
type ReportEventWorker struct {
	broker  messaging.Broker
	channel string
	mailer  email.Service
	audit   *audit.Service
	logger  *logger.Logger
	metrics *WorkerMetrics
	now     func() time.Time
}

type reportEvent struct {
	Type       string                `json:"type"`
	OccurredAt time.Time             `json:"occurred_at"`
	Payload    report.GeneratedEvent `json:"payload"`
}

func NewReportEventWorker(broker messaging.Broker, channelPrefix string, mailer email.Service, auditSvc *audit.Service, log *logger.Logger, m *WorkerMetrics) *ReportEventWorker {
	if log == nil {
		log = logger.Nop()
	}
	if m == nil {
		m = NewWorkerMetrics("", nil)
	}
	if mailer == nil {
		mailer = email.Disabled{}
	}
	return &ReportEventWorker{
		broker:  broker,
		channel: channelPrefix + messaging.EventReportGenerated,
		mailer:  mailer,
		audit:   auditSvc,
		logger:  log.With("worker", "report_events"),
		metrics: m,
		now:     time.Now,
	}
}

// Start blocks until ctx is cancelled or the subscription ends.
func (w *ReportEventWorker) Start(ctx context.Context) error {
	msgs, err := w.broker.Subscribe(ctx, w.channel)
	if err != nil {
		return fmt.Errorf("failed to subscribe to report events: %w", err)
	}

	w.logger.Info("worker started", "channel", w.channel)
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("worker shutting down")
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			if err := w.Process(ctx, msg); err != nil {
				w.metrics.failedEvents.Inc()
				w.logger.Error(err, "failed to process report event")
				continue
			}
			w.metrics.processedEvents.Inc()
		}
	}
}

// Process handles one raw broker message.
func (w *ReportEventWorker) Process(ctx context.Context, raw []byte) error {
	timer := prometheus.NewTimer(w.metrics.processingDuration)
	defer timer.ObserveDuration()

	var evt reportEvent
	if err := json.Unmarshal(raw, &evt); err != nil {
		return fmt.Errorf("failed to decode event: %w", err)
	}
	if evt.Type != messaging.EventReportGenerated || evt.Payload.ReportID == "" {
		return fmt.Errorf("unexpected event %q", evt.Type)
	}

	// Status follows the HTTP convention used by request entries.
	status := http.StatusOK
	var sendErr error
	if w.mailer.Enabled() {
		sendErr = w.mailer.SendReport(ctx, email.Report{
			ReportID: evt.Payload.ReportID,
			Query:    evt.Payload.Query,
			HTMLPath: evt.Payload.HTMLPath,
			Summary:  evt.Payload.Summary,
		})
		if sendErr != nil {
			status = http.StatusBadGateway
		}
	}

	if err := w.audit.Log(ctx, audit.Entry{
		Subject:    workerSubject,
		Action:     model.AuditActionDeliver,
		Resource:   model.AuditResourceReport,
		ResourceID: evt.Payload.ReportID,
		Status:     status,
		Metadata:   map[string]interface{}{"mailed": w.mailer.Enabled(), "model": evt.Payload.Model},
	}); err != nil {
		w.logger.Warn(err, "failed to audit report delivery", "report_id", evt.Payload.ReportID)
	}

	if sendErr != nil {
		return fmt.Errorf("failed to mail report %s: %w", evt.Payload.ReportID, sendErr)
	}

	if !evt.Payload.GeneratedAt.IsZero() {
		w.metrics.processingLatency.Observe(w.now().Sub(evt.Payload.GeneratedAt).Seconds())
	}
	w.logger.Info("report event processed", "report_id", evt.Payload.ReportID, "mailed", w.mailer.Enabled())
	return nil
}
