package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics. A nil *Metrics is valid and records
// nothing, so components can be built without a registry in tests.
type Metrics struct {
	// Record store metrics
	RecordLoads     *prometheus.CounterVec
	LabFilesSkipped prometheus.Counter

	// Analysis metrics
	AnalysisRequests *prometheus.CounterVec
	AnalysisLatency  prometheus.Histogram
	AnalysisTokens   *prometheus.CounterVec

	// Report and export metrics
	ReportsGenerated prometheus.Counter
	Exports          *prometheus.CounterVec

	// Side-channel metrics
	EventsPublished *prometheus.CounterVec
	AuditWrites     *prometheus.CounterVec
	AuditCleanup    prometheus.Counter
}

// NewMetrics creates and registers all application metrics
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RecordLoads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "record_loads_total",
			Help:      "Named record file loads by domain and result",
		}, []string{"domain", "result"}),
		LabFilesSkipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "lab_files_skipped_total",
			Help:      "Lab result files skipped because they could not be read or parsed",
		}),

		AnalysisRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "requests_total",
			Help:      "Analysis requests by outcome",
		}, []string{"outcome"}),
		AnalysisLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "duration_seconds",
			Help:      "Time spent waiting for the analysis provider",
			Buckets:   []float64{.25, .5, 1, 2.5, 5, 10, 20, 30, 60, 120},
		}),
		AnalysisTokens: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "tokens_total",
			Help:      "Tokens reported by the analysis provider",
		}, []string{"direction"}),

		ReportsGenerated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reports",
			Name:      "generated_total",
			Help:      "Reports persisted to disk",
		}),
		Exports: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "exports",
			Name:      "total",
			Help:      "Data exports by format",
		}, []string{"format"}),

		EventsPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Domain events published to the broker",
		}, []string{"type", "status"}),
		AuditWrites: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "audit",
			Name:      "writes_total",
			Help:      "Audit log writes by status",
		}, []string{"status"}),
		AuditCleanup: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "audit",
			Name:      "cleaned_total",
			Help:      "Audit rows removed by retention cleanup",
		}),
	}
}

func (m *Metrics) ObserveRecordLoad(domain, result string) {
	if m == nil {
		return
	}
	m.RecordLoads.WithLabelValues(domain, result).Inc()
}

func (m *Metrics) ObserveLabFileSkipped() {
	if m == nil {
		return
	}
	m.LabFilesSkipped.Inc()
}

func (m *Metrics) ObserveAnalysis(outcome string, d time.Duration, inputTokens, outputTokens int) {
	if m == nil {
		return
	}
	m.AnalysisRequests.WithLabelValues(outcome).Inc()
	if d > 0 {
		m.AnalysisLatency.Observe(d.Seconds())
	}
	m.AnalysisTokens.WithLabelValues("input").Add(float64(inputTokens))
	m.AnalysisTokens.WithLabelValues("output").Add(float64(outputTokens))
}

func (m *Metrics) ObserveReportGenerated() {
	if m == nil {
		return
	}
	m.ReportsGenerated.Inc()
}

func (m *Metrics) ObserveExport(format string) {
	if m == nil {
		return
	}
	m.Exports.WithLabelValues(format).Inc()
}

func (m *Metrics) ObserveEvent(eventType string, err error) {
	if m == nil {
		return
	}
	m.EventsPublished.WithLabelValues(eventType, status(err)).Inc()
}

func (m *Metrics) ObserveAuditWrite(err error) {
	if m == nil {
		return
	}
	m.AuditWrites.WithLabelValues(status(err)).Inc()
}

func (m *Metrics) ObserveAuditCleanup(rows int64) {
	if m == nil {
		return
	}
	m.AuditCleanup.Add(float64(rows))
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
