package insights

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/health-api/internal/analytics"
	"github.com/jwalitptl/health-api/internal/middleware"
	"github.com/jwalitptl/health-api/internal/model"
	"github.com/jwalitptl/health-api/internal/service/audit"
	"github.com/jwalitptl/health-api/internal/service/snapshot"
	apperrors "github.com/jwalitptl/health-api/pkg/errors"
	"github.com/jwalitptl/health-api/pkg/httputil"
)

const (
	defaultMetrics = "weight,bmi"
	maxMetrics     = 10
)

// Handler serves figures derived from a fresh snapshot on every request.
type Handler struct {
	snapshots *snapshot.Service
	auditor   *audit.AuditLogger
	now       func() time.Time
}

func NewHandler(snapshots *snapshot.Service, auditor *audit.AuditLogger) *Handler {
	return &Handler{snapshots: snapshots, auditor: auditor, now: time.Now}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	insights := r.Group("/insights", middleware.Audit(h.auditor, model.AuditActionRead, model.AuditResourceInsights))
	{
		insights.GET("/summary", h.Summary)
		insights.GET("/weight-trend", h.WeightTrend)
		insights.GET("/radiation", h.Radiation)
		insights.GET("/correlation", h.Correlation)
		insights.GET("/forecast", h.Forecast)
		insights.GET("/trends", h.Trends)
	}
}

func (h *Handler) Summary(c *gin.Context) {
	snap := h.snapshots.Build(c.Request.Context())
	body := gin.H{"metrics": analytics.Summarize(snap, h.now())}
	if len(snap.LoadErrors) > 0 {
		body["loadErrors"] = snap.LoadErrors
	}
	httputil.RespondWithSuccess(c, body)
}

// WeightTrend compares the first and last of the most recent window
// weigh-ins; window 0 or absent uses the whole history.
func (h *Handler) WeightTrend(c *gin.Context) {
	window := 0
	if v := c.Query("window"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			httputil.RespondWithError(c, apperrors.NewBadRequest("window must be a non-negative integer", err))
			return
		}
		window = n
	}

	snap := h.snapshots.Build(c.Request.Context())
	httputil.RespondWithSuccess(c, gin.H{"trend": analytics.WeightTrend(snap.Profile.History, window)})
}

func (h *Handler) Radiation(c *gin.Context) {
	snap := h.snapshots.Build(c.Request.Context())
	stats := analytics.RadiationSummary(snap.RadiationRecords.Records, h.now())
	httputil.RespondWithSuccess(c, gin.H{
		"statistics":     stats,
		"annualLimitMsv": analytics.AnnualLimitMSv,
	})
}

// Correlation pairs the requested metrics: weight, bmi or lab:<item name>.
func (h *Handler) Correlation(c *gin.Context) {
	metrics := splitMetrics(c.DefaultQuery("metrics", defaultMetrics))
	if len(metrics) > maxMetrics {
		httputil.RespondWithError(c, apperrors.NewBadRequest("at most "+strconv.Itoa(maxMetrics)+" metrics may be compared", nil))
		return
	}

	snap := h.snapshots.Build(c.Request.Context())
	matrix, err := analytics.CorrelationMatrix(analytics.SeriesFor(snap, metrics))
	if errors.Is(err, analytics.ErrInsufficientSeries) {
		httputil.RespondWithError(c, apperrors.NewBadRequest(err.Error(), err))
		return
	}
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewInternal(err))
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"metrics": metrics, "correlations": matrix})
}

// Forecast extends the weight history by days entries (default 30, at most
// 365).
func (h *Handler) Forecast(c *gin.Context) {
	days := analytics.DefaultForecastDays
	if v := c.Query("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > analytics.MaxForecastDays {
			httputil.RespondWithError(c, apperrors.NewBadRequest(
				"days must be an integer between 1 and "+strconv.Itoa(analytics.MaxForecastDays), err))
			return
		}
		days = n
	}

	snap := h.snapshots.Build(c.Request.Context())
	httputil.RespondWithSuccess(c, gin.H{"forecast": analytics.WeightForecast(snap.Profile.History, days)})
}

func (h *Handler) Trends(c *gin.Context) {
	metrics := splitMetrics(c.DefaultQuery("metrics", defaultMetrics))
	if len(metrics) > maxMetrics {
		httputil.RespondWithError(c, apperrors.NewBadRequest("at most "+strconv.Itoa(maxMetrics)+" metrics may be compared", nil))
		return
	}

	snap := h.snapshots.Build(c.Request.Context())
	result := analytics.TrendInsights(snap, metrics)
	httputil.RespondWithSuccess(c, gin.H{"trends": result.Trends, "insights": result.Insights})
}

func splitMetrics(s string) []string {
	parts := strings.Split(s, ",")
	metrics := make([]string, 0, len(parts))
	seen := make(map[string]bool, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		metrics = append(metrics, p)
	}
	return metrics
}
