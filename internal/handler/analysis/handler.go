package analysis

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/health-api/internal/middleware"
	"github.com/jwalitptl/health-api/internal/model"
	"github.com/jwalitptl/health-api/internal/service/analysis"
	"github.com/jwalitptl/health-api/internal/service/audit"
	"github.com/jwalitptl/health-api/pkg/httputil"
)

type Handler struct {
	service analysis.AnalysisService
	auditor *audit.AuditLogger
}

func NewHandler(service analysis.AnalysisService, auditor *audit.AuditLogger) *Handler {
	return &Handler{service: service, auditor: auditor}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/analyze", middleware.Audit(h.auditor, model.AuditActionAnalyze, model.AuditResourceSnapshot), h.Analyze)
}

// Analyze answers a free-text question about the records. Nothing is
// written to disk.
func (h *Handler) Analyze(c *gin.Context) {
	var in analysis.Input
	if err := httputil.BindJSON(c, &in); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	middleware.SetAuditMetadata(c, map[string]interface{}{"focus_areas": in.FocusAreas, "date_range": in.DateRange})

	out, err := h.service.Analyze(c.Request.Context(), in)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{
		"analysis": out.Analysis,
		"metadata": out.Metadata,
	})
}
