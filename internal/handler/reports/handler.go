package reports

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/health-api/internal/middleware"
	"github.com/jwalitptl/health-api/internal/model"
	"github.com/jwalitptl/health-api/internal/service/analysis"
	"github.com/jwalitptl/health-api/internal/service/audit"
	"github.com/jwalitptl/health-api/internal/service/report"
	"github.com/jwalitptl/health-api/pkg/httputil"
)

type Handler struct {
	service report.ReportService
	auditor *audit.AuditLogger
}

func NewHandler(service report.ReportService, auditor *audit.AuditLogger) *Handler {
	return &Handler{service: service, auditor: auditor}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	reports := r.Group("/reports")
	{
		reports.POST("/generate", middleware.Audit(h.auditor, model.AuditActionGenerate, model.AuditResourceReport), h.Generate)
		reports.GET("/generate", h.List)
		reports.GET("/:filename", middleware.Audit(h.auditor, model.AuditActionRead, model.AuditResourceReport), h.Get)
	}
}

func (h *Handler) Generate(c *gin.Context) {
	var in analysis.Input
	if err := httputil.BindJSON(c, &in); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	got, err := h.service.Generate(c.Request.Context(), in)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	middleware.SetAuditMetadata(c, map[string]interface{}{"report_id": got.ReportID})

	httputil.RespondWithSuccess(c, gin.H{
		"reportId": got.ReportID,
		"paths":    got.Paths,
		"metadata": got.Metadata,
	})
}

func (h *Handler) List(c *gin.Context) {
	reports, err := h.service.List(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"reports": reports})
}

// Get serves one stored report: HTML pages inline, JSON sidecars as JSON.
func (h *Handler) Get(c *gin.Context) {
	filename := c.Param("filename")
	data, err := h.service.Open(c.Request.Context(), filename)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	contentType := "text/html; charset=utf-8"
	if strings.HasSuffix(filename, ".json") {
		contentType = "application/json"
	}
	c.Data(http.StatusOK, contentType, data)
}
