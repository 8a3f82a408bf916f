package export

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/health-api/internal/middleware"
	"github.com/jwalitptl/health-api/internal/model"
	"github.com/jwalitptl/health-api/internal/service/audit"
	"github.com/jwalitptl/health-api/internal/service/export"
	apperrors "github.com/jwalitptl/health-api/pkg/errors"
	"github.com/jwalitptl/health-api/pkg/httputil"
	"github.com/jwalitptl/health-api/pkg/validator"
)

type Handler struct {
	service export.ExportService
	auditor *audit.AuditLogger
}

func NewHandler(service export.ExportService, auditor *audit.AuditLogger) *Handler {
	return &Handler{service: service, auditor: auditor}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/export", middleware.Audit(h.auditor, model.AuditActionExport, model.AuditResourceSnapshot), h.Export)
}

type exportQuery struct {
	Format string `form:"format" binding:"omitempty,oneof=xlsx json"`
	Start  string `form:"start" binding:"isodate"`
	End    string `form:"end" binding:"isodate"`
}

func (h *Handler) Export(c *gin.Context) {
	var q exportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest(validator.Humanize(err).Error(), err))
		return
	}
	middleware.SetAuditMetadata(c, map[string]interface{}{"format": q.Format, "start": q.Start, "end": q.End})

	file, err := h.service.Export(c.Request.Context(), q.Format, &model.DateRange{Start: q.Start, End: q.End})
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", file.Name))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
