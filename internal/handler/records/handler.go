package records

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/health-api/internal/middleware"
	"github.com/jwalitptl/health-api/internal/model"
	"github.com/jwalitptl/health-api/internal/repository/filestore"
	"github.com/jwalitptl/health-api/internal/service/audit"
	"github.com/jwalitptl/health-api/internal/service/snapshot"
	apperrors "github.com/jwalitptl/health-api/pkg/errors"
	"github.com/jwalitptl/health-api/pkg/httputil"
)

type Handler struct {
	snapshots *snapshot.Service
	auditor   *audit.AuditLogger
}

func NewHandler(snapshots *snapshot.Service, auditor *audit.AuditLogger) *Handler {
	return &Handler{snapshots: snapshots, auditor: auditor}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/snapshot", middleware.Audit(h.auditor, model.AuditActionRead, model.AuditResourceSnapshot), h.GetSnapshot)

	records := r.Group("/records", middleware.Audit(h.auditor, model.AuditActionRead, model.AuditResourceRecords))
	{
		records.GET("/files", h.ListFiles)
		records.GET("/:domain", h.GetDomain)
	}
}

// GetSnapshot returns every domain in one document. Domains that failed to
// load hold their placeholder and are named in loadErrors.
func (h *Handler) GetSnapshot(c *gin.Context) {
	snap := h.snapshots.Build(c.Request.Context())
	httputil.RespondWithSuccess(c, gin.H{"data": snap})
}

func (h *Handler) ListFiles(c *gin.Context) {
	files, err := h.snapshots.Files(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewInternal(err))
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"files": files})
}

func (h *Handler) GetDomain(c *gin.Context) {
	name := c.Param("domain")
	data, err := h.snapshots.Domain(c.Request.Context(), name)
	switch {
	case errors.Is(err, model.ErrUnknownDomain):
		httputil.RespondWithError(c, apperrors.NewNotFound("record domain "+name, err))
		return
	case errors.Is(err, filestore.ErrMalformedRecord):
		httputil.RespondWithError(c, &apperrors.AppError{Code: apperrors.ErrInternal, Message: "record file is malformed: " + name, Err: err})
		return
	case err != nil:
		httputil.RespondWithError(c, apperrors.NewInternal(err))
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"domain": name, "data": data})
}
