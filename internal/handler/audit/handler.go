package audit

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/health-api/internal/model"
	"github.com/jwalitptl/health-api/internal/service/audit"
	apperrors "github.com/jwalitptl/health-api/pkg/errors"
	"github.com/jwalitptl/health-api/pkg/httputil"
)

const maxListLimit = 500

type Handler struct {
	service *audit.Service
}

func NewHandler(service *audit.Service) *Handler {
	return &Handler{
		service: service,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/audit", h.ListLogs)
}

// ListLogs returns recent access-log entries, newest first. With no
// database configured the list is always empty.
func (h *Handler) ListLogs(c *gin.Context) {
	filter := model.AuditFilter{Action: c.Query("action")}

	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > maxListLimit {
			httputil.RespondWithError(c, apperrors.NewBadRequest("limit must be between 1 and "+strconv.Itoa(maxListLimit), err))
			return
		}
		filter.Limit = n
	}
	if v := c.Query("since"); v != "" {
		since, err := time.Parse(time.RFC3339, v)
		if err != nil {
			httputil.RespondWithError(c, apperrors.NewBadRequest("since must be an RFC 3339 timestamp", err))
			return
		}
		filter.Since = since
	}

	logs, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewInternal(err))
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"enabled": h.service.Enabled(), "logs": logs})
}
