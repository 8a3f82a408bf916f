package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/health-api/internal/middleware"
	"github.com/jwalitptl/health-api/internal/model"
	"github.com/jwalitptl/health-api/internal/service/audit"
	"github.com/jwalitptl/health-api/internal/service/auth"
	"github.com/jwalitptl/health-api/pkg/httputil"
)

type Handler struct {
	svc     auth.AuthService
	auditor *audit.AuditLogger
}

func NewHandler(svc auth.AuthService, auditor *audit.AuditLogger) *Handler {
	return &Handler{svc: svc, auditor: auditor}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.POST("/token", middleware.Audit(h.auditor, model.AuditActionLogin, model.AuditResourceSession), h.IssueToken)
	}
}

type tokenRequest struct {
	Password string `json:"password" binding:"required,max=256"`
}

func (h *Handler) IssueToken(c *gin.Context) {
	var req tokenRequest
	if err := httputil.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	token, err := h.svc.IssueToken(c.Request.Context(), c.ClientIP(), req.Password)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{
		"token":      token.Token,
		"expires_at": token.ExpiresAt,
	})
}
