package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/health-api/internal/service/audit"
)

const contextAuditMetadata = "audit_metadata"

// Audit records one access-log entry per request once the handler has
// finished, with the final status. Writes happen off the request path.
func Audit(logger *audit.AuditLogger, action, resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if logger == nil {
			return
		}
		logger.Log(c.Request.Context(), audit.Entry{
			Subject:    GetSubject(c),
			Action:     action,
			Resource:   resource,
			ResourceID: auditResourceID(c),
			Status:     c.Writer.Status(),
			Metadata:   auditMetadata(c),
			IPAddress:  c.ClientIP(),
			UserAgent:  c.Request.UserAgent(),
			RequestID:  GetRequestID(c),
		})
	}
}

// SetAuditMetadata attaches handler-specific detail to the audit entry.
func SetAuditMetadata(c *gin.Context, metadata map[string]interface{}) {
	c.Set(contextAuditMetadata, metadata)
}

func auditMetadata(c *gin.Context) interface{} {
	v, ok := c.Get(contextAuditMetadata)
	if !ok {
		return nil
	}
	return v
}

func auditResourceID(c *gin.Context) string {
	for _, key := range []string{"domain", "filename"} {
		if v := c.Param(key); v != "" {
			return v
		}
	}
	return ""
}
