package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/health-api/pkg/auth"
	apperrors "github.com/jwalitptl/health-api/pkg/errors"
	"github.com/jwalitptl/health-api/pkg/httputil"
)

const ContextSubject = "subject"

// TokenValidator checks a bearer token.
type TokenValidator interface {
	ValidateToken(token string) (*auth.Claims, error)
}

type AuthMiddleware struct {
	validator TokenValidator
}

func NewAuthMiddleware(validator TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{validator: validator}
}

// Authenticate verifies the JWT token and sets the subject in context
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httputil.RespondWithError(c, unauthorized("missing authorization header", nil))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			httputil.RespondWithError(c, unauthorized("invalid authorization format", nil))
			return
		}

		claims, err := m.validator.ValidateToken(parts[1])
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, auth.ErrTokenExpired) {
				msg = "token has expired"
			}
			httputil.RespondWithError(c, unauthorized(msg, err))
			return
		}

		c.Set(ContextSubject, claims.Subject)
		c.Next()
	}
}

// GetSubject returns the authenticated subject, or "" when authentication
// is disabled.
func GetSubject(c *gin.Context) string {
	return c.GetString(ContextSubject)
}

func unauthorized(msg string, err error) *apperrors.AppError {
	return &apperrors.AppError{Code: apperrors.ErrUnauthorized, Message: msg, Err: err}
}
