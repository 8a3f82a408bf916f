package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/health-api/pkg/errors"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success bool             `json:"success"`
	Error   string           `json:"error"`
	Code    errors.ErrorCode `json:"code"`
}

// RespondWithSuccess sends a 200 with fields merged next to "success": true.
func RespondWithSuccess(c *gin.Context, fields gin.H) {
	RespondWithStatus(c, http.StatusOK, fields)
}

// RespondWithStatus is RespondWithSuccess with an explicit status.
func RespondWithStatus(c *gin.Context, status int, fields gin.H) {
	body := gin.H{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(status, body)
}

// RespondWithError classifies err and sends the error envelope. Errors that
// are not an *errors.AppError are reported as internal without their detail.
func RespondWithError(c *gin.Context, err error) {
	appErr, ok := errors.As(err)
	if !ok {
		appErr = errors.NewInternal(err)
	}

	status := appErr.HTTPStatus()
	if status >= http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("code", string(appErr.Code)).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Success: false,
		Error:   appErr.Message,
		Code:    appErr.Code,
	})
}
