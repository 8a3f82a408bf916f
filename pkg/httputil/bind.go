package httputil

import (
	stderrors "errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	playground "github.com/go-playground/validator/v10"

	"github.com/jwalitptl/health-api/pkg/errors"
	"github.com/jwalitptl/health-api/pkg/validator"
)

// BindJSON decodes and validates the request body into obj. Failures come
// back as INVALID_INPUT errors with a readable message.
func BindJSON(c *gin.Context, obj interface{}) error {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return nil
	}

	var verrs playground.ValidationErrors
	var tooLarge *http.MaxBytesError
	switch {
	case stderrors.As(err, &verrs):
		return errors.NewBadRequest(validator.Humanize(err).Error(), err)
	case stderrors.As(err, &tooLarge):
		return errors.NewBadRequest("request body is too large", err)
	case stderrors.Is(err, io.EOF):
		return errors.NewBadRequest("request body is required", err)
	}
	return errors.NewBadRequest("invalid request body", err)
}
