package httputil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/health-api/pkg/errors"
	"github.com/jwalitptl/health-api/pkg/validator"
)

type body struct {
	Query string `json:"query" binding:"required,notblank"`
}

func init() {
	gin.SetMode(gin.TestMode)
	validator.RegisterGin()
}

func run(t *testing.T, payload string, h gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	r := gin.New()
	r.POST("/", h)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func bindHandler(c *gin.Context) {
	var in body
	if err := BindJSON(c, &in); err != nil {
		RespondWithError(c, err)
		return
	}
	RespondWithSuccess(c, gin.H{"query": in.Query})
}

func TestBindJSON(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		code    int
		want    string
	}{
		{"ok", `{"query":"weight"}`, http.StatusOK, `{"success":true,"query":"weight"}`},
		{"missing", `{}`, http.StatusBadRequest, `{"success":false,"error":"query is required","code":"INVALID_INPUT"}`},
		{"blank", `{"query":"  "}`, http.StatusBadRequest, `{"success":false,"error":"query is required","code":"INVALID_INPUT"}`},
		{"empty body", ``, http.StatusBadRequest, `{"success":false,"error":"request body is required","code":"INVALID_INPUT"}`},
		{"malformed", `{"query":`, http.StatusBadRequest, `{"success":false,"error":"invalid request body","code":"INVALID_INPUT"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := run(t, tt.payload, bindHandler)
			assert.Equal(t, tt.code, w.Code)
			assert.JSONEq(t, tt.want, w.Body.String())
		})
	}
}

func TestRespondWithErrorStatusMapping(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{errors.NewConfiguration("Set ANTHROPIC_API_KEY", nil), http.StatusInternalServerError},
		{errors.NewExternalAPI("upstream failed", nil), http.StatusBadGateway},
		{errors.NewAnalysisTimeout(nil), http.StatusGatewayTimeout},
		{errors.NewNotFound("report", nil), http.StatusNotFound},
		{errors.RateLimited(), http.StatusTooManyRequests},
		{assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		w := run(t, `{}`, func(c *gin.Context) { RespondWithError(c, tt.err) })
		assert.Equal(t, tt.code, w.Code, tt.err.Error())
		assert.Contains(t, w.Body.String(), `"success":false`)
	}

	// Non-application errors never leak their detail.
	w := run(t, `{}`, func(c *gin.Context) { RespondWithError(c, assert.AnError) })
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
}
