package middleware

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/health-api/pkg/auth"
	apperrors "github.com/jwalitptl/health-api/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Header().Get(HeaderXRequestID))
	assert.Equal(t, w.Header().Get(HeaderXRequestID), w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderXRequestID, "abc-123")
	w = serve(r, req)
	assert.Equal(t, "abc-123", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderXRequestID, strings.Repeat("x", 500))
	w = serve(r, req)
	assert.Len(t, w.Body.String(), 36)
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery())
	r.GET("/", func(c *gin.Context) { panic("boom") })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"internal server error","code":"INTERNAL_ERROR"}`, w.Body.String())
}

func TestErrorHandlerWritesEnvelope(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/", func(c *gin.Context) {
		_ = c.Error(apperrors.NewNotFound("report", nil))
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"NOT_FOUND"`)
}

func TestTimeoutSetsDeadline(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(TimeoutConfig{Duration: time.Minute, SkipPaths: []string{"/slow"}}))

	var fast, slow bool
	r.GET("/fast", func(c *gin.Context) {
		_, fast = c.Request.Context().Deadline()
	})
	r.GET("/slow", func(c *gin.Context) {
		_, slow = c.Request.Context().Deadline()
	})

	serve(r, httptest.NewRequest(http.MethodGet, "/fast", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/slow", nil))
	assert.True(t, fast)
	assert.False(t, slow)
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS(DefaultCORSConfig()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := serve(r, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSecurityAndCacheHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders(DefaultSecurityConfig()), Cache(NoStoreConfig()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "default-src 'none'")
	assert.Equal(t, "private, no-store, no-cache", w.Header().Get("Cache-Control"))
	assert.Equal(t, "no-cache", w.Header().Get("Pragma"))
}

func TestSizeLimit(t *testing.T) {
	r := gin.New()
	r.Use(SizeLimit(SizeLimitConfig{MaxBodySize: 10, MaxHeaderSize: 1 << 10}))
	r.POST("/", func(c *gin.Context) {
		_, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	w := serve(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("small")))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 100))))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "request body exceeds 10 bytes")
}

func TestCompress(t *testing.T) {
	r := gin.New()
	r.Use(Compress(CompressConfig{Level: gzip.BestSpeed, SkipPaths: []string{"/raw"}}))
	body := strings.Repeat("health ", 200)
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, body) })
	r.GET("/raw", func(c *gin.Context) { c.String(http.StatusOK, body) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := serve(r, req)
	require.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
	zr, err := gzip.NewReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	plain, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, body, string(plain))

	req = httptest.NewRequest(http.MethodGet, "/raw", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w = serve(r, req)
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, body, w.Body.String())
}

func TestRateLimitPerClient(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: rate.Limit(0.001), Burst: 2})
	r := gin.New()
	r.Use(rl.RateLimit())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	from := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		return serve(r, req).Code
	}

	assert.Equal(t, http.StatusOK, from("10.0.0.1"))
	assert.Equal(t, http.StatusOK, from("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, from("10.0.0.1"))
	assert.Equal(t, http.StatusOK, from("10.0.0.2"))
}

type stubValidator struct {
	err error
}

func (s stubValidator) ValidateToken(token string) (*auth.Claims, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &auth.Claims{Subject: "owner:" + token}, nil
}

func TestAuthenticate(t *testing.T) {
	newRouter := func(v TokenValidator) *gin.Engine {
		r := gin.New()
		r.Use(NewAuthMiddleware(v).Authenticate())
		r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetSubject(c)) })
		return r
	}

	tests := []struct {
		name   string
		header string
		err    error
		code   int
		body   string
	}{
		{"valid", "Bearer tok", nil, http.StatusOK, "owner:tok"},
		{"lowercase scheme", "bearer tok", nil, http.StatusOK, "owner:tok"},
		{"missing", "", nil, http.StatusUnauthorized, "missing authorization header"},
		{"bad format", "Token tok", nil, http.StatusUnauthorized, "invalid authorization format"},
		{"expired", "Bearer tok", auth.ErrTokenExpired, http.StatusUnauthorized, "token has expired"},
		{"invalid", "Bearer tok", auth.ErrTokenInvalid, http.StatusUnauthorized, "invalid token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := serve(newRouter(stubValidator{err: tt.err}), req)
			assert.Equal(t, tt.code, w.Code)
			assert.Contains(t, w.Body.String(), tt.body)
		})
	}
}

func TestAuditResourceID(t *testing.T) {
	r := gin.New()
	var got string
	r.GET("/records/:domain", func(c *gin.Context) { got = auditResourceID(c) })
	serve(r, httptest.NewRequest(http.MethodGet, "/records/allergies", nil))
	assert.Equal(t, "allergies", got)

	// A nil logger is tolerated.
	r2 := gin.New()
	r2.Use(Audit(nil, "read", "records"))
	r2.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	w := serve(r2, httptest.NewRequest(http.MethodGet, "/", nil).WithContext(context.Background()))
	assert.Equal(t, http.StatusOK, w.Code)
}
