package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/health-api/internal/service/auth"
	pkgauth "github.com/jwalitptl/health-api/pkg/auth"
	"github.com/jwalitptl/health-api/pkg/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.RegisterGin()
}

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	jwtSvc, err := pkgauth.NewJWTService("test-secret", "health-api", time.Hour)
	require.NoError(t, err)

	r := gin.New()
	NewHandler(auth.NewService(string(hash), jwtSvc, nil), nil).RegisterRoutes(r.Group("/api"))
	return r
}

func post(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/token", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIssueToken(t *testing.T) {
	r := setupRouter(t)

	w := post(r, `{"password":"s3cret"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), body.ExpiresAt, time.Minute)
}

func TestIssueTokenFailures(t *testing.T) {
	r := setupRouter(t)

	w := post(r, `{"password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"UNAUTHORIZED"`)

	w = post(r, `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "password is required")
}
