package export

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/health-api/internal/repository/filestore"
	"github.com/jwalitptl/health-api/internal/service/export"
	"github.com/jwalitptl/health-api/internal/service/snapshot"
	"github.com/jwalitptl/health-api/internal/testutil"
	"github.com/jwalitptl/health-api/pkg/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.RegisterGin()
}

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	dir := t.TempDir()
	testutil.WriteDataset(t, dir)
	store := filestore.New(filestore.Config{DataDir: dir, LabCategories: []string{testutil.LabCategory}}, nil, nil)

	r := gin.New()
	NewHandler(export.NewService(snapshot.NewService(store, nil), nil, nil), nil).RegisterRoutes(r.Group("/api"))
	return r
}

func get(r *gin.Engine, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestExportDownloads(t *testing.T) {
	r := setupRouter(t)

	w := get(r, "/api/export")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, export.ContentTypeXLSX, w.Header().Get("Content-Type"))
	assert.Regexp(t, `^attachment; filename=health-export-\d{4}-\d{2}-\d{2}\.xlsx$`, w.Header().Get("Content-Disposition"))
	// XLSX is a zip archive.
	assert.Equal(t, "PK", w.Body.String()[:2])

	w = get(r, "/api/export?format=json&start=2026-01-01&end=2026-12-31")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, export.ContentTypeJSON, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), `"start": "2026-01-01"`)
}

func TestExportRejectsBadQuery(t *testing.T) {
	r := setupRouter(t)

	tests := []struct {
		target string
		msg    string
	}{
		{"/api/export?format=csv", "format must be one of [xlsx json]"},
		{"/api/export?start=yesterday", "start must be a date in YYYY-MM-DD format"},
		{"/api/export?start=2026-02-01&end=2026-01-01", "invalid date range"},
	}
	for _, tt := range tests {
		w := get(r, tt.target)
		assert.Equal(t, http.StatusBadRequest, w.Code, tt.target)
		assert.Contains(t, w.Body.String(), tt.msg, tt.target)
	}
}
