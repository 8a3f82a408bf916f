package reports

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/health-api/internal/model"
	"github.com/jwalitptl/health-api/internal/report"
	"github.com/jwalitptl/health-api/internal/repository/filestore"
	"github.com/jwalitptl/health-api/internal/service/analysis"
	reportsvc "github.com/jwalitptl/health-api/internal/service/report"
	"github.com/jwalitptl/health-api/internal/service/snapshot"
	"github.com/jwalitptl/health-api/internal/testutil"
	"github.com/jwalitptl/health-api/pkg/analyzer"
	"github.com/jwalitptl/health-api/pkg/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.RegisterGin()
}

func setupRouter(t *testing.T) (*gin.Engine, *reportsvc.Service) {
	t.Helper()
	dir := t.TempDir()
	testutil.WriteDataset(t, dir)
	store := filestore.New(filestore.Config{DataDir: dir, LabCategories: []string{testutil.LabCategory}}, nil, nil)
	a := analysis.NewService(snapshot.NewService(store, nil), &analyzer.Fake{Text: "Looks steady.", Model: "test-model"}, nil, nil, 0)
	svc := reportsvc.NewService(a, report.NewStore(t.TempDir(), nil), nil, nil, nil, nil)
	t.Cleanup(svc.Wait)

	r := gin.New()
	NewHandler(svc, nil).RegisterRoutes(r.Group("/api"))
	return r, svc
}

func do(r *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGenerateListAndGet(t *testing.T) {
	r, _ := setupRouter(t)

	w := do(r, http.MethodPost, "/api/reports/generate", `{"query":"Summarize my labs","focusAreas":["labs"]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var generated struct {
		ReportID string                 `json:"reportId"`
		Paths    model.ReportPaths      `json:"paths"`
		Metadata model.AnalysisMetadata `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &generated))
	assert.NotEmpty(t, generated.ReportID)
	assert.Equal(t, "test-model", generated.Metadata.Model)
	assert.Contains(t, generated.Paths.HTML, generated.ReportID)

	w = do(r, http.MethodGet, "/api/reports/generate", "")
	require.Equal(t, http.StatusOK, w.Code)
	var listed struct {
		Reports []model.ReportEntry `json:"reports"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed.Reports, 1)

	htmlName := filepath.Base(generated.Paths.HTML)
	assert.Equal(t, htmlName, listed.Reports[0].Filename)

	w = do(r, http.MethodGet, "/api/reports/"+htmlName, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "Looks steady.")

	w = do(r, http.MethodGet, "/api/reports/"+strings.TrimSuffix(htmlName, ".html")+".json", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), `"analysis": "Looks steady."`)
}

func TestGenerateRejectsBadInput(t *testing.T) {
	r, _ := setupRouter(t)

	w := do(r, http.MethodPost, "/api/reports/generate", `{"query":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/reports/generate", "")
	assert.Contains(t, w.Body.String(), `"reports":[]`)
}

func TestGetReportErrors(t *testing.T) {
	r, _ := setupRouter(t)

	w := do(r, http.MethodGet, "/api/reports/notes.txt", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/reports/health-report-2026-01-01-123.html", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
