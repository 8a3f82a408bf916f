package records

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/health-api/internal/repository/filestore"
	"github.com/jwalitptl/health-api/internal/service/snapshot"
	"github.com/jwalitptl/health-api/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	dir := t.TempDir()
	testutil.WriteDataset(t, dir)
	store := filestore.New(filestore.Config{DataDir: dir, LabCategories: []string{testutil.LabCategory}}, nil, nil)

	r := gin.New()
	NewHandler(snapshot.NewService(store, nil), nil).RegisterRoutes(r.Group("/api"))
	return r, dir
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestGetSnapshot(t *testing.T) {
	r, _ := setupRouter(t)

	w := get(r, "/api/snapshot")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool `json:"success"`
		Data    map[string]json.RawMessage
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	for _, key := range []string{"profile", "allergies", "labResults", "radiationRecords", "reminders", "pregnancyTracker"} {
		assert.Contains(t, body.Data, key)
	}
	assert.NotContains(t, body.Data, "loadErrors")
}

func TestListFiles(t *testing.T) {
	r, _ := setupRouter(t)

	w := get(r, "/api/records/files")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "allergies.json")
	assert.Contains(t, w.Body.String(), "lab-2026-lipid.json")
}

func TestGetDomain(t *testing.T) {
	r, dir := setupRouter(t)

	w := get(r, "/api/records/allergies")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"domain":"allergies"`)
	assert.Contains(t, w.Body.String(), "Penicillin")

	w = get(r, "/api/records/cycleTracker")
	assert.Equal(t, http.StatusOK, w.Code)

	w = get(r, "/api/records/passwords")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"NOT_FOUND"`)

	testutil.WriteFile(t, filepath.Join(dir, "reminders.json"), "{not json")
	w = get(r, "/api/records/reminders")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "record file is malformed: reminders")

	// The snapshot keeps serving with a placeholder for the broken file.
	w = get(r, "/api/snapshot")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "loadErrors")
}
