package audit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/health-api/internal/model"
	"github.com/jwalitptl/health-api/internal/service/audit"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Create(ctx context.Context, log *model.AuditLog) error {
	return m.Called(ctx, log).Error(0)
}

func (m *mockRepo) List(ctx context.Context, filter model.AuditFilter) ([]*model.AuditLog, error) {
	args := m.Called(ctx, filter)
	logs, _ := args.Get(0).([]*model.AuditLog)
	return logs, args.Error(1)
}

func (m *mockRepo) Cleanup(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRepo) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func get(svc *audit.Service, target string) *httptest.ResponseRecorder {
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestListLogsDisabled(t *testing.T) {
	w := get(audit.NewService(nil, nil), "/api/audit")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"enabled":false,"logs":[]}`, w.Body.String())
}

func TestListLogsFilters(t *testing.T) {
	repo := new(mockRepo)
	repo.On("List", mock.Anything, mock.MatchedBy(func(f model.AuditFilter) bool {
		return f.Action == model.AuditActionExport && f.Limit == 10 && f.Since.Year() == 2026
	})).Return([]*model.AuditLog{{Action: model.AuditActionExport, Resource: model.AuditResourceSnapshot}}, nil)

	w := get(audit.NewService(repo, nil), "/api/audit?action=export&limit=10&since=2026-01-01T00:00:00Z")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"enabled":true`)
	assert.Contains(t, w.Body.String(), `"action":"export"`)
	repo.AssertExpectations(t)
}

func TestListLogsRejectsBadQuery(t *testing.T) {
	svc := audit.NewService(nil, nil)

	for _, target := range []string{"/api/audit?limit=0", "/api/audit?limit=501", "/api/audit?limit=x", "/api/audit?since=yesterday"} {
		w := get(svc, target)
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
	}
}
