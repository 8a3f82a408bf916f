package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/health-api/internal/model"
)

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Create(ctx context.Context, log *model.AuditLog) error {
	return m.Called(ctx, log).Error(0)
}

func (m *MockAuditRepository) List(ctx context.Context, filter model.AuditFilter) ([]*model.AuditLog, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.AuditLog), args.Error(1)
}

func (m *MockAuditRepository) Cleanup(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAuditRepository) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func TestLogBuildsEntry(t *testing.T) {
	repo := new(MockAuditRepository)
	svc := NewService(repo, nil)
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return at }

	repo.On("Create", mock.Anything, mock.MatchedBy(func(l *model.AuditLog) bool {
		return l.Subject == "owner" &&
			l.Action == model.AuditActionExport &&
			l.Status == 200 &&
			string(l.Metadata) == `{"format":"xlsx"}` &&
			l.CreatedAt.Equal(at)
	})).Return(nil).Once()

	err := svc.Log(context.Background(), Entry{
		Subject:  "owner",
		Action:   model.AuditActionExport,
		Resource: model.AuditResourceSnapshot,
		Status:   200,
		Metadata: map[string]string{"format": "xlsx"},
	})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestDisabledServiceIsNoop(t *testing.T) {
	svc := NewService(nil, nil)
	ctx := context.Background()

	assert.False(t, svc.Enabled())
	assert.NoError(t, svc.Log(ctx, Entry{Action: "read"}))
	assert.NoError(t, svc.Ping(ctx))

	logs, err := svc.List(ctx, model.AuditFilter{})
	require.NoError(t, err)
	assert.Empty(t, logs)

	n, err := svc.Cleanup(ctx, time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)

	// The async logger must not start goroutines either.
	l := NewAuditLogger(svc, nil)
	l.Log(ctx, Entry{Action: "read"})
	l.Wait()
}

func TestCleanupDelegates(t *testing.T) {
	repo := new(MockAuditRepository)
	cutoff := time.Now().AddDate(0, 0, -30)
	repo.On("Cleanup", mock.Anything, cutoff).Return(int64(3), nil)

	n, err := NewService(repo, nil).Cleanup(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestAuditLoggerSurvivesCancelledRequest(t *testing.T) {
	repo := new(MockAuditRepository)
	var writeErr error
	repo.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			writeErr = args.Get(0).(context.Context).Err()
		}).
		Return(errors.New("db down")).Once()

	l := NewAuditLogger(NewService(repo, nil), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l.Log(ctx, Entry{Action: model.AuditActionRead})
	l.Wait()

	repo.AssertExpectations(t)
	assert.NoError(t, writeErr)
}
