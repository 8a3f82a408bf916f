package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/health-api/internal/model"
	"github.com/jwalitptl/health-api/internal/repository"
	"github.com/jwalitptl/health-api/pkg/metrics"
)

// Service writes and reads the access log. With no repository configured
// every call is a no-op.
type Service struct {
	repo    repository.AuditRepository
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewService(repo repository.AuditRepository, m *metrics.Metrics) *Service {
	return &Service{repo: repo, metrics: m, now: time.Now}
}

// Entry is one access to be recorded.
type Entry struct {
	Subject    string
	Action     string
	Resource   string
	ResourceID string
	Status     int
	Metadata   interface{}
	IPAddress  string
	UserAgent  string
	RequestID  string
}

// Enabled reports whether entries are persisted.
func (s *Service) Enabled() bool {
	return s != nil && s.repo != nil
}

// Log creates an audit log entry
func (s *Service) Log(ctx context.Context, e Entry) error {
	if !s.Enabled() {
		return nil
	}

	var metadata json.RawMessage
	if e.Metadata != nil {
		data, err := json.Marshal(e.Metadata)
		if err != nil {
			return err
		}
		metadata = data
	}

	err := s.repo.Create(ctx, &model.AuditLog{
		ID:         uuid.New(),
		Subject:    e.Subject,
		Action:     e.Action,
		Resource:   e.Resource,
		ResourceID: e.ResourceID,
		Status:     e.Status,
		Metadata:   metadata,
		IPAddress:  e.IPAddress,
		UserAgent:  e.UserAgent,
		RequestID:  e.RequestID,
		CreatedAt:  s.now().UTC(),
	})
	s.metrics.ObserveAuditWrite(err)
	return err
}

func (s *Service) List(ctx context.Context, filter model.AuditFilter) ([]*model.AuditLog, error) {
	if !s.Enabled() {
		return []*model.AuditLog{}, nil
	}
	return s.repo.List(ctx, filter)
}

func (s *Service) Cleanup(ctx context.Context, before time.Time) (int64, error) {
	if !s.Enabled() {
		return 0, nil
	}
	rows, err := s.repo.Cleanup(ctx, before)
	if err == nil {
		s.metrics.ObserveAuditCleanup(rows)
	}
	return rows, err
}

func (s *Service) Ping(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}
	return s.repo.Ping(ctx)
}
