package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/jwalitptl/health-api/internal/service/audit"
	"github.com/jwalitptl/health-api/pkg/logger"
)

type AuditCleanupWorker struct {
	audit           *audit.Service
	logger          *logger.Logger
	retentionDays   int
	cleanupInterval time.Duration
	now             func() time.Time
}

func NewAuditCleanupWorker(svc *audit.Service, log *logger.Logger, retentionDays int, cleanupInterval time.Duration) *AuditCleanupWorker {
	if log == nil {
		log = logger.Nop()
	}
	return &AuditCleanupWorker{
		audit:           svc,
		logger:          log.With("worker", "audit_cleanup"),
		retentionDays:   retentionDays,
		cleanupInterval: cleanupInterval,
		now:             time.Now,
	}
}

// Start runs one cleanup immediately and then one per interval until ctx is
// cancelled.
func (w *AuditCleanupWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cleanupInterval)
	defer ticker.Stop()

	w.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *AuditCleanupWorker) runOnce(ctx context.Context) {
	if _, err := w.Cleanup(ctx); err != nil {
		// Log error but continue
		w.logger.Error(err, "audit cleanup failed")
	}
}

// Cleanup deletes entries older than the retention window.
func (w *AuditCleanupWorker) Cleanup(ctx context.Context) (int64, error) {
	cutoff := w.now().AddDate(0, 0, -w.retentionDays)

	rows, err := w.audit.Cleanup(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup audit logs: %w", err)
	}

	w.logger.Info("cleaned up audit logs", "rows", rows, "cutoff", cutoff.Format(time.RFC3339))
	return rows, nil
}
