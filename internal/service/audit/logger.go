package audit

import (
	"context"
	"sync"
	"time"

	"github.com/jwalitptl/health-api/pkg/logger"
)

const writeTimeout = 5 * time.Second

// AuditLogger writes entries off the request path.
type AuditLogger struct {
	service *Service
	logger  *logger.Logger
	wg      sync.WaitGroup
}

func NewAuditLogger(service *Service, log *logger.Logger) *AuditLogger {
	if log == nil {
		log = logger.Nop()
	}
	return &AuditLogger{
		service: service,
		logger:  log.With("component", "audit"),
	}
}

// Log records e asynchronously. The write outlives the request context but
// is bounded by its own timeout.
func (l *AuditLogger) Log(ctx context.Context, e Entry) {
	if !l.service.Enabled() {
		return
	}

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()

		writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
		defer cancel()

		if err := l.service.Log(writeCtx, e); err != nil {
			l.logger.Error(err, "failed to write audit log", "action", e.Action, "resource", e.Resource)
		}
	}()
}

// LogSync records e before returning.
func (l *AuditLogger) LogSync(ctx context.Context, e Entry) error {
	return l.service.Log(ctx, e)
}

// Wait blocks until pending asynchronous writes finish.
func (l *AuditLogger) Wait() {
	l.wg.Wait()
}
