package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/health-api/internal/model"
	"github.com/jwalitptl/health-api/internal/repository"
)

const defaultAuditListLimit = 100

// AuditSchema creates the audit table when it is missing.
const AuditSchema = `
CREATE TABLE IF NOT EXISTS audit_logs (
    id          UUID PRIMARY KEY,
    subject     TEXT NOT NULL DEFAULT '',
    action      TEXT NOT NULL,
    resource    TEXT NOT NULL,
    resource_id TEXT NOT NULL DEFAULT '',
    status      INTEGER NOT NULL DEFAULT 0,
    metadata    JSONB,
    ip_address  TEXT NOT NULL DEFAULT '',
    user_agent  TEXT NOT NULL DEFAULT '',
    request_id  TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS audit_logs_created_at_idx ON audit_logs (created_at DESC);
`

type auditRepository struct {
	BaseRepository
}

func NewAuditRepository(base BaseRepository) repository.AuditRepository {
	return &auditRepository{base}
}

// Migrate applies AuditSchema.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, AuditSchema); err != nil {
		return fmt.Errorf("failed to apply audit schema: %w", err)
	}
	return nil
}

func (r *auditRepository) Create(ctx context.Context, log *model.AuditLog) error {
	query := `
        INSERT INTO audit_logs (
            id, subject, action, resource, resource_id, status,
            metadata, ip_address, user_agent, request_id, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, query,
			log.ID,
			log.Subject,
			log.Action,
			log.Resource,
			log.ResourceID,
			log.Status,
			nullableJSON(log.Metadata),
			log.IPAddress,
			log.UserAgent,
			log.RequestID,
			log.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert audit log: %w", err)
		}
		return nil
	})
}

func (r *auditRepository) List(ctx context.Context, filter model.AuditFilter) ([]*model.AuditLog, error) {
	query := `
        SELECT id, subject, action, resource, resource_id, status,
               metadata, ip_address, user_agent, request_id, created_at
        FROM audit_logs WHERE 1=1`
	var args []interface{}

	if filter.Action != "" {
		args = append(args, filter.Action)
		query += fmt.Sprintf(" AND action = $%d", len(args))
	}

	if !filter.Since.IsZero() {
		args = append(args, filter.Since)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultAuditListLimit
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	logs := make([]*model.AuditLog, 0)
	if err := r.GetDB().SelectContext(ctx, &logs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}

	return logs, nil
}

func (r *auditRepository) Cleanup(ctx context.Context, before time.Time) (int64, error) {
	query := `
        DELETE FROM audit_logs
        WHERE created_at < $1
    `

	result, err := r.GetDB().ExecContext(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup audit logs: %w", err)
	}

	return result.RowsAffected()
}

func nullableJSON(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return []byte(b)
}
