package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditLog records one access to health data.
type AuditLog struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	Subject    string          `json:"subject" db:"subject"`
	Action     string          `json:"action" db:"action"`
	Resource   string          `json:"resource" db:"resource"`
	ResourceID string          `json:"resource_id" db:"resource_id"`
	Status     int             `json:"status" db:"status"`
	Metadata   json.RawMessage `json:"metadata" db:"metadata"`
	IPAddress  string          `json:"ip_address" db:"ip_address"`
	UserAgent  string          `json:"user_agent" db:"user_agent"`
	RequestID  string          `json:"request_id" db:"request_id"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

const (
	// Action types
	AuditActionRead     = "read"
	AuditActionAnalyze  = "analyze"
	AuditActionGenerate = "generate_report"
	AuditActionExport   = "export"
	AuditActionLogin    = "login"
	AuditActionDeliver  = "deliver_report"

	// Resource types
	AuditResourceSnapshot = "snapshot"
	AuditResourceRecords  = "records"
	AuditResourceInsights = "insights"
	AuditResourceReport   = "report"
	AuditResourceSession  = "session"
)

// AuditFilter narrows an audit listing.
type AuditFilter struct {
	Action string
	Since  time.Time
	Limit  int
}
