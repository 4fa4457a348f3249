package entities

import "time"

type AuditEventType string

const (
	AuditEventImport AuditEventType = "import"
	AuditEventExport AuditEventType = "export"
	AuditEventPurge  AuditEventType = "purge"
)

type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusPartial AuditStatus = "partial"
	AuditStatusFailed  AuditStatus = "failed"
)

type AuditEvent struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	EventType   AuditEventType `gorm:"index;size:50" json:"event_type"`
	Action      string         `gorm:"size:100" json:"action"`      // e.g. "xml_import_legacy", "xml_export"
	Description string         `gorm:"size:500" json:"description"` // Human-readable summary
	PayloadRef  string         `gorm:"size:100" json:"payload_ref,omitempty"`
	Metadata    string         `gorm:"type:text" json:"metadata,omitempty"` // JSON for extra data
	Origin      string         `gorm:"size:45" json:"origin,omitempty"`     // client IP or "cli"
	Status      AuditStatus    `gorm:"size:20" json:"status"`
	ErrorMsg    string         `gorm:"size:500" json:"error_msg,omitempty"`
	DurationMs  int64          `json:"duration_ms"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}

// AuditFilter narrows an audit listing. Zero fields match everything.
type AuditFilter struct {
	Type   AuditEventType
	Status AuditStatus
	Origin string
}

// AuditCleanup reports what a retention pass removed.
type AuditCleanup struct {
	Events   int64 `json:"events"`
	Payloads int   `json:"payloads"`
}
