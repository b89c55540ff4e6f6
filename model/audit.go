package model

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog records every dispatched action and its outcome.
type AuditLog struct {
	ID         int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	TraceID    string         `gorm:"index:idx_audit_trace;size:36" json:"trace_id"`
	AccountID  int64          `gorm:"index:idx_audit_account" json:"account_id"`
	Action     string         `gorm:"size:64;not null" json:"action"`
	LoadingKey string         `gorm:"size:96" json:"loading_key"`
	Patch      datatypes.JSON `json:"patch"`
	Error      string         `gorm:"type:text" json:"error"`
	Version    uint64         `json:"version"`
	DurationMs int            `json:"duration_ms"`
	CreatedAt  time.Time      `gorm:"index:idx_audit_created;autoCreateTime:milli" json:"created_at"`
}
