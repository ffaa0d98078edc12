package models

import "time"

// AuditEvent is a best-effort activity record (generation failures, review
// batches, orphan cleanups). Writes are never allowed to fail a request.
type AuditEvent struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"index"`
	Kind      string `gorm:"size:50;not null"`
	Detail    string `gorm:"size:500"`
	CreatedAt time.Time
}
