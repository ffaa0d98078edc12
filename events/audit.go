package events

import (
	"log"

	"github.com/flashgen/flashgen-api/models"
	"gorm.io/gorm"
)

// Event kinds recorded by the review flow.
const (
	KindGenerationFailed = "generation_failed"
	KindSessionCreated   = "session_created"
	KindActionsProcessed = "actions_processed"
	KindOrphanedRejected = "orphaned_rejected"
)

// Recorder writes audit events best-effort: a failed write is logged and
// swallowed, never surfaced to the caller.
type Recorder interface {
	Record(userID uint, kind, detail string)
}

type dbRecorder struct {
	db *gorm.DB
}

func NewRecorder(db *gorm.DB) Recorder {
	return &dbRecorder{db: db}
}

func (r *dbRecorder) Record(userID uint, kind, detail string) {
	evt := models.AuditEvent{UserID: userID, Kind: kind, Detail: detail}
	if err := r.db.Create(&evt).Error; err != nil {
		log.Printf("audit event %q dropped: %v", kind, err)
	}
}

// Noop is used where audit recording is not wired (tests, tooling).
type Noop struct{}

func (Noop) Record(uint, string, string) {}
