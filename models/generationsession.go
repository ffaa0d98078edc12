package models

import (
	"gorm.io/gorm"
)

// GenerationSession records one AI generation request and the counters
// describing how its candidates were reviewed. Sessions are never deleted
// by the review flow; a session with no remaining pending candidates is
// simply inert.
type GenerationSession struct {
	gorm.Model
	PublicID string `gorm:"size:100;uniqueIndex"`
	UserID   uint   `gorm:"not null;index"`
	User     User   `gorm:"foreignKey:UserID" json:"-"`

	InputText     string `gorm:"type:text;not null"`
	InputTextHash string `gorm:"size:64;index"`
	InputModel    string `gorm:"column:model;size:100;not null" json:"model"`

	GenerationDurationMs  int64 `gorm:"default:0"`
	AcceptedUneditedCount int   `gorm:"default:0"`
	AcceptedEditedCount   int   `gorm:"default:0"`

	Flashcards []Flashcard `gorm:"foreignKey:SessionID" json:"-"`
}
