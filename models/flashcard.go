package models

import (
	"gorm.io/gorm"
)

// Flashcard represents an individual flashcard. While SessionID is set the
// card is still a generation candidate awaiting review; clearing SessionID
// graduates it to an active flashcard. Rejected candidates are soft-deleted
// through gorm.Model.DeletedAt and excluded from all default queries.
type Flashcard struct {
	gorm.Model
	PublicID string `gorm:"size:100;uniqueIndex"`
	Front    string `gorm:"not null;size:200"`
	Back     string `gorm:"not null;size:500"`
	Prompt   string `gorm:"size:500"`

	UserID uint `gorm:"not null;index"`
	User   User `gorm:"foreignKey:UserID" json:"-"`

	SessionID *uint              `gorm:"index"`
	Session   *GenerationSession `gorm:"foreignKey:SessionID" json:"-"`
}

// Pending reports whether the card is still an unreviewed candidate.
func (f *Flashcard) Pending() bool {
	return f.SessionID != nil
}

// Length limits enforced before candidates are written.
const (
	MaxFrontLen = 200
	MaxBackLen  = 500
)
