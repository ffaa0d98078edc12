package models

import "gorm.io/gorm"

// User represents a user in the system
type User struct {
	gorm.Model
	Auth0ID  string `gorm:"unique;not null;size:100" json:"-"`
	Nickname string `gorm:"size:100"`

	Flashcards []Flashcard         `gorm:"foreignKey:UserID"`
	Sessions   []GenerationSession `gorm:"foreignKey:UserID"`
}
