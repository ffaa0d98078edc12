package store

import (
	"time"

	"github.com/flashgen/flashgen-api/models"
	"gorm.io/gorm"
)

// CandidateStore holds the persistence primitives for flashcard candidates.
// It owns no review logic; every query is scoped to one owner and, through
// gorm's soft delete, excludes rejected rows.
type CandidateStore interface {
	CreateBatch(cards []*models.Flashcard) error
	ListBySession(userID, sessionID uint) ([]models.Flashcard, error)
	ListPending(userID uint, excludeSessionID *uint) ([]models.Flashcard, error)
	ListBySessionAndPublicIDs(userID, sessionID uint, publicIDs []string) ([]models.Flashcard, error)
	Graduate(userID uint, ids []uint) error
	GraduateEdited(userID, id uint, front, back string) error
	Reject(userID uint, ids []uint) error
	ListOrphaned(userID uint, olderThan time.Time) ([]models.Flashcard, error)

	// WithTx runs fn against a store bound to a single transaction; any
	// error rolls every mutation back.
	WithTx(fn func(CandidateStore) error) error
}

type candidateStore struct {
	db *gorm.DB
}

func NewCandidateStore(db *gorm.DB) CandidateStore {
	return &candidateStore{db: db}
}

func (s *candidateStore) CreateBatch(cards []*models.Flashcard) error {
	if len(cards) == 0 {
		return nil
	}
	return s.db.Create(cards).Error
}

func (s *candidateStore) ListBySession(userID, sessionID uint) ([]models.Flashcard, error) {
	var cards []models.Flashcard
	res := s.db.Preload("Session").
		Where("user_id = ? AND session_id = ?", userID, sessionID).
		Order("created_at asc").
		Find(&cards)
	if res.Error != nil {
		return nil, res.Error
	}
	return cards, nil
}

func (s *candidateStore) ListPending(userID uint, excludeSessionID *uint) ([]models.Flashcard, error) {
	q := s.db.Preload("Session").Where("user_id = ? AND session_id IS NOT NULL", userID)
	if excludeSessionID != nil {
		q = q.Where("session_id <> ?", *excludeSessionID)
	}
	var cards []models.Flashcard
	res := q.Order("created_at asc").Find(&cards)
	if res.Error != nil {
		return nil, res.Error
	}
	return cards, nil
}

func (s *candidateStore) ListBySessionAndPublicIDs(userID, sessionID uint, publicIDs []string) ([]models.Flashcard, error) {
	var cards []models.Flashcard
	res := s.db.
		Where("user_id = ? AND session_id = ? AND public_id IN ?", userID, sessionID, publicIDs).
		Find(&cards)
	if res.Error != nil {
		return nil, res.Error
	}
	return cards, nil
}

// Graduate clears the session reference, turning candidates into active
// flashcards. UpdatedAt is bumped by gorm.
func (s *candidateStore) Graduate(userID uint, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return s.db.Model(&models.Flashcard{}).
		Where("user_id = ? AND id IN ?", userID, ids).
		Update("session_id", nil).Error
}

func (s *candidateStore) GraduateEdited(userID, id uint, front, back string) error {
	return s.db.Model(&models.Flashcard{}).
		Where("user_id = ? AND id = ?", userID, id).
		Updates(map[string]interface{}{
			"session_id": nil,
			"front":      front,
			"back":       back,
		}).Error
}

// Reject soft-deletes candidates. Rows stay in the table for audit but
// disappear from every default query.
func (s *candidateStore) Reject(userID uint, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return s.db.
		Where("user_id = ? AND id IN ?", userID, ids).
		Delete(&models.Flashcard{}).Error
}

func (s *candidateStore) ListOrphaned(userID uint, olderThan time.Time) ([]models.Flashcard, error) {
	var cards []models.Flashcard
	res := s.db.Preload("Session").
		Where("user_id = ? AND session_id IS NOT NULL AND created_at <= ?", userID, olderThan).
		Order("created_at asc").
		Find(&cards)
	if res.Error != nil {
		return nil, res.Error
	}
	return cards, nil
}

func (s *candidateStore) WithTx(fn func(CandidateStore) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&candidateStore{db: tx})
	})
}
