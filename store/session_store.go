package store

import (
	"errors"

	"github.com/flashgen/flashgen-api/config"
	"github.com/flashgen/flashgen-api/models"
	"gorm.io/gorm"
)

// SessionStore persists generation sessions and their review counters.
type SessionStore interface {
	Create(session *models.GenerationSession) error
	GetByPublicID(userID uint, publicID string) (*models.GenerationSession, error)
	UpdateDurationMs(id uint, durationMs int64) error
	ApplyAcceptCounts(id uint, unedited, edited int, policy config.CounterPolicy) error
}

type sessionStore struct {
	db *gorm.DB
}

func NewSessionStore(db *gorm.DB) SessionStore {
	return &sessionStore{db: db}
}

func (s *sessionStore) Create(session *models.GenerationSession) error {
	return s.db.Create(session).Error
}

// GetByPublicID returns nil without error when the session does not exist
// or belongs to another user.
func (s *sessionStore) GetByPublicID(userID uint, publicID string) (*models.GenerationSession, error) {
	var sess models.GenerationSession
	res := s.db.Where("user_id = ? AND public_id = ?", userID, publicID).Take(&sess)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, res.Error
	}
	return &sess, nil
}

// UpdateDurationMs is idempotent, last write wins.
func (s *sessionStore) UpdateDurationMs(id uint, durationMs int64) error {
	return s.db.Model(&models.GenerationSession{}).
		Where("id = ?", id).
		Update("generation_duration_ms", durationMs).Error
}

func (s *sessionStore) ApplyAcceptCounts(id uint, unedited, edited int, policy config.CounterPolicy) error {
	q := s.db.Model(&models.GenerationSession{}).Where("id = ?", id)
	if policy == config.CounterAccumulate {
		return q.Updates(map[string]interface{}{
			"accepted_unedited_count": gorm.Expr("accepted_unedited_count + ?", unedited),
			"accepted_edited_count":   gorm.Expr("accepted_edited_count + ?", edited),
		}).Error
	}
	return q.Updates(map[string]interface{}{
		"accepted_unedited_count": unedited,
		"accepted_edited_count":   edited,
	}).Error
}
