package services

import (
	"fmt"
	"time"

	"github.com/flashgen/flashgen-api/events"
	"github.com/flashgen/flashgen-api/models"
	"github.com/flashgen/flashgen-api/store"
)

// QueryService exposes the read views over pending candidates. Every view
// is owner-scoped and, through the store, excludes rejected rows.
type QueryService struct {
	candidates store.CandidateStore
	sessions   store.SessionStore
	audit      events.Recorder
}

func NewQueryService(candidates store.CandidateStore, sessions store.SessionStore, audit events.Recorder) *QueryService {
	return &QueryService{candidates: candidates, sessions: sessions, audit: audit}
}

// SessionCandidates lists the pending candidates of one session. An unknown
// or foreign session id yields an empty list, not an error.
func (q *QueryService) SessionCandidates(userID uint, sessionPublicID string) ([]models.Flashcard, error) {
	session, err := q.sessions.GetByPublicID(userID, sessionPublicID)
	if err != nil {
		return nil, fmt.Errorf("%w: load session: %v", ErrStorage, err)
	}
	if session == nil {
		return []models.Flashcard{}, nil
	}
	cards, err := q.candidates.ListBySession(userID, session.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: list session candidates: %v", ErrStorage, err)
	}
	return cards, nil
}

// AllPending lists every pending candidate for the user, oldest first.
func (q *QueryService) AllPending(userID uint) ([]models.Flashcard, error) {
	cards, err := q.candidates.ListPending(userID, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: list pending: %v", ErrStorage, err)
	}
	return cards, nil
}

// OtherPending lists pending candidates outside one session, so the caller
// can show "candidates from other sessions" without duplicating the active
// session's new list. An unknown exclude id degrades to AllPending.
func (q *QueryService) OtherPending(userID uint, excludeSessionPublicID string) ([]models.Flashcard, error) {
	if excludeSessionPublicID == "" {
		return q.AllPending(userID)
	}
	session, err := q.sessions.GetByPublicID(userID, excludeSessionPublicID)
	if err != nil {
		return nil, fmt.Errorf("%w: load session: %v", ErrStorage, err)
	}
	if session == nil {
		return q.AllPending(userID)
	}
	cards, err := q.candidates.ListPending(userID, &session.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: list other pending: %v", ErrStorage, err)
	}
	return cards, nil
}

// Orphaned lists candidates still pending past the retention window.
func (q *QueryService) Orphaned(userID uint, olderThanDays int) ([]models.Flashcard, error) {
	cutoff := time.Now().AddDate(0, 0, -olderThanDays)
	cards, err := q.candidates.ListOrphaned(userID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("%w: list orphaned: %v", ErrStorage, err)
	}
	return cards, nil
}

// DeleteOrphaned soft-deletes candidates past the retention window and
// returns how many were removed. This is a maintenance operation; nothing
// runs it automatically.
func (q *QueryService) DeleteOrphaned(userID uint, olderThanDays int) (int, error) {
	cards, err := q.Orphaned(userID, olderThanDays)
	if err != nil {
		return 0, err
	}
	if len(cards) == 0 {
		return 0, nil
	}
	ids := make([]uint, 0, len(cards))
	for _, c := range cards {
		ids = append(ids, c.ID)
	}
	if err := q.candidates.Reject(userID, ids); err != nil {
		return 0, fmt.Errorf("%w: delete orphaned: %v", ErrStorage, err)
	}
	q.audit.Record(userID, events.KindOrphanedRejected, fmt.Sprintf("count=%d olderThanDays=%d", len(ids), olderThanDays))
	return len(ids), nil
}
