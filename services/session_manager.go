package services

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/flashgen/flashgen-api/llm"
	"github.com/flashgen/flashgen-api/models"
	"github.com/flashgen/flashgen-api/store"
	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// SessionManager creates generation sessions and writes the candidates a
// generation call produced. It does not clean up after failed generations;
// a session without candidates is simply orphaned.
type SessionManager struct {
	sessions   store.SessionStore
	candidates store.CandidateStore
}

func NewSessionManager(sessions store.SessionStore, candidates store.CandidateStore) *SessionManager {
	return &SessionManager{sessions: sessions, candidates: candidates}
}

// HashInputText returns the SHA-256 hex digest of the trimmed text. The
// hash is stored for duplicate-session detection; no lookup uses it yet.
func HashInputText(inputText string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(inputText)))
	return hex.EncodeToString(sum[:])
}

func (m *SessionManager) CreateSession(userID uint, inputText, model string) (*models.GenerationSession, error) {
	session := &models.GenerationSession{
		PublicID:      uuid.NewString(),
		UserID:        userID,
		InputText:     inputText,
		InputTextHash: HashInputText(inputText),
		InputModel:    model,
	}
	if err := m.sessions.Create(session); err != nil {
		return nil, fmt.Errorf("%w: create session: %v", ErrStorage, err)
	}
	return session, nil
}

// RecordCandidates writes each generated draft as a pending flashcard owned
// by the session's user. Oversized model output is truncated to the column
// limits rather than rejected.
func (m *SessionManager) RecordCandidates(session *models.GenerationSession, drafts []llm.CandidateDraft) ([]models.Flashcard, error) {
	cards := make([]*models.Flashcard, 0, len(drafts))
	for _, d := range drafts {
		publicID, err := gonanoid.New()
		if err != nil {
			return nil, fmt.Errorf("%w: generate candidate id: %v", ErrStorage, err)
		}
		sessionID := session.ID
		cards = append(cards, &models.Flashcard{
			PublicID:  publicID,
			Front:     truncate(strings.TrimSpace(d.Front), models.MaxFrontLen),
			Back:      truncate(strings.TrimSpace(d.Back), models.MaxBackLen),
			Prompt:    truncate(strings.TrimSpace(d.Prompt), models.MaxBackLen),
			UserID:    session.UserID,
			SessionID: &sessionID,
		})
	}
	if err := m.candidates.CreateBatch(cards); err != nil {
		return nil, fmt.Errorf("%w: record candidates: %v", ErrStorage, err)
	}

	out := make([]models.Flashcard, 0, len(cards))
	for _, c := range cards {
		out = append(out, *c)
	}
	return out, nil
}

// UpdateDuration records how long the generation call took. Idempotent,
// last write wins.
func (m *SessionManager) UpdateDuration(session *models.GenerationSession, durationMs int64) error {
	if err := m.sessions.UpdateDurationMs(session.ID, durationMs); err != nil {
		return fmt.Errorf("%w: update duration: %v", ErrStorage, err)
	}
	session.GenerationDurationMs = durationMs
	return nil
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
