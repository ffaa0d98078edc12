package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/flashgen/flashgen-api/config"
	"github.com/flashgen/flashgen-api/events"
	"github.com/flashgen/flashgen-api/llm"
	"github.com/flashgen/flashgen-api/models"
	"github.com/flashgen/flashgen-api/services"
	"github.com/flashgen/flashgen-api/store"
	"gorm.io/gorm"
)

// Handler holds the wired services behind the HTTP surface.
type Handler struct {
	Sessions  *services.SessionManager
	Queries   *services.QueryService
	Processor *services.ActionProcessor
	Generator llm.Generator
	Audit     events.Recorder
	Env       config.Environment
}

func New(db *gorm.DB, generator llm.Generator, env config.Environment) *Handler {
	candidates := store.NewCandidateStore(db)
	sessions := store.NewSessionStore(db)
	audit := events.NewRecorder(db)

	return &Handler{
		Sessions:  services.NewSessionManager(sessions, candidates),
		Queries:   services.NewQueryService(candidates, sessions, audit),
		Processor: services.NewActionProcessor(db, env.CounterPolicy, audit),
		Generator: generator,
		Audit:     audit,
		Env:       env,
	}
}

// CandidateView is the wire shape of a candidate row.
type CandidateView struct {
	ID        string    `json:"id"`
	Front     string    `json:"front"`
	Back      string    `json:"back"`
	Prompt    string    `json:"prompt,omitempty"`
	SessionID string    `json:"sessionId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func candidateViews(cards []models.Flashcard) []CandidateView {
	views := make([]CandidateView, 0, len(cards))
	for _, c := range cards {
		v := CandidateView{
			ID:        c.PublicID,
			Front:     c.Front,
			Back:      c.Back,
			Prompt:    c.Prompt,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		}
		if c.Session != nil {
			v.SessionID = c.Session.PublicID
		}
		views = append(views, v)
	}
	return views
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// writeServiceError maps the error taxonomy onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, services.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, services.ErrUnauthorized):
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	case errors.Is(err, services.ErrUpstreamGeneration):
		http.Error(w, "Generation failed", http.StatusInternalServerError)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
