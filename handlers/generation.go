package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/flashgen/flashgen-api/events"
	"github.com/flashgen/flashgen-api/middleware"
	"github.com/flashgen/flashgen-api/services"
)

// Input text bounds for one generation request.
const (
	MinInputTextLen = 1000
	MaxInputTextLen = 10000
)

// CreateGeneration creates a generation session, calls the AI collaborator
// and stores the resulting candidates. A failed generation leaves the
// session row behind without candidates.
func (h *Handler) CreateGeneration(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	var req struct {
		InputText string `json:"inputText"`
		Model     string `json:"model"`
	}
	if err := decoder.Decode(&req); err != nil {
		http.Error(w, "Could not decode request", http.StatusBadRequest)
		return
	}

	textLen := len([]rune(req.InputText))
	if textLen < MinInputTextLen || textLen > MaxInputTextLen {
		http.Error(w, fmt.Sprintf("inputText must be between %d and %d characters", MinInputTextLen, MaxInputTextLen), http.StatusBadRequest)
		return
	}

	model := req.Model
	if model == "" {
		model = h.Env.DefaultModel
	}

	session, err := h.Sessions.CreateSession(user.ID, req.InputText, model)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	result, err := h.Generator.Generate(r.Context(), req.InputText, model)
	if err != nil {
		h.Audit.Record(user.ID, events.KindGenerationFailed, fmt.Sprintf("session=%s model=%s: %v", session.PublicID, model, err))
		http.Error(w, "Generation failed", http.StatusInternalServerError)
		return
	}

	cards, err := h.Sessions.RecordCandidates(session, result.Candidates)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if err := h.Sessions.UpdateDuration(session, result.DurationMs); err != nil {
		writeServiceError(w, err)
		return
	}

	h.Audit.Record(user.ID, events.KindSessionCreated, fmt.Sprintf("session=%s candidates=%d durationMs=%d", session.PublicID, len(cards), result.DurationMs))

	views := candidateViews(cards)
	for i := range views {
		views[i].SessionID = session.PublicID
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"sessionId":     session.PublicID,
		"inputTextHash": session.InputTextHash,
		"candidates":    views,
	})
}

// GetSessionCandidates lists one session's pending candidates. Unknown or
// foreign sessions read as an empty list by convention.
func (h *Handler) GetSessionCandidates(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	sessionID := r.PathValue("sessionID")
	if sessionID == "" {
		http.Error(w, "Session ID is required", http.StatusBadRequest)
		return
	}

	cards, err := h.Queries.SessionCandidates(user.ID, sessionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, candidateViews(cards))
}

// ProcessActions applies a review batch against one session.
func (h *Handler) ProcessActions(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	sessionID := r.PathValue("sessionID")
	if sessionID == "" {
		http.Error(w, "Session ID is required", http.StatusBadRequest)
		return
	}

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	var req struct {
		Actions []services.ActionItem `json:"actions"`
	}
	if err := decoder.Decode(&req); err != nil {
		http.Error(w, "Could not decode request", http.StatusBadRequest)
		return
	}

	result, err := h.Processor.ProcessActions(user.ID, sessionID, req.Actions)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
