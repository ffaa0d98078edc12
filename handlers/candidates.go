package handlers

import (
	"net/http"
	"strconv"

	"github.com/flashgen/flashgen-api/middleware"
)

// GetAllPending lists every pending candidate for the caller, oldest first.
func (h *Handler) GetAllPending(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	cards, err := h.Queries.AllPending(user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, candidateViews(cards))
}

// GetOtherPending lists pending candidates outside the session named by
// ?excludeSession=. Without the parameter it behaves like GetAllPending.
func (h *Handler) GetOtherPending(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	cards, err := h.Queries.OtherPending(user.ID, r.URL.Query().Get("excludeSession"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, candidateViews(cards))
}

// GetOrphaned lists candidates still pending past the retention window.
func (h *Handler) GetOrphaned(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	days, ok := h.olderThanDays(w, r)
	if !ok {
		return
	}

	cards, err := h.Queries.Orphaned(user.ID, days)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":      len(cards),
		"candidates": candidateViews(cards),
	})
}

// DeleteOrphaned soft-deletes candidates past the retention window.
func (h *Handler) DeleteOrphaned(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	days, ok := h.olderThanDays(w, r)
	if !ok {
		return
	}

	deleted, err := h.Queries.DeleteOrphaned(user.ID, days)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"deleted": deleted})
}

func (h *Handler) olderThanDays(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("olderThanDays")
	if raw == "" {
		return h.Env.OrphanRetentionDays, true
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 0 {
		http.Error(w, "olderThanDays must be a non-negative integer", http.StatusBadRequest)
		return 0, false
	}
	return days, true
}
