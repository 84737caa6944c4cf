package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hyperengineering/cadence/internal/types"
	"github.com/hyperengineering/cadence/internal/validation"
)

// CreateHabit handles POST /api/v1/habits
func (h *Handler) CreateHabit(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	var input types.NewHabit
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}

	if errs := validation.ValidateNewHabit(input); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Habit contains invalid fields", errs)
		return
	}

	habit, err := h.engine.CreateHabit(r.Context(), userID, input)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, habit)
}

// ListHabits handles GET /api/v1/habits
func (h *Handler) ListHabits(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())
	activeOnly := r.URL.Query().Get("active") == "true"

	habits, err := h.engine.ListHabits(r.Context(), userID, activeOnly)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, habits)
}

// GetHabit handles GET /api/v1/habits/{id}
func (h *Handler) GetHabit(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	habit, err := h.engine.GetHabit(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, habit)
}

// UpdateHabit handles PUT /api/v1/habits/{id}
func (h *Handler) UpdateHabit(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	var input types.NewHabit
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}

	if errs := validation.ValidateNewHabit(input); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Habit contains invalid fields", errs)
		return
	}

	habit, err := h.engine.UpdateHabit(r.Context(), userID, chi.URLParam(r, "id"), input)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, habit)
}

// DeactivateHabit handles DELETE /api/v1/habits/{id}
func (h *Handler) DeactivateHabit(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	if err := h.engine.DeactivateHabit(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		MapStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CompleteHabit handles POST /api/v1/habits/{id}/complete
func (h *Handler) CompleteHabit(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	var payload types.CompletionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}

	if errs := validation.ValidateCompletionPayload(payload); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Completion contains invalid fields", errs)
		return
	}

	record, err := h.engine.CompleteHabit(r.Context(), userID, chi.URLParam(r, "id"), payload)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// GetStreaks handles GET /api/v1/habits/streaks
func (h *Handler) GetStreaks(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	streaks, err := h.engine.GetHabitStreaks(r.Context(), userID)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, streaks)
}
