package api

import (
	"encoding/json"
	"net/http"

	"github.com/hyperengineering/cadence/internal/service"
	"github.com/hyperengineering/cadence/internal/types"
	"github.com/hyperengineering/cadence/internal/validation"
)

// Handler implements the API handlers
type Handler struct {
	engine  *service.Engine
	apiKey  string
	version string
}

// NewHandler creates a new Handler over the service engine
func NewHandler(e *service.Engine, apiKey, version string) *Handler {
	return &Handler{
		engine:  e,
		apiKey:  apiKey,
		version: version,
	}
}

// Health returns the health status
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	stats, err := h.engine.Stats(r.Context())
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	resp := types.HealthResponse{
		Status:       "healthy",
		Version:      h.version,
		HabitCount:   stats.HabitCount,
		RoutineCount: stats.RoutineCount,
		ReviewCount:  stats.ReviewCount,
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetProfile handles GET /api/v1/profile
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	profile, err := h.engine.GetProfile(r.Context(), userID)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// PutProfile handles PUT /api/v1/profile
func (h *Handler) PutProfile(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	var profile types.UserProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}

	if errs := validation.ValidateProfile(profile); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Profile contains invalid fields", errs)
		return
	}

	saved, err := h.engine.PutProfile(r.Context(), userID, profile)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
