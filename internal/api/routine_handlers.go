package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hyperengineering/cadence/internal/types"
	"github.com/hyperengineering/cadence/internal/validation"
)

// GenerateRoutine handles POST /api/v1/routines/generate
func (h *Handler) GenerateRoutine(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	var req types.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}

	if errs := validation.ValidateGenerateRequest(req); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Generate request contains invalid fields", errs)
		return
	}

	result, err := h.engine.GenerateRoutine(r.Context(), userID, req)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}

	status := http.StatusCreated
	if result.Existing {
		status = http.StatusOK
	}
	writeJSON(w, status, result)
}

// GetRoutine handles GET /api/v1/routines/{day}
func (h *Handler) GetRoutine(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	day := chi.URLParam(r, "day")
	if err := validation.ValidateDay("day", day); err != nil {
		WriteProblemWithErrors(w, r, "Invalid day", []validation.ValidationError{*err})
		return
	}

	routine, err := h.engine.GetRoutineForDay(r.Context(), userID, day)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, routine)
}

// UpdateSegment handles PATCH /api/v1/routines/{routineID}/segments/{segmentID}
func (h *Handler) UpdateSegment(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	var update types.SegmentUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}

	if errs := validation.ValidateSegmentUpdate(update); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Segment update contains invalid fields", errs)
		return
	}

	segment, err := h.engine.UpdateSegment(r.Context(), userID,
		chi.URLParam(r, "routineID"), chi.URLParam(r, "segmentID"), update)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, segment)
}

// CreateReview handles POST /api/v1/reviews
func (h *Handler) CreateReview(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	var input types.NewEveningReview
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}

	if errs := validation.ValidateNewEveningReview(input); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Review contains invalid fields", errs)
		return
	}

	result, err := h.engine.CreateEveningReview(r.Context(), userID, input)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// GetReview handles GET /api/v1/reviews/{day}
func (h *Handler) GetReview(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	day := chi.URLParam(r, "day")
	if err := validation.ValidateDay("day", day); err != nil {
		WriteProblemWithErrors(w, r, "Invalid day", []validation.ValidationError{*err})
		return
	}

	review, err := h.engine.GetReview(r.Context(), userID, day)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, review)
}
