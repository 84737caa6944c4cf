package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hyperengineering/cadence/internal/insight"
	"github.com/hyperengineering/cadence/internal/service"
	"github.com/hyperengineering/cadence/internal/store"
	"github.com/hyperengineering/cadence/internal/types"
)

// newTestRouter wires a full router over an in-memory store so handler
// tests exercise the real middleware chain and engine.
func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()
	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	engine := service.New(s, insight.NewStatic())
	return NewRouter(NewHandler(engine, testAPIKey, "test"))
}

func doRequest(t *testing.T, router *chi.Mux, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return doRequestAs(t, router, method, path, body, "")
}

func doRequestAs(t *testing.T, router *chi.Mux, method, path string, body any, userID string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode response (%d): %v\nbody: %s", w.Code, err, w.Body.String())
	}
	return v
}

func createTestHabit(t *testing.T, router *chi.Mux, name string) types.Habit {
	t.Helper()
	w := doRequest(t, router, http.MethodPost, "/api/v1/habits", types.NewHabit{
		Name:      name,
		Frequency: types.FrequencyDaily,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create habit: status = %d, body: %s", w.Code, w.Body.String())
	}
	return decodeBody[types.Habit](t, w)
}

func putTestProfile(t *testing.T, router *chi.Mux) {
	t.Helper()
	w := doRequest(t, router, http.MethodPut, "/api/v1/profile", types.UserProfile{
		WakeTime:       "07:00",
		SleepTime:      "23:00",
		AvailableHours: 6,
		AcademicGoals:  []string{"Thesis chapter"},
		SkillGoals:     []string{"Guitar practice"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("put profile: status = %d, body: %s", w.Code, w.Body.String())
	}
}

// --- Health ---

func TestHealth_PublicAndPopulated(t *testing.T) {
	router := newTestRouter(t)

	// No auth header on purpose
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	resp := decodeBody[types.HealthResponse](t, w)
	if resp.Status != "healthy" {
		t.Errorf("status = %q, want healthy", resp.Status)
	}
	if resp.Version != "test" {
		t.Errorf("version = %q, want test", resp.Version)
	}
}

func TestHealth_CountsReflectData(t *testing.T) {
	router := newTestRouter(t)
	createTestHabit(t, router, "Morning reading")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := decodeBody[types.HealthResponse](t, w)
	if resp.HabitCount != 1 {
		t.Errorf("habit_count = %d, want 1", resp.HabitCount)
	}
}

// --- Auth on protected routes ---

func TestProtectedRoutes_RequireAuth(t *testing.T) {
	router := newTestRouter(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/habits"},
		{http.MethodPost, "/api/v1/habits"},
		{http.MethodPost, "/api/v1/routines/generate"},
		{http.MethodGet, "/api/v1/profile"},
		{http.MethodPost, "/api/v1/reviews"},
	}

	for _, p := range paths {
		req := httptest.NewRequest(p.method, p.path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s without auth: status = %d, want 401", p.method, p.path, w.Code)
		}
	}
}

// --- Habits ---

func TestCreateHabit_Success(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(t, router, http.MethodPost, "/api/v1/habits", types.NewHabit{
		Name:      "Morning reading",
		Frequency: types.FrequencyDaily,
		Cue:       "After coffee",
		Reward:    "Podcast episode",
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body: %s", w.Code, w.Body.String())
	}

	habit := decodeBody[types.Habit](t, w)
	if habit.ID == "" {
		t.Error("expected assigned habit ID")
	}
	if !habit.Active {
		t.Error("new habit should be active")
	}
	if habit.Cue != "After coffee" {
		t.Errorf("cue = %q", habit.Cue)
	}
}

func TestCreateHabit_ValidationErrors(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(t, router, http.MethodPost, "/api/v1/habits", types.NewHabit{
		Frequency: "hourly",
	})

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422, body: %s", w.Code, w.Body.String())
	}

	p := decodeBody[ProblemWithErrors](t, w)
	if p.Type != "https://cadence.dev/errors/validation-error" {
		t.Errorf("type = %q", p.Type)
	}
	fields := make(map[string]bool)
	for _, e := range p.Errors {
		fields[e.Field] = true
	}
	if !fields["name"] || !fields["frequency"] {
		t.Errorf("expected errors for name and frequency, got %v", p.Errors)
	}
}

func TestCreateHabit_MalformedJSON(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/habits", bytes.NewBufferString("{not json"))
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGetHabit_NotFound(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(t, router, http.MethodGet, "/api/v1/habits/01JF5GNGHKBMVJSPJ1A6GV2NNN", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}

	p := decodeBody[Problem](t, w)
	if p.Type != "https://cadence.dev/errors/not-found" {
		t.Errorf("type = %q", p.Type)
	}
}

func TestListHabits_ActiveFilter(t *testing.T) {
	router := newTestRouter(t)
	a := createTestHabit(t, router, "Stretching")
	createTestHabit(t, router, "Journaling")

	w := doRequest(t, router, http.MethodDelete, "/api/v1/habits/"+a.ID, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("deactivate: status = %d", w.Code)
	}

	w = doRequest(t, router, http.MethodGet, "/api/v1/habits?active=true", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	active := decodeBody[[]types.Habit](t, w)
	if len(active) != 1 {
		t.Fatalf("active habits = %d, want 1", len(active))
	}
	if active[0].Name != "Journaling" {
		t.Errorf("name = %q", active[0].Name)
	}

	w = doRequest(t, router, http.MethodGet, "/api/v1/habits", nil)
	all := decodeBody[[]types.Habit](t, w)
	if len(all) != 2 {
		t.Errorf("all habits = %d, want 2", len(all))
	}
}

func TestUpdateHabit_Success(t *testing.T) {
	router := newTestRouter(t)
	h := createTestHabit(t, router, "Stretching")

	w := doRequest(t, router, http.MethodPut, "/api/v1/habits/"+h.ID, types.NewHabit{
		Name:      "Evening stretching",
		Frequency: types.FrequencyWeekly,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", w.Code, w.Body.String())
	}

	updated := decodeBody[types.Habit](t, w)
	if updated.Name != "Evening stretching" {
		t.Errorf("name = %q", updated.Name)
	}
	if updated.Frequency != types.FrequencyWeekly {
		t.Errorf("frequency = %q", updated.Frequency)
	}
}

func TestDeactivateHabit_BlockedByStack(t *testing.T) {
	router := newTestRouter(t)
	anchor := createTestHabit(t, router, "Coffee")

	w := doRequest(t, router, http.MethodPost, "/api/v1/habits", types.NewHabit{
		Name:         "Reading",
		Frequency:    types.FrequencyDaily,
		StackedAfter: anchor.ID,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create stacked: status = %d, body: %s", w.Code, w.Body.String())
	}

	w = doRequest(t, router, http.MethodDelete, "/api/v1/habits/"+anchor.ID, nil)
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
	p := decodeBody[Problem](t, w)
	if p.Type != "https://cadence.dev/errors/conflict" {
		t.Errorf("type = %q", p.Type)
	}
}

func TestCompleteHabit_Success(t *testing.T) {
	router := newTestRouter(t)
	h := createTestHabit(t, router, "Reading")

	w := doRequest(t, router, http.MethodPost, "/api/v1/habits/"+h.ID+"/complete", types.CompletionPayload{
		Day:       "2026-08-29",
		Completed: true,
		Quality:   types.QualityGood,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", w.Code, w.Body.String())
	}

	rec := decodeBody[types.HabitCompletionRecord](t, w)
	if rec.HabitID != h.ID {
		t.Errorf("habit_id = %q, want %q", rec.HabitID, h.ID)
	}
	if !rec.Completed {
		t.Error("completed = false")
	}
}

func TestCompleteHabit_InvalidPayload(t *testing.T) {
	router := newTestRouter(t)
	h := createTestHabit(t, router, "Reading")

	w := doRequest(t, router, http.MethodPost, "/api/v1/habits/"+h.ID+"/complete", types.CompletionPayload{
		Day:       "29-08-2026",
		Completed: true,
		Quality:   "stellar",
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", w.Code)
	}
}

func TestGetStreaks(t *testing.T) {
	router := newTestRouter(t)
	h := createTestHabit(t, router, "Reading")

	doRequest(t, router, http.MethodPost, "/api/v1/habits/"+h.ID+"/complete", types.CompletionPayload{
		Day:       "2026-08-29",
		Completed: true,
	})

	w := doRequest(t, router, http.MethodGet, "/api/v1/habits/streaks", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", w.Code, w.Body.String())
	}

	streaks := decodeBody[[]types.HabitStreak](t, w)
	if len(streaks) != 1 {
		t.Fatalf("streaks = %d, want 1", len(streaks))
	}
	if streaks[0].HabitID != h.ID {
		t.Errorf("habit_id = %q", streaks[0].HabitID)
	}
	if streaks[0].HabitName != "Reading" {
		t.Errorf("habit_name = %q", streaks[0].HabitName)
	}
}

// --- Profile ---

func TestProfile_RoundTrip(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(t, router, http.MethodGet, "/api/v1/profile", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("get before put: status = %d, want 404", w.Code)
	}

	putTestProfile(t, router)

	w = doRequest(t, router, http.MethodGet, "/api/v1/profile", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	p := decodeBody[types.UserProfile](t, w)
	if p.WakeTime != "07:00" || p.AvailableHours != 6 {
		t.Errorf("profile = %+v", p)
	}
	if p.UserID != DefaultUserID {
		t.Errorf("user_id = %q, want %q", p.UserID, DefaultUserID)
	}
}

func TestPutProfile_Validation(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(t, router, http.MethodPut, "/api/v1/profile", types.UserProfile{
		WakeTime:       "7am",
		SleepTime:      "23:00",
		AvailableHours: 30,
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422, body: %s", w.Code, w.Body.String())
	}
}

// --- Routines ---

func TestGenerateRoutine_NoProfile(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(t, router, http.MethodPost, "/api/v1/routines/generate", types.GenerateRequest{
		Day: "2026-08-29",
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422, body: %s", w.Code, w.Body.String())
	}
	p := decodeBody[Problem](t, w)
	if p.Type != "https://cadence.dev/errors/validation-error" {
		t.Errorf("type = %q", p.Type)
	}
	if p.Detail != "Profile is missing wake time, sleep time, or available hours" {
		t.Errorf("detail = %q", p.Detail)
	}
}

func TestGenerateRoutine_FreshThenExisting(t *testing.T) {
	router := newTestRouter(t)
	putTestProfile(t, router)

	w := doRequest(t, router, http.MethodPost, "/api/v1/routines/generate", types.GenerateRequest{
		Day: "2026-08-29",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("fresh: status = %d, want 201, body: %s", w.Code, w.Body.String())
	}
	fresh := decodeBody[types.RoutineResult](t, w)
	if fresh.Existing {
		t.Error("fresh generation flagged existing")
	}
	if len(fresh.Routine.Segments) == 0 {
		t.Fatal("expected segments")
	}
	if fresh.EstimatedMinutes <= 0 {
		t.Errorf("estimated_minutes = %d", fresh.EstimatedMinutes)
	}

	w = doRequest(t, router, http.MethodPost, "/api/v1/routines/generate", types.GenerateRequest{
		Day: "2026-08-29",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("repeat: status = %d, want 200", w.Code)
	}
	repeat := decodeBody[types.RoutineResult](t, w)
	if !repeat.Existing {
		t.Error("repeat generation not flagged existing")
	}
	if repeat.Routine.ID != fresh.Routine.ID {
		t.Errorf("routine ID changed on repeat: %q vs %q", repeat.Routine.ID, fresh.Routine.ID)
	}
}

func TestGenerateRoutine_InvalidDay(t *testing.T) {
	router := newTestRouter(t)
	putTestProfile(t, router)

	w := doRequest(t, router, http.MethodPost, "/api/v1/routines/generate", types.GenerateRequest{
		Day: "August 29th",
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", w.Code)
	}
}

func TestGetRoutine(t *testing.T) {
	router := newTestRouter(t)
	putTestProfile(t, router)

	doRequest(t, router, http.MethodPost, "/api/v1/routines/generate", types.GenerateRequest{Day: "2026-08-29"})

	w := doRequest(t, router, http.MethodGet, "/api/v1/routines/2026-08-29", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	routine := decodeBody[types.DailyRoutine](t, w)
	if routine.Day != types.Day("2026-08-29") {
		t.Errorf("day = %q", routine.Day)
	}

	w = doRequest(t, router, http.MethodGet, "/api/v1/routines/2026-08-30", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing day: status = %d, want 404", w.Code)
	}

	w = doRequest(t, router, http.MethodGet, "/api/v1/routines/not-a-day", nil)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("invalid day: status = %d, want 422", w.Code)
	}
}

func TestUpdateSegment(t *testing.T) {
	router := newTestRouter(t)
	putTestProfile(t, router)

	w := doRequest(t, router, http.MethodPost, "/api/v1/routines/generate", types.GenerateRequest{Day: "2026-08-29"})
	result := decodeBody[types.RoutineResult](t, w)
	routineID := result.Routine.ID
	segmentID := result.Routine.Segments[0].ID

	path := fmt.Sprintf("/api/v1/routines/%s/segments/%s", routineID, segmentID)
	w = doRequest(t, router, http.MethodPatch, path, types.SegmentUpdate{
		Completed:    true,
		FocusQuality: types.FocusHigh,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", w.Code, w.Body.String())
	}

	updated := decodeBody[types.RoutineSegment](t, w)
	if !updated.Completed {
		t.Error("segment not marked completed")
	}
	if updated.FocusQuality != types.FocusHigh {
		t.Errorf("focus_quality = %q", updated.FocusQuality)
	}
	if updated.ID != segmentID {
		t.Errorf("segment id = %q, want %q", updated.ID, segmentID)
	}
}

func TestUpdateSegment_InvalidFocus(t *testing.T) {
	router := newTestRouter(t)
	putTestProfile(t, router)

	w := doRequest(t, router, http.MethodPost, "/api/v1/routines/generate", types.GenerateRequest{Day: "2026-08-29"})
	result := decodeBody[types.RoutineResult](t, w)

	path := fmt.Sprintf("/api/v1/routines/%s/segments/%s", result.Routine.ID, result.Routine.Segments[0].ID)
	w = doRequest(t, router, http.MethodPatch, path, types.SegmentUpdate{
		Completed:    true,
		FocusQuality: "laser",
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", w.Code)
	}
}

// --- Reviews ---

func TestCreateReview_SuccessAndDuplicate(t *testing.T) {
	router := newTestRouter(t)

	payload := types.NewEveningReview{
		Day:          "2026-08-29",
		Accomplished: []string{"Finished draft"},
		Missed:       []string{"Guitar practice"},
		Mood:         6,
		EnergyLevel:  5,
	}

	w := doRequest(t, router, http.MethodPost, "/api/v1/reviews", payload)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body: %s", w.Code, w.Body.String())
	}

	result := decodeBody[types.ReviewResult](t, w)
	if result.Review.ID == "" {
		t.Error("expected assigned review ID")
	}
	if result.Review.Mood != 6 {
		t.Errorf("mood = %d", result.Review.Mood)
	}
	if len(result.GeneratedInsights) == 0 {
		t.Error("expected at least one generated insight")
	}

	w = doRequest(t, router, http.MethodPost, "/api/v1/reviews", payload)
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate: status = %d, want 409", w.Code)
	}
}

func TestCreateReview_Validation(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(t, router, http.MethodPost, "/api/v1/reviews", types.NewEveningReview{
		Day:         "2026-08-29",
		Mood:        0,
		EnergyLevel: 11,
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}

	p := decodeBody[ProblemWithErrors](t, w)
	fields := make(map[string]bool)
	for _, e := range p.Errors {
		fields[e.Field] = true
	}
	if !fields["mood"] || !fields["energy_level"] {
		t.Errorf("expected errors for mood and energy_level, got %v", p.Errors)
	}
}

func TestGetReview(t *testing.T) {
	router := newTestRouter(t)

	doRequest(t, router, http.MethodPost, "/api/v1/reviews", types.NewEveningReview{
		Day:         "2026-08-29",
		Mood:        7,
		EnergyLevel: 6,
	})

	w := doRequest(t, router, http.MethodGet, "/api/v1/reviews/2026-08-29", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	review := decodeBody[types.EveningReview](t, w)
	if review.Mood != 7 {
		t.Errorf("mood = %d", review.Mood)
	}

	w = doRequest(t, router, http.MethodGet, "/api/v1/reviews/2026-08-30", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing: status = %d, want 404", w.Code)
	}
}

// --- User scoping ---

func TestUserScoping_HabitsIsolatedByHeader(t *testing.T) {
	router := newTestRouter(t)

	w := doRequestAs(t, router, http.MethodPost, "/api/v1/habits", types.NewHabit{
		Name:      "Alice's reading",
		Frequency: types.FrequencyDaily,
	}, "alice")
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status = %d", w.Code)
	}
	habit := decodeBody[types.Habit](t, w)

	// Bob cannot see Alice's habit
	w = doRequestAs(t, router, http.MethodGet, "/api/v1/habits/"+habit.ID, nil, "bob")
	if w.Code != http.StatusNotFound {
		t.Errorf("cross-user get: status = %d, want 404", w.Code)
	}

	// Alice can
	w = doRequestAs(t, router, http.MethodGet, "/api/v1/habits/"+habit.ID, nil, "alice")
	if w.Code != http.StatusOK {
		t.Errorf("owner get: status = %d, want 200", w.Code)
	}

	// Bob's list is empty
	w = doRequestAs(t, router, http.MethodGet, "/api/v1/habits", nil, "bob")
	habits := decodeBody[[]types.Habit](t, w)
	if len(habits) != 0 {
		t.Errorf("bob's habits = %d, want 0", len(habits))
	}
}
