package store

import (
	"context"

	"github.com/hyperengineering/cadence/internal/types"
)

// mockStore is a compile-time check that the Store interface can be implemented.
type mockStore struct{}

var _ Store = (*mockStore)(nil)

func (m *mockStore) CreateHabit(ctx context.Context, userID string, habit types.NewHabit) (*types.Habit, error) {
	return nil, nil
}
func (m *mockStore) GetHabit(ctx context.Context, id string) (*types.Habit, error) {
	return nil, nil
}
func (m *mockStore) ListHabits(ctx context.Context, userID string, activeOnly bool) ([]types.Habit, error) {
	return nil, nil
}
func (m *mockStore) UpdateHabit(ctx context.Context, habit *types.Habit) error {
	return nil
}
func (m *mockStore) DeactivateHabit(ctx context.Context, id string) error {
	return nil
}
func (m *mockStore) HasDependents(ctx context.Context, habitID string) (bool, error) {
	return false, nil
}
func (m *mockStore) UpsertCompletion(ctx context.Context, habitID string, payload types.CompletionPayload) (*types.HabitCompletionRecord, error) {
	return nil, nil
}
func (m *mockStore) ListCompletions(ctx context.Context, habitID string, limit int) ([]types.HabitCompletionRecord, error) {
	return nil, nil
}
func (m *mockStore) InsertRoutine(ctx context.Context, routine *types.DailyRoutine) error {
	return nil
}
func (m *mockStore) GetRoutine(ctx context.Context, userID string, day types.Day) (*types.DailyRoutine, error) {
	return nil, nil
}
func (m *mockStore) GetRoutineByID(ctx context.Context, id string) (*types.DailyRoutine, error) {
	return nil, nil
}
func (m *mockStore) ListRoutines(ctx context.Context, userID string, since types.Day) ([]types.DailyRoutine, error) {
	return nil, nil
}
func (m *mockStore) UpdateSegment(ctx context.Context, routineID, segmentID string, update types.SegmentUpdate) (*types.RoutineSegment, error) {
	return nil, nil
}
func (m *mockStore) UpdateRoutineAdaptations(ctx context.Context, routineID string, complexity types.RoutineComplexity, adaptationsApplied []string) error {
	return nil
}
func (m *mockStore) SetRoutineCompleted(ctx context.Context, routineID string, completed bool) error {
	return nil
}
func (m *mockStore) InsertReview(ctx context.Context, review *types.EveningReview) error {
	return nil
}
func (m *mockStore) GetReview(ctx context.Context, userID string, day types.Day) (*types.EveningReview, error) {
	return nil, nil
}
func (m *mockStore) LatestReviews(ctx context.Context, userID string, limit int) ([]types.EveningReview, error) {
	return nil, nil
}
func (m *mockStore) QueueAdaptations(ctx context.Context, userID string, day types.Day, adaptations []types.RoutineAdaptation) error {
	return nil
}
func (m *mockStore) ListPendingAdaptations(ctx context.Context, userID string, day types.Day) ([]types.PendingAdaptation, error) {
	return nil, nil
}
func (m *mockStore) MarkAdaptationsConsumed(ctx context.Context, ids []string) error {
	return nil
}
func (m *mockStore) GetProfile(ctx context.Context, userID string) (*types.UserProfile, error) {
	return nil, nil
}
func (m *mockStore) PutProfile(ctx context.Context, profile *types.UserProfile) error {
	return nil
}
func (m *mockStore) AppendEvent(ctx context.Context, event *types.BehaviorEvent) (int64, error) {
	return 0, nil
}
func (m *mockStore) GetStats(ctx context.Context) (*types.StoreStats, error) {
	return nil, nil
}
func (m *mockStore) Close() error {
	return nil
}
