package store

import (
	"context"

	"github.com/hyperengineering/cadence/internal/types"
)

// Store defines the interface contract for all persistence operations.
type Store interface {
	// Habits
	CreateHabit(ctx context.Context, userID string, habit types.NewHabit) (*types.Habit, error)
	GetHabit(ctx context.Context, id string) (*types.Habit, error)
	ListHabits(ctx context.Context, userID string, activeOnly bool) ([]types.Habit, error)
	UpdateHabit(ctx context.Context, habit *types.Habit) error
	DeactivateHabit(ctx context.Context, id string) error
	HasDependents(ctx context.Context, habitID string) (bool, error)
	UpsertCompletion(ctx context.Context, habitID string, payload types.CompletionPayload) (*types.HabitCompletionRecord, error)
	ListCompletions(ctx context.Context, habitID string, limit int) ([]types.HabitCompletionRecord, error)

	// Routines
	InsertRoutine(ctx context.Context, routine *types.DailyRoutine) error
	GetRoutine(ctx context.Context, userID string, day types.Day) (*types.DailyRoutine, error)
	GetRoutineByID(ctx context.Context, id string) (*types.DailyRoutine, error)
	ListRoutines(ctx context.Context, userID string, since types.Day) ([]types.DailyRoutine, error)
	UpdateSegment(ctx context.Context, routineID, segmentID string, update types.SegmentUpdate) (*types.RoutineSegment, error)
	UpdateRoutineAdaptations(ctx context.Context, routineID string, complexity types.RoutineComplexity, adaptationsApplied []string) error
	SetRoutineCompleted(ctx context.Context, routineID string, completed bool) error

	// Reviews
	InsertReview(ctx context.Context, review *types.EveningReview) error
	GetReview(ctx context.Context, userID string, day types.Day) (*types.EveningReview, error)
	LatestReviews(ctx context.Context, userID string, limit int) ([]types.EveningReview, error)

	// Adaptations
	QueueAdaptations(ctx context.Context, userID string, day types.Day, adaptations []types.RoutineAdaptation) error
	ListPendingAdaptations(ctx context.Context, userID string, day types.Day) ([]types.PendingAdaptation, error)
	MarkAdaptationsConsumed(ctx context.Context, ids []string) error

	// Profiles
	GetProfile(ctx context.Context, userID string) (*types.UserProfile, error)
	PutProfile(ctx context.Context, profile *types.UserProfile) error

	// Behavior log
	AppendEvent(ctx context.Context, event *types.BehaviorEvent) (int64, error)

	GetStats(ctx context.Context) (*types.StoreStats, error)
	Close() error
}
