package service

import (
	"context"
	"errors"

	"github.com/hyperengineering/cadence/internal/store"
	"github.com/hyperengineering/cadence/internal/streak"
	"github.com/hyperengineering/cadence/internal/types"
)

// CreateHabit creates a habit, verifying any stack target exists and
// belongs to the same user.
func (e *Engine) CreateHabit(ctx context.Context, userID string, input types.NewHabit) (*types.Habit, error) {
	if input.StackedAfter != "" {
		parent, err := e.getOwnedHabit(ctx, userID, input.StackedAfter)
		if err != nil {
			return nil, err
		}
		if !parent.Active {
			return nil, store.ErrNotFound
		}
	}

	habit, err := e.store.CreateHabit(ctx, userID, input)
	if err != nil {
		return nil, err
	}
	e.appendEvent(ctx, userID, "habit.created", habit.ID, map[string]any{"name": habit.Name})
	return habit, nil
}

// GetHabit returns one of the user's habits.
func (e *Engine) GetHabit(ctx context.Context, userID, habitID string) (*types.Habit, error) {
	return e.getOwnedHabit(ctx, userID, habitID)
}

// ListHabits returns the user's habits, optionally active only.
func (e *Engine) ListHabits(ctx context.Context, userID string, activeOnly bool) ([]types.Habit, error) {
	return e.store.ListHabits(ctx, userID, activeOnly)
}

// UpdateHabit applies the input fields to an existing habit. Changing
// the stack target re-walks the chain to reject cycles.
func (e *Engine) UpdateHabit(ctx context.Context, userID, habitID string, input types.NewHabit) (*types.Habit, error) {
	habit, err := e.getOwnedHabit(ctx, userID, habitID)
	if err != nil {
		return nil, err
	}

	if input.StackedAfter != "" && input.StackedAfter != habit.StackedAfter {
		if input.StackedAfter == habitID {
			return nil, store.ErrHabitCycle
		}
		if err := e.checkStackCycle(ctx, userID, habitID, input.StackedAfter); err != nil {
			return nil, err
		}
	}

	habit.Name = input.Name
	if input.Frequency != "" {
		habit.Frequency = input.Frequency
	}
	habit.Cue = input.Cue
	habit.Reward = input.Reward
	habit.StackedAfter = input.StackedAfter
	habit.UpdatedAt = e.now().UTC()

	if err := e.store.UpdateHabit(ctx, habit); err != nil {
		return nil, err
	}
	return habit, nil
}

// DeactivateHabit soft-disables a habit. Habits that other active
// habits stack on cannot be deactivated.
func (e *Engine) DeactivateHabit(ctx context.Context, userID, habitID string) error {
	if _, err := e.getOwnedHabit(ctx, userID, habitID); err != nil {
		return err
	}

	dependents, err := e.store.HasDependents(ctx, habitID)
	if err != nil {
		return err
	}
	if dependents {
		return store.ErrHabitStacked
	}

	if err := e.store.DeactivateHabit(ctx, habitID); err != nil {
		return err
	}
	e.appendEvent(ctx, userID, "habit.deactivated", habitID, nil)
	return nil
}

// CompleteHabit records a completion for one (habit, day). A repeat
// submission for the same day overwrites the earlier record.
func (e *Engine) CompleteHabit(ctx context.Context, userID, habitID string, payload types.CompletionPayload) (*types.HabitCompletionRecord, error) {
	if _, err := e.getOwnedHabit(ctx, userID, habitID); err != nil {
		return nil, err
	}

	record, err := e.store.UpsertCompletion(ctx, habitID, payload)
	if err != nil {
		return nil, err
	}
	e.appendEvent(ctx, userID, "habit.completed", habitID, map[string]any{
		"day":       payload.Day,
		"completed": payload.Completed,
	})
	return record, nil
}

// GetHabitStreaks recomputes streak metrics for every active habit.
func (e *Engine) GetHabitStreaks(ctx context.Context, userID string) ([]types.HabitStreak, error) {
	habits, err := e.store.ListHabits(ctx, userID, true)
	if err != nil {
		return nil, err
	}

	today := types.DayOf(e.now().UTC())
	streaks := make([]types.HabitStreak, 0, len(habits))
	for _, h := range habits {
		records, err := e.store.ListCompletions(ctx, h.ID, 0)
		if err != nil {
			return nil, err
		}
		s := streak.Compute(records, today, streakWindowDays)
		s.HabitID = h.ID
		s.HabitName = h.Name
		streaks = append(streaks, s)
	}
	return streaks, nil
}

func (e *Engine) getOwnedHabit(ctx context.Context, userID, habitID string) (*types.Habit, error) {
	habit, err := e.store.GetHabit(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, store.ErrNotFound
	}
	return habit, nil
}

// checkStackCycle walks the stack chain upward from the proposed
// parent. Reaching the habit being edited means the edit would close a
// loop.
func (e *Engine) checkStackCycle(ctx context.Context, userID, habitID, parentID string) error {
	seen := map[string]bool{habitID: true}
	current := parentID
	for current != "" {
		if seen[current] {
			return store.ErrHabitCycle
		}
		seen[current] = true

		parent, err := e.store.GetHabit(ctx, current)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return store.ErrNotFound
			}
			return err
		}
		if parent.UserID != userID {
			return store.ErrNotFound
		}
		current = parent.StackedAfter
	}
	return nil
}
