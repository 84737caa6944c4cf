package store

import "errors"

var (
	ErrNotFound          = errors.New("record not found")
	ErrRoutineExists     = errors.New("routine already exists for day")
	ErrReviewExists      = errors.New("review already exists for day")
	ErrHabitStacked      = errors.New("habit has dependent stacked habits")
	ErrHabitCycle        = errors.New("habit stacking would create a cycle")
	ErrProfileIncomplete = errors.New("user profile incomplete")
)
