package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hyperengineering/cadence/internal/performance"
	"github.com/hyperengineering/cadence/internal/store"
	"github.com/hyperengineering/cadence/internal/types"
)

// GenerateRoutine produces the routine for (user, day), or returns the
// existing one unchanged. Concurrent requests for the same (user, day)
// are collapsed into a single generation.
func (e *Engine) GenerateRoutine(ctx context.Context, userID string, req types.GenerateRequest) (*types.RoutineResult, error) {
	day, err := types.ParseDay(req.Day)
	if err != nil {
		return nil, err
	}

	key := userID + "|" + string(day)
	v, err, _ := e.flight.Do(key, func() (any, error) {
		return e.generateRoutine(ctx, userID, day, req.Overrides)
	})
	if err != nil {
		return nil, err
	}
	return v.(*types.RoutineResult), nil
}

func (e *Engine) generateRoutine(ctx context.Context, userID string, day types.Day, overrides *types.GenerateOverrides) (*types.RoutineResult, error) {
	existing, err := e.store.GetRoutine(ctx, userID, day)
	if err == nil {
		return existingResult(existing), nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	profile, err := e.store.GetProfile(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, store.ErrProfileIncomplete
	}
	if err != nil {
		return nil, err
	}
	if profile.WakeTime == "" || profile.SleepTime == "" || profile.AvailableHours <= 0 {
		return nil, store.ErrProfileIncomplete
	}

	snap := e.snapshot(ctx, userID, day)
	complexity := performance.Classify(&snap)

	// Pending adaptations queued for this day bias the tier before
	// generation. They stay pending until the routine they shaped is
	// saved, so a failed generation can retry them.
	pending, err := e.store.ListPendingAdaptations(ctx, userID, day)
	if err != nil {
		slog.Warn("pending adaptations unavailable", "user_id", userID, "error", err)
		pending = nil
	}

	applied := make([]types.RoutineAdaptation, 0, len(pending))
	descriptions := make([]string, 0, len(pending))
	for _, p := range pending {
		switch p.Adaptation.Type {
		case types.AdaptSimplify:
			complexity = performance.Simplify(complexity)
		case types.AdaptIncreaseComplexity:
			complexity = performance.Escalate(complexity)
		}
		applied = append(applied, p.Adaptation)
		descriptions = append(descriptions, p.Adaptation.Description)
	}

	segments, estimated, err := e.generator.Generate(*profile, overrides, day)
	if err != nil {
		return nil, err
	}

	r := &types.DailyRoutine{
		UserID:             userID,
		Day:                day,
		Segments:           segments,
		Complexity:         complexity,
		AdaptationsApplied: descriptions,
		EstimatedMinutes:   estimated,
		CreatedAt:          e.now().UTC(),
	}
	if err := e.store.InsertRoutine(ctx, r); err != nil {
		// Another writer won the (user, day) slot. Return its routine.
		if errors.Is(err, store.ErrRoutineExists) {
			current, gerr := e.store.GetRoutine(ctx, userID, day)
			if gerr != nil {
				return nil, gerr
			}
			return existingResult(current), nil
		}
		return nil, err
	}

	if len(pending) > 0 {
		ids := make([]string, len(pending))
		for i, p := range pending {
			ids[i] = p.ID
		}
		if err := e.store.MarkAdaptationsConsumed(ctx, ids); err != nil {
			slog.Warn("adaptations not marked consumed", "user_id", userID, "error", err)
		}
	}

	e.appendEvent(ctx, userID, "routine.generated", r.ID, map[string]any{
		"day":         string(day),
		"level":       string(complexity.Level),
		"adaptations": len(applied),
	})

	return &types.RoutineResult{
		Routine:            *r,
		Complexity:         complexity,
		AdaptationsApplied: applied,
		EstimatedMinutes:   estimated,
	}, nil
}

func existingResult(r *types.DailyRoutine) *types.RoutineResult {
	return &types.RoutineResult{
		Routine:            *r,
		Complexity:         r.Complexity,
		AdaptationsApplied: []types.RoutineAdaptation{},
		EstimatedMinutes:   r.EstimatedMinutes,
		Existing:           true,
	}
}

// GetRoutineForDay returns the user's routine for the given day.
func (e *Engine) GetRoutineForDay(ctx context.Context, userID, dayStr string) (*types.DailyRoutine, error) {
	day, err := types.ParseDay(dayStr)
	if err != nil {
		return nil, err
	}
	return e.store.GetRoutine(ctx, userID, day)
}

// UpdateSegment records segment completion and focus quality. When the
// last open segment completes, the routine itself is marked completed.
func (e *Engine) UpdateSegment(ctx context.Context, userID, routineID, segmentID string, update types.SegmentUpdate) (*types.RoutineSegment, error) {
	r, err := e.store.GetRoutineByID(ctx, routineID)
	if err != nil {
		return nil, err
	}
	if r.UserID != userID {
		return nil, store.ErrNotFound
	}

	seg, err := e.store.UpdateSegment(ctx, routineID, segmentID, update)
	if err != nil {
		return nil, err
	}

	if update.Completed && !r.Completed {
		all := true
		for _, s := range r.Segments {
			if s.ID != segmentID && !s.Completed {
				all = false
				break
			}
		}
		if all {
			if err := e.store.SetRoutineCompleted(ctx, routineID, true); err != nil {
				slog.Warn("routine completion flag not set", "routine_id", routineID, "error", err)
			}
		}
	}

	return seg, nil
}
