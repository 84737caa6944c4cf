package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hyperengineering/cadence/internal/adaptation"
	"github.com/hyperengineering/cadence/internal/performance"
	"github.com/hyperengineering/cadence/internal/store"
	"github.com/hyperengineering/cadence/internal/types"
)

// CreateEveningReview persists the review, then runs best-effort
// enrichment: adaptation dispatch for the next day, insight generation,
// and a behavior event. Each enrichment step degrades on its own; only
// the primary insert can fail the call.
func (e *Engine) CreateEveningReview(ctx context.Context, userID string, input types.NewEveningReview) (*types.ReviewResult, error) {
	day, err := types.ParseDay(input.Day)
	if err != nil {
		return nil, err
	}

	review := &types.EveningReview{
		UserID:        userID,
		Day:           day,
		Accomplished:  input.Accomplished,
		Missed:        input.Missed,
		MissedReasons: input.MissedReasons,
		Tomorrow:      input.Tomorrow,
		Mood:          input.Mood,
		EnergyLevel:   input.EnergyLevel,
		Insights:      input.Insights,
		CreatedAt:     e.now().UTC(),
	}
	if err := e.store.InsertReview(ctx, review); err != nil {
		return nil, err
	}

	result := &types.ReviewResult{
		Review:            *review,
		Adaptations:       []types.RoutineAdaptation{},
		GeneratedInsights: []string{},
	}

	snap := e.snapshot(ctx, userID, day)
	adaptations := adaptation.SortByImpact(e.rules.Analyze(&adaptation.ReviewContext{
		Review:   review,
		Snapshot: &snap,
	}))
	if len(adaptations) > 0 {
		result.Adaptations = adaptations
		e.dispatchAdaptations(ctx, userID, day.Next(), adaptations)
	}

	insights, err := e.insights.Insights(ctx, *review)
	if err != nil {
		slog.Warn("insight generation degraded", "generator", e.insights.Name(), "error", err)
	} else if insights != nil {
		result.GeneratedInsights = insights
	}

	e.appendEvent(ctx, userID, "review.created", review.ID, map[string]any{
		"day":          string(day),
		"mood":         review.Mood,
		"energy_level": review.EnergyLevel,
	})

	return result, nil
}

// dispatchAdaptations routes review adaptations toward the target day.
// When that day's routine already exists the adjustments are applied to
// it directly; otherwise they are queued for the next generation run.
// Dispatch is best-effort and never fails the review.
func (e *Engine) dispatchAdaptations(ctx context.Context, userID string, target types.Day, adaptations []types.RoutineAdaptation) {
	r, err := e.store.GetRoutine(ctx, userID, target)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slog.Warn("adaptation dispatch degraded", "user_id", userID, "day", string(target), "error", err)
		}
		if err := e.store.QueueAdaptations(ctx, userID, target, adaptations); err != nil {
			slog.Warn("adaptations not queued", "user_id", userID, "day", string(target), "error", err)
		}
		return
	}

	complexity := r.Complexity
	descriptions := r.AdaptationsApplied
	for _, a := range adaptations {
		switch a.Type {
		case types.AdaptSimplify:
			complexity = performance.Simplify(complexity)
		case types.AdaptIncreaseComplexity:
			complexity = performance.Escalate(complexity)
		}
		descriptions = append(descriptions, a.Description)
	}

	if err := e.store.UpdateRoutineAdaptations(ctx, r.ID, complexity, descriptions); err != nil {
		slog.Warn("adaptations not applied to routine", "user_id", userID, "routine_id", r.ID, "error", err)
	}
}

// GetReview returns the user's review for the given day.
func (e *Engine) GetReview(ctx context.Context, userID, dayStr string) (*types.EveningReview, error) {
	day, err := types.ParseDay(dayStr)
	if err != nil {
		return nil, err
	}
	return e.store.GetReview(ctx, userID, day)
}
