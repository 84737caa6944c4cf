// Package service orchestrates the routine engine: it wires the store,
// the routine generator, the adaptation rules, and the insight
// generator behind one Engine type that the API layer calls.
package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/hyperengineering/cadence/internal/adaptation"
	"github.com/hyperengineering/cadence/internal/insight"
	"github.com/hyperengineering/cadence/internal/performance"
	"github.com/hyperengineering/cadence/internal/routine"
	"github.com/hyperengineering/cadence/internal/store"
	"github.com/hyperengineering/cadence/internal/types"
)

const (
	// routineHistoryDays bounds the routine window feeding a
	// performance snapshot.
	routineHistoryDays = 14

	// reviewHistoryLimit bounds the review window feeding a
	// performance snapshot.
	reviewHistoryLimit = 7

	// streakWindowDays is the trailing window for habit consistency.
	streakWindowDays = 30
)

// Engine coordinates stores and generators for all engine operations.
type Engine struct {
	store     store.Store
	generator *routine.Generator
	rules     *adaptation.Engine
	insights  insight.Generator
	now       func() time.Time
	flight    singleflight.Group
}

// New creates an Engine backed by the given store and insight generator.
func New(s store.Store, insights insight.Generator) *Engine {
	return &Engine{
		store:     s,
		generator: routine.New(),
		rules:     adaptation.NewEngine(),
		insights:  insights,
		now:       time.Now,
	}
}

// Stats reports store-level counts for the health endpoint.
func (e *Engine) Stats(ctx context.Context) (*types.StoreStats, error) {
	return e.store.GetStats(ctx)
}

// GetProfile returns the user's schedule profile.
func (e *Engine) GetProfile(ctx context.Context, userID string) (*types.UserProfile, error) {
	return e.store.GetProfile(ctx, userID)
}

// PutProfile replaces the user's schedule profile.
func (e *Engine) PutProfile(ctx context.Context, userID string, profile types.UserProfile) (*types.UserProfile, error) {
	profile.UserID = userID
	if err := e.store.PutProfile(ctx, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// snapshot assembles a performance snapshot from recent routines,
// streaks, and reviews. Each source degrades independently: a store
// failure is logged and that input stays empty, leaving the
// aggregator's defaults in place.
func (e *Engine) snapshot(ctx context.Context, userID string, day types.Day) types.PerformanceSnapshot {
	var in performance.Inputs

	since := types.DayOf(day.Time().AddDate(0, 0, -routineHistoryDays))
	routines, err := e.store.ListRoutines(ctx, userID, since)
	if err != nil {
		slog.Warn("routine history unavailable", "user_id", userID, "error", err)
	} else {
		in.Routines = routines
	}

	streaks, err := e.GetHabitStreaks(ctx, userID)
	if err != nil {
		slog.Warn("habit streaks unavailable", "user_id", userID, "error", err)
	} else {
		in.Streaks = streaks
	}

	reviews, err := e.store.LatestReviews(ctx, userID, reviewHistoryLimit)
	if err != nil {
		slog.Warn("review history unavailable", "user_id", userID, "error", err)
	} else {
		in.Reviews = reviews
	}

	return performance.Aggregate(in)
}

// appendEvent records a behavior event. The event log is observational
// only; failures are logged and never surfaced to the caller.
func (e *Engine) appendEvent(ctx context.Context, userID, kind, entityID string, payload any) {
	var raw json.RawMessage
	if payload != nil {
		if b, err := json.Marshal(payload); err == nil {
			raw = b
		}
	}

	event := &types.BehaviorEvent{
		UserID:    userID,
		Kind:      kind,
		EntityID:  entityID,
		Payload:   raw,
		CreatedAt: e.now().UTC(),
	}
	if _, err := e.store.AppendEvent(ctx, event); err != nil {
		slog.Warn("behavior event dropped", "kind", kind, "user_id", userID, "error", err)
	}
}
