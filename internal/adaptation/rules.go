package adaptation

import (
	"fmt"
	"strings"

	"github.com/hyperengineering/cadence/internal/types"
)

// ReviewContext carries everything the rules inspect for one analysis.
type ReviewContext struct {
	Review   *types.EveningReview
	Snapshot *types.PerformanceSnapshot
}

// Rule examines the review context and produces zero or more
// adaptation directives. Rules are independent; several may fire for
// the same review.
type Rule func(ctx *ReviewContext) []types.RoutineAdaptation

// LowEnergy simplifies tomorrow when tonight's energy is depleted.
func LowEnergy(ctx *ReviewContext) []types.RoutineAdaptation {
	if ctx.Review == nil || ctx.Review.EnergyLevel > 3 {
		return nil
	}
	return []types.RoutineAdaptation{{
		Type:        types.AdaptSimplify,
		Description: "Reduce tomorrow's workload to rebuild energy reserves",
		Reason:      fmt.Sprintf("energy level %d indicates depletion", ctx.Review.EnergyLevel),
		ImpactScore: 0.8,
	}}
}

// LowMood shifts demanding work away from low-mood periods.
func LowMood(ctx *ReviewContext) []types.RoutineAdaptation {
	if ctx.Review == nil || ctx.Review.Mood > 4 {
		return nil
	}
	return []types.RoutineAdaptation{{
		Type:        types.AdaptAdjustTiming,
		Description: "Move demanding work away from low-mood periods of the day",
		Reason:      fmt.Sprintf("mood %d suggests timing is working against you", ctx.Review.Mood),
		ImpactScore: 0.6,
	}}
}

// LowCompletion simplifies when less than half of recent routines
// completed.
func LowCompletion(ctx *ReviewContext) []types.RoutineAdaptation {
	if ctx.Snapshot == nil || ctx.Snapshot.CompletionRate >= 0.5 {
		return nil
	}
	return []types.RoutineAdaptation{{
		Type:        types.AdaptSimplify,
		Description: "Cut routine scope until completion stabilizes",
		Reason:      fmt.Sprintf("completion rate %.0f%% is below half", ctx.Snapshot.CompletionRate*100),
		ImpactScore: 0.9,
	}}
}

// HighPerformance escalates when completion is near-perfect and energy
// is high.
func HighPerformance(ctx *ReviewContext) []types.RoutineAdaptation {
	if ctx.Snapshot == nil || ctx.Review == nil {
		return nil
	}
	if ctx.Snapshot.CompletionRate <= 0.9 || ctx.Review.EnergyLevel < 7 {
		return nil
	}
	return []types.RoutineAdaptation{{
		Type:        types.AdaptIncreaseComplexity,
		Description: "Add challenge: current routine is comfortably below capacity",
		Reason: fmt.Sprintf("completion rate %.0f%% with energy %d leaves headroom",
			ctx.Snapshot.CompletionRate*100, ctx.Review.EnergyLevel),
		ImpactScore: 0.7,
	}}
}

var (
	timeKeywords   = []string{"time", "schedule", "late", "ran out", "busy", "rushed", "meeting"}
	energyKeywords = []string{"tired", "energy", "exhaust", "fatigue", "drained", "sleepy"}
)

// MissedTaskReasons inspects free-text reasons attached to missed
// tasks. Time-pressure language adjusts timing, fatigue language
// simplifies, and anything else falls back to a gentle simplify.
func MissedTaskReasons(ctx *ReviewContext) []types.RoutineAdaptation {
	if ctx.Review == nil || len(ctx.Review.MissedReasons) == 0 {
		return nil
	}

	var timeHit, energyHit, otherHit bool
	for _, reason := range ctx.Review.MissedReasons {
		lower := strings.ToLower(reason)
		switch {
		case containsAny(lower, timeKeywords):
			timeHit = true
		case containsAny(lower, energyKeywords):
			energyHit = true
		default:
			otherHit = true
		}
	}

	var out []types.RoutineAdaptation
	if timeHit {
		out = append(out, types.RoutineAdaptation{
			Type:        types.AdaptAdjustTiming,
			Description: "Reschedule blocks that collided with other commitments",
			Reason:      "missed tasks cite time or scheduling pressure",
			ImpactScore: 0.7,
		})
	}
	if energyHit {
		out = append(out, types.RoutineAdaptation{
			Type:        types.AdaptSimplify,
			Description: "Shorten blocks where fatigue cut tasks off",
			Reason:      "missed tasks cite low energy or fatigue",
			ImpactScore: 0.8,
		})
	}
	if otherHit && !timeHit && !energyHit {
		out = append(out, types.RoutineAdaptation{
			Type:        types.AdaptSimplify,
			Description: "Trim routine scope to reduce misses",
			Reason:      "tasks were missed without a clear schedule or energy cause",
			ImpactScore: 0.6,
		})
	}
	return out
}

// InsightSignals scans the free-text insights for load signals.
func InsightSignals(ctx *ReviewContext) []types.RoutineAdaptation {
	if ctx.Review == nil || ctx.Review.Insights == "" {
		return nil
	}
	lower := strings.ToLower(ctx.Review.Insights)

	var out []types.RoutineAdaptation
	if strings.Contains(lower, "overwhelmed") || strings.Contains(lower, "too much") {
		out = append(out, types.RoutineAdaptation{
			Type:        types.AdaptSimplify,
			Description: "Lighten the routine: you described the load as overwhelming",
			Reason:      "insights mention feeling overwhelmed",
			ImpactScore: 0.9,
		})
	}
	if strings.Contains(lower, "morning") &&
		containsAny(lower, []string{"hard", "difficult", "struggle", "slow"}) {
		out = append(out, types.RoutineAdaptation{
			Type:        types.AdaptAdjustTiming,
			Description: "Shift demanding work out of the early morning",
			Reason:      "insights describe mornings as difficult",
			ImpactScore: 0.7,
		})
	}
	if strings.Contains(lower, "too easy") {
		out = append(out, types.RoutineAdaptation{
			Type:        types.AdaptIncreaseComplexity,
			Description: "Raise the challenge level of daily blocks",
			Reason:      "insights describe the routine as too easy",
			ImpactScore: 0.8,
		})
	}
	return out
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
