package performance

import (
	"github.com/hyperengineering/cadence/internal/types"
)

// Default snapshot values used when an upstream source is missing.
// The aggregator must never block a caller on absent history.
const (
	DefaultCompletionRate   = 0.7
	DefaultConsistencyScore = 0.7
	DefaultRecentFailures   = 2
	DefaultRecentSuccesses  = 5
	DefaultFocusQuality     = 0.6

	// UntaggedFocusQuality applies when routines exist but no segment
	// carries a focus tag.
	UntaggedFocusQuality = 0.5

	// PreferredTypeThreshold is the per-type completion ratio above
	// which an activity type counts as preferred.
	PreferredTypeThreshold = 0.7
)

// focusScale maps focus tags to the fixed numeric scale.
var focusScale = map[types.FocusQuality]float64{
	types.FocusHigh:   1.0,
	types.FocusMedium: 0.6,
	types.FocusLow:    0.2,
}

// Inputs are the upstream sources for one snapshot. Any of them may be
// empty; the aggregator degrades to documented defaults per source.
type Inputs struct {
	Routines []types.DailyRoutine
	Streaks  []types.HabitStreak
	Reviews  []types.EveningReview
}

// Aggregate combines recent routine completions, habit consistency, and
// review signals into a single PerformanceSnapshot. It is pure and
// never fails: missing sources yield defaults instead of errors.
func Aggregate(in Inputs) types.PerformanceSnapshot {
	snap := types.PerformanceSnapshot{
		CompletionRate:      DefaultCompletionRate,
		ConsistencyScore:    DefaultConsistencyScore,
		RecentFailures:      DefaultRecentFailures,
		RecentSuccesses:     DefaultRecentSuccesses,
		AverageFocusQuality: DefaultFocusQuality,
	}

	if len(in.Routines) > 0 {
		snap.CompletionRate = completionRate(in.Routines)
		snap.RecentSuccesses, snap.RecentFailures = completionCounts(in.Routines)
		snap.AverageFocusQuality = averageFocusQuality(in.Routines)
		snap.PreferredActivityTypes = preferredActivityTypes(in.Routines)
	}

	if len(in.Streaks) > 0 {
		snap.ConsistencyScore = consistencyScore(in.Streaks)
	}

	return snap
}

// completionRate is completed routines over total. Zero-length input
// returns 0, never NaN; callers with no routines take the default path
// in Aggregate instead.
func completionRate(routines []types.DailyRoutine) float64 {
	if len(routines) == 0 {
		return 0
	}
	completed := 0
	for _, r := range routines {
		if r.Completed {
			completed++
		}
	}
	return float64(completed) / float64(len(routines))
}

func completionCounts(routines []types.DailyRoutine) (successes, failures int) {
	for _, r := range routines {
		if r.Completed {
			successes++
		} else {
			failures++
		}
	}
	return successes, failures
}

// averageFocusQuality averages segment focus tags on the fixed scale.
// Untagged segments are excluded; no tagged segments at all yields 0.5.
func averageFocusQuality(routines []types.DailyRoutine) float64 {
	var sum float64
	var count int
	for _, r := range routines {
		for _, seg := range r.Segments {
			score, ok := focusScale[seg.FocusQuality]
			if !ok {
				continue
			}
			sum += score
			count++
		}
	}
	if count == 0 {
		return UntaggedFocusQuality
	}
	return sum / float64(count)
}

// consistencyScore averages habit consistency percentages onto [0,1].
func consistencyScore(streaks []types.HabitStreak) float64 {
	var sum float64
	for _, s := range streaks {
		sum += s.ConsistencyPercentage
	}
	return sum / float64(len(streaks)) / 100
}

// preferredActivityTypes returns segment types whose completion ratio
// exceeds the preference threshold across the window.
func preferredActivityTypes(routines []types.DailyRoutine) []types.SegmentType {
	totals := map[types.SegmentType]int{}
	completed := map[types.SegmentType]int{}
	order := []types.SegmentType{}

	for _, r := range routines {
		for _, seg := range r.Segments {
			if _, seen := totals[seg.Type]; !seen {
				order = append(order, seg.Type)
			}
			totals[seg.Type]++
			if seg.Completed {
				completed[seg.Type]++
			}
		}
	}

	var preferred []types.SegmentType
	for _, t := range order {
		ratio := float64(completed[t]) / float64(totals[t])
		if ratio > PreferredTypeThreshold {
			preferred = append(preferred, t)
		}
	}
	return preferred
}
