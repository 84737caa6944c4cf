package performance

import (
	"github.com/hyperengineering/cadence/internal/types"
)

// Tier parameter sets. Each tier carries the structural knobs the
// generator and adaptation step read.
var tierParams = map[types.ComplexityLevel]types.RoutineComplexity{
	types.ComplexitySimple: {
		Level:               types.ComplexitySimple,
		TaskCount:           4,
		DeepWorkBlocks:      1,
		BreakFrequency:      60,
		MultitaskingAllowed: false,
	},
	types.ComplexityModerate: {
		Level:               types.ComplexityModerate,
		TaskCount:           6,
		DeepWorkBlocks:      2,
		BreakFrequency:      90,
		MultitaskingAllowed: false,
	},
	types.ComplexityComplex: {
		Level:               types.ComplexityComplex,
		TaskCount:           8,
		DeepWorkBlocks:      3,
		BreakFrequency:      120,
		MultitaskingAllowed: true,
	},
}

// TierParams returns the structural parameters for a tier.
func TierParams(level types.ComplexityLevel) types.RoutineComplexity {
	return tierParams[level]
}

// Classify maps a snapshot to a complexity tier. It is a pure, total
// decision function evaluated in priority order: struggling users get
// simple, strong performers get complex, everyone else moderate. A nil
// snapshot (first-time user) defaults to moderate without evaluating
// the rules.
func Classify(snap *types.PerformanceSnapshot) types.RoutineComplexity {
	if snap == nil {
		return tierParams[types.ComplexityModerate]
	}

	switch {
	case snap.CompletionRate < 0.6 || snap.RecentFailures > 3:
		return tierParams[types.ComplexitySimple]
	case snap.CompletionRate > 0.8 && snap.ConsistencyScore > 0.75:
		return tierParams[types.ComplexityComplex]
	default:
		return tierParams[types.ComplexityModerate]
	}
}

// Simplify steps an existing complexity down by one clamped increment.
// This prevents a single adaptation from jumping tiers.
func Simplify(current types.RoutineComplexity) types.RoutineComplexity {
	next := current
	next.TaskCount = maxInt(types.MinTaskCount, current.TaskCount-2)
	next.DeepWorkBlocks = maxInt(types.MinDeepWorkBlocks, current.DeepWorkBlocks-1)
	next.BreakFrequency = maxInt(types.MinBreakFrequency, current.BreakFrequency-30)
	next.MultitaskingAllowed = false
	next.Level = nearestLevel(next)
	return next
}

// Escalate steps an existing complexity up by one clamped increment.
func Escalate(current types.RoutineComplexity) types.RoutineComplexity {
	next := current
	next.TaskCount = minInt(types.MaxTaskCount, current.TaskCount+2)
	next.DeepWorkBlocks = minInt(types.MaxDeepWorkBlocks, current.DeepWorkBlocks+1)
	next.BreakFrequency = minInt(types.MaxBreakFrequency, current.BreakFrequency+30)
	next.Level = nearestLevel(next)
	next.MultitaskingAllowed = next.Level == types.ComplexityComplex
	return next
}

// nearestLevel labels adjusted parameters with the closest tier by
// task count.
func nearestLevel(c types.RoutineComplexity) types.ComplexityLevel {
	switch {
	case c.TaskCount <= tierParams[types.ComplexitySimple].TaskCount:
		return types.ComplexitySimple
	case c.TaskCount >= tierParams[types.ComplexityComplex].TaskCount:
		return types.ComplexityComplex
	default:
		return types.ComplexityModerate
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
