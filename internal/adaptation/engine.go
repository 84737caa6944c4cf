package adaptation

import (
	"log/slog"
	"sort"

	"github.com/hyperengineering/cadence/internal/types"
)

// Engine runs all registered rules against a ReviewContext and collects
// the resulting adaptation directives.
type Engine struct {
	rules []Rule
}

// NewEngine creates an engine with all built-in rules registered.
func NewEngine() *Engine {
	return &Engine{
		rules: []Rule{
			LowEnergy,
			LowMood,
			LowCompletion,
			HighPerformance,
			MissedTaskReasons,
			InsightSignals,
		},
	}
}

// Analyze executes every rule and returns the collected directives in
// rule order. Analysis is best-effort: a panicking rule yields an empty
// result instead of failing the enclosing review operation. Consumers
// wanting priority order must sort by impact themselves.
func (e *Engine) Analyze(ctx *ReviewContext) (out []types.RoutineAdaptation) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("adaptation analysis panicked", "error", r)
			out = nil
		}
	}()

	for _, rule := range e.rules {
		out = append(out, rule(ctx)...)
	}
	return out
}

// SortByImpact returns a copy sorted by impact score, highest first.
func SortByImpact(adaptations []types.RoutineAdaptation) []types.RoutineAdaptation {
	sorted := make([]types.RoutineAdaptation, len(adaptations))
	copy(sorted, adaptations)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ImpactScore > sorted[j].ImpactScore
	})
	return sorted
}
