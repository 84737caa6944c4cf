package insight

import (
	"context"
	"fmt"

	"github.com/hyperengineering/cadence/internal/types"
)

// Compile-time interface check
var _ Generator = (*Static)(nil)

// Static is a deterministic, rule-based insight generator. It serves as
// the fallback when no AI provider is configured and in dev mode.
type Static struct{}

// NewStatic creates a rule-based insight generator.
func NewStatic() *Static {
	return &Static{}
}

// Insights derives short observations from the review's own numbers.
// It never fails.
func (s *Static) Insights(_ context.Context, review types.EveningReview) ([]string, error) {
	var out []string

	done := len(review.Accomplished)
	missed := len(review.Missed)
	total := done + missed

	switch {
	case total == 0:
		out = append(out, "No tasks were recorded today; tomorrow's routine is a fresh start.")
	case missed == 0:
		out = append(out, fmt.Sprintf("You completed all %d planned tasks today.", done))
	case done == 0:
		out = append(out, "Nothing planned got finished today; consider a lighter routine tomorrow.")
	default:
		out = append(out, fmt.Sprintf("You completed %d of %d planned tasks.", done, total))
	}

	if review.EnergyLevel >= 8 && review.Mood >= 8 {
		out = append(out, "High energy and mood: a good day to bank momentum.")
	}
	if review.EnergyLevel <= 3 {
		out = append(out, "Energy ran low; protect recovery time in tomorrow's schedule.")
	}
	if review.Mood <= 3 {
		out = append(out, "Mood was rough today; keep tomorrow's expectations kind.")
	}

	return out, nil
}

// Name identifies the generator in logs and health output.
func (s *Static) Name() string {
	return "static"
}
