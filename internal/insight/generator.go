package insight

import (
	"context"

	"github.com/hyperengineering/cadence/internal/types"
)

// Generator defines the interface contract for review-insight
// generation services. Implementations are best-effort enrichment:
// callers must treat an error as "no insights", never as a failure of
// the review itself.
type Generator interface {
	Insights(ctx context.Context, review types.EveningReview) ([]string, error)
	Name() string
}
