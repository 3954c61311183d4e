package match

import (
	"slices"

	"github.com/poiesic/faqmatch/core"
)

// Ranking is the ordered head of a scored catalog.
type Ranking struct {
	// Top holds up to k entries by fused score descending; ties keep catalog order.
	Top []core.ScoredEntry

	// Confident is false when the best fused score is below the threshold.
	Confident bool
}

// Best returns the highest ranked entry.
func (r Ranking) Best() core.ScoredEntry {
	return r.Top[0]
}

// Rank stably sorts scored by fused score descending and keeps the first
// min(k, len(scored)) entries. A k below 1 is treated as 1.
// The input slice is not modified.
func Rank(scored []core.ScoredEntry, k int, threshold float64) (Ranking, error) {
	if len(scored) == 0 {
		return Ranking{}, core.ErrEmptyCatalog
	}
	if k < 1 {
		k = 1
	}

	sorted := slices.Clone(scored)
	slices.SortStableFunc(sorted, func(a, b core.ScoredEntry) int {
		switch {
		case a.FusedScore > b.FusedScore:
			return -1
		case a.FusedScore < b.FusedScore:
			return 1
		default:
			return 0
		}
	})

	top := sorted[:min(k, len(sorted))]
	return Ranking{
		Top:       slices.Clip(top),
		Confident: top[0].FusedScore >= threshold,
	}, nil
}
