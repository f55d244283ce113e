package selection

import (
	"github.com/recertlabs/recert/internal/catalog"
	"github.com/recertlabs/recert/internal/intake"
)

// ReselectResult is the diff between the previous active set and a fresh
// selection. Answers are never deleted by reselection: a question leaving
// scope only orphans its answer, and re-entering scope restores the recorded
// answer to scoring without re-prompting.
type ReselectResult struct {
	Selection
	// NewlyOrphaned lists question ids that left the active set while
	// holding a recorded answer.
	NewlyOrphaned []string `json:"newly_orphaned,omitempty"`
	// NewlyRestored lists question ids that re-entered the active set with
	// a previously recorded answer.
	NewlyRestored []string `json:"newly_restored,omitempty"`
}

// Reselect recomputes the active set against current facts and answers and
// diffs it against the previous one. Calling it twice with the same inputs
// yields the same result.
//
// prevActive is the active set the assessment last derived; answers holds
// recorded assessment answers only (intake-derived screener values are merged
// internally), since only recorded answers can be orphaned or restored.
func Reselect(cat *catalog.Catalog, fact intake.Fact, answers Answers, prevActive []string) ReselectResult {
	next := Select(cat, fact, answers)

	prev := make(map[string]bool, len(prevActive))
	for _, id := range prevActive {
		prev[id] = true
	}
	now := make(map[string]bool, len(next.ActiveIDs))
	for _, id := range next.ActiveIDs {
		now[id] = true
	}

	var orphaned, restored []string
	for _, q := range cat.Questions() {
		_, answered := answers[q.ID]
		if !answered {
			continue
		}
		switch {
		case prev[q.ID] && !now[q.ID]:
			orphaned = append(orphaned, q.ID)
		case !prev[q.ID] && now[q.ID]:
			restored = append(restored, q.ID)
		}
	}

	return ReselectResult{
		Selection:     next,
		NewlyOrphaned: orphaned,
		NewlyRestored: restored,
	}
}
