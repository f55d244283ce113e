package assessment

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/recertlabs/recert/internal/catalog"
	"github.com/recertlabs/recert/internal/intake"
	"github.com/recertlabs/recert/internal/scoring"
	"github.com/recertlabs/recert/internal/selection"
)

// Engine evaluates assessments against one catalog (standard version).
// It is stateless and safe for concurrent use: every method computes over
// the assessment passed in. Callers serialize mutations per assessment.
type Engine struct {
	cat *catalog.Catalog
}

// NewEngine creates an engine bound to a loaded catalog.
func NewEngine(cat *catalog.Catalog) *Engine {
	return &Engine{cat: cat}
}

// Catalog returns the catalog the engine evaluates against.
func (e *Engine) Catalog() *catalog.Catalog { return e.cat }

// Create builds a new draft assessment with its initial question selection.
func (e *Engine) Create(facilityName string, fact intake.Fact) (*Assessment, error) {
	if strings.TrimSpace(facilityName) == "" {
		return nil, fmt.Errorf("facility name is required")
	}
	if err := fact.Validate(); err != nil {
		return nil, fmt.Errorf("invalid intake: %w", err)
	}

	now := timeNow().UTC().Format(timeLayout)
	a := &Assessment{
		ID:             uuid.NewString(),
		FacilityName:   facilityName,
		CatalogVersion: e.cat.Version(),
		State:          StateDraft,
		Intake:         fact.Clone(),
		Answers:        make(map[string]*Answer),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	sel := selection.Select(e.cat, a.Intake, nil)
	a.ActiveIDs = sel.ActiveIDs
	if sel.Mapping.NeedsManualReview {
		a.Flag(FlagManualReview, "",
			"intake indicates data-bearing devices or focus materials but no appendix rule fired")
	}
	return a, nil
}

// RecordAnswer validates and records one answer, deriving its compliance and
// score, then refreshes the active set (answers can switch dependent
// questions on or off). The first answer moves a draft to in_progress.
// Completed assessments must be reopened first.
func (e *Engine) RecordAnswer(a *Assessment, questionID, rawValue, notes string, evidenceRefs []string) (*Answer, error) {
	if a.State == StateCompleted {
		return nil, &InvalidStateTransitionError{From: StateCompleted, To: StateInProgress}
	}

	q, ok := e.cat.Question(questionID)
	if !ok {
		return nil, fmt.Errorf("unknown question %q", questionID)
	}
	if !a.IsActive(questionID) {
		if _, answered := a.Answers[questionID]; !answered {
			return nil, fmt.Errorf("question %q is not in the active set", questionID)
		}
		// Updating an orphaned answer is allowed: the record is retained and
		// may re-enter scoring when the question is restored.
	}

	value, err := catalog.ParseAnswerValue(rawValue)
	if err != nil {
		return nil, &scoring.InvalidAnswerValueError{QuestionID: questionID, Value: rawValue}
	}
	sr, err := scoring.Score(questionID, value, q.Weight)
	if err != nil {
		return nil, err
	}

	now := timeNow().UTC().Format(timeLayout)
	ans, exists := a.Answers[questionID]
	if !exists {
		ans = &Answer{QuestionID: questionID, AnsweredAt: now}
		a.Answers[questionID] = ans
	}
	ans.Value = value
	ans.Notes = notes
	ans.EvidenceRefs = append([]string(nil), evidenceRefs...)
	ans.Compliance = sr.Compliance
	ans.Score = sr.Score
	ans.MaxScore = sr.MaxScore
	ans.UpdatedAt = now
	a.UpdatedAt = now

	if a.State == StateDraft {
		if err := e.transitionTo(a, StateInProgress); err != nil {
			return nil, err
		}
	}

	// Answer-driven reselection. Frozen states keep the set as submitted.
	if !a.State.Frozen() {
		e.refreshSelection(a)
	}
	return ans, nil
}

// UpdateIntake replaces the intake snapshot. Before submission this triggers
// reselection; after submission the new facts are stored but the active set
// stays frozen and a review flag records the change.
func (e *Engine) UpdateIntake(a *Assessment, fact intake.Fact) (selection.ReselectResult, error) {
	if err := fact.Validate(); err != nil {
		return selection.ReselectResult{}, fmt.Errorf("invalid intake: %w", err)
	}

	a.Intake = fact.Clone()
	a.UpdatedAt = timeNow().UTC().Format(timeLayout)

	if a.State.Frozen() {
		a.Flag(FlagIntakeChanged, "",
			"intake edited after submission; active set frozen until reopen")
		return selection.ReselectResult{Selection: selection.Selection{ActiveIDs: a.ActiveIDs}}, nil
	}
	return e.refreshSelection(a), nil
}

// Reselect recomputes the active question set from current intake and
// answers. Idempotent: a second call with unchanged inputs is a no-op diff.
func (e *Engine) Reselect(a *Assessment) (selection.ReselectResult, error) {
	if a.State.Frozen() {
		return selection.ReselectResult{}, fmt.Errorf("active set is frozen in state %s; reopen the assessment first", a.State)
	}
	return e.refreshSelection(a), nil
}

// refreshSelection runs reselection, updates the cached active set, toggles
// orphan markers, and records orphan notices. Answers are never deleted.
func (e *Engine) refreshSelection(a *Assessment) selection.ReselectResult {
	res := selection.Reselect(e.cat, a.Intake, a.AnswerValues(), a.ActiveIDs)
	a.ActiveIDs = res.ActiveIDs

	for _, id := range res.NewlyOrphaned {
		if ans := a.Answers[id]; ans != nil && !ans.Orphaned {
			ans.Orphaned = true
			a.Flag(FlagOrphanedAnswer, id, "answered question left the active set; answer retained but excluded from scoring")
		}
	}
	for _, id := range res.NewlyRestored {
		if ans := a.Answers[id]; ans != nil {
			ans.Orphaned = false
		}
	}
	return res
}

// Aggregate scores the assessment as it stands: category rollups, overall
// percentage, gap list, readiness verdict. Pure with respect to the
// assessment, so it is safe to call at any time, including from dashboards.
func (e *Engine) Aggregate(a *Assessment) (scoring.Result, error) {
	answers := selection.EffectiveAnswers(e.cat, a.Intake, a.AnswerValues())
	return scoring.Aggregate(e.cat, a.ActiveIDs, answers, a.EvidenceByQuestion(), a.State.Frozen())
}

// Transition moves the assessment to the target state.
//
// under_review → completed is guarded: it requires zero unresolved critical
// gaps, or override with a recorded justification. Reopening a frozen
// assessment re-runs selection so intake edits made during review take
// effect.
func (e *Engine) Transition(a *Assessment, target State, override bool, justification string) error {
	if err := CanTransition(a.State, target); err != nil {
		return err
	}

	if a.State == StateUnderReview && target == StateCompleted {
		res, err := e.Aggregate(a)
		if err != nil {
			return err
		}
		if res.CriticalGapCount > 0 {
			if !override {
				return &CompletionBlockedError{CriticalGaps: res.CriticalGapCount}
			}
			if strings.TrimSpace(justification) == "" {
				return fmt.Errorf("completion override requires a justification")
			}
			a.Flag(FlagCompletionOverride, "",
				fmt.Sprintf("completed with %d unresolved critical gap(s): %s", res.CriticalGapCount, justification))
		}
	}

	wasFrozen := a.State.Frozen()
	if err := e.transitionTo(a, target); err != nil {
		return err
	}
	if wasFrozen && target == StateInProgress {
		e.refreshSelection(a)
	}
	return nil
}

func (e *Engine) transitionTo(a *Assessment, target State) error {
	if err := CanTransition(a.State, target); err != nil {
		return err
	}
	a.State = target
	a.UpdatedAt = timeNow().UTC().Format(timeLayout)
	return nil
}
