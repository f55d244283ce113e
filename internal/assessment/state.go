package assessment

import "fmt"

// --- Lifecycle state machine ---
//
// draft → in_progress → under_review → completed, with explicit reopen back
// to in_progress from under_review or completed. Submission (in_progress →
// under_review) freezes active-set recomputation from intake changes; reopen
// thaws it. No other transitions are valid.

// State is an assessment's lifecycle state.
type State string

const (
	StateDraft       State = "draft"
	StateInProgress  State = "in_progress"
	StateUnderReview State = "under_review"
	StateCompleted   State = "completed"
)

var validStates = map[State]bool{
	StateDraft:       true,
	StateInProgress:  true,
	StateUnderReview: true,
	StateCompleted:   true,
}

// ValidateState returns an error if the state is not recognized.
func ValidateState(s State) error {
	if !validStates[s] {
		return fmt.Errorf("invalid assessment state %q", s)
	}
	return nil
}

// validTransitions is the allowed transition graph.
var validTransitions = map[State][]State{
	StateDraft:       {StateInProgress},
	StateInProgress:  {StateUnderReview},
	StateUnderReview: {StateCompleted, StateInProgress},
	StateCompleted:   {StateInProgress},
}

// InvalidStateTransitionError reports a transition outside the allowed graph.
// Rejected synchronously; never silently ignored.
type InvalidStateTransitionError struct {
	From State
	To   State
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("invalid state transition %s → %s", e.From, e.To)
}

// CompletionBlockedError reports a completion attempt with unresolved
// critical gaps and no reviewer override.
type CompletionBlockedError struct {
	CriticalGaps int
}

func (e *CompletionBlockedError) Error() string {
	return fmt.Sprintf("cannot complete assessment: %d unresolved critical gap(s); resolve them or complete with a reviewer override", e.CriticalGaps)
}

// CanTransition checks the transition graph. It does not apply guards
// (completion requires zero critical gaps or an override, see
// Engine.Transition).
func CanTransition(from, to State) error {
	if err := ValidateState(to); err != nil {
		return err
	}
	for _, next := range validTransitions[from] {
		if next == to {
			return nil
		}
	}
	return &InvalidStateTransitionError{From: from, To: to}
}

// Frozen reports whether the state freezes active-set recomputation from
// intake changes.
func (s State) Frozen() bool {
	return s == StateUnderReview || s == StateCompleted
}
