package assessment

import (
	"errors"
	"testing"
)

// --- Transition graph ---

func TestCanTransition_ValidEdges(t *testing.T) {
	valid := []struct{ from, to State }{
		{StateDraft, StateInProgress},
		{StateInProgress, StateUnderReview},
		{StateUnderReview, StateCompleted},
		{StateUnderReview, StateInProgress},
		{StateCompleted, StateInProgress},
	}
	for _, tc := range valid {
		if err := CanTransition(tc.from, tc.to); err != nil {
			t.Errorf("CanTransition(%s, %s) = %v, want allowed", tc.from, tc.to, err)
		}
	}
}

func TestCanTransition_InvalidEdges(t *testing.T) {
	invalid := []struct{ from, to State }{
		{StateDraft, StateUnderReview},
		{StateDraft, StateCompleted},
		{StateInProgress, StateCompleted},
		{StateInProgress, StateDraft},
		{StateUnderReview, StateDraft},
		{StateCompleted, StateUnderReview},
		{StateCompleted, StateDraft},
	}
	for _, tc := range invalid {
		err := CanTransition(tc.from, tc.to)
		var invalidErr *InvalidStateTransitionError
		if !errors.As(err, &invalidErr) {
			t.Errorf("CanTransition(%s, %s) = %v, want InvalidStateTransitionError", tc.from, tc.to, err)
			continue
		}
		if invalidErr.From != tc.from || invalidErr.To != tc.to {
			t.Errorf("error fields = %s→%s, want %s→%s", invalidErr.From, invalidErr.To, tc.from, tc.to)
		}
	}
}

func TestCanTransition_UnknownTarget(t *testing.T) {
	if err := CanTransition(StateDraft, "archived"); err == nil {
		t.Error("expected error for unknown target state")
	}
}

func TestFrozen(t *testing.T) {
	if StateDraft.Frozen() || StateInProgress.Frozen() {
		t.Error("draft and in_progress should not be frozen")
	}
	if !StateUnderReview.Frozen() || !StateCompleted.Frozen() {
		t.Error("under_review and completed should be frozen")
	}
}
