// Package assessment holds the per-assessment record, its lifecycle state
// machine, and the engine facade that ties mapping, selection, and scoring
// together.
//
// The engine holds no long-lived state of its own: every operation is a
// synchronous computation over the assessment snapshot handed in. The
// persistence collaborator serializes writes per assessment; the engine's
// contract is that selection and aggregation are idempotent and
// order-independent given a consistent answer map.
package assessment

import (
	"github.com/recertlabs/recert/internal/catalog"
	"github.com/recertlabs/recert/internal/intake"
	"github.com/recertlabs/recert/internal/scoring"
)

// Answer is one recorded response. Score, MaxScore, and Compliance are
// engine-derived, never user-entered. An orphaned answer belongs to a
// question currently out of scope: retained, excluded from aggregation,
// flagged for reviewer attention, never deleted.
type Answer struct {
	QuestionID   string                  `json:"question_id"`
	Value        catalog.AnswerValue     `json:"value"`
	Notes        string                  `json:"notes,omitempty"`
	EvidenceRefs []string                `json:"evidence_refs,omitempty"`
	Compliance   scoring.ComplianceLevel `json:"compliance"`
	Score        float64                 `json:"score"`
	MaxScore     float64                 `json:"max_score"`
	Orphaned     bool                    `json:"orphaned"`
	AnsweredAt   string                  `json:"answered_at"`
	UpdatedAt    string                  `json:"updated_at"`
}

// --- Review flags ---

// FlagKind labels a review flag. Flags accumulate on the assessment and
// never block the pipeline; they exist for reviewer attention.
type FlagKind string

const (
	// FlagManualReview: intake facts imply appendix applicability but no
	// mapping rule fired.
	FlagManualReview FlagKind = "manual_review"
	// FlagOrphanedAnswer: reselection removed an answered question from scope.
	FlagOrphanedAnswer FlagKind = "orphaned_answer"
	// FlagIntakeChanged: intake was edited after submission; the active set
	// stays frozen until the assessment is reopened.
	FlagIntakeChanged FlagKind = "intake_changed_after_submission"
	// FlagCompletionOverride: a reviewer completed the assessment despite
	// unresolved critical gaps, with recorded justification.
	FlagCompletionOverride FlagKind = "completion_override"
)

// ReviewFlag is one accumulated reviewer-attention item.
type ReviewFlag struct {
	Kind       FlagKind `json:"kind"`
	QuestionID string   `json:"question_id,omitempty"`
	Message    string   `json:"message"`
	CreatedAt  string   `json:"created_at"`
}

// Assessment is the root per-assessment record.
type Assessment struct {
	ID             string             `json:"id"`
	FacilityName   string             `json:"facility_name"`
	CatalogVersion string             `json:"catalog_version"`
	State          State              `json:"state"`
	Intake         intake.Fact        `json:"intake"`
	Answers        map[string]*Answer `json:"answers"`
	// ActiveIDs is the cached active question set, catalog order. Derived,
	// not source of truth: recomputed from intake and answers on change.
	ActiveIDs   []string     `json:"active_ids"`
	ReviewFlags []ReviewFlag `json:"review_flags,omitempty"`
	CreatedAt   string       `json:"created_at"`
	UpdatedAt   string       `json:"updated_at"`
}

// Flag appends a review flag with the current timestamp.
func (a *Assessment) Flag(kind FlagKind, questionID, message string) {
	a.ReviewFlags = append(a.ReviewFlags, ReviewFlag{
		Kind:       kind,
		QuestionID: questionID,
		Message:    message,
		CreatedAt:  timeNow().UTC().Format(timeLayout),
	})
}

// AnswerValues returns the recorded answer values keyed by question id,
// orphaned or not. Whether an answer participates in selection or scoring is
// decided by the active set, not by this map.
func (a *Assessment) AnswerValues() map[string]catalog.AnswerValue {
	out := make(map[string]catalog.AnswerValue, len(a.Answers))
	for id, ans := range a.Answers {
		out[id] = ans.Value
	}
	return out
}

// EvidenceByQuestion reports which answered questions carry at least one
// evidence reference.
func (a *Assessment) EvidenceByQuestion() map[string]bool {
	out := make(map[string]bool, len(a.Answers))
	for id, ans := range a.Answers {
		out[id] = len(ans.EvidenceRefs) > 0
	}
	return out
}

// IsActive reports whether a question id is in the cached active set.
func (a *Assessment) IsActive(questionID string) bool {
	for _, id := range a.ActiveIDs {
		if id == questionID {
			return true
		}
	}
	return false
}
