// Package scoring converts answers into weighted scores and rolls them up
// into category and assessment-level results with gap classification and a
// certification-readiness verdict.
//
// Everything here is a pure function over the inputs passed in. Aggregation
// is idempotent and order-independent, so callers may recompute wholesale on
// every answer mutation.
package scoring

import (
	"fmt"

	"github.com/recertlabs/recert/internal/catalog"
)

// ComplianceLevel classifies one answer's compliance contribution.
type ComplianceLevel string

const (
	Compliant          ComplianceLevel = "compliant"
	PartiallyCompliant ComplianceLevel = "partially_compliant"
	NonCompliant       ComplianceLevel = "non_compliant"
	NotApplicable      ComplianceLevel = "not_applicable"
)

// InvalidAnswerValueError reports an answer value outside the response scale.
// Rejected before scoring, returned synchronously for user-facing correction.
type InvalidAnswerValueError struct {
	QuestionID string
	Value      string
}

func (e *InvalidAnswerValueError) Error() string {
	return fmt.Sprintf("invalid answer value %q for question %q: must be one of: yes, partial, no, na", e.Value, e.QuestionID)
}

// ScoreResult is one answer's weighted score contribution.
type ScoreResult struct {
	Compliance ComplianceLevel `json:"compliance"`
	Score      float64         `json:"score"`
	MaxScore   float64         `json:"max_score"`
	// Excluded marks an NA answer: it contributes to neither numerator nor
	// denominator of its category.
	Excluded bool `json:"excluded"`
}

// Score converts one answer value into its weighted contribution:
// yes → 100% of weight, partial → 50%, no → 0%, na → excluded entirely.
func Score(questionID string, value catalog.AnswerValue, weight float64) (ScoreResult, error) {
	switch value {
	case catalog.ValueYes:
		return ScoreResult{Compliance: Compliant, Score: weight, MaxScore: weight}, nil
	case catalog.ValuePartial:
		return ScoreResult{Compliance: PartiallyCompliant, Score: weight / 2, MaxScore: weight}, nil
	case catalog.ValueNo:
		return ScoreResult{Compliance: NonCompliant, Score: 0, MaxScore: weight}, nil
	case catalog.ValueNA:
		return ScoreResult{Compliance: NotApplicable, Excluded: true}, nil
	default:
		return ScoreResult{}, &InvalidAnswerValueError{QuestionID: questionID, Value: string(value)}
	}
}
