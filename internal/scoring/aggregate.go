package scoring

import (
	"fmt"

	"github.com/recertlabs/recert/internal/catalog"
)

// ReadinessLevel is the overall certification-readiness verdict.
type ReadinessLevel string

const (
	// MajorGaps: overall below 60%, or any unresolved critical gap.
	MajorGaps ReadinessLevel = "MAJOR_GAPS"
	// MinorGaps: 60% up to (not including) 90%, no critical gaps.
	MinorGaps ReadinessLevel = "MINOR_GAPS"
	// CertificationReady: 90% or above with zero critical gaps.
	CertificationReady ReadinessLevel = "CERTIFICATION_READY"
)

// CategoryAggregate is the rollup for one category.
type CategoryAggregate struct {
	CategoryCode string  `json:"category"`
	ScoreSum     float64 `json:"score_sum"`
	MaxSum       float64 `json:"max_sum"`
	// Percentage is ScoreSum/MaxSum in 0..100. Zero-MaxSum categories are
	// not applicable and excluded from the overall denominator.
	Percentage float64 `json:"percentage"`
	Applicable bool    `json:"applicable"`
	// GapSeverity is the worst gap severity in the category, empty if none.
	GapSeverity GapSeverity `json:"gap_severity,omitempty"`
}

// Result is the full aggregation output for one assessment snapshot.
type Result struct {
	Categories        []CategoryAggregate `json:"categories"`
	OverallPercentage float64             `json:"overall_percentage"`
	CriticalGapCount  int                 `json:"critical_gap_count"`
	Readiness         ReadinessLevel      `json:"readiness"`
	Gaps              []Gap               `json:"gaps,omitempty"`
	// Unanswered lists active, unanswered question ids (progress signal).
	Unanswered []string `json:"unanswered,omitempty"`
	// MissingEvidenceIDs lists active evidence-required questions that were
	// answered without any evidence reference attached.
	MissingEvidenceIDs []string `json:"missing_evidence_ids,omitempty"`
}

// Aggregate rolls per-question scores into category and overall results.
//
// answers holds the recorded answer values keyed by question id; evidence
// reports which question ids carry at least one evidence reference. atReview
// applies the stricter gap rules that hold once the assessment is under
// review: a required question still unanswered becomes a critical gap.
//
// Only active, non-NA answers enter a category's sums. Screener questions
// (IntakeFlag set) are factual routing inputs, not compliance items: they are
// excluded from both sums and never classified as gaps, exactly like NA.
// Categories with no applicable answers are excluded from the overall
// denominator. The overall percentage is the category percentages weighted by
// each category's MaxSum, which reduces to total score over total max.
func Aggregate(cat *catalog.Catalog, activeIDs []string, answers map[string]catalog.AnswerValue, evidence map[string]bool, atReview bool) (Result, error) {
	sums := make(map[string]*CategoryAggregate)
	for _, code := range cat.Categories() {
		sums[code] = &CategoryAggregate{CategoryCode: code}
	}

	var gaps []Gap
	var unanswered []string
	var missingEvidence []string
	var totalScore, totalMax float64

	for _, id := range activeIDs {
		q, ok := cat.Question(id)
		if !ok {
			continue
		}
		if q.IntakeFlag != "" {
			continue
		}
		agg := sums[q.CategoryCode]

		value, answered := answers[id]
		if !answered {
			unanswered = append(unanswered, id)
			if q.Required && atReview {
				gaps = append(gaps, Gap{
					QuestionID: id,
					Severity:   GapCritical,
					Reason:     "required question unanswered at review",
				})
				agg.GapSeverity = worse(agg.GapSeverity, GapCritical)
			}
			continue
		}

		sr, err := Score(id, value, q.Weight)
		if err != nil {
			return Result{}, err
		}
		if sr.Excluded {
			continue
		}

		agg.ScoreSum += sr.Score
		agg.MaxSum += sr.MaxScore
		totalScore += sr.Score
		totalMax += sr.MaxScore

		if q.EvidenceRequired && !evidence[id] {
			missingEvidence = append(missingEvidence, id)
		}

		if g, found := classify(q, sr); found {
			gaps = append(gaps, g)
			agg.GapSeverity = worse(agg.GapSeverity, g.Severity)
		}
	}

	categories := make([]CategoryAggregate, 0, len(sums))
	for _, code := range cat.Categories() {
		agg := sums[code]
		if agg.MaxSum > 0 {
			agg.Applicable = true
			agg.Percentage = 100 * agg.ScoreSum / agg.MaxSum
		}
		categories = append(categories, *agg)
	}

	overall := 0.0
	if totalMax > 0 {
		overall = 100 * totalScore / totalMax
	}

	critical := 0
	for _, g := range gaps {
		if g.Severity == GapCritical {
			critical++
		}
	}

	return Result{
		Categories:         categories,
		OverallPercentage:  overall,
		CriticalGapCount:   critical,
		Readiness:          readiness(overall, critical),
		Gaps:               gaps,
		Unanswered:         unanswered,
		MissingEvidenceIDs: missingEvidence,
	}, nil
}

// classify applies the gap rules to one scored answer.
func classify(q catalog.Question, sr ScoreResult) (Gap, bool) {
	if sr.Score >= sr.MaxScore {
		return Gap{}, false
	}
	switch {
	case q.Required && sr.Compliance == NonCompliant:
		return Gap{QuestionID: q.ID, Severity: GapCritical, Reason: "required question answered no"}, true
	case !q.Required && sr.Score < sr.MaxScore/2:
		return Gap{QuestionID: q.ID, Severity: GapImportant, Reason: "scoring below half weight"}, true
	default:
		return Gap{
			QuestionID: q.ID,
			Severity:   GapMinor,
			Reason:     fmt.Sprintf("scored %.1f of %.1f", sr.Score, sr.MaxScore),
		}, true
	}
}

// readiness applies the verdict thresholds. Boundaries are closed on the
// lower edge: exactly 60% is MINOR_GAPS, exactly 90% with zero critical gaps
// is CERTIFICATION_READY. Any critical gap forces MAJOR_GAPS.
func readiness(overall float64, criticalCount int) ReadinessLevel {
	switch {
	case criticalCount > 0 || overall < 60:
		return MajorGaps
	case overall < 90:
		return MinorGaps
	default:
		return CertificationReady
	}
}
