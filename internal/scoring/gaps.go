package scoring

// GapSeverity classifies a scoring shortfall.
type GapSeverity string

const (
	// GapCritical: a required question answered no, or left unanswered once
	// the assessment is under review. Blocks completion without an override,
	// regardless of weight.
	GapCritical GapSeverity = "critical"
	// GapImportant: a non-required question scoring below half its weight.
	GapImportant GapSeverity = "important"
	// GapMinor: any other shortfall.
	GapMinor GapSeverity = "minor"
)

// severityRank orders severities for category rollup (higher is worse).
var severityRank = map[GapSeverity]int{
	GapMinor:     1,
	GapImportant: 2,
	GapCritical:  3,
}

// Gap is one classified shortfall on one question.
type Gap struct {
	QuestionID string      `json:"question_id"`
	Severity   GapSeverity `json:"severity"`
	Reason     string      `json:"reason"`
}

// worse returns the more severe of two severities ("" counts as none).
func worse(a, b GapSeverity) GapSeverity {
	if severityRank[b] > severityRank[a] {
		return b
	}
	return a
}
