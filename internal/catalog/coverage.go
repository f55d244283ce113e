package catalog

// CoverageEntry reports how many questions cover one requirement code.
// A requirement with zero questions is a catalog-authoring gap worth
// surfacing before the standard version ships.
type CoverageEntry struct {
	Code        RequirementCode `json:"requirement"`
	Covered     bool            `json:"covered"`
	Count       int             `json:"count"`
	QuestionIDs []string        `json:"question_ids"`
}

// CoverageReport summarizes question coverage for one catalog.
type CoverageReport struct {
	Version             string          `json:"version"`
	TotalQuestions      int             `json:"total_questions"`
	Entries             []CoverageEntry `json:"requirements"`
	EvidenceRequiredIDs []string        `json:"evidence_required_ids"`
}

// Coverage builds the per-requirement coverage report for operator review.
func (c *Catalog) Coverage() CoverageReport {
	byCode := make(map[RequirementCode][]string)
	var evidence []string
	for _, q := range c.questions {
		byCode[q.RequirementCode] = append(byCode[q.RequirementCode], q.ID)
		if q.EvidenceRequired {
			evidence = append(evidence, q.ID)
		}
	}

	entries := make([]CoverageEntry, 0, len(allRequirementCodes))
	for _, code := range allRequirementCodes {
		ids := byCode[code]
		entries = append(entries, CoverageEntry{
			Code:        code,
			Covered:     len(ids) > 0,
			Count:       len(ids),
			QuestionIDs: ids,
		})
	}

	return CoverageReport{
		Version:             c.version,
		TotalQuestions:      len(c.questions),
		Entries:             entries,
		EvidenceRequiredIDs: evidence,
	}
}
