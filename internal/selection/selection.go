// Package selection derives an assessment's active question set.
//
// It intersects REC mapping output (which requirement codes apply) with
// dependency-rule evaluation (which questions are switched on by current
// answers). Selection is always a full recomputation: the question sets
// involved are tens to low hundreds, so recomputing wholesale is cheap and
// leaves no separate incremental code path to keep correct.
package selection

import (
	"github.com/recertlabs/recert/internal/catalog"
	"github.com/recertlabs/recert/internal/intake"
	"github.com/recertlabs/recert/internal/mapping"
)

// Answers maps question id to its current answer value. It is the merged
// view the dependency resolver consumes: intake-derived screener answers
// overlaid by in-progress assessment answers.
type Answers map[string]catalog.AnswerValue

// EffectiveAnswers builds the merged answer view. Screener questions (those
// carrying an intake flag) get a derived yes/no from the snapshot; explicit
// assessment answers take precedence for overlapping question ids.
func EffectiveAnswers(cat *catalog.Catalog, fact intake.Fact, answers Answers) Answers {
	merged := make(Answers, len(answers)+4)
	for _, q := range cat.Questions() {
		if q.IntakeFlag == "" {
			continue
		}
		// Flag names are validated at catalog load.
		if v, err := fact.Flag(q.IntakeFlag); err == nil {
			if v {
				merged[q.ID] = catalog.ValueYes
			} else {
				merged[q.ID] = catalog.ValueNo
			}
		}
	}
	for id, v := range answers {
		merged[id] = v
	}
	return merged
}

// Selection is the derived active question set for one evaluation.
type Selection struct {
	// ActiveIDs lists active question ids in catalog order.
	ActiveIDs []string `json:"active_ids"`
	// Mapping carries the code-set resolution behind this selection.
	Mapping mapping.Result `json:"mapping"`
}

// Contains reports whether a question id is in the active set.
func (s Selection) Contains(id string) bool {
	for _, v := range s.ActiveIDs {
		if v == id {
			return true
		}
	}
	return false
}

// Select computes the active question set from scratch: resolve the code set
// from the intake snapshot, then evaluate dependency rules over the merged
// answers. Pure and idempotent: identical inputs yield an identical set.
func Select(cat *catalog.Catalog, fact intake.Fact, answers Answers) Selection {
	res := mapping.Resolve(cat, fact)
	merged := EffectiveAnswers(cat, fact, answers)

	inScope := make(map[catalog.RequirementCode]bool, len(res.Codes))
	for _, code := range res.Codes {
		inScope[code] = true
	}

	// Walk questions in dependency-topological order so a trigger question's
	// own activation is settled before any question that depends on it.
	// A trigger held by an inactive question never fires: its answer is out
	// of scope even if recorded.
	active := make(map[string]bool, len(cat.EvalOrder()))
	for _, id := range cat.EvalOrder() {
		q, _ := cat.Question(id)
		if !inScope[q.RequirementCode] {
			continue
		}
		rule, has := cat.DependencyRuleFor(id)
		if !has {
			active[id] = true
			continue
		}
		active[id] = evalRule(rule, active, merged)
	}

	var ids []string
	for _, q := range cat.Questions() {
		if active[q.ID] {
			ids = append(ids, q.ID)
		}
	}
	return Selection{ActiveIDs: ids, Mapping: res}
}

func evalRule(rule catalog.DependencyRule, active map[string]bool, answers Answers) bool {
	switch rule.Operator {
	case catalog.OpAnd:
		for _, t := range rule.Triggers {
			if !triggerHolds(t, active, answers) {
				return false
			}
		}
		return true
	case catalog.OpOr:
		for _, t := range rule.Triggers {
			if triggerHolds(t, active, answers) {
				return true
			}
		}
		return false
	default:
		// Operators are validated at catalog load.
		return false
	}
}

func triggerHolds(t catalog.Trigger, active map[string]bool, answers Answers) bool {
	if !active[t.QuestionID] {
		return false
	}
	v, answered := answers[t.QuestionID]
	return answered && v == t.ExpectedValue
}
