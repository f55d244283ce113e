// Package mapping resolves an intake snapshot to the set of applicable
// requirement codes (REC mapping).
//
// Core Requirements always apply; Appendices apply only when a mapping rule's
// trigger predicate fires. Resolution is a pure function of (catalog, fact):
// same inputs, same code set, every time.
package mapping

import (
	"github.com/recertlabs/recert/internal/catalog"
	"github.com/recertlabs/recert/internal/intake"
)

// Result is the outcome of resolving one intake snapshot.
type Result struct {
	// Codes is the applicable requirement code set, canonical order.
	Codes []catalog.RequirementCode `json:"codes"`
	// NeedsManualReview is set when the intake plausibly implies appendix
	// applicability (data-bearing devices or focus materials present) but no
	// appendix rule fired. That is a data-quality signal for a reviewer, not
	// an error: the mapped set is still returned and usable.
	NeedsManualReview bool `json:"needs_manual_review"`
	// FiredRules names the mapping rules whose triggers matched, in catalog
	// order, for reviewer traceability.
	FiredRules []string `json:"fired_rules,omitempty"`
}

// Has reports whether a code is in the mapped set.
func (r Result) Has(code catalog.RequirementCode) bool {
	for _, c := range r.Codes {
		if c == code {
			return true
		}
	}
	return false
}

// Resolve evaluates every mapping rule against the snapshot and unions the
// codes of the rules that fired, plus the unconditional core codes.
func Resolve(cat *catalog.Catalog, fact intake.Fact) Result {
	applicable := make(map[catalog.RequirementCode]bool)
	for _, code := range catalog.CoreCodes() {
		applicable[code] = true
	}

	var fired []string
	appendixFired := false
	for _, rule := range cat.MappingRules() {
		if !Eval(rule.Trigger, fact) {
			continue
		}
		fired = append(fired, rule.Name)
		for _, code := range rule.AppliesCodes {
			applicable[code] = true
			if code.IsAppendix() {
				appendixFired = true
			}
		}
	}

	codes := make([]catalog.RequirementCode, 0, len(applicable))
	for _, code := range catalog.AllRequirementCodes() {
		if applicable[code] {
			codes = append(codes, code)
		}
	}

	plausible := fact.DataBearingDevices || len(fact.FocusMaterials) > 0
	return Result{
		Codes:             codes,
		NeedsManualReview: plausible && !appendixFired,
		FiredRules:        fired,
	}
}

// Eval evaluates one predicate node against the snapshot. Predicates are
// validated at catalog load, so an unknown flag here cannot happen for a
// loaded catalog; it simply evaluates false.
func Eval(p catalog.Predicate, fact intake.Fact) bool {
	switch {
	case len(p.EquipmentAny) > 0:
		for _, c := range p.EquipmentAny {
			if fact.HasEquipment(c) {
				return true
			}
		}
		return false
	case len(p.ActivityAny) > 0:
		for _, a := range p.ActivityAny {
			if fact.HasActivity(a) {
				return true
			}
		}
		return false
	case len(p.MaterialAny) > 0:
		for _, m := range p.MaterialAny {
			if fact.HasMaterial(m) {
				return true
			}
		}
		return false
	case p.Flag != "":
		v, err := fact.Flag(p.Flag)
		if err != nil {
			return false
		}
		return v
	case len(p.AllOf) > 0:
		for _, child := range p.AllOf {
			if !Eval(child, fact) {
				return false
			}
		}
		return true
	case len(p.AnyOf) > 0:
		for _, child := range p.AnyOf {
			if Eval(child, fact) {
				return true
			}
		}
		return false
	case p.Not != nil:
		return !Eval(*p.Not, fact)
	default:
		return false
	}
}
