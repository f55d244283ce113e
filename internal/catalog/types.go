// Package catalog holds the static per-standard-version configuration the
// engine evaluates against: requirements, questions, REC mapping rules, and
// question dependency rules.
//
// A Catalog is loaded once per standard version and is immutable afterwards.
// Multiple catalogs (standard versions) can coexist in one process; nothing
// in this package is ambient global state. Rules are plain data (a closed
// predicate algebra, never executable expressions), so they are deterministic
// and testable in isolation.
package catalog

import "fmt"

// Question is one assessable item of a requirement. Immutable catalog entry;
// its lifecycle is tied to standard-version releases, not to assessments.
type Question struct {
	ID               string          `yaml:"id" json:"id"`
	RequirementCode  RequirementCode `yaml:"requirement" json:"requirement"`
	Text             string          `yaml:"text" json:"text"`
	Weight           float64         `yaml:"weight" json:"weight"`
	Required         bool            `yaml:"required" json:"required"`
	EvidenceRequired bool            `yaml:"evidence_required" json:"evidence_required"`
	CategoryCode     string          `yaml:"category" json:"category"`

	// IntakeFlag, when set, makes this a screener question: its default
	// answer is derived from the named intake boolean (yes/no) instead of
	// being asked again. An explicit assessment answer still overrides the
	// derived one.
	IntakeFlag string `yaml:"intake_flag,omitempty" json:"intake_flag,omitempty"`
}

// MappingRule maps an intake predicate to the requirement codes it makes
// applicable. Many rules may fire for one intake; their codes are unioned.
type MappingRule struct {
	Name         string            `yaml:"name" json:"name"`
	Trigger      Predicate         `yaml:"trigger" json:"trigger"`
	AppliesCodes []RequirementCode `yaml:"applies" json:"applies"`
}

// --- Dependency rules ---

// Operator combines a dependency rule's triggers.
type Operator string

const (
	OpAnd Operator = "and"
	OpOr  Operator = "or"
)

// ValidateOperator returns an error if the operator is not and/or.
func ValidateOperator(op Operator) error {
	if op != OpAnd && op != OpOr {
		return fmt.Errorf("invalid dependency operator %q: must be and or or", op)
	}
	return nil
}

// Trigger is one condition of a dependency rule: the referenced question
// currently holds the expected value. An unanswered question never satisfies
// a trigger.
type Trigger struct {
	QuestionID    string      `yaml:"question" json:"question"`
	ExpectedValue AnswerValue `yaml:"value" json:"value"`
}

// DependencyRule activates its dependent question only while the combined
// triggers hold. A question with no rule is unconditionally active once its
// requirement code is in scope.
type DependencyRule struct {
	DependentQuestionID string    `yaml:"question" json:"question"`
	Operator            Operator  `yaml:"operator" json:"operator"`
	Triggers            []Trigger `yaml:"triggers" json:"triggers"`
}

// --- Catalog ---

// Catalog is the immutable rule set for one standard version.
// Build one with Load/LoadFile/Default; the zero value is unusable.
type Catalog struct {
	version    string
	categories []string

	questions  []Question
	questionBy map[string]Question

	mappingRules []MappingRule

	depRules map[string]DependencyRule

	// evalOrder lists every question id in dependency-topological order:
	// a trigger question always precedes its dependents, so chained
	// dependencies evaluate in one pass.
	evalOrder []string
}

// Version returns the standard version identifier, e.g. "r2v3-2026.1".
func (c *Catalog) Version() string { return c.version }

// Categories returns the declared category codes in catalog order.
func (c *Catalog) Categories() []string {
	return append([]string(nil), c.categories...)
}

// Questions returns all questions in catalog order.
func (c *Catalog) Questions() []Question {
	return append([]Question(nil), c.questions...)
}

// Question looks up a question by id.
func (c *Catalog) Question(id string) (Question, bool) {
	q, ok := c.questionBy[id]
	return q, ok
}

// MappingRules returns the REC mapping rules in catalog order.
func (c *Catalog) MappingRules() []MappingRule {
	return append([]MappingRule(nil), c.mappingRules...)
}

// DependencyRuleFor returns the dependency rule governing a question, if any.
func (c *Catalog) DependencyRuleFor(questionID string) (DependencyRule, bool) {
	r, ok := c.depRules[questionID]
	return r, ok
}

// EvalOrder returns every question id in dependency-topological order.
func (c *Catalog) EvalOrder() []string {
	return append([]string(nil), c.evalOrder...)
}
