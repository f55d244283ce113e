package catalog

import (
	_ "embed"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/recertlabs/recert/internal/intake"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// DependencyCycleError reports a cycle in the question dependency rules.
// It is a configuration error: the whole catalog load fails and must be
// fixed by operators before the standard version can be used. The engine
// never picks an arbitrary evaluation order to work around it.
type DependencyCycleError struct {
	// Members are the question ids involved in (any of) the cycles, sorted.
	Members []string
}

func (e *DependencyCycleError) Error() string {
	return "dependency rules contain a cycle involving: " + strings.Join(e.Members, ", ")
}

// catalogFile is the on-disk YAML shape of a catalog.
type catalogFile struct {
	Version      string           `yaml:"version"`
	Categories   []string         `yaml:"categories"`
	Questions    []Question       `yaml:"questions"`
	MappingRules []MappingRule    `yaml:"mapping_rules"`
	Dependencies []DependencyRule `yaml:"dependencies"`
}

// Load reads and validates a catalog from YAML. All validation happens here:
// a *Catalog that exists is internally consistent and cycle-free.
func Load(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading catalog")
	}
	return parse(data)
}

// LoadFile reads and validates a catalog from a YAML file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading catalog file %s", path)
	}
	return parse(data)
}

// Default returns the catalog embedded in the binary. It panics on error:
// a broken embedded catalog is a build defect, caught by this package's tests.
func Default() *Catalog {
	c, err := parse(defaultCatalogYAML)
	if err != nil {
		panic("embedded catalog is invalid: " + err.Error())
	}
	return c
}

func parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "parsing catalog yaml")
	}

	if strings.TrimSpace(f.Version) == "" {
		return nil, errors.New("catalog has no version")
	}
	if len(f.Questions) == 0 {
		return nil, errors.Newf("catalog %s has no questions", f.Version)
	}

	categories := make(map[string]bool, len(f.Categories))
	for _, cat := range f.Categories {
		if strings.TrimSpace(cat) == "" {
			return nil, errors.Newf("catalog %s declares an empty category code", f.Version)
		}
		if categories[cat] {
			return nil, errors.Newf("catalog %s declares duplicate category %q", f.Version, cat)
		}
		categories[cat] = true
	}

	c := &Catalog{
		version:      f.Version,
		categories:   f.Categories,
		questions:    f.Questions,
		questionBy:   make(map[string]Question, len(f.Questions)),
		mappingRules: f.MappingRules,
		depRules:     make(map[string]DependencyRule, len(f.Dependencies)),
	}

	for _, q := range f.Questions {
		if strings.TrimSpace(q.ID) == "" {
			return nil, errors.Newf("catalog %s contains a question with no id", f.Version)
		}
		if _, dup := c.questionBy[q.ID]; dup {
			return nil, errors.Newf("duplicate question id %q", q.ID)
		}
		if err := ValidateRequirementCode(q.RequirementCode); err != nil {
			return nil, errors.Wrapf(err, "question %q", q.ID)
		}
		if q.Weight <= 0 {
			return nil, errors.Newf("question %q has non-positive weight %v", q.ID, q.Weight)
		}
		if !categories[q.CategoryCode] {
			return nil, errors.Newf("question %q references undeclared category %q", q.ID, q.CategoryCode)
		}
		if q.IntakeFlag != "" {
			known := false
			for _, name := range intake.FlagNames() {
				if name == q.IntakeFlag {
					known = true
					break
				}
			}
			if !known {
				return nil, errors.Newf("question %q references unknown intake flag %q", q.ID, q.IntakeFlag)
			}
		}
		c.questionBy[q.ID] = q
	}

	for i, rule := range f.MappingRules {
		if strings.TrimSpace(rule.Name) == "" {
			return nil, errors.Newf("mapping rule %d has no name", i)
		}
		if len(rule.AppliesCodes) == 0 {
			return nil, errors.Newf("mapping rule %q applies no codes", rule.Name)
		}
		for _, code := range rule.AppliesCodes {
			if err := ValidateRequirementCode(code); err != nil {
				return nil, errors.Wrapf(err, "mapping rule %q", rule.Name)
			}
		}
		if err := rule.Trigger.Validate(); err != nil {
			return nil, errors.Wrapf(err, "mapping rule %q", rule.Name)
		}
	}

	for _, dep := range f.Dependencies {
		if _, ok := c.questionBy[dep.DependentQuestionID]; !ok {
			return nil, errors.Newf("dependency rule references unknown question %q", dep.DependentQuestionID)
		}
		if _, dup := c.depRules[dep.DependentQuestionID]; dup {
			return nil, errors.Newf("question %q has more than one dependency rule", dep.DependentQuestionID)
		}
		if err := ValidateOperator(dep.Operator); err != nil {
			return nil, errors.Wrapf(err, "dependency rule for %q", dep.DependentQuestionID)
		}
		if len(dep.Triggers) == 0 {
			return nil, errors.Newf("dependency rule for %q has no triggers", dep.DependentQuestionID)
		}
		for _, t := range dep.Triggers {
			if _, ok := c.questionBy[t.QuestionID]; !ok {
				return nil, errors.Newf("dependency rule for %q references unknown trigger question %q",
					dep.DependentQuestionID, t.QuestionID)
			}
			if t.QuestionID == dep.DependentQuestionID {
				return nil, &DependencyCycleError{Members: []string{dep.DependentQuestionID}}
			}
			if err := ValidateAnswerValue(t.ExpectedValue); err != nil {
				return nil, errors.Wrapf(err, "dependency rule for %q", dep.DependentQuestionID)
			}
		}
		c.depRules[dep.DependentQuestionID] = dep
	}

	order, err := topoOrder(c)
	if err != nil {
		return nil, err
	}
	c.evalOrder = order

	return c, nil
}

// topoOrder runs Kahn's algorithm over trigger → dependent edges so every
// trigger question precedes the questions that depend on it. Questions left
// unemitted are on a cycle; the load fails with DependencyCycleError.
func topoOrder(c *Catalog) ([]string, error) {
	indegree := make(map[string]int, len(c.questions))
	successors := make(map[string][]string, len(c.depRules))

	for _, q := range c.questions {
		indegree[q.ID] = 0
	}
	for dependent, rule := range c.depRules {
		seen := make(map[string]bool, len(rule.Triggers))
		for _, t := range rule.Triggers {
			if seen[t.QuestionID] {
				continue
			}
			seen[t.QuestionID] = true
			successors[t.QuestionID] = append(successors[t.QuestionID], dependent)
			indegree[dependent]++
		}
	}

	// Seed with catalog order so the result is stable for rule-free catalogs.
	var queue []string
	for _, q := range c.questions {
		if indegree[q.ID] == 0 {
			queue = append(queue, q.ID)
		}
	}

	order := make([]string, 0, len(c.questions))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)
		for _, next := range successors[id] {
			indegree[next]--
			if indegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if len(order) < len(c.questions) {
		var members []string
		for id, deg := range indegree {
			if deg > 0 {
				members = append(members, id)
			}
		}
		sort.Strings(members)
		return nil, &DependencyCycleError{Members: members}
	}

	return order, nil
}
