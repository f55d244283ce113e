package catalog

import (
	"fmt"

	"github.com/recertlabs/recert/internal/intake"
)

// Predicate is one node of the mapping-rule trigger algebra. Exactly one
// field is set per node. Rules stay plain data: membership tests, flag
// checks, and boolean combinators. Nothing executable, nothing that can
// introduce nondeterminism.
//
// YAML form mirrors the fields:
//
//	trigger:
//	  any_of:
//	    - focus_material_any: [batteries, crt_glass]
//	    - flag: data_bearing_devices
type Predicate struct {
	EquipmentAny []intake.EquipmentCategory  `yaml:"equipment_any,omitempty" json:"equipment_any,omitempty"`
	ActivityAny  []intake.ProcessingActivity `yaml:"activity_any,omitempty" json:"activity_any,omitempty"`
	MaterialAny  []intake.FocusMaterial      `yaml:"focus_material_any,omitempty" json:"focus_material_any,omitempty"`
	Flag         string                      `yaml:"flag,omitempty" json:"flag,omitempty"`
	AllOf        []Predicate                 `yaml:"all_of,omitempty" json:"all_of,omitempty"`
	AnyOf        []Predicate                 `yaml:"any_of,omitempty" json:"any_of,omitempty"`
	Not          *Predicate                  `yaml:"not,omitempty" json:"not,omitempty"`
}

// Validate checks that the node is a well-formed tagged variant: exactly one
// field set, enum values known, flag names known, children valid. Called at
// catalog load so a broken rule fails the whole standard version, not a
// single evaluation.
func (p Predicate) Validate() error {
	set := 0
	if len(p.EquipmentAny) > 0 {
		set++
		for _, c := range p.EquipmentAny {
			if err := intake.ValidateEquipmentCategory(c); err != nil {
				return err
			}
		}
	}
	if len(p.ActivityAny) > 0 {
		set++
		for _, a := range p.ActivityAny {
			if err := intake.ValidateProcessingActivity(a); err != nil {
				return err
			}
		}
	}
	if len(p.MaterialAny) > 0 {
		set++
		for _, m := range p.MaterialAny {
			if err := intake.ValidateFocusMaterial(m); err != nil {
				return err
			}
		}
	}
	if p.Flag != "" {
		set++
		known := false
		for _, name := range intake.FlagNames() {
			if name == p.Flag {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("predicate references unknown intake flag %q", p.Flag)
		}
	}
	if len(p.AllOf) > 0 {
		set++
		for _, child := range p.AllOf {
			if err := child.Validate(); err != nil {
				return err
			}
		}
	}
	if len(p.AnyOf) > 0 {
		set++
		for _, child := range p.AnyOf {
			if err := child.Validate(); err != nil {
				return err
			}
		}
	}
	if p.Not != nil {
		set++
		if err := p.Not.Validate(); err != nil {
			return err
		}
	}

	if set == 0 {
		return fmt.Errorf("empty predicate: one of equipment_any, activity_any, focus_material_any, flag, all_of, any_of, not must be set")
	}
	if set > 1 {
		return fmt.Errorf("ambiguous predicate: exactly one variant may be set, found %d", set)
	}
	return nil
}
