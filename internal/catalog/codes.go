package catalog

import (
	"fmt"
	"strings"
)

// --- Requirement code enum ---

// RequirementCode identifies a Core Requirement (CORE_1..CORE_10) or an
// Appendix (APP_A..APP_G). The set is fixed by the standard; a new standard
// version ships a new catalog, it never mutates this enum.
type RequirementCode string

const (
	Core1  RequirementCode = "CORE_1"
	Core2  RequirementCode = "CORE_2"
	Core3  RequirementCode = "CORE_3"
	Core4  RequirementCode = "CORE_4"
	Core5  RequirementCode = "CORE_5"
	Core6  RequirementCode = "CORE_6"
	Core7  RequirementCode = "CORE_7"
	Core8  RequirementCode = "CORE_8"
	Core9  RequirementCode = "CORE_9"
	Core10 RequirementCode = "CORE_10"

	AppA RequirementCode = "APP_A"
	AppB RequirementCode = "APP_B"
	AppC RequirementCode = "APP_C"
	AppD RequirementCode = "APP_D"
	AppE RequirementCode = "APP_E"
	AppF RequirementCode = "APP_F"
	AppG RequirementCode = "APP_G"
)

// allRequirementCodes is the canonical ordering: cores first, then appendices.
var allRequirementCodes = []RequirementCode{
	Core1, Core2, Core3, Core4, Core5, Core6, Core7, Core8, Core9, Core10,
	AppA, AppB, AppC, AppD, AppE, AppF, AppG,
}

var validRequirementCodes = func() map[RequirementCode]bool {
	m := make(map[RequirementCode]bool, len(allRequirementCodes))
	for _, c := range allRequirementCodes {
		m[c] = true
	}
	return m
}()

// AllRequirementCodes returns every code in canonical order.
func AllRequirementCodes() []RequirementCode {
	return append([]RequirementCode(nil), allRequirementCodes...)
}

// CoreCodes returns the ten Core Requirement codes in order.
func CoreCodes() []RequirementCode {
	return append([]RequirementCode(nil), allRequirementCodes[:10]...)
}

// IsCore reports whether the code is a Core Requirement.
func (c RequirementCode) IsCore() bool {
	return strings.HasPrefix(string(c), "CORE_")
}

// IsAppendix reports whether the code is an Appendix.
func (c RequirementCode) IsAppendix() bool {
	return strings.HasPrefix(string(c), "APP_")
}

// ValidateRequirementCode returns an error if the code is not part of the standard.
func ValidateRequirementCode(c RequirementCode) error {
	if !validRequirementCodes[c] {
		return fmt.Errorf("invalid requirement code %q", c)
	}
	return nil
}

// --- Answer value enum ---

// AnswerValue is the response scale the standard allows for a question.
// It lives in the catalog package because dependency rules reference expected
// values, so the vocabulary is part of the static catalog, not per-assessment
// state.
type AnswerValue string

const (
	ValueYes     AnswerValue = "yes"
	ValuePartial AnswerValue = "partial"
	ValueNo      AnswerValue = "no"
	ValueNA      AnswerValue = "na"
)

var validAnswerValues = map[AnswerValue]bool{
	ValueYes:     true,
	ValuePartial: true,
	ValueNo:      true,
	ValueNA:      true,
}

// ParseAnswerValue normalizes user input ("Yes", "N/A", ...) to a canonical
// AnswerValue. Returns an error for anything outside the response scale.
func ParseAnswerValue(s string) (AnswerValue, error) {
	v := AnswerValue(strings.ToLower(strings.TrimSpace(s)))
	if v == "n/a" || v == "not_applicable" {
		v = ValueNA
	}
	if !validAnswerValues[v] {
		return "", fmt.Errorf("invalid answer value %q: must be one of: yes, partial, no, na", s)
	}
	return v, nil
}

// ValidateAnswerValue returns an error if the value is outside the response scale.
func ValidateAnswerValue(v AnswerValue) error {
	if !validAnswerValues[v] {
		return fmt.Errorf("invalid answer value %q: must be one of: yes, partial, no, na", v)
	}
	return nil
}
