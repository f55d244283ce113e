package mapping

import (
	"reflect"
	"testing"

	"github.com/recertlabs/recert/internal/catalog"
	"github.com/recertlabs/recert/internal/intake"
)

// --- Resolve ---

func TestResolve_EmptyIntakeIsCoresOnly(t *testing.T) {
	res := Resolve(catalog.Default(), intake.Fact{})

	if !reflect.DeepEqual(res.Codes, catalog.CoreCodes()) {
		t.Errorf("Codes = %v, want the ten core codes only", res.Codes)
	}
	if res.NeedsManualReview {
		t.Error("empty intake should not need manual review")
	}
	if len(res.FiredRules) != 0 {
		t.Errorf("FiredRules = %v, want none", res.FiredRules)
	}
}

func TestResolve_DataBearingDevicesAddsDataSanitizationAppendix(t *testing.T) {
	res := Resolve(catalog.Default(), intake.Fact{DataBearingDevices: true})

	if !res.Has(catalog.AppB) {
		t.Errorf("Codes = %v, want APP_B included", res.Codes)
	}
	if res.NeedsManualReview {
		t.Error("appendix fired, manual review should not be flagged")
	}
}

func TestResolve_MercuryAndCRT(t *testing.T) {
	fact := intake.Fact{FocusMaterials: []intake.FocusMaterial{intake.MaterialCRTGlass}}
	res := Resolve(catalog.Default(), fact)

	if !res.Has(catalog.AppG) {
		t.Errorf("Codes = %v, want APP_G for CRT glass", res.Codes)
	}
}

func TestResolve_MultipleRulesUnion(t *testing.T) {
	fact := intake.Fact{
		ProcessingActivities: []intake.ProcessingActivity{
			intake.ActivityRefurbishment,
			intake.ActivityBrokering,
		},
		DownstreamBrokers: true,
	}
	res := Resolve(catalog.Default(), fact)

	for _, code := range []catalog.RequirementCode{catalog.AppA, catalog.AppC, catalog.AppF} {
		if !res.Has(code) {
			t.Errorf("Codes = %v, want %s included", res.Codes, code)
		}
	}
	if res.Has(catalog.AppB) || res.Has(catalog.AppG) {
		t.Errorf("Codes = %v, contains appendices no rule fired for", res.Codes)
	}
	// Fired rules report in catalog order, not alphabetically.
	want := []string{"downstream-vendors", "test-and-repair", "brokering"}
	if !reflect.DeepEqual(res.FiredRules, want) {
		t.Errorf("FiredRules = %v, want %v", res.FiredRules, want)
	}
}

func TestResolve_ManualReviewWhenNoAppendixFires(t *testing.T) {
	// Toner cartridges are a focus material but no default rule maps them,
	// so the resolver asks for a human look instead of silently scoping out.
	fact := intake.Fact{FocusMaterials: []intake.FocusMaterial{intake.MaterialTonerCartridge}}
	res := Resolve(catalog.Default(), fact)

	if !res.NeedsManualReview {
		t.Error("expected NeedsManualReview for unmapped focus material")
	}
	if !reflect.DeepEqual(res.Codes, catalog.CoreCodes()) {
		t.Errorf("Codes = %v, want cores only", res.Codes)
	}
}

func TestResolve_Deterministic(t *testing.T) {
	fact := intake.Fact{
		EquipmentCategories:  []intake.EquipmentCategory{intake.EquipmentComponents},
		ProcessingActivities: []intake.ProcessingActivity{intake.ActivityDismantling},
		FocusMaterials:       []intake.FocusMaterial{intake.MaterialBatteries},
		DataBearingDevices:   true,
	}
	first := Resolve(catalog.Default(), fact)
	for i := 0; i < 5; i++ {
		again := Resolve(catalog.Default(), fact)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("resolution %d differs: %+v vs %+v", i, first, again)
		}
	}
}

// --- Predicate evaluation ---

func TestEval_Leaves(t *testing.T) {
	fact := intake.Fact{
		EquipmentCategories:    []intake.EquipmentCategory{intake.EquipmentDisplays},
		ProcessingActivities:   []intake.ProcessingActivity{intake.ActivityResale},
		FocusMaterials:         []intake.FocusMaterial{intake.MaterialCRTGlass},
		InternationalShipments: true,
	}

	cases := []struct {
		name string
		p    catalog.Predicate
		want bool
	}{
		{"equipment hit", catalog.Predicate{EquipmentAny: []intake.EquipmentCategory{intake.EquipmentDisplays}}, true},
		{"equipment miss", catalog.Predicate{EquipmentAny: []intake.EquipmentCategory{intake.EquipmentAppliances}}, false},
		{"activity hit", catalog.Predicate{ActivityAny: []intake.ProcessingActivity{intake.ActivityBrokering, intake.ActivityResale}}, true},
		{"material miss", catalog.Predicate{MaterialAny: []intake.FocusMaterial{intake.MaterialBatteries}}, false},
		{"flag hit", catalog.Predicate{Flag: "international_shipments"}, true},
		{"flag miss", catalog.Predicate{Flag: "downstream_brokers"}, false},
		{"empty node", catalog.Predicate{}, false},
	}
	for _, tc := range cases {
		if got := Eval(tc.p, fact); got != tc.want {
			t.Errorf("%s: Eval = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestEval_Combinators(t *testing.T) {
	fact := intake.Fact{DataBearingDevices: true}

	dbd := catalog.Predicate{Flag: "data_bearing_devices"}
	intl := catalog.Predicate{Flag: "international_shipments"}

	if !Eval(catalog.Predicate{AnyOf: []catalog.Predicate{intl, dbd}}, fact) {
		t.Error("any_of with one true child should hold")
	}
	if Eval(catalog.Predicate{AllOf: []catalog.Predicate{intl, dbd}}, fact) {
		t.Error("all_of with one false child should not hold")
	}
	if Eval(catalog.Predicate{Not: &dbd}, fact) {
		t.Error("not over a true child should not hold")
	}
	nested := catalog.Predicate{AllOf: []catalog.Predicate{
		dbd,
		{Not: &intl},
	}}
	if !Eval(nested, fact) {
		t.Error("nested all_of/not should hold")
	}
}
