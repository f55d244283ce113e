// Package intake defines the normalized intake snapshot the engine maps to
// applicable requirements.
//
// An IntakeFact is the engine's read-only view of one facility intake form:
// enumerated sets for what the facility processes plus a handful of boolean
// flags. The Intake collaborator owns the raw form; the engine only ever sees
// an immutable snapshot per evaluation.
package intake

import "fmt"

// --- Equipment category enum ---

// EquipmentCategory classifies the kinds of equipment a facility processes.
type EquipmentCategory string

const (
	EquipmentITAssets      EquipmentCategory = "it_assets"
	EquipmentMobileDevices EquipmentCategory = "mobile_devices"
	EquipmentStorageMedia  EquipmentCategory = "storage_media"
	EquipmentDisplays      EquipmentCategory = "displays"
	EquipmentComponents    EquipmentCategory = "components"
	EquipmentAppliances    EquipmentCategory = "appliances"
)

var validEquipmentCategories = map[EquipmentCategory]bool{
	EquipmentITAssets:      true,
	EquipmentMobileDevices: true,
	EquipmentStorageMedia:  true,
	EquipmentDisplays:      true,
	EquipmentComponents:    true,
	EquipmentAppliances:    true,
}

// ValidateEquipmentCategory returns an error if the category is not recognized.
func ValidateEquipmentCategory(c EquipmentCategory) error {
	if !validEquipmentCategories[c] {
		return fmt.Errorf("invalid equipment category %q", c)
	}
	return nil
}

// --- Processing activity enum ---

// ProcessingActivity classifies what the facility does with incoming equipment.
type ProcessingActivity string

const (
	ActivityResale            ProcessingActivity = "resale"
	ActivityRefurbishment     ProcessingActivity = "refurbishment"
	ActivityMaterialsRecovery ProcessingActivity = "materials_recovery"
	ActivityDataSanitization  ProcessingActivity = "data_sanitization"
	ActivityBrokering         ProcessingActivity = "brokering"
	ActivityDismantling       ProcessingActivity = "dismantling"
)

var validProcessingActivities = map[ProcessingActivity]bool{
	ActivityResale:            true,
	ActivityRefurbishment:     true,
	ActivityMaterialsRecovery: true,
	ActivityDataSanitization:  true,
	ActivityBrokering:         true,
	ActivityDismantling:       true,
}

// ValidateProcessingActivity returns an error if the activity is not recognized.
func ValidateProcessingActivity(a ProcessingActivity) error {
	if !validProcessingActivities[a] {
		return fmt.Errorf("invalid processing activity %q", a)
	}
	return nil
}

// --- Focus material enum ---

// FocusMaterial identifies materials that require controlled handling and
// trigger appendix-level requirements.
type FocusMaterial string

const (
	MaterialCircuitBoards  FocusMaterial = "circuit_boards"
	MaterialBatteries      FocusMaterial = "batteries"
	MaterialMercuryDevices FocusMaterial = "mercury_devices"
	MaterialCRTGlass       FocusMaterial = "crt_glass"
	MaterialTonerCartridge FocusMaterial = "toner_cartridges"
)

var validFocusMaterials = map[FocusMaterial]bool{
	MaterialCircuitBoards:  true,
	MaterialBatteries:      true,
	MaterialMercuryDevices: true,
	MaterialCRTGlass:       true,
	MaterialTonerCartridge: true,
}

// ValidateFocusMaterial returns an error if the material is not recognized.
func ValidateFocusMaterial(m FocusMaterial) error {
	if !validFocusMaterials[m] {
		return fmt.Errorf("invalid focus material %q", m)
	}
	return nil
}

// --- Snapshot ---

// Fact is one intake form's answers normalized for requirement mapping.
// Treat it as immutable: the engine never mutates a Fact, and callers that
// need to change intake data should build a new snapshot (see Clone).
type Fact struct {
	EquipmentCategories    []EquipmentCategory  `json:"equipment_categories"`
	ProcessingActivities   []ProcessingActivity `json:"processing_activities"`
	FocusMaterials         []FocusMaterial      `json:"focus_materials"`
	DataBearingDevices     bool                 `json:"data_bearing_devices"`
	InternationalShipments bool                 `json:"international_shipments"`
	DownstreamBrokers      bool                 `json:"downstream_brokers"`
}

// Validate checks every enumerated value in the snapshot.
func (f Fact) Validate() error {
	for _, c := range f.EquipmentCategories {
		if err := ValidateEquipmentCategory(c); err != nil {
			return err
		}
	}
	for _, a := range f.ProcessingActivities {
		if err := ValidateProcessingActivity(a); err != nil {
			return err
		}
	}
	for _, m := range f.FocusMaterials {
		if err := ValidateFocusMaterial(m); err != nil {
			return err
		}
	}
	return nil
}

// HasEquipment reports whether the snapshot includes the given category.
func (f Fact) HasEquipment(c EquipmentCategory) bool {
	for _, v := range f.EquipmentCategories {
		if v == c {
			return true
		}
	}
	return false
}

// HasActivity reports whether the snapshot includes the given activity.
func (f Fact) HasActivity(a ProcessingActivity) bool {
	for _, v := range f.ProcessingActivities {
		if v == a {
			return true
		}
	}
	return false
}

// HasMaterial reports whether the snapshot includes the given focus material.
func (f Fact) HasMaterial(m FocusMaterial) bool {
	for _, v := range f.FocusMaterials {
		if v == m {
			return true
		}
	}
	return false
}

// Flag resolves a named boolean flag. Unknown names return an error so that
// a typo in a mapping rule surfaces at catalog validation, not as a silently
// false predicate.
func (f Fact) Flag(name string) (bool, error) {
	switch name {
	case "data_bearing_devices":
		return f.DataBearingDevices, nil
	case "international_shipments":
		return f.InternationalShipments, nil
	case "downstream_brokers":
		return f.DownstreamBrokers, nil
	default:
		return false, fmt.Errorf("unknown intake flag %q", name)
	}
}

// FlagNames lists the boolean flags a mapping rule may reference.
func FlagNames() []string {
	return []string{"data_bearing_devices", "international_shipments", "downstream_brokers"}
}

// Clone returns a deep copy of the snapshot.
func (f Fact) Clone() Fact {
	out := f
	out.EquipmentCategories = append([]EquipmentCategory(nil), f.EquipmentCategories...)
	out.ProcessingActivities = append([]ProcessingActivity(nil), f.ProcessingActivities...)
	out.FocusMaterials = append([]FocusMaterial(nil), f.FocusMaterials...)
	return out
}
