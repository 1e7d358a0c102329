package domain

import (
	"encoding/json"
	"time"

	"github.com/healthdeck/healthdeck/internal/threshold"
	"gorm.io/datatypes"
)

// ConfigRecord is the per customer-month configuration row: display
// metadata, CSM assignment, environment shape, reporting window and the
// structured threshold/color/note payloads. Exactly one row per
// (customer_name, month_year); it must exist before any metric row does.
type ConfigRecord struct {
	CustomerName string    `gorm:"column:customer_name;primaryKey" json:"customer_name"`
	MonthYear    time.Time `gorm:"column:month_year;primaryKey" json:"month_year"`

	CustomerFullName string `gorm:"column:customer_full_name" json:"customer_full_name"`
	CSMPrimary       string `gorm:"column:csm_primary" json:"csm_primary"`
	CSMSecondary     string `gorm:"column:csm_secondary" json:"csm_secondary"`

	// CustomerUIDs is append-only: new identifiers join the list, the list
	// is never replaced.
	CustomerUIDs datatypes.JSON `gorm:"column:customer_uid" json:"customer_uid"`

	// Environments is 2 or 3; the dev tier exists only when it is 3.
	Environments int `gorm:"column:no_of_environments" json:"no_of_environments"`
	// WindowMonths is how many months back a report looks.
	WindowMonths int `gorm:"column:no_of_months" json:"no_of_months"`

	AvailabilityRules datatypes.JSON `gorm:"column:color_map_thresholds_availability" json:"color_map_thresholds_availability"`
	UsersRules        datatypes.JSON `gorm:"column:color_map_thresholds_users" json:"color_map_thresholds_users"`
	StorageRules      datatypes.JSON `gorm:"column:color_map_thresholds_storage" json:"color_map_thresholds_storage"`

	IndicatorColors datatypes.JSON `gorm:"column:indicator_color_code_rules" json:"indicator_color_code_rules"`
	CircleColors    datatypes.JSON `gorm:"column:circle_color_code_rules" json:"circle_color_code_rules"`

	AvailabilityNotes datatypes.JSON `gorm:"column:notes_availability" json:"notes_availability"`
	UsersNotes        datatypes.JSON `gorm:"column:notes_users" json:"notes_users"`
	StorageNotes      datatypes.JSON `gorm:"column:notes_storage" json:"notes_storage"`

	CustomerNote string `gorm:"column:customer_note" json:"customer_note"`
}

func (ConfigRecord) TableName() string { return "customer_mapping_table" }

// DefaultWindowMonths applies when a config row is missing or carries no
// window value.
const DefaultWindowMonths = 6

func (c *ConfigRecord) Window() int {
	if c == nil || c.WindowMonths <= 0 {
		return DefaultWindowMonths
	}
	return c.WindowMonths
}

func (c *ConfigRecord) UIDList() []string {
	if c == nil || len(c.CustomerUIDs) == 0 {
		return nil
	}
	var uids []string
	if err := json.Unmarshal(c.CustomerUIDs, &uids); err != nil {
		return nil
	}
	return uids
}

func (c *ConfigRecord) AvailabilityRuleSet() (threshold.RuleSet, error) {
	return threshold.ParseRuleSet(string(c.AvailabilityRules))
}

func (c *ConfigRecord) UsersRuleSet() (threshold.RuleSet, error) {
	return threshold.ParseRuleSet(string(c.UsersRules))
}

func (c *ConfigRecord) StorageRuleSet() (threshold.RuleSet, error) {
	return threshold.ParseRuleSet(string(c.StorageRules))
}

func (c *ConfigRecord) IndicatorColorRules() (threshold.ColorRules, error) {
	return threshold.ParseColorRules(string(c.IndicatorColors))
}

func (c *ConfigRecord) CircleColorRules() (threshold.ColorRules, error) {
	return threshold.ParseColorRules(string(c.CircleColors))
}

func (c *ConfigRecord) NoteSetFor(section string) (threshold.NoteSet, error) {
	switch section {
	case "users":
		return threshold.ParseNoteSet(string(c.UsersNotes))
	case "storage":
		return threshold.ParseNoteSet(string(c.StorageNotes))
	default:
		return threshold.ParseNoteSet(string(c.AvailabilityNotes))
	}
}
