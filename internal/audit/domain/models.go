package domain

import (
	"time"

	"gorm.io/datatypes"
)

// AuditEntry is one row of the trigger-maintained audit trail. The
// application never writes rows itself; it reads them and annotates the
// comment and section fields after the fact.
type AuditEntry struct {
	AuditID int64 `gorm:"column:audit_id;primaryKey;autoIncrement" json:"audit_id"`

	Table     string    `gorm:"column:table_name" json:"table_name"`
	Operation string    `gorm:"column:operation_type" json:"operation_type"`
	ChangedAt time.Time `gorm:"column:changed_at" json:"changed_at"`
	Username  string    `gorm:"column:username" json:"username"`

	OldData datatypes.JSON `gorm:"column:old_data" json:"old_data"`
	NewData datatypes.JSON `gorm:"column:new_data" json:"new_data"`
	// PrimaryKeyValue holds the affected row's key as JSON, e.g.
	// {"customer_name":"acme","month_year":"2025-03-01"}.
	PrimaryKeyValue datatypes.JSON `gorm:"column:primary_key_value" json:"primary_key_value"`

	SectionName string `gorm:"column:section_name" json:"section_name"`
	Comment     string `gorm:"column:comment" json:"comment"`
}

func (AuditEntry) TableName() string { return "audit_logs" }
