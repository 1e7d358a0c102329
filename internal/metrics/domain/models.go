package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Each metric table keys on (customer_name, month_year). Base columns hold
// the values as first loaded; the updated_* columns are the editable copies
// every screen and report reads. Fields named without a Base prefix map to
// the updated_* columns.

type AvailabilityRecord struct {
	CustomerName string    `gorm:"column:customer_name;primaryKey" json:"customer_name"`
	MonthYear    time.Time `gorm:"column:month_year;primaryKey" json:"month_year"`

	BaseAvailability float64 `gorm:"column:total_availability" json:"total_availability"`
	Availability     float64 `gorm:"column:updated_availability" json:"updated_availability"`
	BaseTarget       float64 `gorm:"column:target" json:"target"`
	Target           float64 `gorm:"column:updated_target" json:"updated_target"`
}

func (AvailabilityRecord) TableName() string { return "availability_table" }

type UsersRecord struct {
	CustomerName string    `gorm:"column:customer_name;primaryKey" json:"customer_name"`
	MonthYear    time.Time `gorm:"column:month_year;primaryKey" json:"month_year"`

	BaseProdLimit int `gorm:"column:prod_limit" json:"prod_limit"`
	BaseTestLimit int `gorm:"column:test_limit" json:"test_limit"`
	BaseDevLimit  int `gorm:"column:dev_limit" json:"dev_limit"`
	BaseProdUsed  int `gorm:"column:prod_used" json:"prod_used"`
	BaseTestUsed  int `gorm:"column:test_used" json:"test_used"`
	BaseDevUsed   int `gorm:"column:dev_used" json:"dev_used"`

	ProdLimit int `gorm:"column:updated_prod_limit" json:"updated_prod_limit"`
	TestLimit int `gorm:"column:updated_test_limit" json:"updated_test_limit"`
	DevLimit  int `gorm:"column:updated_dev_limit" json:"updated_dev_limit"`
	ProdUsed  int `gorm:"column:updated_prod_used" json:"updated_prod_used"`
	TestUsed  int `gorm:"column:updated_test_used" json:"updated_test_used"`
	DevUsed   int `gorm:"column:updated_dev_used" json:"updated_dev_used"`
}

func (UsersRecord) TableName() string { return "users_table" }

type StorageRecord struct {
	CustomerName string    `gorm:"column:customer_name;primaryKey" json:"customer_name"`
	MonthYear    time.Time `gorm:"column:month_year;primaryKey" json:"month_year"`

	BaseProdTargetGB float64 `gorm:"column:prod_target_storage_gb" json:"prod_target_storage_gb"`
	BaseTestTargetGB float64 `gorm:"column:test_target_storage_gb" json:"test_target_storage_gb"`
	BaseDevTargetGB  float64 `gorm:"column:dev_target_storage_gb" json:"dev_target_storage_gb"`
	BaseProdUsedGB   float64 `gorm:"column:prod_storage_gb" json:"prod_storage_gb"`
	BaseTestUsedGB   float64 `gorm:"column:test_storage_gb" json:"test_storage_gb"`
	BaseDevUsedGB    float64 `gorm:"column:dev_storage_gb" json:"dev_storage_gb"`

	ProdTargetGB float64 `gorm:"column:updated_prod_target_storage_gb" json:"updated_prod_target_storage_gb"`
	TestTargetGB float64 `gorm:"column:updated_test_target_storage_gb" json:"updated_test_target_storage_gb"`
	DevTargetGB  float64 `gorm:"column:updated_dev_target_storage_gb" json:"updated_dev_target_storage_gb"`
	ProdUsedGB   float64 `gorm:"column:updated_prod_storage_gb" json:"updated_prod_storage_gb"`
	TestUsedGB   float64 `gorm:"column:updated_test_storage_gb" json:"updated_test_storage_gb"`
	DevUsedGB    float64 `gorm:"column:updated_dev_storage_gb" json:"updated_dev_storage_gb"`
}

func (StorageRecord) TableName() string { return "storage_table" }

type TicketsRecord struct {
	CustomerName string    `gorm:"column:customer_name;primaryKey" json:"customer_name"`
	MonthYear    time.Time `gorm:"column:month_year;primaryKey" json:"month_year"`

	BaseOpened         int `gorm:"column:tickets_opened" json:"tickets_opened"`
	BaseClosed         int `gorm:"column:tickets_closed" json:"tickets_closed"`
	BaseBacklog        int `gorm:"column:tickets_backlog" json:"tickets_backlog"`
	BaseCurrentOpened  int `gorm:"column:current_opened_tickets" json:"current_opened_tickets"`
	BaseCurrentClosed  int `gorm:"column:current_closed_tickets" json:"current_closed_tickets"`
	BaseCurrentBacklog int `gorm:"column:current_backlog_tickets" json:"current_backlog_tickets"`

	Opened         int `gorm:"column:updated_tickets_opened" json:"updated_tickets_opened"`
	Closed         int `gorm:"column:updated_tickets_closed" json:"updated_tickets_closed"`
	Backlog        int `gorm:"column:updated_tickets_backlog" json:"updated_tickets_backlog"`
	CurrentOpened  int `gorm:"column:updated_current_opened_tickets" json:"updated_current_opened_tickets"`
	CurrentClosed  int `gorm:"column:updated_current_closed_tickets" json:"updated_current_closed_tickets"`
	CurrentBacklog int `gorm:"column:updated_current_backlog_tickets" json:"updated_current_backlog_tickets"`

	BaseP1Opened  int `gorm:"column:p1_opened" json:"p1_opened"`
	BaseP1Closed  int `gorm:"column:p1_closed" json:"p1_closed"`
	BaseP1Backlog int `gorm:"column:p1_backlog" json:"p1_backlog"`
	BaseP2Opened  int `gorm:"column:p2_opened" json:"p2_opened"`
	BaseP2Closed  int `gorm:"column:p2_closed" json:"p2_closed"`
	BaseP2Backlog int `gorm:"column:p2_backlog" json:"p2_backlog"`
	BaseP3Opened  int `gorm:"column:p3_opened" json:"p3_opened"`
	BaseP3Closed  int `gorm:"column:p3_closed" json:"p3_closed"`
	BaseP3Backlog int `gorm:"column:p3_backlog" json:"p3_backlog"`
	BaseP4Opened  int `gorm:"column:p4_opened" json:"p4_opened"`
	BaseP4Closed  int `gorm:"column:p4_closed" json:"p4_closed"`
	BaseP4Backlog int `gorm:"column:p4_backlog" json:"p4_backlog"`

	P1Opened  int `gorm:"column:updated_p1_opened" json:"updated_p1_opened"`
	P1Closed  int `gorm:"column:updated_p1_closed" json:"updated_p1_closed"`
	P1Backlog int `gorm:"column:updated_p1_backlog" json:"updated_p1_backlog"`
	P2Opened  int `gorm:"column:updated_p2_opened" json:"updated_p2_opened"`
	P2Closed  int `gorm:"column:updated_p2_closed" json:"updated_p2_closed"`
	P2Backlog int `gorm:"column:updated_p2_backlog" json:"updated_p2_backlog"`
	P3Opened  int `gorm:"column:updated_p3_opened" json:"updated_p3_opened"`
	P3Closed  int `gorm:"column:updated_p3_closed" json:"updated_p3_closed"`
	P3Backlog int `gorm:"column:updated_p3_backlog" json:"updated_p3_backlog"`
	P4Opened  int `gorm:"column:updated_p4_opened" json:"updated_p4_opened"`
	P4Closed  int `gorm:"column:updated_p4_closed" json:"updated_p4_closed"`
	P4Backlog int `gorm:"column:updated_p4_backlog" json:"updated_p4_backlog"`
}

func (TicketsRecord) TableName() string { return "tickets_computed_table" }

// AggregateRecord is the denormalized row every read path queries: one wide
// row per customer-month carrying the current value of every metric plus
// the CSM assignment. The synchronizer keeps it equal to the domain tables
// for every committed transaction; it stays independently writable so bulk
// loads outside this service remain possible.
type AggregateRecord struct {
	CustomerName string    `gorm:"column:customer_name;primaryKey" json:"customer_name"`
	MonthYear    time.Time `gorm:"column:month_year;primaryKey" json:"month_year"`

	CSMPrimary       string         `gorm:"column:csm_primary" json:"csm_primary"`
	CSMSecondary     string         `gorm:"column:csm_secondary" json:"csm_secondary"`
	CustomerFullName string         `gorm:"column:customer_full_name" json:"customer_full_name"`
	CustomerUIDs     datatypes.JSON `gorm:"column:customer_uid" json:"customer_uid"`

	Availability float64 `gorm:"column:updated_availability" json:"updated_availability"`
	Target       float64 `gorm:"column:updated_target" json:"updated_target"`

	ProdLimit int `gorm:"column:updated_prod_limit" json:"updated_prod_limit"`
	TestLimit int `gorm:"column:updated_test_limit" json:"updated_test_limit"`
	DevLimit  int `gorm:"column:updated_dev_limit" json:"updated_dev_limit"`
	ProdUsed  int `gorm:"column:updated_prod_used" json:"updated_prod_used"`
	TestUsed  int `gorm:"column:updated_test_used" json:"updated_test_used"`
	DevUsed   int `gorm:"column:updated_dev_used" json:"updated_dev_used"`

	ProdTargetGB float64 `gorm:"column:updated_prod_target_storage_gb" json:"updated_prod_target_storage_gb"`
	TestTargetGB float64 `gorm:"column:updated_test_target_storage_gb" json:"updated_test_target_storage_gb"`
	DevTargetGB  float64 `gorm:"column:updated_dev_target_storage_gb" json:"updated_dev_target_storage_gb"`
	ProdUsedGB   float64 `gorm:"column:updated_prod_storage_gb" json:"updated_prod_storage_gb"`
	TestUsedGB   float64 `gorm:"column:updated_test_storage_gb" json:"updated_test_storage_gb"`
	DevUsedGB    float64 `gorm:"column:updated_dev_storage_gb" json:"updated_dev_storage_gb"`

	TicketsOpened  int `gorm:"column:updated_tickets_opened" json:"updated_tickets_opened"`
	TicketsClosed  int `gorm:"column:updated_tickets_closed" json:"updated_tickets_closed"`
	TicketsBacklog int `gorm:"column:updated_tickets_backlog" json:"updated_tickets_backlog"`

	CurrentOpened  int `gorm:"column:updated_current_opened_tickets" json:"updated_current_opened_tickets"`
	CurrentClosed  int `gorm:"column:updated_current_closed_tickets" json:"updated_current_closed_tickets"`
	CurrentBacklog int `gorm:"column:updated_current_backlog_tickets" json:"updated_current_backlog_tickets"`

	P1Opened  int `gorm:"column:updated_p1_opened" json:"updated_p1_opened"`
	P1Closed  int `gorm:"column:updated_p1_closed" json:"updated_p1_closed"`
	P1Backlog int `gorm:"column:updated_p1_backlog" json:"updated_p1_backlog"`
	P2Opened  int `gorm:"column:updated_p2_opened" json:"updated_p2_opened"`
	P2Closed  int `gorm:"column:updated_p2_closed" json:"updated_p2_closed"`
	P2Backlog int `gorm:"column:updated_p2_backlog" json:"updated_p2_backlog"`
	P3Opened  int `gorm:"column:updated_p3_opened" json:"updated_p3_opened"`
	P3Closed  int `gorm:"column:updated_p3_closed" json:"updated_p3_closed"`
	P3Backlog int `gorm:"column:updated_p3_backlog" json:"updated_p3_backlog"`
	P4Opened  int `gorm:"column:updated_p4_opened" json:"updated_p4_opened"`
	P4Closed  int `gorm:"column:updated_p4_closed" json:"updated_p4_closed"`
	P4Backlog int `gorm:"column:updated_p4_backlog" json:"updated_p4_backlog"`
}

func (AggregateRecord) TableName() string { return "final_computed_table" }

// CustomerRef pairs the key name with its configured display name for
// dropdowns.
type CustomerRef struct {
	Name     string `json:"name"`
	FullName string `json:"full"`
}
