package domain

import (
	"context"
	"errors"

	"github.com/healthdeck/healthdeck/internal/month"
)

// UsersInput carries seat counts for one month. Limits propagate forward on
// save; used counts apply to the keyed month only.
type UsersInput struct {
	ProdLimit int `json:"prod_limit"`
	ProdUsed  int `json:"prod_used"`
	TestLimit int `json:"test_limit"`
	TestUsed  int `json:"test_used"`
	DevLimit  int `json:"dev_limit"`
	DevUsed   int `json:"dev_used"`
}

// StorageInput carries storage figures in GB. Targets propagate forward on
// save; actuals apply to the keyed month only.
type StorageInput struct {
	ProdTargetGB float64 `json:"prod_target"`
	ProdUsedGB   float64 `json:"prod_actual"`
	TestTargetGB float64 `json:"test_target"`
	TestUsedGB   float64 `json:"test_actual"`
	DevTargetGB  float64 `json:"dev_target"`
	DevUsedGB    float64 `json:"dev_actual"`
}

// TicketsInput carries the editable ticket counters. Nothing propagates.
type TicketsInput struct {
	Opened         int `json:"opened"`
	Closed         int `json:"closed"`
	CurrentBacklog int `json:"curr_backlog"`
	OverallBacklog int `json:"overall_backlog"`
}

const (
	InsertModeConfig = "config"
	InsertModeTable  = "table"
)

// TableValues is the full metric payload for a table-mode insert.
// Availability and Target arrive as percents and are stored as fractions.
type TableValues struct {
	Availability float64 `json:"updated_availability"`
	Target       float64 `json:"updated_target"`

	ProdLimit int `json:"updated_prod_limit"`
	TestLimit int `json:"updated_test_limit"`
	DevLimit  int `json:"updated_dev_limit"`
	ProdUsed  int `json:"updated_prod_used"`
	TestUsed  int `json:"updated_test_used"`
	DevUsed   int `json:"updated_dev_used"`

	ProdTargetGB float64 `json:"updated_prod_target_storage_gb"`
	TestTargetGB float64 `json:"updated_test_target_storage_gb"`
	DevTargetGB  float64 `json:"updated_dev_target_storage_gb"`
	ProdUsedGB   float64 `json:"updated_prod_storage_gb"`
	TestUsedGB   float64 `json:"updated_test_storage_gb"`
	DevUsedGB    float64 `json:"updated_dev_storage_gb"`

	TicketsOpened  int `json:"updated_tickets_opened"`
	TicketsClosed  int `json:"updated_tickets_closed"`
	TicketsBacklog int `json:"updated_tickets_backlog"`

	CurrentOpened  int `json:"updated_current_opened_tickets"`
	CurrentClosed  int `json:"updated_current_closed_tickets"`
	CurrentBacklog int `json:"updated_current_backlog_tickets"`
}

type InsertRequest struct {
	Mode string
	Key  month.Key

	// Config mode fields.
	CSMPrimary   string
	CSMSecondary string
	WindowMonths int
	Environments int

	// Table mode fields.
	Values TableValues
}

// DeleteResult reports how many rows each table lost. Total of zero is a
// failure, not a no-op.
type DeleteResult struct {
	Counts map[string]int64 `json:"deleted_counts"`
	Total  int64            `json:"total"`
}

type Service interface {
	SaveAvailability(ctx context.Context, key month.Key, availabilityPct, targetPct float64) error
	SaveUsers(ctx context.Context, key month.Key, in UsersInput) (warnings []string, err error)
	SaveStorage(ctx context.Context, key month.Key, in StorageInput) error
	SaveTickets(ctx context.Context, key month.Key, in TicketsInput) error

	InsertRecord(ctx context.Context, req InsertRequest) error
	DeleteRecord(ctx context.Context, key month.Key) (DeleteResult, error)

	RecordExists(ctx context.Context, key month.Key) (bool, error)
	Get(ctx context.Context, key month.Key) (*AggregateRecord, error)
	ListRange(ctx context.Context, customer string, end month.Month, months int) ([]AggregateRecord, error)

	ListCustomers(ctx context.Context) ([]CustomerRef, error)
	ListMonths(ctx context.Context, customer string) ([]month.Month, error)
	PendingCustomers(ctx context.Context) ([]string, error)
	PendingMonths(ctx context.Context, customer string) ([]month.Month, error)

	ListCSMs(ctx context.Context) ([]string, error)
	MonthsForCSM(ctx context.Context, csm string) ([]month.Month, error)
	RangeForCSM(ctx context.Context, csm string, end month.Month, months int) ([]AggregateRecord, error)
}

var (
	ErrNotFound        = errors.New("record_not_found")
	ErrValueOutOfRange = errors.New("values must be ≤ 100")
	ErrCustomerExists  = errors.New("customer_already_exists")
	ErrConfigMissing   = errors.New("configuration_missing")
	ErrRecordExists    = errors.New("record_already_exists")
	ErrNothingDeleted  = errors.New("nothing_deleted")
	ErrInvalidMode     = errors.New("invalid_mode")
)
