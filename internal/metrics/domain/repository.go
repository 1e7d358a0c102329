package domain

import (
	"context"

	"github.com/healthdeck/healthdeck/internal/month"
	"gorm.io/gorm"
)

// Table names the synchronizer fans writes out to. Delete order matters
// only for readability of the per-table counts; everything runs inside one
// transaction.
const (
	TableAggregate    = "final_computed_table"
	TableAvailability = "availability_table"
	TableUsers        = "users_table"
	TableStorage      = "storage_table"
	TableTickets      = "tickets_computed_table"
	TableConfig       = "customer_mapping_table"
)

type Repository interface {
	// Apply sets the given updated_* columns on one table for exactly the
	// keyed month.
	Apply(ctx context.Context, db *gorm.DB, table string, key month.Key, fields map[string]any) error
	// PropagateCapacity copies capacity columns (limits, storage targets)
	// onto every row of the customer with month_year strictly after the
	// key's month. Usage columns never propagate.
	PropagateCapacity(ctx context.Context, db *gorm.DB, table string, key month.Key, fields map[string]any) error

	Exists(ctx context.Context, db *gorm.DB, key month.Key) (bool, error)
	Get(ctx context.Context, db *gorm.DB, key month.Key) (*AggregateRecord, error)
	ListRange(ctx context.Context, db *gorm.DB, customer string, from, to month.Month) ([]AggregateRecord, error)

	// CreateZeroRows seeds all four domain tables with zero-valued rows for
	// the key (configuration mode).
	CreateZeroRows(ctx context.Context, db *gorm.DB, key month.Key) error
	// AggregateFromDomain assembles an aggregate row from whatever domain
	// rows exist for the key, zero-filling the rest.
	AggregateFromDomain(ctx context.Context, db *gorm.DB, key month.Key) (*AggregateRecord, error)
	CreateAggregate(ctx context.Context, db *gorm.DB, record *AggregateRecord) error
	CreateDomainRows(ctx context.Context, db *gorm.DB, a *AvailabilityRecord, u *UsersRecord, s *StorageRecord, t *TicketsRecord) error

	// DeleteAll removes the keyed row from all six tables and reports how
	// many rows each table lost.
	DeleteAll(ctx context.Context, db *gorm.DB, key month.Key) (map[string]int64, error)

	ListCustomers(ctx context.Context, db *gorm.DB) ([]CustomerRef, error)
	ListMonths(ctx context.Context, db *gorm.DB, customer string) ([]month.Month, error)
	// PendingCustomers/PendingMonths report config rows that have no
	// aggregate row yet, i.e. configuration saved but table data missing.
	PendingCustomers(ctx context.Context, db *gorm.DB) ([]string, error)
	PendingMonths(ctx context.Context, db *gorm.DB, customer string) ([]month.Month, error)

	ListCSMs(ctx context.Context, db *gorm.DB) ([]string, error)
	MonthsForCSM(ctx context.Context, db *gorm.DB, csm string) ([]month.Month, error)
	RangeForCSM(ctx context.Context, db *gorm.DB, csm string, from, to month.Month) ([]AggregateRecord, error)
}
