package domain

import (
	"context"

	"github.com/healthdeck/healthdeck/internal/month"
	"gorm.io/gorm"
)

type Repository interface {
	Get(ctx context.Context, db *gorm.DB, key month.Key) (*ConfigRecord, error)
	// Latest returns the most recent config row for a customer, used as a
	// fallback when the requested month has none.
	Latest(ctx context.Context, db *gorm.DB, customer string) (*ConfigRecord, error)
	// ExistsForCustomer reports whether any month is configured for the
	// customer; record creation in configuration mode is guarded by it.
	ExistsForCustomer(ctx context.Context, db *gorm.DB, customer string) (bool, error)
	Insert(ctx context.Context, db *gorm.DB, record *ConfigRecord) error
	Update(ctx context.Context, db *gorm.DB, record *ConfigRecord) error
	// ListRange returns config rows for the customer inside [from, to].
	ListRange(ctx context.Context, db *gorm.DB, customer string, from, to month.Month) ([]ConfigRecord, error)
	// MirrorCSMs copies the CSM assignment into the aggregate row for the
	// same key so the reporting queries see it without a join.
	MirrorCSMs(ctx context.Context, db *gorm.DB, key month.Key, primary, secondary string) error
}
