package domain

import (
	"context"
	"errors"

	"github.com/healthdeck/healthdeck/internal/month"
)

// UpsertRequest carries the configuration screen payload. The eight
// structured fields arrive as raw text and must all parse before any write
// happens.
type UpsertRequest struct {
	Key month.Key

	CustomerFullName string
	CSMPrimary       string
	CSMSecondary     string
	Environments     int
	WindowMonths     int
	CustomerNote     string

	// NewCustomerUID, when non-empty, is appended to the stored list.
	NewCustomerUID string

	AvailabilityRules string
	UsersRules        string
	StorageRules      string
	IndicatorColors   string
	CircleColors      string
	AvailabilityNotes string
	UsersNotes        string
	StorageNotes      string
}

type Service interface {
	Get(ctx context.Context, key month.Key) (*ConfigRecord, error)
	// Resolve returns the config row for the key, falling back to the
	// customer's most recent row when the month has none.
	Resolve(ctx context.Context, key month.Key) (*ConfigRecord, error)
	Upsert(ctx context.Context, req UpsertRequest) error
}

var (
	ErrNotFound = errors.New("config_not_found")
)

// FieldError is a validation failure tied to one configuration field; it
// blocks the whole upsert.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}
