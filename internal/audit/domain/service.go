package domain

import (
	"context"
	"errors"
	"io"

	"github.com/healthdeck/healthdeck/internal/month"
	"gorm.io/gorm"
)

// SectionTables maps the UI section a user commented from to the audited
// table the comment belongs on.
var SectionTables = map[string]string{
	"availability": "availability_table",
	"users":        "users_table",
	"storage":      "storage_table",
	"tickets":      "tickets_computed_table",
	"config":       "customer_mapping_table",
}

type AttachCommentRequest struct {
	Key       month.Key
	Section   string
	Operation string
	Comment   string
}

type Repository interface {
	Latest(ctx context.Context, db *gorm.DB, limit int) ([]AuditEntry, error)
	All(ctx context.Context, db *gorm.DB) ([]AuditEntry, error)
	// FindUnconsumed returns the most recent entry matching table,
	// operation and key that carries no comment yet, or nil.
	FindUnconsumed(ctx context.Context, db *gorm.DB, table, operation string, key month.Key) (*AuditEntry, error)
	SetComment(ctx context.Context, db *gorm.DB, auditID int64, comment, section string) error
}

type Service interface {
	Latest(ctx context.Context, limit int) ([]AuditEntry, error)
	ExportCSV(ctx context.Context, w io.Writer) error
	// AttachComment annotates the best-matching audit entry: most recent
	// first, first match wins. A miss is reported, never retried.
	AttachComment(ctx context.Context, req AttachCommentRequest) error
}

var (
	ErrInvalidSection  = errors.New("invalid_section")
	ErrNoMatchingEntry = errors.New("no_matching_audit_record")
)
