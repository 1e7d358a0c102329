package domain

import (
	"context"
	"errors"

	"github.com/healthdeck/healthdeck/internal/month"
)

type Service interface {
	// Assemble builds the report document for the window ending at the
	// key's month. Reads only; assembling twice yields the same document.
	Assemble(ctx context.Context, key month.Key) (*Document, error)
}

var (
	// ErrNoData: nothing in either table for the whole window.
	ErrNoData = errors.New("no_report_data")
	// ErrCurrentMonthMissing: the window has rows but the end month itself
	// is absent from config or aggregate.
	ErrCurrentMonthMissing = errors.New("current_month_data_missing")
)
