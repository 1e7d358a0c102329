package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/healthdeck/healthdeck/internal/audit/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultLatestLimit = 10

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("audit.service"),
		repo: p.Repo,
	}
}

func (s *Service) Latest(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	if limit <= 0 {
		limit = defaultLatestLimit
	}
	return s.repo.Latest(ctx, s.db, limit)
}

func (s *Service) ExportCSV(ctx context.Context, w io.Writer) error {
	entries, err := s.repo.All(ctx, s.db)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	header := []string{
		"audit_id", "table_name", "operation_type", "changed_at", "username",
		"old_data", "new_data", "primary_key_value", "section_name", "comment",
	}
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, entry := range entries {
		record := []string{
			strconv.FormatInt(entry.AuditID, 10),
			entry.Table,
			entry.Operation,
			entry.ChangedAt.UTC().Format(time.RFC3339),
			entry.Username,
			string(entry.OldData),
			string(entry.NewData),
			string(entry.PrimaryKeyValue),
			entry.SectionName,
			entry.Comment,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func (s *Service) AttachComment(ctx context.Context, req domain.AttachCommentRequest) error {
	table, ok := domain.SectionTables[strings.ToLower(strings.TrimSpace(req.Section))]
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrInvalidSection, req.Section)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entry, err := s.repo.FindUnconsumed(ctx, tx, table, req.Operation, req.Key)
		if err != nil {
			return err
		}
		if entry == nil {
			return fmt.Errorf("%w: customer=%s month=%s section=%s operation=%s",
				domain.ErrNoMatchingEntry,
				req.Key.Customer, req.Key.Month, req.Section, req.Operation)
		}
		return s.repo.SetComment(ctx, tx, entry.AuditID, req.Comment, strings.ToLower(strings.TrimSpace(req.Section)))
	})
}
