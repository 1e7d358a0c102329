package repository

import (
	"context"
	"errors"

	"github.com/healthdeck/healthdeck/internal/audit/domain"
	"github.com/healthdeck/healthdeck/internal/month"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Latest(ctx context.Context, db *gorm.DB, limit int) ([]domain.AuditEntry, error) {
	var entries []domain.AuditEntry
	err := db.WithContext(ctx).
		Order("changed_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repo) All(ctx context.Context, db *gorm.DB) ([]domain.AuditEntry, error) {
	var entries []domain.AuditEntry
	err := db.WithContext(ctx).
		Order("changed_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repo) FindUnconsumed(ctx context.Context, db *gorm.DB, table, operation string, key month.Key) (*domain.AuditEntry, error) {
	// Triggers have stored the month both as a bare date and with a time
	// suffix over the years, and under two different key names. Match by
	// prefix on either.
	pattern := key.Month.String() + "%"

	var entry domain.AuditEntry
	err := db.WithContext(ctx).
		Where("table_name = ? AND operation_type = ?", table, operation).
		Where(datatypes.JSONQuery("primary_key_value").Equals(key.Customer, "customer_name")).
		Where(
			db.Where(datatypes.JSONQuery("primary_key_value").Likes(pattern, "month_year")).
				Or(datatypes.JSONQuery("primary_key_value").Likes(pattern, "month")),
		).
		Where("comment IS NULL OR comment = ''").
		Order("changed_at DESC").
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repo) SetComment(ctx context.Context, db *gorm.DB, auditID int64, comment, section string) error {
	return db.WithContext(ctx).
		Model(&domain.AuditEntry{}).
		Where("audit_id = ?", auditID).
		Updates(map[string]any{
			"comment":      comment,
			"section_name": section,
		}).Error
}
