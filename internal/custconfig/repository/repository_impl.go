package repository

import (
	"context"
	"errors"

	"github.com/healthdeck/healthdeck/internal/custconfig/domain"
	"github.com/healthdeck/healthdeck/internal/month"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Get(ctx context.Context, db *gorm.DB, key month.Key) (*domain.ConfigRecord, error) {
	var record domain.ConfigRecord
	err := db.WithContext(ctx).
		Where("customer_name = ? AND month_year = ?", key.Customer, key.Month.Time()).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repo) Latest(ctx context.Context, db *gorm.DB, customer string) (*domain.ConfigRecord, error) {
	var record domain.ConfigRecord
	err := db.WithContext(ctx).
		Where("customer_name = ?", customer).
		Order("month_year DESC").
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repo) ExistsForCustomer(ctx context.Context, db *gorm.DB, customer string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.ConfigRecord{}).
		Where("customer_name = ?", customer).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, record *domain.ConfigRecord) error {
	return db.WithContext(ctx).Create(record).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, record *domain.ConfigRecord) error {
	return db.WithContext(ctx).
		Model(&domain.ConfigRecord{}).
		Where("customer_name = ? AND month_year = ?", record.CustomerName, record.MonthYear).
		Select("customer_full_name", "csm_primary", "csm_secondary", "customer_uid",
			"no_of_environments", "no_of_months",
			"color_map_thresholds_availability", "color_map_thresholds_users", "color_map_thresholds_storage",
			"indicator_color_code_rules", "circle_color_code_rules",
			"notes_availability", "notes_users", "notes_storage", "customer_note").
		Updates(record).Error
}

func (r *repo) MirrorCSMs(ctx context.Context, db *gorm.DB, key month.Key, primary, secondary string) error {
	return db.WithContext(ctx).Exec(
		`UPDATE final_computed_table SET csm_primary = ?, csm_secondary = ?
		 WHERE customer_name = ? AND month_year = ?`,
		primary, secondary, key.Customer, key.Month.Time(),
	).Error
}

func (r *repo) ListRange(ctx context.Context, db *gorm.DB, customer string, from, to month.Month) ([]domain.ConfigRecord, error) {
	var records []domain.ConfigRecord
	err := db.WithContext(ctx).
		Where("customer_name = ? AND month_year BETWEEN ? AND ?", customer, from.Time(), to.Time()).
		Order("month_year ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
