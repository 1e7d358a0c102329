package repository

import (
	"context"
	"errors"
	"time"

	"github.com/healthdeck/healthdeck/internal/metrics/domain"
	"github.com/healthdeck/healthdeck/internal/month"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Apply(ctx context.Context, db *gorm.DB, table string, key month.Key, fields map[string]any) error {
	return db.WithContext(ctx).
		Table(table).
		Where("customer_name = ? AND month_year = ?", key.Customer, key.Month.Time()).
		Updates(fields).Error
}

func (r *repo) PropagateCapacity(ctx context.Context, db *gorm.DB, table string, key month.Key, fields map[string]any) error {
	return db.WithContext(ctx).
		Table(table).
		Where("customer_name = ? AND month_year > ?", key.Customer, key.Month.Time()).
		Updates(fields).Error
}

func (r *repo) Exists(ctx context.Context, db *gorm.DB, key month.Key) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.AggregateRecord{}).
		Where("customer_name = ? AND month_year = ?", key.Customer, key.Month.Time()).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) Get(ctx context.Context, db *gorm.DB, key month.Key) (*domain.AggregateRecord, error) {
	var record domain.AggregateRecord
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

func (r *repo) ListRange(ctx context.Context, db *gorm.DB, customer string, from, to month.Month) ([]domain.AggregateRecord, error) {
	var records []domain.AggregateRecord
	err := db.WithContext(ctx).
		Where("customer_name = ? AND month_year BETWEEN ? AND ?", customer, from.Time(), to.Time()).
		Order("month_year ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repo) CreateZeroRows(ctx context.Context, db *gorm.DB, key month.Key) error {
	availability := domain.AvailabilityRecord{CustomerName: key.Customer, MonthYear: key.Month.Time()}
	users := domain.UsersRecord{CustomerName: key.Customer, MonthYear: key.Month.Time()}
	storage := domain.StorageRecord{CustomerName: key.Customer, MonthYear: key.Month.Time()}
	tickets := domain.TicketsRecord{CustomerName: key.Customer, MonthYear: key.Month.Time()}
	return r.CreateDomainRows(ctx, db, &availability, &users, &storage, &tickets)
}

func (r *repo) AggregateFromDomain(ctx context.Context, db *gorm.DB, key month.Key) (*domain.AggregateRecord, error) {
	record := domain.AggregateRecord{
		CustomerName: key.Customer,
		MonthYear:    key.Month.Time(),
		CustomerUIDs: []byte("[]"),
	}

	var availability domain.AvailabilityRecord
	err := db.WithContext(ctx).
		Where("customer_name = ? AND month_year = ?", key.Customer, key.Month.Time()).
		First(&availability).Error
	if err == nil {
		record.Availability = availability.Availability
		record.Target = availability.Target
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var users domain.UsersRecord
	err = db.WithContext(ctx).
		Where("customer_name = ? AND month_year = ?", key.Customer, key.Month.Time()).
		First(&users).Error
	if err == nil {
		record.ProdLimit = users.ProdLimit
		record.TestLimit = users.TestLimit
		record.DevLimit = users.DevLimit
		record.ProdUsed = users.ProdUsed
		record.TestUsed = users.TestUsed
		record.DevUsed = users.DevUsed
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var storage domain.StorageRecord
	err = db.WithContext(ctx).
		Where("customer_name = ? AND month_year = ?", key.Customer, key.Month.Time()).
		First(&storage).Error
	if err == nil {
		record.ProdTargetGB = storage.ProdTargetGB
		record.TestTargetGB = storage.TestTargetGB
		record.DevTargetGB = storage.DevTargetGB
		record.ProdUsedGB = storage.ProdUsedGB
		record.TestUsedGB = storage.TestUsedGB
		record.DevUsedGB = storage.DevUsedGB
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var tickets domain.TicketsRecord
	err = db.WithContext(ctx).
		Where("customer_name = ? AND month_year = ?", key.Customer, key.Month.Time()).
		First(&tickets).Error
	if err == nil {
		record.TicketsOpened = tickets.Opened
		record.TicketsClosed = tickets.Closed
		record.TicketsBacklog = tickets.Backlog
		record.CurrentOpened = tickets.CurrentOpened
		record.CurrentClosed = tickets.CurrentClosed
		record.CurrentBacklog = tickets.CurrentBacklog
		record.P1Opened, record.P1Closed, record.P1Backlog = tickets.P1Opened, tickets.P1Closed, tickets.P1Backlog
		record.P2Opened, record.P2Closed, record.P2Backlog = tickets.P2Opened, tickets.P2Closed, tickets.P2Backlog
		record.P3Opened, record.P3Closed, record.P3Backlog = tickets.P3Opened, tickets.P3Closed, tickets.P3Backlog
		record.P4Opened, record.P4Closed, record.P4Backlog = tickets.P4Opened, tickets.P4Closed, tickets.P4Backlog
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return &record, nil
}

func (r *repo) CreateAggregate(ctx context.Context, db *gorm.DB, record *domain.AggregateRecord) error {
	return db.WithContext(ctx).Create(record).Error
}

func (r *repo) CreateDomainRows(ctx context.Context, db *gorm.DB, a *domain.AvailabilityRecord, u *domain.UsersRecord, s *domain.StorageRecord, t *domain.TicketsRecord) error {
	if err := db.WithContext(ctx).Create(a).Error; err != nil {
		return err
	}
	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		return err
	}
	if err := db.WithContext(ctx).Create(s).Error; err != nil {
		return err
	}
	return db.WithContext(ctx).Create(t).Error
}

func (r *repo) DeleteAll(ctx context.Context, db *gorm.DB, key month.Key) (map[string]int64, error) {
	tables := []string{
		domain.TableAggregate,
		domain.TableAvailability,
		domain.TableUsers,
		domain.TableStorage,
		domain.TableTickets,
		domain.TableConfig,
	}
	counts := make(map[string]int64, len(tables))
	for _, table := range tables {
		res := db.WithContext(ctx).Exec(
			"DELETE FROM "+table+" WHERE customer_name = ? AND month_year = ?",
			key.Customer, key.Month.Time(),
		)
		if res.Error != nil {
			return nil, res.Error
		}
		counts[table] = res.RowsAffected
	}
	return counts, nil
}

func (r *repo) ListCustomers(ctx context.Context, db *gorm.DB) ([]domain.CustomerRef, error) {
	var refs []domain.CustomerRef
	err := db.WithContext(ctx).Raw(`
		SELECT DISTINCT f.customer_name AS name, COALESCE(cm.customer_full_name, '') AS full_name
		FROM final_computed_table f
		LEFT JOIN customer_mapping_table cm ON f.customer_name = cm.customer_name
		ORDER BY f.customer_name`).
		Scan(&refs).Error
	if err != nil {
		return nil, err
	}
	return refs, nil
}

func (r *repo) ListMonths(ctx context.Context, db *gorm.DB, customer string) ([]month.Month, error) {
	var raw []time.Time
	err := db.WithContext(ctx).
		Model(&domain.AggregateRecord{}).
		Distinct("month_year").
		Where("customer_name = ?", customer).
		Order("month_year DESC").
		Pluck("month_year", &raw).Error
	if err != nil {
		return nil, err
	}
	return toMonths(raw), nil
}

func (r *repo) PendingCustomers(ctx context.Context, db *gorm.DB) ([]string, error) {
	var customers []string
	err := db.WithContext(ctx).Raw(`
		SELECT DISTINCT cm.customer_name
		FROM customer_mapping_table cm
		LEFT JOIN final_computed_table f
		  ON f.customer_name = cm.customer_name AND f.month_year = cm.month_year
		WHERE f.customer_name IS NULL
		ORDER BY cm.customer_name`).
		Scan(&customers).Error
	if err != nil {
		return nil, err
	}
	return customers, nil
}

func (r *repo) PendingMonths(ctx context.Context, db *gorm.DB, customer string) ([]month.Month, error) {
	var raw []time.Time
	err := db.WithContext(ctx).Raw(`
		SELECT cm.month_year
		FROM customer_mapping_table cm
		LEFT JOIN final_computed_table f
		  ON f.customer_name = cm.customer_name AND f.month_year = cm.month_year
		WHERE cm.customer_name = ? AND f.customer_name IS NULL
		ORDER BY cm.month_year`, customer).
		Scan(&raw).Error
	if err != nil {
		return nil, err
	}
	return toMonths(raw), nil
}

func (r *repo) ListCSMs(ctx context.Context, db *gorm.DB) ([]string, error) {
	var csms []string
	err := db.WithContext(ctx).Raw(`
		SELECT DISTINCT csm FROM (
			SELECT csm_primary AS csm FROM final_computed_table
			UNION
			SELECT csm_secondary AS csm FROM final_computed_table
		) all_csms
		WHERE csm IS NOT NULL AND csm <> ''
		ORDER BY csm`).
		Scan(&csms).Error
	if err != nil {
		return nil, err
	}
	return csms, nil
}

func (r *repo) MonthsForCSM(ctx context.Context, db *gorm.DB, csm string) ([]month.Month, error) {
	var raw []time.Time
	err := db.WithContext(ctx).
		Model(&domain.AggregateRecord{}).
		Distinct("month_year").
		Where("csm_primary = ? OR csm_secondary = ?", csm, csm).
		Order("month_year ASC").
		Pluck("month_year", &raw).Error
	if err != nil {
		return nil, err
	}
	return toMonths(raw), nil
}

func (r *repo) RangeForCSM(ctx context.Context, db *gorm.DB, csm string, from, to month.Month) ([]domain.AggregateRecord, error) {
	var records []domain.AggregateRecord
	err := db.WithContext(ctx).
		Where("(csm_primary = ? OR csm_secondary = ?) AND month_year BETWEEN ? AND ?",
			csm, csm, from.Time(), to.Time()).
		Order("customer_name ASC, month_year DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func toMonths(raw []time.Time) []month.Month {
	months := make([]month.Month, 0, len(raw))
	for _, t := range raw {
		months = append(months, month.Of(t))
	}
	return months
}
