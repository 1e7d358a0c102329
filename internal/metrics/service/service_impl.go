package service

import (
	"context"
	"fmt"
	"strings"

	configdomain "github.com/healthdeck/healthdeck/internal/custconfig/domain"
	"github.com/healthdeck/healthdeck/internal/metrics/domain"
	"github.com/healthdeck/healthdeck/internal/month"
	"github.com/healthdeck/healthdeck/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Repo       domain.Repository
	ConfigRepo configdomain.Repository
}

// Service fans each metric write out to its domain table and the aggregate
// inside one transaction, so the two never diverge for committed data.
type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	repo       domain.Repository
	configRepo configdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("metrics.service"),
		repo:       p.Repo,
		configRepo: p.ConfigRepo,
	}
}

func (s *Service) SaveAvailability(ctx context.Context, key month.Key, availabilityPct, targetPct float64) error {
	if availabilityPct > 100 || targetPct > 100 {
		return domain.ErrValueOutOfRange
	}
	// Stored as fractions; screens work in percent.
	fields := map[string]any{
		"updated_availability": availabilityPct / 100,
		"updated_target":       targetPct / 100,
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Apply(ctx, tx, domain.TableAggregate, key, fields); err != nil {
			return err
		}
		return s.repo.Apply(ctx, tx, domain.TableAvailability, key, fields)
	})
}

func (s *Service) SaveUsers(ctx context.Context, key month.Key, in domain.UsersInput) ([]string, error) {
	var warnings []string
	if in.ProdUsed > in.ProdLimit {
		warnings = append(warnings, "Prod Used > Prod Limit")
	}
	if in.TestUsed > in.TestLimit {
		warnings = append(warnings, "Test Used > Test Limit")
	}
	// A zero dev limit means the dev tier is unconfigured, not exhausted.
	if in.DevUsed > in.DevLimit && in.DevLimit > 0 {
		warnings = append(warnings, "Dev Used > Dev Limit")
	}

	fields := map[string]any{
		"updated_prod_limit": in.ProdLimit,
		"updated_prod_used":  in.ProdUsed,
		"updated_test_limit": in.TestLimit,
		"updated_test_used":  in.TestUsed,
		"updated_dev_limit":  in.DevLimit,
		"updated_dev_used":   in.DevUsed,
	}
	capacity := map[string]any{
		"updated_prod_limit": in.ProdLimit,
		"updated_test_limit": in.TestLimit,
		"updated_dev_limit":  in.DevLimit,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range []string{domain.TableAggregate, domain.TableUsers} {
			if err := s.repo.Apply(ctx, tx, table, key, fields); err != nil {
				return err
			}
			if err := s.repo.PropagateCapacity(ctx, tx, table, key, capacity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(warnings) > 0 {
		s.log.Warn("users saved with warnings",
			zap.String("customer", key.Customer),
			zap.String("month", key.Month.String()),
			zap.Strings("warnings", warnings))
	}
	return warnings, nil
}

func (s *Service) SaveStorage(ctx context.Context, key month.Key, in domain.StorageInput) error {
	fields := map[string]any{
		"updated_prod_target_storage_gb": in.ProdTargetGB,
		"updated_prod_storage_gb":        in.ProdUsedGB,
		"updated_test_target_storage_gb": in.TestTargetGB,
		"updated_test_storage_gb":        in.TestUsedGB,
		"updated_dev_target_storage_gb":  in.DevTargetGB,
		"updated_dev_storage_gb":         in.DevUsedGB,
	}
	capacity := map[string]any{
		"updated_prod_target_storage_gb": in.ProdTargetGB,
		"updated_test_target_storage_gb": in.TestTargetGB,
		"updated_dev_target_storage_gb":  in.DevTargetGB,
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range []string{domain.TableAggregate, domain.TableStorage} {
			if err := s.repo.Apply(ctx, tx, table, key, fields); err != nil {
				return err
			}
			if err := s.repo.PropagateCapacity(ctx, tx, table, key, capacity); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Service) SaveTickets(ctx context.Context, key month.Key, in domain.TicketsInput) error {
	fields := map[string]any{
		"updated_current_opened_tickets":  in.Opened,
		"updated_current_closed_tickets":  in.Closed,
		"updated_current_backlog_tickets": in.CurrentBacklog,
		"updated_tickets_backlog":         in.OverallBacklog,
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Apply(ctx, tx, domain.TableAggregate, key, fields); err != nil {
			return err
		}
		return s.repo.Apply(ctx, tx, domain.TableTickets, key, fields)
	})
}

func (s *Service) InsertRecord(ctx context.Context, req domain.InsertRequest) error {
	switch req.Mode {
	case domain.InsertModeConfig:
		return s.insertConfig(ctx, req)
	case domain.InsertModeTable:
		return s.insertTable(ctx, req)
	default:
		return fmt.Errorf("%w: %q", domain.ErrInvalidMode, req.Mode)
	}
}

// insertConfig creates the first configuration row for a brand-new customer
// together with zero-valued metric rows, so every later edit is an update.
func (s *Service) insertConfig(ctx context.Context, req domain.InsertRequest) error {
	secondary := strings.TrimSpace(req.CSMSecondary)
	if secondary == "" {
		secondary = strings.TrimSpace(req.CSMPrimary)
	}
	windowMonths := req.WindowMonths
	if windowMonths <= 0 {
		windowMonths = configdomain.DefaultWindowMonths
	}
	environments := req.Environments
	if environments <= 0 {
		environments = 2
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := s.configRepo.ExistsForCustomer(ctx, tx, req.Key.Customer)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: %s", domain.ErrCustomerExists, req.Key.Customer)
		}

		config := &configdomain.ConfigRecord{
			CustomerName: req.Key.Customer,
			MonthYear:    req.Key.Month.Time(),
			CSMPrimary:   strings.TrimSpace(req.CSMPrimary),
			CSMSecondary: secondary,
			Environments: environments,
			WindowMonths: windowMonths,
			CustomerUIDs: []byte("[]"),
		}
		if err := s.configRepo.Insert(ctx, tx, config); err != nil {
			// Concurrent insert slipping past the existence check.
			if db.IsDuplicateKeyErr(err) {
				return fmt.Errorf("%w: %s", domain.ErrCustomerExists, req.Key.Customer)
			}
			return err
		}

		if err := s.repo.CreateZeroRows(ctx, tx, req.Key); err != nil {
			return err
		}
		aggregate, err := s.repo.AggregateFromDomain(ctx, tx, req.Key)
		if err != nil {
			return err
		}
		aggregate.CSMPrimary = config.CSMPrimary
		aggregate.CSMSecondary = config.CSMSecondary
		return s.repo.CreateAggregate(ctx, tx, aggregate)
	})
}

// insertTable adds a full month of metric data for an already configured
// customer: the aggregate row plus matching domain rows, base and updated
// columns seeded with the same values.
func (s *Service) insertTable(ctx context.Context, req domain.InsertRequest) error {
	v := req.Values
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		config, err := s.configRepo.Get(ctx, tx, req.Key)
		if err != nil {
			return err
		}
		if config == nil {
			return domain.ErrConfigMissing
		}

		exists, err := s.repo.Exists(ctx, tx, req.Key)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrRecordExists
		}

		availabilityFrac := v.Availability / 100
		targetFrac := v.Target / 100

		aggregate := &domain.AggregateRecord{
			CustomerName: req.Key.Customer,
			MonthYear:    req.Key.Month.Time(),
			CSMPrimary:   config.CSMPrimary,
			CSMSecondary: config.CSMSecondary,
			CustomerUIDs: []byte("[]"),

			Availability: availabilityFrac,
			Target:       targetFrac,

			ProdLimit: v.ProdLimit, TestLimit: v.TestLimit, DevLimit: v.DevLimit,
			ProdUsed: v.ProdUsed, TestUsed: v.TestUsed, DevUsed: v.DevUsed,

			ProdTargetGB: v.ProdTargetGB, TestTargetGB: v.TestTargetGB, DevTargetGB: v.DevTargetGB,
			ProdUsedGB: v.ProdUsedGB, TestUsedGB: v.TestUsedGB, DevUsedGB: v.DevUsedGB,

			TicketsOpened: v.TicketsOpened, TicketsClosed: v.TicketsClosed, TicketsBacklog: v.TicketsBacklog,
			CurrentOpened: v.CurrentOpened, CurrentClosed: v.CurrentClosed, CurrentBacklog: v.CurrentBacklog,
		}
		if err := s.repo.CreateAggregate(ctx, tx, aggregate); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrRecordExists
			}
			return err
		}

		availability := &domain.AvailabilityRecord{
			CustomerName: req.Key.Customer, MonthYear: req.Key.Month.Time(),
			BaseAvailability: availabilityFrac, Availability: availabilityFrac,
			BaseTarget: targetFrac, Target: targetFrac,
		}
		users := &domain.UsersRecord{
			CustomerName: req.Key.Customer, MonthYear: req.Key.Month.Time(),
			BaseProdLimit: v.ProdLimit, BaseProdUsed: v.ProdUsed,
			BaseTestLimit: v.TestLimit, BaseTestUsed: v.TestUsed,
			BaseDevLimit: v.DevLimit, BaseDevUsed: v.DevUsed,
			ProdLimit: v.ProdLimit, ProdUsed: v.ProdUsed,
			TestLimit: v.TestLimit, TestUsed: v.TestUsed,
			DevLimit: v.DevLimit, DevUsed: v.DevUsed,
		}
		storage := &domain.StorageRecord{
			CustomerName: req.Key.Customer, MonthYear: req.Key.Month.Time(),
			BaseProdTargetGB: v.ProdTargetGB, BaseProdUsedGB: v.ProdUsedGB,
			BaseTestTargetGB: v.TestTargetGB, BaseTestUsedGB: v.TestUsedGB,
			BaseDevTargetGB: v.DevTargetGB, BaseDevUsedGB: v.DevUsedGB,
			ProdTargetGB: v.ProdTargetGB, ProdUsedGB: v.ProdUsedGB,
			TestTargetGB: v.TestTargetGB, TestUsedGB: v.TestUsedGB,
			DevTargetGB: v.DevTargetGB, DevUsedGB: v.DevUsedGB,
		}
		tickets := &domain.TicketsRecord{
			CustomerName: req.Key.Customer, MonthYear: req.Key.Month.Time(),
			BaseOpened: v.TicketsOpened, BaseClosed: v.TicketsClosed, BaseBacklog: v.TicketsBacklog,
			Opened: v.TicketsOpened, Closed: v.TicketsClosed, Backlog: v.TicketsBacklog,
			BaseCurrentOpened: v.CurrentOpened, BaseCurrentClosed: v.CurrentClosed, BaseCurrentBacklog: v.CurrentBacklog,
			CurrentOpened: v.CurrentOpened, CurrentClosed: v.CurrentClosed, CurrentBacklog: v.CurrentBacklog,
		}
		return s.repo.CreateDomainRows(ctx, tx, availability, users, storage, tickets)
	})
}

func (s *Service) DeleteRecord(ctx context.Context, key month.Key) (domain.DeleteResult, error) {
	var result domain.DeleteResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := s.repo.Exists(ctx, tx, key)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: %s", domain.ErrNotFound, key)
		}
		counts, err := s.repo.DeleteAll(ctx, tx, key)
		if err != nil {
			return err
		}
		var total int64
		for _, n := range counts {
			total += n
		}
		if total == 0 {
			return fmt.Errorf("%w: %s", domain.ErrNothingDeleted, key)
		}
		result = domain.DeleteResult{Counts: counts, Total: total}
		return nil
	})
	if err != nil {
		return domain.DeleteResult{}, err
	}
	s.log.Info("record deleted",
		zap.String("customer", key.Customer),
		zap.String("month", key.Month.String()),
		zap.Int64("rows", result.Total))
	return result, nil
}

func (s *Service) RecordExists(ctx context.Context, key month.Key) (bool, error) {
	return s.repo.Exists(ctx, s.db, key)
}

func (s *Service) Get(ctx context.Context, key month.Key) (*domain.AggregateRecord, error) {
	record, err := s.repo.Get(ctx, s.db, key)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, domain.ErrNotFound
	}
	return record, nil
}

func (s *Service) ListRange(ctx context.Context, customer string, end month.Month, months int) ([]domain.AggregateRecord, error) {
	if months < 1 {
		months = 1
	}
	start := end.Add(-(months - 1))
	return s.repo.ListRange(ctx, s.db, customer, start, end)
}

func (s *Service) ListCustomers(ctx context.Context) ([]domain.CustomerRef, error) {
	return s.repo.ListCustomers(ctx, s.db)
}

func (s *Service) ListMonths(ctx context.Context, customer string) ([]month.Month, error) {
	return s.repo.ListMonths(ctx, s.db, customer)
}

func (s *Service) PendingCustomers(ctx context.Context) ([]string, error) {
	return s.repo.PendingCustomers(ctx, s.db)
}

func (s *Service) PendingMonths(ctx context.Context, customer string) ([]month.Month, error) {
	return s.repo.PendingMonths(ctx, s.db, customer)
}

func (s *Service) ListCSMs(ctx context.Context) ([]string, error) {
	return s.repo.ListCSMs(ctx, s.db)
}

func (s *Service) MonthsForCSM(ctx context.Context, csm string) ([]month.Month, error) {
	return s.repo.MonthsForCSM(ctx, s.db, csm)
}

func (s *Service) RangeForCSM(ctx context.Context, csm string, end month.Month, months int) ([]domain.AggregateRecord, error) {
	if months < 1 {
		months = 1
	}
	start := end.Add(-(months - 1))
	return s.repo.RangeForCSM(ctx, s.db, csm, start, end)
}
