package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	configdomain "github.com/healthdeck/healthdeck/internal/custconfig/domain"
	configrepo "github.com/healthdeck/healthdeck/internal/custconfig/repository"
	"github.com/healthdeck/healthdeck/internal/metrics/domain"
	"github.com/healthdeck/healthdeck/internal/metrics/repository"
	"github.com/healthdeck/healthdeck/internal/month"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T, name string) (domain.Service, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&configdomain.ConfigRecord{},
		&domain.AvailabilityRecord{},
		&domain.UsersRecord{},
		&domain.StorageRecord{},
		&domain.TicketsRecord{},
		&domain.AggregateRecord{},
	))

	svc := New(Params{
		DB:         db,
		Log:        zap.NewNop(),
		Repo:       repository.Provide(),
		ConfigRepo: configrepo.Provide(),
	})
	return svc, db
}

func mustMonth(t *testing.T, raw string) month.Month {
	t.Helper()
	m, err := month.Parse(raw)
	require.NoError(t, err)
	return m
}

func seedMonth(t *testing.T, db *gorm.DB, customer string, m month.Month) {
	t.Helper()
	require.NoError(t, db.Create(&configdomain.ConfigRecord{
		CustomerName: customer,
		MonthYear:    m.Time(),
		CSMPrimary:   "alex",
		CSMSecondary: "sam",
		Environments: 2,
		WindowMonths: 6,
		CustomerUIDs: []byte("[]"),
	}).Error)
	require.NoError(t, db.Create(&domain.AggregateRecord{
		CustomerName: customer,
		MonthYear:    m.Time(),
		CSMPrimary:   "alex",
		CSMSecondary: "sam",
		CustomerUIDs: []byte("[]"),
		ProdLimit:    100, ProdUsed: 50,
		TestLimit: 40, TestUsed: 20,
	}).Error)
	require.NoError(t, db.Create(&domain.AvailabilityRecord{
		CustomerName: customer, MonthYear: m.Time(),
	}).Error)
	require.NoError(t, db.Create(&domain.UsersRecord{
		CustomerName: customer, MonthYear: m.Time(),
		ProdLimit: 100, ProdUsed: 50,
		TestLimit: 40, TestUsed: 20,
	}).Error)
	require.NoError(t, db.Create(&domain.StorageRecord{
		CustomerName: customer, MonthYear: m.Time(),
		ProdTargetGB: 500, ProdUsedGB: 100,
	}).Error)
	require.NoError(t, db.Create(&domain.TicketsRecord{
		CustomerName: customer, MonthYear: m.Time(),
	}).Error)
}

func TestSaveAvailability_StoresFractions(t *testing.T) {
	svc, db := newTestService(t, "availability_fractions")
	ctx := context.Background()
	m := mustMonth(t, "2025-03-01")
	seedMonth(t, db, "acme", m)

	err := svc.SaveAvailability(ctx, month.NewKey("acme", m), 99.5, 99.0)
	require.NoError(t, err)

	var agg domain.AggregateRecord
	require.NoError(t, db.Where("customer_name = ?", "acme").First(&agg).Error)
	assert.InDelta(t, 0.995, agg.Availability, 1e-9)
	assert.InDelta(t, 0.99, agg.Target, 1e-9)

	var row domain.AvailabilityRecord
	require.NoError(t, db.Where("customer_name = ?", "acme").First(&row).Error)
	assert.InDelta(t, 0.995, row.Availability, 1e-9)
	assert.InDelta(t, 0.99, row.Target, 1e-9)
}

func TestSaveAvailability_RejectsOverHundred(t *testing.T) {
	svc, db := newTestService(t, "availability_range")
	ctx := context.Background()
	m := mustMonth(t, "2025-03-01")
	seedMonth(t, db, "acme", m)

	err := svc.SaveAvailability(ctx, month.NewKey("acme", m), 101, 99)
	assert.ErrorIs(t, err, domain.ErrValueOutOfRange)

	var row domain.AvailabilityRecord
	require.NoError(t, db.Where("customer_name = ?", "acme").First(&row).Error)
	assert.Zero(t, row.Availability)
}

func TestSaveUsers_PropagatesLimitsToLaterMonthsOnly(t *testing.T) {
	svc, db := newTestService(t, "users_propagation")
	ctx := context.Background()
	jan := mustMonth(t, "2025-01-01")
	feb := mustMonth(t, "2025-02-01")
	mar := mustMonth(t, "2025-03-01")
	for _, m := range []month.Month{jan, feb, mar} {
		seedMonth(t, db, "acme", m)
	}

	warnings, err := svc.SaveUsers(ctx, month.NewKey("acme", feb), domain.UsersInput{
		ProdLimit: 200, ProdUsed: 150,
		TestLimit: 80, TestUsed: 30,
	})
	require.NoError(t, err)
	assert.Empty(t, warnings)

	load := func(m month.Month) (domain.UsersRecord, domain.AggregateRecord) {
		var u domain.UsersRecord
		require.NoError(t, db.Where("customer_name = ? AND month_year = ?", "acme", m.Time()).First(&u).Error)
		var a domain.AggregateRecord
		require.NoError(t, db.Where("customer_name = ? AND month_year = ?", "acme", m.Time()).First(&a).Error)
		return u, a
	}

	// January is strictly before the edited month and must stay untouched.
	uJan, aJan := load(jan)
	assert.Equal(t, 100, uJan.ProdLimit)
	assert.Equal(t, 50, uJan.ProdUsed)
	assert.Equal(t, 100, aJan.ProdLimit)

	// February takes both limits and usage.
	uFeb, aFeb := load(feb)
	assert.Equal(t, 200, uFeb.ProdLimit)
	assert.Equal(t, 150, uFeb.ProdUsed)
	assert.Equal(t, 200, aFeb.ProdLimit)
	assert.Equal(t, 150, aFeb.ProdUsed)

	// March inherits the new limits but keeps its own usage.
	uMar, aMar := load(mar)
	assert.Equal(t, 200, uMar.ProdLimit)
	assert.Equal(t, 80, uMar.TestLimit)
	assert.Equal(t, 50, uMar.ProdUsed)
	assert.Equal(t, 200, aMar.ProdLimit)
	assert.Equal(t, 50, aMar.ProdUsed)
}

func TestSaveUsers_WarnsWhenUsedExceedsLimit(t *testing.T) {
	svc, db := newTestService(t, "users_warnings")
	ctx := context.Background()
	m := mustMonth(t, "2025-03-01")
	seedMonth(t, db, "acme", m)

	warnings, err := svc.SaveUsers(ctx, month.NewKey("acme", m), domain.UsersInput{
		ProdLimit: 10, ProdUsed: 12,
		TestLimit: 10, TestUsed: 5,
		DevLimit: 0, DevUsed: 3,
	})
	require.NoError(t, err)
	// Dev overage is ignored while the dev limit is zero.
	assert.Equal(t, []string{"Prod Used > Prod Limit"}, warnings)
}

func TestSaveStorage_PropagatesTargetsNotActuals(t *testing.T) {
	svc, db := newTestService(t, "storage_propagation")
	ctx := context.Background()
	feb := mustMonth(t, "2025-02-01")
	mar := mustMonth(t, "2025-03-01")
	seedMonth(t, db, "acme", feb)
	seedMonth(t, db, "acme", mar)

	err := svc.SaveStorage(ctx, month.NewKey("acme", feb), domain.StorageInput{
		ProdTargetGB: 1000, ProdUsedGB: 700,
		TestTargetGB: 200, TestUsedGB: 50,
	})
	require.NoError(t, err)

	var sMar domain.StorageRecord
	require.NoError(t, db.Where("customer_name = ? AND month_year = ?", "acme", mar.Time()).First(&sMar).Error)
	assert.InDelta(t, 1000, sMar.ProdTargetGB, 1e-9)
	assert.InDelta(t, 100, sMar.ProdUsedGB, 1e-9)
}

func TestSaveTickets_TouchesOnlyKeyedMonth(t *testing.T) {
	svc, db := newTestService(t, "tickets_scope")
	ctx := context.Background()
	feb := mustMonth(t, "2025-02-01")
	mar := mustMonth(t, "2025-03-01")
	seedMonth(t, db, "acme", feb)
	seedMonth(t, db, "acme", mar)

	err := svc.SaveTickets(ctx, month.NewKey("acme", feb), domain.TicketsInput{
		Opened: 7, Closed: 5, CurrentBacklog: 2, OverallBacklog: 9,
	})
	require.NoError(t, err)

	var tFeb, tMar domain.TicketsRecord
	require.NoError(t, db.Where("customer_name = ? AND month_year = ?", "acme", feb.Time()).First(&tFeb).Error)
	require.NoError(t, db.Where("customer_name = ? AND month_year = ?", "acme", mar.Time()).First(&tMar).Error)
	assert.Equal(t, 7, tFeb.CurrentOpened)
	assert.Equal(t, 9, tFeb.Backlog)
	assert.Zero(t, tMar.CurrentOpened)
	assert.Zero(t, tMar.Backlog)
}

func TestInsertRecord_ConfigModeRejectsExistingCustomer(t *testing.T) {
	svc, db := newTestService(t, "insert_config_guard")
	ctx := context.Background()
	m := mustMonth(t, "2025-03-01")
	seedMonth(t, db, "acme", m)

	err := svc.InsertRecord(ctx, domain.InsertRequest{
		Mode:       domain.InsertModeConfig,
		Key:        month.NewKey("acme", mustMonth(t, "2025-04-01")),
		CSMPrimary: "alex",
	})
	assert.ErrorIs(t, err, domain.ErrCustomerExists)
}

func TestInsertRecord_ConfigModeSeedsAllTables(t *testing.T) {
	svc, db := newTestService(t, "insert_config_seed")
	ctx := context.Background()
	m := mustMonth(t, "2025-03-01")

	err := svc.InsertRecord(ctx, domain.InsertRequest{
		Mode:         domain.InsertModeConfig,
		Key:          month.NewKey("newco", m),
		CSMPrimary:   "alex",
		Environments: 3,
		WindowMonths: 4,
	})
	require.NoError(t, err)

	var config configdomain.ConfigRecord
	require.NoError(t, db.Where("customer_name = ?", "newco").First(&config).Error)
	assert.Equal(t, 3, config.Environments)
	assert.Equal(t, 4, config.WindowMonths)
	// Secondary CSM defaults to the primary when left blank.
	assert.Equal(t, "alex", config.CSMSecondary)

	var agg domain.AggregateRecord
	require.NoError(t, db.Where("customer_name = ?", "newco").First(&agg).Error)
	assert.Equal(t, "alex", agg.CSMPrimary)
	assert.Zero(t, agg.ProdLimit)

	for _, model := range []any{
		&domain.AvailabilityRecord{}, &domain.UsersRecord{},
		&domain.StorageRecord{}, &domain.TicketsRecord{},
	} {
		var count int64
		require.NoError(t, db.Model(model).Where("customer_name = ?", "newco").Count(&count).Error)
		assert.Equal(t, int64(1), count)
	}
}

func TestInsertRecord_TableModeRequiresConfig(t *testing.T) {
	svc, _ := newTestService(t, "insert_table_noconfig")
	ctx := context.Background()

	err := svc.InsertRecord(ctx, domain.InsertRequest{
		Mode: domain.InsertModeTable,
		Key:  month.NewKey("ghost", mustMonth(t, "2025-03-01")),
	})
	assert.ErrorIs(t, err, domain.ErrConfigMissing)
}

func TestInsertRecord_TableModeRejectsExistingAggregate(t *testing.T) {
	svc, db := newTestService(t, "insert_table_dupe")
	ctx := context.Background()
	m := mustMonth(t, "2025-03-01")
	seedMonth(t, db, "acme", m)

	err := svc.InsertRecord(ctx, domain.InsertRequest{
		Mode: domain.InsertModeTable,
		Key:  month.NewKey("acme", m),
	})
	assert.ErrorIs(t, err, domain.ErrRecordExists)
}

func TestInsertRecord_TableModeWritesAllTables(t *testing.T) {
	svc, db := newTestService(t, "insert_table_full")
	ctx := context.Background()
	m := mustMonth(t, "2025-03-01")
	require.NoError(t, db.Create(&configdomain.ConfigRecord{
		CustomerName: "acme",
		MonthYear:    m.Time(),
		CSMPrimary:   "alex",
		CSMSecondary: "sam",
		CustomerUIDs: []byte("[]"),
	}).Error)

	err := svc.InsertRecord(ctx, domain.InsertRequest{
		Mode: domain.InsertModeTable,
		Key:  month.NewKey("acme", m),
		Values: domain.TableValues{
			Availability: 99.5, Target: 99,
			ProdLimit: 100, ProdUsed: 60,
			ProdTargetGB: 500, ProdUsedGB: 120,
			TicketsOpened: 4, CurrentBacklog: 2,
		},
	})
	require.NoError(t, err)

	var agg domain.AggregateRecord
	require.NoError(t, db.Where("customer_name = ?", "acme").First(&agg).Error)
	assert.InDelta(t, 0.995, agg.Availability, 1e-9)
	assert.Equal(t, "alex", agg.CSMPrimary)
	assert.Equal(t, 100, agg.ProdLimit)

	var users domain.UsersRecord
	require.NoError(t, db.Where("customer_name = ?", "acme").First(&users).Error)
	assert.Equal(t, 60, users.ProdUsed)
	assert.Equal(t, 60, users.BaseProdUsed)
}

func TestDeleteRecord_ReportsPerTableCounts(t *testing.T) {
	svc, db := newTestService(t, "delete_counts")
	ctx := context.Background()
	m := mustMonth(t, "2025-03-01")
	seedMonth(t, db, "acme", m)

	result, err := svc.DeleteRecord(ctx, month.NewKey("acme", m))
	require.NoError(t, err)
	assert.Equal(t, int64(6), result.Total)
	assert.Equal(t, int64(1), result.Counts[domain.TableAggregate])
	assert.Equal(t, int64(1), result.Counts[domain.TableConfig])

	exists, err := svc.RecordExists(ctx, month.NewKey("acme", m))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDeleteRecord_MissingKeyFails(t *testing.T) {
	svc, _ := newTestService(t, "delete_missing")
	ctx := context.Background()

	_, err := svc.DeleteRecord(ctx, month.NewKey("ghost", mustMonth(t, "2025-03-01")))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPendingLookups(t *testing.T) {
	svc, db := newTestService(t, "pending_lookups")
	ctx := context.Background()
	m := mustMonth(t, "2025-03-01")
	seedMonth(t, db, "acme", m)

	// Config without aggregate: pending.
	require.NoError(t, db.Create(&configdomain.ConfigRecord{
		CustomerName: "drift",
		MonthYear:    m.Time(),
		CustomerUIDs: []byte("[]"),
	}).Error)

	customers, err := svc.PendingCustomers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"drift"}, customers)

	months, err := svc.PendingMonths(ctx, "drift")
	require.NoError(t, err)
	require.Len(t, months, 1)
	assert.True(t, months[0].Equal(m))
}

func TestCSMLookups(t *testing.T) {
	svc, db := newTestService(t, "csm_lookups")
	ctx := context.Background()
	jan := mustMonth(t, "2025-01-01")
	feb := mustMonth(t, "2025-02-01")
	seedMonth(t, db, "acme", jan)
	seedMonth(t, db, "acme", feb)

	csms, err := svc.ListCSMs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alex", "sam"}, csms)

	months, err := svc.MonthsForCSM(ctx, "alex")
	require.NoError(t, err)
	require.Len(t, months, 2)
	assert.True(t, months[0].Equal(jan))

	rows, err := svc.RangeForCSM(ctx, "alex", feb, 2)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}
