package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	configdomain "github.com/healthdeck/healthdeck/internal/custconfig/domain"
	configrepo "github.com/healthdeck/healthdeck/internal/custconfig/repository"
	metricsdomain "github.com/healthdeck/healthdeck/internal/metrics/domain"
	metricsrepo "github.com/healthdeck/healthdeck/internal/metrics/repository"
	"github.com/healthdeck/healthdeck/internal/month"
	"github.com/healthdeck/healthdeck/internal/report/domain"
	"github.com/healthdeck/healthdeck/internal/threshold"
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
		&metricsdomain.AggregateRecord{},
	))

	svc := New(Params{
		DB:          db,
		Log:         zap.NewNop(),
		ConfigRepo:  configrepo.Provide(),
		MetricsRepo: metricsrepo.Provide(),
	})
	return svc, db
}

func mustMonth(t *testing.T, raw string) month.Month {
	t.Helper()
	m, err := month.Parse(raw)
	require.NoError(t, err)
	return m
}

func seedWindow(t *testing.T, db *gorm.DB, customer string, environments int) {
	t.Helper()
	months := []string{"2025-01-01", "2025-02-01", "2025-03-01"}
	availabilities := []float64{0.90, 0.92, 0.95}
	backlogs := []int{5, 3, 4}

	for i, raw := range months {
		m := mustMonth(t, raw)
		require.NoError(t, db.Create(&configdomain.ConfigRecord{
			CustomerName:      customer,
			MonthYear:         m.Time(),
			CustomerFullName:  "Acme Corp",
			CSMPrimary:        "alex",
			CSMSecondary:      "sam",
			Environments:      environments,
			WindowMonths:      3,
			CustomerUIDs:      []byte("[]"),
			AvailabilityRules: []byte(`{"Color1": 90, "Color2": 80, "Color3": 70}`),
			UsersRules:        []byte(`{"Color1": 70, "Color2": 80, "Color3": 90}`),
			StorageRules:      []byte(`{"Color1": 70, "Color2": 80, "Color3": 90}`),
			IndicatorColors:   []byte(`{"Color1": [0,176,80], "Color2": [255,192,0], "Color3": [255,0,0], "Invalid": [128,128,128]}`),
			CircleColors:      []byte(`{"Color1": [0,176,80], "Color2": [255,192,0], "Color3": [255,0,0], "Invalid": [128,128,128]}`),
			AvailabilityNotes: []byte(`{"color1": "on track\nno actions", "color2": "", "color3": ""}`),
			UsersNotes:        []byte(`{"color1": "", "color2": "", "color3": ""}`),
			StorageNotes:      []byte(`{"color1": "", "color2": "", "color3": ""}`),
		}).Error)
		require.NoError(t, db.Create(&metricsdomain.AggregateRecord{
			CustomerName: customer,
			MonthYear:    m.Time(),
			CSMPrimary:   "alex",
			CSMSecondary: "sam",
			CustomerUIDs: []byte("[]"),

			Availability: availabilities[i],
			Target:       0.99,

			ProdLimit: 100, ProdUsed: 50,
			TestLimit: 40, TestUsed: 10,
			DevLimit: 20, DevUsed: 5,

			ProdTargetGB: 500, ProdUsedGB: 100,
			TestTargetGB: 200, TestUsedGB: 40,
			DevTargetGB: 100, DevUsedGB: 10,

			TicketsOpened: 10 + i, TicketsClosed: 8 + i, TicketsBacklog: backlogs[i],
			CurrentOpened: 6, CurrentClosed: 4, CurrentBacklog: 2,
		}).Error)
	}
}

func TestAssemble_EndToEnd(t *testing.T) {
	svc, db := newTestService(t, "report_full")
	ctx := context.Background()
	seedWindow(t, db, "acme", 2)
	key := month.NewKey("acme", mustMonth(t, "2025-03-01"))

	doc, err := svc.Assemble(ctx, key)
	require.NoError(t, err)

	assert.Equal(t, "Acme Corp", doc.Title.CustomerName)
	assert.Equal(t, "March 2025", doc.Title.Month)
	assert.Equal(t, "alex", doc.Title.CSMName)

	// Availability: 95% against {90,80,70} lands in the first tier.
	assert.Equal(t, "95.00%", doc.Availability.ActualValue)
	assert.Equal(t, "99.00%", doc.Availability.TargetValue)
	assert.Equal(t, threshold.Color1, doc.Availability.Classification)
	assert.Equal(t, threshold.RGB{0, 176, 80}, doc.Availability.CircleColor)
	assert.Equal(t, []string{"on track", "no actions"}, doc.Availability.Notes)

	// Chart months ascending, values in percent.
	assert.Equal(t, []string{"Jan-25", "Feb-25", "Mar-25"}, doc.Availability.Chart.Months)
	require.Len(t, doc.Availability.Chart.Series, 2)
	assert.Equal(t, "Availability", doc.Availability.Chart.Series[0].Name)
	assert.InDeltaSlice(t, []float64{90, 92, 95}, doc.Availability.Chart.Series[0].Values, 1e-9)

	// Licenses: 50% and 25% used against inverted {70,80,90} is below every
	// cutoff, so the tier is Invalid.
	assert.Equal(t, threshold.Invalid, doc.Licenses.Classification)
	require.Len(t, doc.Licenses.Table.Rows, 2)
	assert.Equal(t, []string{"Prod", "100", "50", "50", "50%"}, doc.Licenses.Table.Rows[0])
	// Two env customer: Prod, Test, Licenses Available. No Dev series.
	require.Len(t, doc.Licenses.Chart.Series, 3)
	assert.Equal(t, "Licenses Available", doc.Licenses.Chart.Series[2].Name)

	// Storage rows carry used/contract/free and both percentages.
	assert.Equal(t, []string{"Prod(GB)", "100", "500", "400", "20%", "80%"}, doc.Storage.Table.Rows[0])

	// Tickets: prior-month backlog comes from February's end-of-month value.
	assert.Equal(t, [][]string{
		{"Backlog (Active previous months)", "3"},
		{"Opened this month", "6"},
		{"Closed this month", "4"},
		{"In progress at end of month", "4"},
	}, doc.Tickets.Table.Rows)
	assert.Equal(t, 4, doc.Tickets.OpenCases)
}

func TestAssemble_IsIdempotent(t *testing.T) {
	svc, db := newTestService(t, "report_idempotent")
	ctx := context.Background()
	seedWindow(t, db, "acme", 2)
	key := month.NewKey("acme", mustMonth(t, "2025-03-01"))

	first, err := svc.Assemble(ctx, key)
	require.NoError(t, err)
	second, err := svc.Assemble(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestAssemble_ThreeEnvironmentsAddDevRows(t *testing.T) {
	svc, db := newTestService(t, "report_dev")
	ctx := context.Background()
	seedWindow(t, db, "acme", 3)
	key := month.NewKey("acme", mustMonth(t, "2025-03-01"))

	doc, err := svc.Assemble(ctx, key)
	require.NoError(t, err)

	require.Len(t, doc.Licenses.Table.Rows, 3)
	assert.Equal(t, "Dev", doc.Licenses.Table.Rows[2][0])
	require.Len(t, doc.Licenses.Chart.Series, 4)
	assert.Equal(t, "Dev", doc.Licenses.Chart.Series[2].Name)
	require.Len(t, doc.Storage.Table.Rows, 3)
	assert.Equal(t, "Dev(GB)", doc.Storage.Table.Rows[2][0])
}

func TestAssemble_PriorBacklogZeroOnFirstTrackedMonth(t *testing.T) {
	svc, db := newTestService(t, "report_first_month")
	ctx := context.Background()
	seedWindow(t, db, "acme", 2)

	// January is the first tracked month, so nothing precedes it.
	doc, err := svc.Assemble(ctx, month.NewKey("acme", mustMonth(t, "2025-01-01")))
	require.NoError(t, err)
	assert.Equal(t, "0", doc.Tickets.Table.Rows[0][1])
}

func TestAssemble_NoData(t *testing.T) {
	svc, _ := newTestService(t, "report_nodata")
	ctx := context.Background()

	_, err := svc.Assemble(ctx, month.NewKey("ghost", mustMonth(t, "2025-03-01")))
	assert.ErrorIs(t, err, domain.ErrNoData)
}

func TestAssemble_CurrentMonthMissing(t *testing.T) {
	svc, db := newTestService(t, "report_month_missing")
	ctx := context.Background()
	seedWindow(t, db, "acme", 2)

	// April has history inside its window but no row of its own.
	_, err := svc.Assemble(ctx, month.NewKey("acme", mustMonth(t, "2025-04-01")))
	assert.ErrorIs(t, err, domain.ErrCurrentMonthMissing)
}
