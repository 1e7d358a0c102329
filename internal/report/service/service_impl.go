package service

import (
	"context"
	"fmt"
	"math"
	"strconv"

	configdomain "github.com/healthdeck/healthdeck/internal/custconfig/domain"
	metricsdomain "github.com/healthdeck/healthdeck/internal/metrics/domain"
	"github.com/healthdeck/healthdeck/internal/month"
	"github.com/healthdeck/healthdeck/internal/report/domain"
	"github.com/healthdeck/healthdeck/internal/threshold"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	ConfigRepo  configdomain.Repository
	MetricsRepo metricsdomain.Repository
}

// Service assembles report documents from the aggregate rows and the
// customer's configuration. It never writes.
type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	configRepo  configdomain.Repository
	metricsRepo metricsdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("report.service"),
		configRepo:  p.ConfigRepo,
		metricsRepo: p.MetricsRepo,
	}
}

func (s *Service) Assemble(ctx context.Context, key month.Key) (*domain.Document, error) {
	// The window length comes from the end month's own config row; a
	// missing row falls back to the default window.
	endConfig, err := s.configRepo.Get(ctx, s.db, key)
	if err != nil {
		return nil, err
	}
	window := endConfig.Window()
	start := key.Month.Add(-(window - 1))

	configs, err := s.configRepo.ListRange(ctx, s.db, key.Customer, start, key.Month)
	if err != nil {
		return nil, err
	}
	rows, err := s.metricsRepo.ListRange(ctx, s.db, key.Customer, start, key.Month)
	if err != nil {
		return nil, err
	}
	if len(configs) == 0 || len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s between %s and %s",
			domain.ErrNoData, key.Customer, start, key.Month)
	}

	var config *configdomain.ConfigRecord
	for i := range configs {
		if month.Of(configs[i].MonthYear).Equal(key.Month) {
			config = &configs[i]
			break
		}
	}
	var current *metricsdomain.AggregateRecord
	for i := range rows {
		if month.Of(rows[i].MonthYear).Equal(key.Month) {
			current = &rows[i]
			break
		}
	}
	if config == nil || current == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrCurrentMonthMissing, key.Month)
	}

	indicatorColors, err := config.IndicatorColorRules()
	if err != nil {
		return nil, fmt.Errorf("indicator colors: %w", err)
	}
	circleColors, err := config.CircleColorRules()
	if err != nil {
		return nil, fmt.Errorf("circle colors: %w", err)
	}

	doc := &domain.Document{
		Title: titleSection(key, config),
	}
	if doc.Availability, err = s.availabilitySection(config, current, rows, indicatorColors, circleColors); err != nil {
		return nil, err
	}
	if doc.Licenses, err = s.licensesSection(config, current, rows, indicatorColors, circleColors); err != nil {
		return nil, err
	}
	if doc.Storage, err = s.storageSection(config, current, rows, indicatorColors, circleColors); err != nil {
		return nil, err
	}
	doc.Tickets = ticketsSection(key, current, rows)
	return doc, nil
}

func titleSection(key month.Key, config *configdomain.ConfigRecord) domain.TitleSection {
	name := config.CustomerFullName
	if name == "" {
		name = key.Customer
	}
	return domain.TitleSection{
		CustomerName: name,
		Month:        key.Month.DisplayName(),
		CSMName:      config.CSMPrimary,
	}
}

func (s *Service) availabilitySection(
	config *configdomain.ConfigRecord,
	current *metricsdomain.AggregateRecord,
	rows []metricsdomain.AggregateRecord,
	indicator, circle threshold.ColorRules,
) (domain.AvailabilitySection, error) {
	rules, err := config.AvailabilityRuleSet()
	if err != nil {
		return domain.AvailabilitySection{}, fmt.Errorf("availability rules: %w", err)
	}
	notes, err := config.NoteSetFor("availability")
	if err != nil {
		return domain.AvailabilitySection{}, fmt.Errorf("availability notes: %w", err)
	}

	actualPct := current.Availability * 100
	targetPct := current.Target * 100
	tier := threshold.Classify(actualPct, rules)

	chart := domain.Chart{Months: monthLabels(rows)}
	availability := make([]float64, 0, len(rows))
	sla := make([]float64, 0, len(rows))
	for _, row := range rows {
		availability = append(availability, row.Availability*100)
		sla = append(sla, row.Target*100)
	}
	chart.Series = []domain.Series{
		{Name: "Availability", Values: availability},
		{Name: "SLA", Values: sla},
	}

	return domain.AvailabilitySection{
		ActualValue:    fmt.Sprintf("%.2f%%", actualPct),
		TargetValue:    fmt.Sprintf("%.2f%%", targetPct),
		Classification: tier,
		IndicatorColor: indicator[tier],
		CircleColor:    circle[tier],
		Chart:          chart,
		Notes:          notes.Reflow(tier),
	}, nil
}

func (s *Service) licensesSection(
	config *configdomain.ConfigRecord,
	current *metricsdomain.AggregateRecord,
	rows []metricsdomain.AggregateRecord,
	indicator, circle threshold.ColorRules,
) (domain.LicensesSection, error) {
	rules, err := config.UsersRuleSet()
	if err != nil {
		return domain.LicensesSection{}, fmt.Errorf("users rules: %w", err)
	}
	notes, err := config.NoteSetFor("users")
	if err != nil {
		return domain.LicensesSection{}, fmt.Errorf("users notes: %w", err)
	}

	prodPct := math.Round(threshold.Percent(float64(current.ProdUsed), float64(current.ProdLimit)))
	testPct := math.Round(threshold.Percent(float64(current.TestUsed), float64(current.TestLimit)))

	table := domain.Table{
		Headers: []string{"", "Licenses", "Count", "Remaining", "%Used"},
		Rows: [][]string{
			licenseRow("Prod", current.ProdLimit, current.ProdUsed, prodPct),
			licenseRow("Test", current.TestLimit, current.TestUsed, testPct),
		},
	}
	if config.Environments == 3 {
		devPct := math.Round(threshold.Percent(float64(current.DevUsed), float64(current.DevLimit)))
		table.Rows = append(table.Rows, licenseRow("Dev", current.DevLimit, current.DevUsed, devPct))
	}

	// Seat counts grow worse as they rise, so the ladder inverts and the
	// tier is the worst reached by prod or test.
	tier := threshold.ClassifyWorst(rules, prodPct, testPct)

	chart := domain.Chart{Months: monthLabels(rows)}
	prod := make([]float64, 0, len(rows))
	test := make([]float64, 0, len(rows))
	dev := make([]float64, 0, len(rows))
	available := make([]float64, 0, len(rows))
	for _, row := range rows {
		prod = append(prod, float64(row.ProdUsed))
		test = append(test, float64(row.TestUsed))
		dev = append(dev, float64(row.DevUsed))
		available = append(available, float64(row.ProdLimit))
	}
	chart.Series = []domain.Series{
		{Name: "Prod", Values: prod},
		{Name: "Test", Values: test},
	}
	if config.Environments == 3 {
		chart.Series = append(chart.Series, domain.Series{Name: "Dev", Values: dev})
	}
	chart.Series = append(chart.Series, domain.Series{Name: "Licenses Available", Values: available})

	return domain.LicensesSection{
		Table:          table,
		Classification: tier,
		IndicatorColor: indicator[tier],
		CircleColor:    circle[tier],
		Chart:          chart,
		Notes:          notes.Reflow(tier),
	}, nil
}

func (s *Service) storageSection(
	config *configdomain.ConfigRecord,
	current *metricsdomain.AggregateRecord,
	rows []metricsdomain.AggregateRecord,
	indicator, circle threshold.ColorRules,
) (domain.StorageSection, error) {
	rules, err := config.StorageRuleSet()
	if err != nil {
		return domain.StorageSection{}, fmt.Errorf("storage rules: %w", err)
	}
	notes, err := config.NoteSetFor("storage")
	if err != nil {
		return domain.StorageSection{}, fmt.Errorf("storage notes: %w", err)
	}

	prodUsedPct := round1(threshold.Percent(current.ProdUsedGB, current.ProdTargetGB))
	testUsedPct := round1(threshold.Percent(current.TestUsedGB, current.TestTargetGB))

	table := domain.Table{
		Headers: []string{"", "Used", "Contract", "Free", "%Used", "%Free"},
		Rows: [][]string{
			storageRow("Prod(GB)", current.ProdUsedGB, current.ProdTargetGB),
			storageRow("Test(GB)", current.TestUsedGB, current.TestTargetGB),
		},
	}
	if config.Environments == 3 {
		table.Rows = append(table.Rows, storageRow("Dev(GB)", current.DevUsedGB, current.DevTargetGB))
	}

	tier := threshold.ClassifyWorst(rules, prodUsedPct, testUsedPct)

	chart := domain.Chart{Months: monthLabels(rows)}
	prod := make([]float64, 0, len(rows))
	contracted := make([]float64, 0, len(rows))
	for _, row := range rows {
		prod = append(prod, row.ProdUsedGB)
		contracted = append(contracted, row.ProdTargetGB)
	}
	chart.Series = []domain.Series{
		{Name: "Prod (GB)", Values: prod},
		{Name: "Contracted Maximum", Values: contracted},
	}

	return domain.StorageSection{
		Table:          table,
		Classification: tier,
		IndicatorColor: indicator[tier],
		CircleColor:    circle[tier],
		Chart:          chart,
		Notes:          notes.Reflow(tier),
	}, nil
}

func ticketsSection(key month.Key, current *metricsdomain.AggregateRecord, rows []metricsdomain.AggregateRecord) domain.TicketsSection {
	// Backlog carried in from the month before the report month; zero when
	// that month is not tracked.
	previous := key.Month.Add(-1)
	backlogPrev := 0
	for _, row := range rows {
		if month.Of(row.MonthYear).Equal(previous) {
			backlogPrev = row.TicketsBacklog
			break
		}
	}

	table := domain.Table{
		Headers: []string{"Status", "Cases"},
		Rows: [][]string{
			{"Backlog (Active previous months)", strconv.Itoa(backlogPrev)},
			{"Opened this month", strconv.Itoa(current.CurrentOpened)},
			{"Closed this month", strconv.Itoa(current.CurrentClosed)},
			{"In progress at end of month", strconv.Itoa(current.TicketsBacklog)},
		},
	}

	chart := domain.Chart{Months: monthLabels(rows)}
	opened := make([]float64, 0, len(rows))
	closed := make([]float64, 0, len(rows))
	openEOM := make([]float64, 0, len(rows))
	for _, row := range rows {
		opened = append(opened, float64(row.TicketsOpened))
		closed = append(closed, float64(row.TicketsClosed))
		openEOM = append(openEOM, float64(row.TicketsBacklog))
	}
	chart.Series = []domain.Series{
		{Name: "Opened", Values: opened},
		{Name: "Closed", Values: closed},
		{Name: "Open at EOM", Values: openEOM},
	}

	return domain.TicketsSection{
		Table:     table,
		Chart:     chart,
		OpenCases: current.TicketsBacklog,
	}
}

func monthLabels(rows []metricsdomain.AggregateRecord) []string {
	labels := make([]string, 0, len(rows))
	for _, row := range rows {
		labels = append(labels, month.Of(row.MonthYear).Label())
	}
	return labels
}

func licenseRow(name string, limit, used int, usedPct float64) []string {
	return []string{
		name,
		strconv.Itoa(limit),
		strconv.Itoa(used),
		strconv.Itoa(limit - used),
		strconv.FormatFloat(usedPct, 'f', -1, 64) + "%",
	}
}

func storageRow(name string, used, contract float64) []string {
	free := contract - used
	usedPct := round1(threshold.Percent(used, contract))
	freePct := round1(threshold.Percent(free, contract))
	return []string{
		name,
		formatGB(used),
		formatGB(contract),
		formatGB(free),
		strconv.FormatFloat(usedPct, 'f', -1, 64) + "%",
		strconv.FormatFloat(freePct, 'f', -1, 64) + "%",
	}
}

func formatGB(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
