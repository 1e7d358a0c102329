package seed

import (
	"context"
	"errors"
	"time"

	configdomain "github.com/healthdeck/healthdeck/internal/custconfig/domain"
	metricsdomain "github.com/healthdeck/healthdeck/internal/metrics/domain"
	"github.com/healthdeck/healthdeck/internal/month"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	demoCustomer = "demoworks"
	demoFullName = "DemoWorks Industries"
	demoCSM      = "Jordan Patel"
)

var (
	demoAvailabilityRules = []byte(`{"Color1": 90, "Color2": 80, "Color3": 70}`)
	demoUsageRules        = []byte(`{"Color1": 70, "Color2": 80, "Color3": 90}`)
	demoIndicatorColors   = []byte(`{"Color1": [0, 176, 80], "Color2": [255, 192, 0], "Color3": [255, 0, 0]}`)
	demoNotes             = []byte(`{"color1": "On track, no action needed.", "color2": "Monitor closely next month.", "color3": "Escalate with the account team."}`)
)

// EnsureDemoData loads one demo customer with a three month history so a
// fresh install has something to look at. It never touches a database that
// already holds configuration rows.
func EnsureDemoData(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&configdomain.ConfigRecord{}).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return nil
		}

		end := month.Of(time.Now().UTC())
		for i := 2; i >= 0; i-- {
			if err := seedMonth(tx, end.Add(-i), 2-i); err != nil {
				return err
			}
		}
		return nil
	})
}

func seedMonth(tx *gorm.DB, m month.Month, offset int) error {
	when := m.Time()

	cfg := configdomain.ConfigRecord{
		CustomerName:      demoCustomer,
		MonthYear:         when,
		CustomerFullName:  demoFullName,
		CSMPrimary:        demoCSM,
		CSMSecondary:      demoCSM,
		CustomerUIDs:      datatypes.JSON([]byte(`["demo-uid-1"]`)),
		Environments:      2,
		WindowMonths:      3,
		AvailabilityRules: datatypes.JSON(demoAvailabilityRules),
		UsersRules:        datatypes.JSON(demoUsageRules),
		StorageRules:      datatypes.JSON(demoUsageRules),
		IndicatorColors:   datatypes.JSON(demoIndicatorColors),
		CircleColors:      datatypes.JSON(demoIndicatorColors),
		AvailabilityNotes: datatypes.JSON(demoNotes),
		UsersNotes:        datatypes.JSON(demoNotes),
		StorageNotes:      datatypes.JSON(demoNotes),
	}
	if err := tx.Create(&cfg).Error; err != nil {
		return err
	}

	availability := 0.93 + float64(offset)*0.01
	availabilityRow := metricsdomain.AvailabilityRecord{
		CustomerName:     demoCustomer,
		MonthYear:        when,
		BaseAvailability: availability,
		Availability:     availability,
		BaseTarget:       0.99,
		Target:           0.99,
	}
	usersRow := metricsdomain.UsersRecord{
		CustomerName:  demoCustomer,
		MonthYear:     when,
		BaseProdLimit: 100, ProdLimit: 100,
		BaseTestLimit: 40, TestLimit: 40,
		BaseProdUsed: 50 + offset*5, ProdUsed: 50 + offset*5,
		BaseTestUsed: 20, TestUsed: 20,
	}
	storageRow := metricsdomain.StorageRecord{
		CustomerName:     demoCustomer,
		MonthYear:        when,
		BaseProdTargetGB: 500, ProdTargetGB: 500,
		BaseTestTargetGB: 200, TestTargetGB: 200,
		BaseProdUsedGB: 100 + float64(offset)*20, ProdUsedGB: 100 + float64(offset)*20,
		BaseTestUsedGB: 40, TestUsedGB: 40,
	}
	ticketsRow := metricsdomain.TicketsRecord{
		CustomerName: demoCustomer,
		MonthYear:    when,
		BaseOpened:   8 - offset, Opened: 8 - offset,
		BaseClosed: 6, Closed: 6,
		BaseBacklog: 4 + offset, Backlog: 4 + offset,
	}
	for _, row := range []any{&availabilityRow, &usersRow, &storageRow, &ticketsRow} {
		if err := tx.Create(row).Error; err != nil {
			return err
		}
	}

	aggregate := metricsdomain.AggregateRecord{
		CustomerName:     demoCustomer,
		MonthYear:        when,
		CSMPrimary:       demoCSM,
		CSMSecondary:     demoCSM,
		CustomerFullName: demoFullName,
		CustomerUIDs:     datatypes.JSON([]byte(`["demo-uid-1"]`)),

		Availability: availability,
		Target:       0.99,

		ProdLimit: usersRow.ProdLimit,
		TestLimit: usersRow.TestLimit,
		ProdUsed:  usersRow.ProdUsed,
		TestUsed:  usersRow.TestUsed,

		ProdTargetGB: storageRow.ProdTargetGB,
		TestTargetGB: storageRow.TestTargetGB,
		ProdUsedGB:   storageRow.ProdUsedGB,
		TestUsedGB:   storageRow.TestUsedGB,

		TicketsOpened:  ticketsRow.Opened,
		TicketsClosed:  ticketsRow.Closed,
		TicketsBacklog: ticketsRow.Backlog,
	}
	return tx.Create(&aggregate).Error
}
