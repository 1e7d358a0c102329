package migration

import (
	auditdomain "github.com/healthdeck/healthdeck/internal/audit/domain"
	"github.com/healthdeck/healthdeck/internal/config"
	configdomain "github.com/healthdeck/healthdeck/internal/custconfig/domain"
	metricsdomain "github.com/healthdeck/healthdeck/internal/metrics/domain"
	"github.com/healthdeck/healthdeck/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// Dev backends get the schema without the audit triggers.
			if err := conn.AutoMigrate(
				&configdomain.ConfigRecord{},
				&metricsdomain.AggregateRecord{},
				&metricsdomain.AvailabilityRecord{},
				&metricsdomain.UsersRecord{},
				&metricsdomain.StorageRecord{},
				&metricsdomain.TicketsRecord{},
				&auditdomain.AuditEntry{},
			); err != nil {
				return err
			}
		}

		if cfg.SeedDemoData {
			return seed.EnsureDemoData(conn)
		}
		return nil
	}),
)
