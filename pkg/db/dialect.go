package db

import (
	"fmt"

	"github.com/healthdeck/healthdeck/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func Dialect(cfg config.Config) (gorm.Dialector, error) {
	switch cfg.DBType {
	case "mysql":
		return mysql.Open(fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBName,
		)), nil
	case "postgres":
		return postgres.Open(PostgresDSN(cfg, cfg.DBUser, cfg.DBPassword)), nil
	case "sqlite":
		return sqlite.Open("healthdeck.db"), nil
	default:
		return nil, fmt.Errorf("unsupported %s type", cfg.DBType)
	}
}

// PostgresDSN builds a DSN for arbitrary credentials. The login flow uses it
// to verify a staff member's own database credentials.
func PostgresDSN(cfg config.Config, user, password string) string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		cfg.DBHost,
		user,
		password,
		cfg.DBName,
		cfg.DBPort,
		cfg.DBSSLMode,
	)
}
