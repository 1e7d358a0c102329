package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/healthdeck/healthdeck/internal/auth/domain"
	"github.com/healthdeck/healthdeck/internal/config"
	"github.com/healthdeck/healthdeck/pkg/db"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// dialVerifier verifies credentials by opening a throwaway connection to
// the backing database as that user. The sqlite backend has no users, so
// any non-empty pair passes there; that backend only exists for local
// development.
type dialVerifier struct {
	cfg config.Config
}

func NewVerifier(cfg config.Config) domain.Verifier {
	return &dialVerifier{cfg: cfg}
}

func (v *dialVerifier) Verify(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return domain.ErrInvalidCredentials
	}

	var dialector gorm.Dialector
	switch v.cfg.DBType {
	case "postgres":
		dialector = postgres.Open(db.PostgresDSN(v.cfg, username, password))
	case "mysql":
		dialector = mysql.Open(fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			username, password, v.cfg.DBHost, v.cfg.DBPort, v.cfg.DBName))
	default:
		return nil
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Discard,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidCredentials, err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidCredentials, err)
	}
	defer sqlDB.Close()
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidCredentials, err)
	}
	return nil
}
