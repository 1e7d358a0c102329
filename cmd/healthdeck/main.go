package main

import (
	"github.com/healthdeck/healthdeck/internal/clock"
	"github.com/healthdeck/healthdeck/internal/config"
	"github.com/healthdeck/healthdeck/internal/migration"
	"github.com/healthdeck/healthdeck/internal/observability"
	"github.com/healthdeck/healthdeck/internal/server"
	"github.com/healthdeck/healthdeck/pkg/db"
	"github.com/healthdeck/healthdeck/pkg/log"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		log.Module,
		observability.Module,
		db.Module,
		clock.Module,
		migration.Module,

		// HTTP surface; pulls in every feature module.
		server.Module,
	)
	app.Run()
}
