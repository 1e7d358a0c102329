package report

import (
	"github.com/healthdeck/healthdeck/internal/report/service"
	"go.uber.org/fx"
)

var Module = fx.Module("report.service",
	fx.Provide(service.New),
)
