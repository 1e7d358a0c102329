package metrics

import (
	"github.com/healthdeck/healthdeck/internal/metrics/repository"
	"github.com/healthdeck/healthdeck/internal/metrics/service"
	"go.uber.org/fx"
)

var Module = fx.Module("metrics.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
