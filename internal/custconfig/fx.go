package custconfig

import (
	"github.com/healthdeck/healthdeck/internal/custconfig/repository"
	"github.com/healthdeck/healthdeck/internal/custconfig/service"
	"go.uber.org/fx"
)

var Module = fx.Module("custconfig.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
