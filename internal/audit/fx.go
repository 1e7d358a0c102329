package audit

import (
	"github.com/healthdeck/healthdeck/internal/audit/repository"
	"github.com/healthdeck/healthdeck/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
