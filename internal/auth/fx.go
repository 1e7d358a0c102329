package auth

import (
	"github.com/healthdeck/healthdeck/internal/auth/service"
	"github.com/healthdeck/healthdeck/internal/auth/session"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	session.Module,
	fx.Provide(service.NewVerifier),
	fx.Provide(service.New),
)
