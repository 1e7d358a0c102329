package deck

import (
	"go.uber.org/fx"
)

var Module = fx.Module("providers.deck",
	fx.Provide(New),
)
