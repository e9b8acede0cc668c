package config_fx

import (
	"go.uber.org/fx"

	"roteiro/internal/config"
)

var Module = fx.Provide(config.Load)
