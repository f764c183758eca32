package config_fx

import (
	"go.uber.org/fx"

	"carefinder/internal/config"
)

var Module = fx.Provide(provideConfig)

func provideConfig() (config.Config, config.Warnings) {
	return config.Load()
}
