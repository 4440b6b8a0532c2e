package config

import "go.uber.org/fx"

// Module loads the configuration once per fx graph; flags override environment.
var Module = fx.Provide(Load)
