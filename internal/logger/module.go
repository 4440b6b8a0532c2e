package logger

import "go.uber.org/fx"

// Module provides the JSON application logger.
var Module = fx.Provide(New)
