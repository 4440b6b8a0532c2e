package clock

import "go.uber.org/fx"

// Module provides the process clock.
var Module = fx.Provide(NewSystem)
