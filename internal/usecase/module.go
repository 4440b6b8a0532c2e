package usecase

import "go.uber.org/fx"

// Module provides listing and order query use cases to the fx container.
var Module = fx.Provide(
	NewTicketUseCase,
	NewOrderUseCase,
)
