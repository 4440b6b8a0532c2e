package router

import (
	"go.uber.org/fx"

	"github.com/polkiloo/ticketmart/internal/app"
	"github.com/polkiloo/ticketmart/internal/server/http/handlers"
)

// Module registers HTTP router construction for fx runtime.
var Module = fx.Provide(
	func(f *app.MarketplaceFacade) handlers.Marketplace { return f },
	Setup,
)
