package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/ticketmart/internal/app"
	"github.com/polkiloo/ticketmart/internal/clock"
	"github.com/polkiloo/ticketmart/internal/config"
	"github.com/polkiloo/ticketmart/internal/events"
	"github.com/polkiloo/ticketmart/internal/lock"
	"github.com/polkiloo/ticketmart/internal/logger"
	"github.com/polkiloo/ticketmart/internal/metrics"
	"github.com/polkiloo/ticketmart/internal/pkg/auth"
	"github.com/polkiloo/ticketmart/internal/reservation"
	"github.com/polkiloo/ticketmart/internal/server/http/router"
	"github.com/polkiloo/ticketmart/internal/storage"
	"github.com/polkiloo/ticketmart/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		clock.Module,
		metrics.Module,
		storage.Module,
		lock.Module,
		events.Module,
		auth.Module,
		usecase.Module,
		reservation.Module,
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
