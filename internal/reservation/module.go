package reservation

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/ticketmart/internal/clock"
	"github.com/polkiloo/ticketmart/internal/config"
	"github.com/polkiloo/ticketmart/internal/domain/repository"
	"github.com/polkiloo/ticketmart/internal/events"
	"github.com/polkiloo/ticketmart/internal/lock"
	"github.com/polkiloo/ticketmart/internal/metrics"
)

// Module provides the coordinator.
var Module = fx.Provide(newCoordinator)

type coordinatorParams struct {
	fx.In

	Store   repository.Store
	Locks   lock.Locker
	Clock   clock.Clock
	Events  events.Publisher
	Metrics *metrics.Metrics
	Config  *config.Config
	Logger  *slog.Logger
}

func newCoordinator(p coordinatorParams) *Coordinator {
	return NewCoordinator(Deps{
		Store:   p.Store,
		Locks:   p.Locks,
		Clock:   p.Clock,
		Events:  p.Events,
		Metrics: p.Metrics,
		Logger:  p.Logger,
		TTL:     p.Config.ReservationTTL,
		Timeout: p.Config.OperationTimeout,
	})
}
