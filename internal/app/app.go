package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/ticketmart/internal/clock"
	"github.com/polkiloo/ticketmart/internal/config"
	"github.com/polkiloo/ticketmart/internal/domain/repository"
	"github.com/polkiloo/ticketmart/internal/metrics"
	"github.com/polkiloo/ticketmart/internal/reservation"
	"github.com/polkiloo/ticketmart/internal/worker"
)

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		NewMarketplaceFacade,
		func(s repository.Store) HealthChecker { return s },
		newHTTPServer,
		newSweeper,
	),
	fx.Invoke(registerLifecycle),
)

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:    p.Config.RunAddress,
		Handler: p.Router,
	}
}

type sweeperParams struct {
	fx.In

	Coordinator *reservation.Coordinator
	Orders      repository.OrderRepository
	Clock       clock.Clock
	Metrics     *metrics.Metrics
	Config      *config.Config
	Logger      *slog.Logger
}

func newSweeper(p sweeperParams) *worker.Sweeper {
	return worker.NewSweeper(
		p.Coordinator,
		p.Orders,
		p.Clock,
		p.Metrics,
		worker.SweeperOptions{
			Interval:  p.Config.SweepInterval,
			BatchSize: p.Config.SweepBatchSize,
			Workers:   p.Config.SweepWorkers,
		},
		p.Logger,
	)
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Sweeper    *worker.Sweeper
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info("starting ticketmart",
				slog.String("addr", p.Server.Addr),
				slog.Duration("reservation_ttl", p.Config.ReservationTTL),
				slog.Duration("sweep_interval", p.Config.SweepInterval),
			)
			p.Sweeper.Start(ctx)
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			// drain in-flight requests before the sweeper goes away
			err := p.Server.Shutdown(shutdownCtx)
			p.Sweeper.Stop()
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			p.Logger.Info("ticketmart stopped")
			return nil
		},
	})
}
