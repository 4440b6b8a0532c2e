// Package storage selects the ticket and order backend.
package storage

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/ticketmart/internal/config"
	"github.com/polkiloo/ticketmart/internal/domain/repository"
	"github.com/polkiloo/ticketmart/internal/storage/memory"
	"github.com/polkiloo/ticketmart/internal/storage/postgres"
)

// Module wires the store and its repository views.
var Module = fx.Options(
	fx.Provide(newStore),
	fx.Provide(
		func(s repository.Store) repository.TicketRepository { return s.Tickets() },
		func(s repository.Store) repository.OrderRepository { return s.Orders() },
		func(s repository.Store) repository.Transactor { return s },
	),
	fx.Invoke(registerLifecycle),
)

type storeParams struct {
	fx.In

	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

var newPostgres = func(ctx context.Context, dsn string, logger *slog.Logger) (repository.Store, error) {
	st, err := postgres.New(ctx, dsn, logger)
	if err != nil {
		return nil, err
	}
	return st, nil
}

func newStore(p storeParams) (repository.Store, error) {
	if p.Config.DatabaseURI == "" {
		p.Logger.Warn("database uri not set, orders are kept in memory")
		return memory.New(), nil
	}
	return newPostgres(p.Ctx, p.Config.DatabaseURI, p.Logger)
}

func registerLifecycle(lc fx.Lifecycle, store repository.Store) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			store.Close()
			return nil
		},
	})
}
