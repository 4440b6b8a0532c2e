package repository

import "context"

// Factory describes access to different domain repositories.
type Factory interface {
	Tickets() TicketRepository
	Orders() OrderRepository
}

// Transactor runs fn in a single atomic unit spanning every repository of the factory passed to it.
// Any error returned by fn discards all writes made through that factory.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx Factory) error) error
}

// Store is a durable backend for tickets and orders.
type Store interface {
	Factory
	Transactor
	HealthCheck(ctx context.Context) error
	Close()
}
