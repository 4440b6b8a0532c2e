package events

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/ticketmart/internal/config"
)

// Module provides the event publisher: RabbitMQ when configured, log only otherwise.
var Module = fx.Provide(newPublisher)

type publisherParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
}

var dialRabbitMQ = NewRabbitMQ

func newPublisher(p publisherParams) (Publisher, error) {
	if p.Config.AMQPURL == "" {
		return NewLogPublisher(p.Logger), nil
	}

	mq, err := dialRabbitMQ(p.Config.AMQPURL, p.Config.EventsQueue)
	if err != nil {
		return nil, err
	}
	p.Logger.Info("publishing order events to rabbitmq", slog.String("queue", p.Config.EventsQueue))

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return mq.Close()
		},
	})
	return mq, nil
}
